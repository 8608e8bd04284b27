// Package app assembles the generation pipeline from configuration. Both the
// HTTP server and the CLI build their service here.
package app

import (
	"github.com/rs/zerolog"

	"github.com/novelstudio/nai-gateway/internal/config"
	"github.com/novelstudio/nai-gateway/internal/domain/imagegen"
	"github.com/novelstudio/nai-gateway/internal/infrastructure/novelai"
	"github.com/novelstudio/nai-gateway/internal/infrastructure/streamdecoder"
	"github.com/novelstudio/nai-gateway/internal/infrastructure/zipdecoder"
	"github.com/novelstudio/nai-gateway/pkg/telemetry"
)

// NewTransport builds the NovelAI client for the configured response format.
func NewTransport(cfg *config.Config, log zerolog.Logger) *novelai.Client {
	return novelai.NewClient(novelai.Config{
		BaseURL:   cfg.NovelAI.BaseURL,
		Path:      cfg.GeneratePath(),
		Timeout:   cfg.NovelAI.Timeout,
		UserAgent: cfg.NovelAI.UserAgent,
	}, log)
}

// NewDecoder picks the msgpack stream decoder or the legacy zip decoder.
func NewDecoder(cfg *config.Config, log zerolog.Logger) imagegen.Decoder {
	if cfg.Streaming() {
		return streamdecoder.New(log, streamdecoder.WithMaxFrameSize(cfg.NovelAI.MaxFrameBytes))
	}
	return zipdecoder.New(log)
}

// NewCompiler adds the stream marker only when the streaming endpoint is used.
func NewCompiler(cfg *config.Config) *imagegen.Compiler {
	var opts []imagegen.CompilerOption
	if cfg.Streaming() {
		opts = append(opts, imagegen.WithStreamFormat(imagegen.StreamFormatMsgpack))
	}
	return imagegen.NewCompiler(imagegen.NewRandomSeedSource(), opts...)
}

func NewSanitizer(cfg *config.Config) *telemetry.Sanitizer {
	return telemetry.NewSanitizer(telemetry.PromptLogLevel(cfg.PromptLogLevel), cfg.ServiceName)
}

// NewImageService wires the full pipeline.
func NewImageService(cfg *config.Config, log zerolog.Logger) *imagegen.Service {
	return imagegen.NewService(
		imagegen.NewValidator(),
		NewCompiler(cfg),
		NewTransport(cfg, log),
		NewDecoder(cfg, log),
		NewSanitizer(cfg),
		log,
	)
}
