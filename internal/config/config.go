package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	ResponseFormatStream = "stream"
	ResponseFormatZip    = "zip"
)

// Config holds the environment driven configuration for the gateway.
type Config struct {
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"nai-gateway"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8190"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	NovelAI NovelAIConfig `envPrefix:"NAI_"`

	// PromptLogLevel is none, hashed or full.
	PromptLogLevel string `env:"PROMPT_LOG_LEVEL" envDefault:"hashed"`
}

// NovelAIConfig configures the upstream image endpoint.
type NovelAIConfig struct {
	BaseURL        string        `env:"BASE_URL" envDefault:"https://image.novelai.net"`
	StreamPath     string        `env:"STREAM_PATH" envDefault:"/ai/generate-image-stream"`
	ZipPath        string        `env:"ZIP_PATH" envDefault:"/ai/generate-image"`
	ResponseFormat string        `env:"RESPONSE_FORMAT" envDefault:"stream"`
	Timeout        time.Duration `env:"TIMEOUT" envDefault:"120s"`
	MaxFrameBytes  int           `env:"MAX_FRAME_BYTES" envDefault:"268435456"`
	UserAgent      string        `env:"USER_AGENT" envDefault:"nai-gateway/1.0"`
}

// Load parses environment variables into Config.
//
// Environment variables win over a .env file loaded by main, which wins over
// the struct tag defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.NovelAI.ResponseFormat = strings.ToLower(strings.TrimSpace(c.NovelAI.ResponseFormat))
	switch c.NovelAI.ResponseFormat {
	case ResponseFormatStream, ResponseFormatZip:
	default:
		return fmt.Errorf("NAI_RESPONSE_FORMAT must be %q or %q, got %q", ResponseFormatStream, ResponseFormatZip, c.NovelAI.ResponseFormat)
	}
	if strings.TrimSpace(c.NovelAI.BaseURL) == "" {
		return fmt.Errorf("NAI_BASE_URL is required")
	}
	if c.NovelAI.Timeout <= 0 {
		return fmt.Errorf("NAI_TIMEOUT must be positive")
	}
	if c.NovelAI.MaxFrameBytes <= 0 {
		return fmt.Errorf("NAI_MAX_FRAME_BYTES must be positive")
	}
	switch c.PromptLogLevel {
	case "none", "hashed", "full":
	default:
		return fmt.Errorf("PROMPT_LOG_LEVEL must be none, hashed or full")
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// Streaming reports whether the msgpack stream endpoint is used.
func (c *Config) Streaming() bool {
	return c.NovelAI.ResponseFormat == ResponseFormatStream
}

// GeneratePath is the upstream path for the configured response format.
func (c *Config) GeneratePath() string {
	if c.Streaming() {
		return c.NovelAI.StreamPath
	}
	return c.NovelAI.ZipPath
}
