package imagegen

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/novelstudio/nai-gateway/internal/infrastructure/metrics"
	"github.com/novelstudio/nai-gateway/internal/infrastructure/observability"
	"github.com/novelstudio/nai-gateway/internal/utils/platformerrors"
	"github.com/novelstudio/nai-gateway/pkg/telemetry"
)

const tracerName = "nai-gateway/imagegen"

// Transport posts a compiled request and returns the raw response body.
// Failures must already be classified.
type Transport interface {
	Generate(ctx context.Context, req CompiledRequest, token string) (io.ReadCloser, error)
}

// Decoder turns a response body into ordered images.
type Decoder interface {
	Decode(ctx context.Context, r io.Reader) ([]Image, error)
}

// Result is a successful generation.
type Result struct {
	Images []Image
	Seed   uint32
	Model  Model
}

// Service runs validate, compile, invoke and decode as one unit. It never
// retries.
type Service struct {
	validator *Validator
	compiler  *Compiler
	transport Transport
	decoder   Decoder
	sanitizer *telemetry.Sanitizer
	log       zerolog.Logger
}

func NewService(validator *Validator, compiler *Compiler, transport Transport, decoder Decoder, sanitizer *telemetry.Sanitizer, log zerolog.Logger) *Service {
	if sanitizer == nil {
		sanitizer = telemetry.NewSanitizer(telemetry.PromptLogHashed, "")
	}
	return &Service{
		validator: validator,
		compiler:  compiler,
		transport: transport,
		decoder:   decoder,
		sanitizer: sanitizer,
		log:       log.With().Str("component", "imagegen").Logger(),
	}
}

// Compile validates p and returns the wire request without calling upstream.
func (s *Service) Compile(ctx context.Context, p Params) (CompiledRequest, error) {
	if err := s.validator.Validate(ctx, p); err != nil {
		return CompiledRequest{}, err
	}
	return s.compiler.Compile(p), nil
}

// Generate runs one generation with the caller's bearer token. The token is
// used for this call only.
func (s *Service) Generate(ctx context.Context, p Params, token string) (*Result, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, tracerName, "imagegen.Generate")
	defer span.End()

	if token == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized, "missing NovelAI token", nil, "1e950993-14a5-429a-9853-746fde4eb6c4")
	}

	req, err := s.Compile(ctx, p)
	if err != nil {
		observability.RecordError(ctx, err)
		metrics.RecordGeneration(string(p.Model), "validation", time.Since(start).Seconds(), 0)
		return nil, err
	}

	observability.AddSpanAttributes(ctx,
		attribute.String("nai.model", string(req.Model)),
		attribute.String("nai.family", string(req.Family())),
		attribute.String("nai.action", string(req.Action)),
		attribute.Int64("nai.seed", int64(req.Seed())),
	)
	s.log.Debug().
		Str("model", string(req.Model)).
		Str("family", string(req.Family())).
		Uint32("seed", req.Seed()).
		Str("prompt", s.sanitizer.SanitizePrompt(req.Input)).
		Msg("compiled generation request")

	body, err := s.transport.Generate(ctx, req, token)
	if err != nil {
		return nil, s.fail(ctx, req, start, err)
	}
	defer body.Close()

	images, err := s.decoder.Decode(ctx, body)
	if err != nil {
		return nil, s.fail(ctx, req, start, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, s.fail(ctx, req, start, ctxErr)
	}

	metrics.RecordGeneration(string(req.Model), "success", time.Since(start).Seconds(), len(images))
	s.log.Info().
		Str("model", string(req.Model)).
		Uint32("seed", req.Seed()).
		Int("images", len(images)).
		Dur("duration", time.Since(start)).
		Msg("generation completed")

	return &Result{Images: images, Seed: req.Seed(), Model: req.Model}, nil
}

// fail classifies err, logs the full detail and records the outcome.
func (s *Service) fail(ctx context.Context, req CompiledRequest, start time.Time, err error) error {
	ce, ok := AsClassified(err)
	if !ok {
		ce = ClassifyTransport(err)
	}

	observability.RecordError(ctx, ce)
	metrics.RecordGeneration(string(req.Model), string(ce.Kind), time.Since(start).Seconds(), 0)

	event := s.log.Warn()
	switch ce.Kind {
	case KindUpstreamFailure, KindStreamDecodeFailure, KindNoImagesProduced:
		event = s.log.Error()
	}
	event.
		Str("model", string(req.Model)).
		Str("kind", string(ce.Kind)).
		Int("status", ce.HTTPStatus()).
		Int("upstream_status", ce.UpstreamStatus).
		Str("detail", ce.Detail).
		Err(ce.Err).
		Msg("generation failed")

	return ce
}
