// Package novelai posts compiled generation requests to the NovelAI image
// API.
package novelai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/novelstudio/nai-gateway/internal/domain/imagegen"
	"github.com/novelstudio/nai-gateway/internal/infrastructure/metrics"
	"github.com/novelstudio/nai-gateway/internal/utils/platformerrors"
)

const (
	DefaultBaseURL    = "https://image.novelai.net"
	DefaultStreamPath = "/ai/generate-image-stream"
	DefaultZipPath    = "/ai/generate-image"

	defaultTimeout = 120 * time.Second

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 64 << 10

	requestIDHeader = "X-Request-Id"
)

// Config configures a Client.
type Config struct {
	BaseURL   string
	Path      string
	Timeout   time.Duration
	UserAgent string
}

// Client is the transport for imagegen.Service.
type Client struct {
	http *resty.Client
	path string
	log  zerolog.Logger
}

var _ imagegen.Transport = (*Client)(nil)

func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Path == "" {
		cfg.Path = DefaultStreamPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "*/*")
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	client.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if requestID := platformerrors.RequestIDFromContext(r.Context()); requestID != "" {
			r.SetHeader(requestIDHeader, requestID)
		}
		return nil
	})

	return &Client{
		http: client,
		path: cfg.Path,
		log:  log.With().Str("component", "novelai").Logger(),
	}
}

// Generate posts req with the caller's token and returns the undecoded
// response body. Non-2xx responses and connection failures come back as
// *imagegen.ClassifiedError.
func (c *Client) Generate(ctx context.Context, req imagegen.CompiledRequest, token string) (io.ReadCloser, error) {
	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(req).
		SetDoNotParseResponse(true).
		Post(c.path)
	if err != nil {
		c.log.Error().Err(err).Str("path", c.path).Dur("latency", time.Since(start)).Msg("[NovelAI] request failed")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, imagegen.ClassifyTransport(ctxErr)
		}
		return nil, imagegen.ClassifyTransport(err)
	}

	metrics.RecordUpstreamStatus(resp.StatusCode())
	body := resp.RawBody()

	c.log.Debug().
		Str("path", c.path).
		Str("model", string(req.Model)).
		Int("status", resp.StatusCode()).
		Str("content_type", resp.Header().Get("Content-Type")).
		Dur("latency", time.Since(start)).
		Msg("[NovelAI] response received")

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		detail := readErrorBody(body)
		return nil, imagegen.ClassifyStatus(resp.StatusCode(), detail)
	}
	if body == nil {
		return nil, imagegen.ClassifyTransport(fmt.Errorf("empty response body"))
	}
	return body, nil
}

func readErrorBody(body io.ReadCloser) string {
	if body == nil {
		return ""
	}
	defer body.Close()
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil && len(data) == 0 {
		return fmt.Sprintf("unreadable error body: %v", err)
	}
	return strings.TrimSpace(string(data))
}
