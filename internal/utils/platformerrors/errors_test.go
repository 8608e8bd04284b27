package platformerrors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError_CarriesRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	cause := errors.New("boom")

	err := NewError(ctx, LayerDomain, ErrorTypeValidation, "bad input", cause, "fixed-uuid")

	assert.Equal(t, "req-1", err.RequestID)
	assert.Equal(t, "fixed-uuid", err.UUID)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "[domain][VALIDATION][fixed-uuid] bad input")
}

func TestNewError_AssignsUUIDWhenEmpty(t *testing.T) {
	err := NewError(context.Background(), LayerRoute, ErrorTypeInternal, "oops", nil, "")

	assert.NotEmpty(t, err.UUID)
	assert.Empty(t, err.RequestID)
}

func TestAsError_KeepsInnerType(t *testing.T) {
	inner := NewError(context.Background(), LayerDomain, ErrorTypeUnauthorized, "no token", nil, "")
	wrapped := fmt.Errorf("generate: %w", inner)

	err := AsError(context.Background(), LayerHandler, wrapped, "handler failed")

	assert.Equal(t, ErrorTypeUnauthorized, err.Type)
	assert.True(t, IsErrorType(err, ErrorTypeUnauthorized))
	assert.Equal(t, ErrorTypeInternal, AsError(context.Background(), LayerHandler, errors.New("x"), "m").Type)
}

func TestAsErrorWithContext_AttachesFields(t *testing.T) {
	inner := NewError(context.Background(), LayerDomain, ErrorTypeValidation, "bad size", nil, "inner-uuid")

	err := AsErrorWithContext(context.Background(), LayerHandler, inner, "generate", map[string]any{"model": "nai-diffusion-4-5-full"})

	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Equal(t, "inner-uuid", err.UUID)
	assert.Equal(t, "generate: bad size", err.Message)
	assert.Equal(t, map[string]any{"model": "nai-diffusion-4-5-full"}, err.Context)
	assert.Nil(t, AsErrorWithContext(context.Background(), LayerHandler, nil, "m", nil))
}

func TestErrorTypeToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ErrorTypeToHTTPStatus(ErrorTypeValidation))
	assert.Equal(t, http.StatusUnauthorized, ErrorTypeToHTTPStatus(ErrorTypeUnauthorized))
	assert.Equal(t, http.StatusNotFound, ErrorTypeToHTTPStatus(ErrorTypeNotFound))
	assert.Equal(t, http.StatusInternalServerError, ErrorTypeToHTTPStatus(ErrorTypeInternal))
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithRequestID(context.Background(), "req-log")
	err := NewErrorWithContext(ctx, LayerHandler, ErrorTypeInternal, "upstream", errors.New("refused"), "u-1", map[string]any{"model": "nai-diffusion-3"})

	LogError(zerolog.New(&buf), err)
	LogError(zerolog.New(&buf), nil)

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"error_uuid":"u-1"`)
	assert.Contains(t, out, `"request_id":"req-log"`)
	assert.Contains(t, out, `"model":"nai-diffusion-3"`)
}
