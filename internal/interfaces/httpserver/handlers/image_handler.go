package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/novelstudio/nai-gateway/internal/domain/imagegen"
	"github.com/novelstudio/nai-gateway/internal/interfaces/httpserver/requests"
	"github.com/novelstudio/nai-gateway/internal/interfaces/httpserver/responses"
	"github.com/novelstudio/nai-gateway/internal/utils/platformerrors"
)

const tokenHeader = "x-nai-token"

// ImageHandler exposes the image generation endpoints.
type ImageHandler struct {
	service *imagegen.Service
	log     zerolog.Logger
}

func NewImageHandler(service *imagegen.Service, log zerolog.Logger) *ImageHandler {
	return &ImageHandler{
		service: service,
		log:     log.With().Str("component", "image-handler").Logger(),
	}
}

// Generate runs one generation with the caller's NovelAI token.
func (h *ImageHandler) Generate(c *gin.Context) {
	token := tokenFromRequest(c)
	if token == "" {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "missing NovelAI token", "5b0c7a0e-3b7e-4f53-9d0e-2a51a8f4c1d2")
		return
	}

	req := requests.NewGenerationRequest()
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body: "+err.Error(), "8d1f2c44-6a3b-4e0f-b1c7-0f9e6d2a7b35")
		return
	}
	params := req.ToDomain()
	c.Set("model", string(params.Model))

	result, err := h.service.Generate(c.Request.Context(), params, token)
	if err != nil {
		h.fail(c, err, "image generation failed")
		return
	}

	c.JSON(http.StatusOK, responses.NewGenerationResponse(result))
}

// Compile returns the upstream request body for the given parameters without
// sending it. No token is needed.
func (h *ImageHandler) Compile(c *gin.Context) {
	req := requests.NewGenerationRequest()
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body: "+err.Error(), "c3e9a5d7-2f14-4b8a-a6e0-91d4b7c2e853")
		return
	}

	compiled, err := h.service.Compile(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.fail(c, err, "compile failed")
		return
	}

	c.JSON(http.StatusOK, responses.CompileResponse{Family: compiled.Family(), Request: compiled})
}

func (h *ImageHandler) ListModels(c *gin.Context) {
	c.JSON(http.StatusOK, responses.NewListResponse(imagegen.Models))
}

func (h *ImageHandler) ListSamplers(c *gin.Context) {
	c.JSON(http.StatusOK, responses.NewListResponse(imagegen.Samplers))
}

func (h *ImageHandler) ListSizePresets(c *gin.Context) {
	c.JSON(http.StatusOK, responses.NewListResponse(imagegen.SizePresets))
}

// fail logs errors the service did not already classify and writes the
// response. The requested model, when known, is attached to the log entry.
func (h *ImageHandler) fail(c *gin.Context, err error, message string) {
	var platformErr *platformerrors.PlatformError
	if _, classified := imagegen.AsClassified(err); !classified && (!errors.As(err, &platformErr) || platformErr.Type == platformerrors.ErrorTypeInternal) {
		var fields map[string]any
		if model := c.GetString("model"); model != "" {
			fields = map[string]any{"model": model}
		}
		platformErr = platformerrors.AsErrorWithContext(c.Request.Context(), platformerrors.LayerHandler, err, message, fields)
		platformerrors.LogError(h.log, platformErr)
		err = platformErr
	}
	responses.HandleError(c, err, message)
}

// tokenFromRequest prefers the dedicated header over a bearer Authorization.
func tokenFromRequest(c *gin.Context) string {
	if token := strings.TrimSpace(c.GetHeader(tokenHeader)); token != "" {
		return token
	}
	auth := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(auth) > len("Bearer ") && strings.EqualFold(auth[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	return ""
}
