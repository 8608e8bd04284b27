package handlers

import (
	"github.com/rs/zerolog"

	"github.com/novelstudio/nai-gateway/internal/domain/imagegen"
)

// Provider wires HTTP handlers.
type Provider struct {
	Image *ImageHandler
}

func NewProvider(service *imagegen.Service, log zerolog.Logger) *Provider {
	return &Provider{
		Image: NewImageHandler(service, log),
	}
}
