//go:build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/novelstudio/nai-gateway/internal/app"
	"github.com/novelstudio/nai-gateway/internal/config"
	"github.com/novelstudio/nai-gateway/internal/domain/imagegen"
	"github.com/novelstudio/nai-gateway/internal/infrastructure/logger"
	"github.com/novelstudio/nai-gateway/internal/infrastructure/novelai"
	"github.com/novelstudio/nai-gateway/internal/interfaces/httpserver"
)

var imageSet = wire.NewSet(
	app.NewTransport,
	wire.Bind(new(imagegen.Transport), new(*novelai.Client)),
	app.NewDecoder,
	app.NewCompiler,
	app.NewSanitizer,
	imagegen.NewValidator,
	imagegen.NewService,
)

// BuildApplication assembles the gateway with Wire.
func BuildApplication() (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		imageSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}
