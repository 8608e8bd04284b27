package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/novelstudio/nai-gateway/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all v1 routes under /v1 prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")
	group.POST("/images/generations", r.handlers.Image.Generate)
	group.POST("/images/compile", r.handlers.Image.Compile)
	group.GET("/models", r.handlers.Image.ListModels)
	group.GET("/samplers", r.handlers.Image.ListSamplers)
	group.GET("/size-presets", r.handlers.Image.ListSizePresets)
}
