package app

import (
	"github.com/gin-gonic/gin"

	internalhttp "github.com/draftmint/clausebind-backend/internal/http"
	"github.com/draftmint/clausebind-backend/internal/platform/logger"
)

func wireRouter(cfg Config, log *logger.Logger, h Handlers) *gin.Engine {
	return internalhttp.NewRouter(internalhttp.RouterConfig{
		ServiceName:      cfg.ServiceName,
		Log:              log,
		HealthHandler:    h.Health,
		TransformHandler: h.Transform,
		BindingHandler:   h.Binding,
		RegistryHandler:  h.Registry,
	})
}
