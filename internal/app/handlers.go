package app

import (
	"gorm.io/gorm"

	"github.com/draftmint/clausebind-backend/internal/http/handlers"
	"github.com/draftmint/clausebind-backend/internal/platform/logger"
)

type Handlers struct {
	Health    *handlers.HealthHandler
	Transform *handlers.TransformHandler
	Binding   *handlers.BindingHandler
	Registry  *handlers.RegistryHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    handlers.NewHealthHandler(db, log),
		Transform: handlers.NewTransformHandler(s.Suggest, log),
		Binding:   handlers.NewBindingHandler(s.Binding, s.Cleanup, log),
		Registry:  handlers.NewRegistryHandler(s.Registry, log),
	}
}
