package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/draftmint/clausebind-backend/internal/http/handlers"
	httpMW "github.com/draftmint/clausebind-backend/internal/http/middleware"
	"github.com/draftmint/clausebind-backend/internal/platform/logger"
)

type RouterConfig struct {
	ServiceName string
	Log         *logger.Logger

	HealthHandler    *httpH.HealthHandler
	TransformHandler *httpH.TransformHandler
	BindingHandler   *httpH.BindingHandler
	RegistryHandler  *httpH.RegistryHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.TransformHandler != nil {
			api.GET("/transforms", cfg.TransformHandler.Catalog)
			api.POST("/transforms/suggest", cfg.TransformHandler.Suggest)
			api.POST("/transforms/suggest-batch", cfg.TransformHandler.SuggestBatch)
		}

		if cfg.BindingHandler != nil {
			api.POST("/questions/:id/bindings", cfg.BindingHandler.Bind)
			api.DELETE("/placeholders/:id", cfg.BindingHandler.Unbind)
			api.DELETE("/documents/:id/placeholders", cfg.BindingHandler.Purge)
		}

		if cfg.RegistryHandler != nil {
			api.POST("/documents", cfg.RegistryHandler.RegisterDocument)
			api.POST("/questions", cfg.RegistryHandler.RegisterQuestion)
		}
	}

	return r
}
