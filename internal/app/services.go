package app

import (
	"gorm.io/gorm"

	rediscli "github.com/draftmint/clausebind-backend/internal/clients/redis"
	"github.com/draftmint/clausebind-backend/internal/platform/logger"
	"github.com/draftmint/clausebind-backend/internal/services"
)

type Services struct {
	Suggest  services.SuggestService
	Binding  services.BindingService
	Cleanup  services.CleanupService
	Registry services.RegistryService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, idem rediscli.IdempotencyCache) Services {
	log.Info("Wiring services...")
	return Services{
		Suggest: services.NewSuggestService(log, cfg.SuggestBatchConcurrency),
		Binding: services.NewBindingService(
			db, log, r.Document, r.Question, r.AnswerOption, r.Placeholder, r.BindReceipt, idem,
		),
		Cleanup: services.NewCleanupService(
			db, log, r.Document, r.Question, r.AnswerOption, r.Placeholder,
		),
		Registry: services.NewRegistryService(db, log, r.Document, r.Question),
	}
}
