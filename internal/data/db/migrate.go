package db

import (
	"gorm.io/gorm"

	"github.com/draftmint/clausebind-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Upstream anchors
		&domain.Document{},

		// Questionnaire model
		&domain.Question{},
		&domain.AnswerOption{},

		// Bindings
		&domain.Placeholder{},
		&domain.BindReceiptRecord{},
	)
}
