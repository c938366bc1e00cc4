package app

import (
	"gorm.io/gorm"

	"github.com/draftmint/clausebind-backend/internal/data/repos"
	"github.com/draftmint/clausebind-backend/internal/platform/logger"
)

type Repos struct {
	Document     repos.DocumentRepo
	Question     repos.QuestionRepo
	AnswerOption repos.AnswerOptionRepo
	Placeholder  repos.PlaceholderRepo
	BindReceipt  repos.BindReceiptRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Document:     repos.NewDocumentRepo(db, log),
		Question:     repos.NewQuestionRepo(db, log),
		AnswerOption: repos.NewAnswerOptionRepo(db, log),
		Placeholder:  repos.NewPlaceholderRepo(db, log),
		BindReceipt:  repos.NewBindReceiptRepo(db, log),
	}
}
