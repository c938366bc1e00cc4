package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/draftmint/clausebind-backend/internal/domain"
	"github.com/draftmint/clausebind-backend/internal/platform/dbctx"
	"github.com/draftmint/clausebind-backend/internal/platform/logger"
)

type DocumentRepo interface {
	Create(dbc dbctx.Context, docs []*domain.Document) ([]*domain.Document, error)
	GetByID(dbc dbctx.Context, docID uuid.UUID) (*domain.Document, error)
	FullDeleteByID(dbc dbctx.Context, docID uuid.UUID) error
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	repoLog := baseLog.With("repo", "DocumentRepo")
	return &documentRepo{db: db, log: repoLog}
}

func (r *documentRepo) Create(dbc dbctx.Context, docs []*domain.Document) ([]*domain.Document, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(docs) == 0 {
		return []*domain.Document{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepo) GetByID(dbc dbctx.Context, docID uuid.UUID) (*domain.Document, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var result domain.Document
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", docID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *documentRepo) FullDeleteByID(dbc dbctx.Context, docID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", docID).
		Delete(&domain.Document{}).Error; err != nil {
		return err
	}
	return nil
}
