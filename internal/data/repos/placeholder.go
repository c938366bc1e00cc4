package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/draftmint/clausebind-backend/internal/domain"
	"github.com/draftmint/clausebind-backend/internal/platform/dbctx"
	"github.com/draftmint/clausebind-backend/internal/platform/logger"
)

type PlaceholderRepo interface {
	Create(dbc dbctx.Context, placeholders []*domain.Placeholder) ([]*domain.Placeholder, error)
	GetByID(dbc dbctx.Context, placeholderID uuid.UUID) (*domain.Placeholder, error)
	GetByDocumentID(dbc dbctx.Context, documentID uuid.UUID) ([]*domain.Placeholder, error)
	GetByQuestionID(dbc dbctx.Context, questionID uuid.UUID) ([]*domain.Placeholder, error)
	CountByQuestionID(dbc dbctx.Context, questionID uuid.UUID) (int64, error)
	// FindSpanContaining returns placeholders of the document whose span
	// strictly contains [start,end): candidates for being a parent.
	FindSpanContaining(dbc dbctx.Context, documentID uuid.UUID, start, end int) ([]*domain.Placeholder, error)
	// FindSpanWithinByKey returns placeholders of the document carrying the
	// given bracket key whose span lies strictly inside [start,end):
	// already-bound children of a freshly bound parent.
	FindSpanWithinByKey(dbc dbctx.Context, documentID uuid.UUID, key string, start, end int) ([]*domain.Placeholder, error)
	FullDeleteByIDs(dbc dbctx.Context, placeholderIDs []uuid.UUID) error
}

type placeholderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlaceholderRepo(db *gorm.DB, baseLog *logger.Logger) PlaceholderRepo {
	repoLog := baseLog.With("repo", "PlaceholderRepo")
	return &placeholderRepo{db: db, log: repoLog}
}

func (r *placeholderRepo) Create(dbc dbctx.Context, placeholders []*domain.Placeholder) ([]*domain.Placeholder, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(placeholders) == 0 {
		return []*domain.Placeholder{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&placeholders).Error; err != nil {
		return nil, err
	}
	return placeholders, nil
}

func (r *placeholderRepo) GetByID(dbc dbctx.Context, placeholderID uuid.UUID) (*domain.Placeholder, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var result domain.Placeholder
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", placeholderID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *placeholderRepo) GetByDocumentID(dbc dbctx.Context, documentID uuid.UUID) ([]*domain.Placeholder, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.Placeholder
	if err := transaction.WithContext(dbc.Ctx).
		Where("document_id = ?", documentID).
		Order("span_start ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *placeholderRepo) GetByQuestionID(dbc dbctx.Context, questionID uuid.UUID) ([]*domain.Placeholder, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.Placeholder
	if err := transaction.WithContext(dbc.Ctx).
		Where("question_id = ?", questionID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *placeholderRepo) CountByQuestionID(dbc dbctx.Context, questionID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&domain.Placeholder{}).
		Where("question_id = ?", questionID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *placeholderRepo) FindSpanContaining(dbc dbctx.Context, documentID uuid.UUID, start, end int) ([]*domain.Placeholder, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.Placeholder
	if err := transaction.WithContext(dbc.Ctx).
		Where("document_id = ? AND span_start <= ? AND span_end >= ? AND (span_start < ? OR span_end > ?)",
			documentID, start, end, start, end).
		Order("span_start ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *placeholderRepo) FindSpanWithinByKey(dbc dbctx.Context, documentID uuid.UUID, key string, start, end int) ([]*domain.Placeholder, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.Placeholder
	if err := transaction.WithContext(dbc.Ctx).
		Where("document_id = ? AND placeholder_key = ? AND span_start >= ? AND span_end <= ? AND (span_start > ? OR span_end < ?)",
			documentID, key, start, end, start, end).
		Order("span_start ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *placeholderRepo) FullDeleteByIDs(dbc dbctx.Context, placeholderIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(placeholderIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", placeholderIDs).
		Delete(&domain.Placeholder{}).Error; err != nil {
		return err
	}
	return nil
}
