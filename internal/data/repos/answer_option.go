package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/draftmint/clausebind-backend/internal/domain"
	"github.com/draftmint/clausebind-backend/internal/platform/dbctx"
	"github.com/draftmint/clausebind-backend/internal/platform/logger"
)

type AnswerOptionRepo interface {
	Create(dbc dbctx.Context, options []*domain.AnswerOption) ([]*domain.AnswerOption, error)
	GetByQuestionID(dbc dbctx.Context, questionID uuid.UUID) ([]*domain.AnswerOption, error)
	GetUnresolvedByQuestionID(dbc dbctx.Context, questionID uuid.UUID) ([]*domain.AnswerOption, error)
	// SetPlaceholderID back-fills the weak child reference. It only writes
	// when the reference is still null, so repeating a linkage scan is a
	// no-op rather than an overwrite.
	SetPlaceholderID(dbc dbctx.Context, optionID, placeholderID uuid.UUID) error
	ClearPlaceholderRefs(dbc dbctx.Context, placeholderIDs []uuid.UUID) error
	FullDeleteByQuestionIDs(dbc dbctx.Context, questionIDs []uuid.UUID) error
}

type answerOptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnswerOptionRepo(db *gorm.DB, baseLog *logger.Logger) AnswerOptionRepo {
	repoLog := baseLog.With("repo", "AnswerOptionRepo")
	return &answerOptionRepo{db: db, log: repoLog}
}

func (r *answerOptionRepo) Create(dbc dbctx.Context, options []*domain.AnswerOption) ([]*domain.AnswerOption, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(options) == 0 {
		return []*domain.AnswerOption{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}

func (r *answerOptionRepo) GetByQuestionID(dbc dbctx.Context, questionID uuid.UUID) ([]*domain.AnswerOption, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.AnswerOption
	if err := transaction.WithContext(dbc.Ctx).
		Where("question_id = ?", questionID).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *answerOptionRepo) GetUnresolvedByQuestionID(dbc dbctx.Context, questionID uuid.UUID) ([]*domain.AnswerOption, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.AnswerOption
	if err := transaction.WithContext(dbc.Ctx).
		Where("question_id = ? AND placeholder_key IS NOT NULL AND placeholder_id IS NULL", questionID).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *answerOptionRepo) SetPlaceholderID(dbc dbctx.Context, optionID, placeholderID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(dbc.Ctx).
		Model(&domain.AnswerOption{}).
		Where("id = ? AND placeholder_id IS NULL", optionID).
		Update("placeholder_id", placeholderID).Error; err != nil {
		return err
	}
	return nil
}

func (r *answerOptionRepo) ClearPlaceholderRefs(dbc dbctx.Context, placeholderIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(placeholderIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Model(&domain.AnswerOption{}).
		Where("placeholder_id IN ?", placeholderIDs).
		Update("placeholder_id", nil).Error; err != nil {
		return err
	}
	return nil
}

func (r *answerOptionRepo) FullDeleteByQuestionIDs(dbc dbctx.Context, questionIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(questionIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("question_id IN ?", questionIDs).
		Delete(&domain.AnswerOption{}).Error; err != nil {
		return err
	}
	return nil
}
