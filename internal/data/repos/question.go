package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/draftmint/clausebind-backend/internal/domain"
	"github.com/draftmint/clausebind-backend/internal/platform/dbctx"
	"github.com/draftmint/clausebind-backend/internal/platform/logger"
)

type QuestionRepo interface {
	Create(dbc dbctx.Context, questions []*domain.Question) ([]*domain.Question, error)
	GetByID(dbc dbctx.Context, questionID uuid.UUID) (*domain.Question, error)
	GetByIDs(dbc dbctx.Context, questionIDs []uuid.UUID) ([]*domain.Question, error)
	// UpdateModelCAS swaps the answer kind and etag only when the stored
	// etag still matches expectedEtag. Returns false when the row was not
	// updated, which means a concurrent writer got there first.
	UpdateModelCAS(dbc dbctx.Context, questionID uuid.UUID, expectedEtag, newEtag string, kind domain.AnswerKind) (bool, error)
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	repoLog := baseLog.With("repo", "QuestionRepo")
	return &questionRepo{db: db, log: repoLog}
}

func (r *questionRepo) Create(dbc dbctx.Context, questions []*domain.Question) ([]*domain.Question, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(questions) == 0 {
		return []*domain.Question{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepo) GetByID(dbc dbctx.Context, questionID uuid.UUID) (*domain.Question, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var result domain.Question
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", questionID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *questionRepo) GetByIDs(dbc dbctx.Context, questionIDs []uuid.UUID) ([]*domain.Question, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.Question
	if len(questionIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", questionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *questionRepo) UpdateModelCAS(dbc dbctx.Context, questionID uuid.UUID, expectedEtag, newEtag string, kind domain.AnswerKind) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(dbc.Ctx).
		Model(&domain.Question{}).
		Where("id = ? AND etag = ?", questionID, expectedEtag).
		Updates(map[string]interface{}{
			"answer_kind": string(kind),
			"etag":        newEtag,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
