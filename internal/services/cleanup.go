package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/draftmint/clausebind-backend/internal/data/repos"
	"github.com/draftmint/clausebind-backend/internal/domain"
	"github.com/draftmint/clausebind-backend/internal/platform/dbctx"
	"github.com/draftmint/clausebind-backend/internal/platform/logger"
)

// CleanupService removes bindings and reconciles the answer models they
// leave behind. Unbind targets one placeholder; Purge clears a whole
// document. Both leave questions without remaining placeholders modelless
// so the next bind starts fresh.
type CleanupService interface {
	Unbind(ctx context.Context, input UnbindInput) (*UnbindResult, error)
	Purge(ctx context.Context, documentID uuid.UUID) (*PurgeResult, error)
}

type UnbindInput struct {
	PlaceholderID    uuid.UUID `json:"placeholder_id"`
	PreconditionEtag string    `json:"precondition_etag"`
}

type UnbindResult struct {
	QuestionID   uuid.UUID         `json:"question_id"`
	AnswerKind   domain.AnswerKind `json:"answer_kind"`
	ModelCleared bool              `json:"model_cleared"`
	NewEtag      string            `json:"new_etag"`
}

type PurgeResult struct {
	PlaceholdersRemoved int `json:"placeholders_removed"`
	QuestionsReset      int `json:"questions_reset"`
}

type cleanupService struct {
	db              *gorm.DB
	log             *logger.Logger
	documentRepo    repos.DocumentRepo
	questionRepo    repos.QuestionRepo
	optionRepo      repos.AnswerOptionRepo
	placeholderRepo repos.PlaceholderRepo
}

func NewCleanupService(
	db *gorm.DB,
	baseLog *logger.Logger,
	documentRepo repos.DocumentRepo,
	questionRepo repos.QuestionRepo,
	optionRepo repos.AnswerOptionRepo,
	placeholderRepo repos.PlaceholderRepo,
) CleanupService {
	return &cleanupService{
		db:              db,
		log:             baseLog.With("service", "CleanupService"),
		documentRepo:    documentRepo,
		questionRepo:    questionRepo,
		optionRepo:      optionRepo,
		placeholderRepo: placeholderRepo,
	}
}

func (s *cleanupService) Unbind(ctx context.Context, input UnbindInput) (*UnbindResult, error) {
	if input.PlaceholderID == uuid.Nil {
		return nil, errInvalidArgument(fmt.Errorf("placeholder_id is required"))
	}
	if input.PreconditionEtag == "" {
		return nil, errInvalidArgument(fmt.Errorf("precondition_etag is required"))
	}

	var out *UnbindResult
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)

		placeholder, err := s.placeholderRepo.GetByID(dbc, input.PlaceholderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound(fmt.Errorf("placeholder %s not found", input.PlaceholderID))
			}
			return fmt.Errorf("load placeholder: %w", err)
		}

		question, err := s.questionRepo.GetByID(dbc, placeholder.QuestionID)
		if err != nil {
			return fmt.Errorf("load question: %w", err)
		}
		if question.Etag != input.PreconditionEtag {
			return errPreconditionFailed(fmt.Errorf("stale etag for question %s", question.ID), question.Etag)
		}

		if err := s.placeholderRepo.FullDeleteByIDs(dbc, []uuid.UUID{placeholder.ID}); err != nil {
			return fmt.Errorf("delete placeholder: %w", err)
		}
		if err := s.optionRepo.ClearPlaceholderRefs(dbc, []uuid.UUID{placeholder.ID}); err != nil {
			return fmt.Errorf("clear option refs: %w", err)
		}

		remaining, err := s.placeholderRepo.CountByQuestionID(dbc, question.ID)
		if err != nil {
			return fmt.Errorf("count remaining placeholders: %w", err)
		}

		kind := question.AnswerKind
		cleared := false
		if remaining == 0 {
			if err := s.optionRepo.FullDeleteByQuestionIDs(dbc, []uuid.UUID{question.ID}); err != nil {
				return fmt.Errorf("delete options: %w", err)
			}
			kind = domain.AnswerKindNone
			cleared = true
		}

		newEtag := uuid.NewString()
		applied, err := s.questionRepo.UpdateModelCAS(dbc, question.ID, question.Etag, newEtag, kind)
		if err != nil {
			return fmt.Errorf("swap etag: %w", err)
		}
		if !applied {
			return errPreconditionFailed(fmt.Errorf("question %s changed mid-unbind", question.ID), question.Etag)
		}

		out = &UnbindResult{
			QuestionID:   question.ID,
			AnswerKind:   kind,
			ModelCleared: cleared,
			NewEtag:      newEtag,
		}
		s.log.Info("Unbound placeholder",
			"placeholder_id", placeholder.ID,
			"question_id", question.ID,
			"model_cleared", cleared,
		)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return out, nil
}

func (s *cleanupService) Purge(ctx context.Context, documentID uuid.UUID) (*PurgeResult, error) {
	if documentID == uuid.Nil {
		return nil, errInvalidArgument(fmt.Errorf("document_id is required"))
	}

	var out *PurgeResult
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)

		if _, err := s.documentRepo.GetByID(dbc, documentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound(fmt.Errorf("document %s not found", documentID))
			}
			return fmt.Errorf("load document: %w", err)
		}

		placeholders, err := s.placeholderRepo.GetByDocumentID(dbc, documentID)
		if err != nil {
			return fmt.Errorf("load placeholders: %w", err)
		}
		if len(placeholders) == 0 {
			out = &PurgeResult{}
			return nil
		}

		ids := make([]uuid.UUID, len(placeholders))
		questionSet := make(map[uuid.UUID]struct{})
		questionIDs := make([]uuid.UUID, 0, len(placeholders))
		for i, p := range placeholders {
			ids[i] = p.ID
			if _, seen := questionSet[p.QuestionID]; !seen {
				questionSet[p.QuestionID] = struct{}{}
				questionIDs = append(questionIDs, p.QuestionID)
			}
		}

		if err := s.placeholderRepo.FullDeleteByIDs(dbc, ids); err != nil {
			return fmt.Errorf("delete placeholders: %w", err)
		}
		if err := s.optionRepo.ClearPlaceholderRefs(dbc, ids); err != nil {
			return fmt.Errorf("clear option refs: %w", err)
		}

		questions, err := s.questionRepo.GetByIDs(dbc, questionIDs)
		if err != nil {
			return fmt.Errorf("load touched questions: %w", err)
		}

		reset := 0
		for _, question := range questions {
			remaining, err := s.placeholderRepo.CountByQuestionID(dbc, question.ID)
			if err != nil {
				return fmt.Errorf("count remaining placeholders: %w", err)
			}
			kind := question.AnswerKind
			if remaining == 0 {
				if err := s.optionRepo.FullDeleteByQuestionIDs(dbc, []uuid.UUID{question.ID}); err != nil {
					return fmt.Errorf("delete options: %w", err)
				}
				kind = domain.AnswerKindNone
				reset++
			}
			applied, err := s.questionRepo.UpdateModelCAS(dbc, question.ID, question.Etag, uuid.NewString(), kind)
			if err != nil {
				return fmt.Errorf("swap etag: %w", err)
			}
			if !applied {
				return errPreconditionFailed(fmt.Errorf("question %s changed mid-purge", question.ID), question.Etag)
			}
		}

		out = &PurgeResult{
			PlaceholdersRemoved: len(ids),
			QuestionsReset:      reset,
		}
		s.log.Info("Purged document bindings",
			"document_id", documentID,
			"placeholders_removed", len(ids),
			"questions_reset", reset,
		)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return out, nil
}
