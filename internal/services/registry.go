package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/draftmint/clausebind-backend/internal/data/repos"
	"github.com/draftmint/clausebind-backend/internal/domain"
	"github.com/draftmint/clausebind-backend/internal/platform/dbctx"
	"github.com/draftmint/clausebind-backend/internal/platform/logger"
)

// RegistryService anchors the upstream entities the binding engine works
// against. Documents and questions arrive from whatever authoring system
// sits in front of this service; here they are rows with fresh etags.
type RegistryService interface {
	RegisterDocument(ctx context.Context, input RegisterDocumentInput) (*domain.Document, error)
	RegisterQuestion(ctx context.Context, input RegisterQuestionInput) (*domain.Question, error)
}

type RegisterDocumentInput struct {
	ExternalRef string `json:"external_ref"`
	Title       string `json:"title"`
}

type RegisterQuestionInput struct {
	Prompt string `json:"prompt"`
}

type registryService struct {
	db           *gorm.DB
	log          *logger.Logger
	documentRepo repos.DocumentRepo
	questionRepo repos.QuestionRepo
}

func NewRegistryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	documentRepo repos.DocumentRepo,
	questionRepo repos.QuestionRepo,
) RegistryService {
	return &registryService{
		db:           db,
		log:          baseLog.With("service", "RegistryService"),
		documentRepo: documentRepo,
		questionRepo: questionRepo,
	}
}

func (s *registryService) RegisterDocument(ctx context.Context, input RegisterDocumentInput) (*domain.Document, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, errInvalidArgument(fmt.Errorf("title is required"))
	}

	doc := &domain.Document{
		ID:          uuid.New(),
		ExternalRef: strings.TrimSpace(input.ExternalRef),
		Title:       strings.TrimSpace(input.Title),
		Etag:        uuid.NewString(),
	}
	if _, err := s.documentRepo.Create(dbctx.New(ctx), []*domain.Document{doc}); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	s.log.Info("Registered document", "document_id", doc.ID, "external_ref", doc.ExternalRef)
	return doc, nil
}

func (s *registryService) RegisterQuestion(ctx context.Context, input RegisterQuestionInput) (*domain.Question, error) {
	if strings.TrimSpace(input.Prompt) == "" {
		return nil, errInvalidArgument(fmt.Errorf("prompt is required"))
	}

	question := &domain.Question{
		ID:     uuid.New(),
		Prompt: strings.TrimSpace(input.Prompt),
		Etag:   uuid.NewString(),
	}
	if _, err := s.questionRepo.Create(dbctx.New(ctx), []*domain.Question{question}); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	s.log.Info("Registered question", "question_id", question.ID)
	return question, nil
}
