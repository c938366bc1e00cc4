package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/draftmint/clausebind-backend/internal/domain"
)

func SeedDocument(tb testing.TB, ctx context.Context, tx *gorm.DB, title string) *domain.Document {
	tb.Helper()
	d := &domain.Document{
		ID:    uuid.New(),
		Title: title,
		Etag:  uuid.NewString(),
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed document: %v", err)
	}
	return d
}

func SeedQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, prompt string) *domain.Question {
	tb.Helper()
	q := &domain.Question{
		ID:     uuid.New(),
		Prompt: prompt,
		Etag:   uuid.NewString(),
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return q
}

func SeedPlaceholder(tb testing.TB, ctx context.Context, tx *gorm.DB, docID, questionID uuid.UUID, clausePath string, start, end int, key string) *domain.Placeholder {
	tb.Helper()
	p := &domain.Placeholder{
		ID:             uuid.New(),
		DocumentID:     docID,
		QuestionID:     questionID,
		ClausePath:     clausePath,
		SpanStart:      start,
		SpanEnd:        end,
		TransformID:    "lone_placeholder",
		PlaceholderKey: key,
		ProbeHash:      "seeded",
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed placeholder: %v", err)
	}
	return p
}
