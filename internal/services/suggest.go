package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/draftmint/clausebind-backend/internal/domain"
	"github.com/draftmint/clausebind-backend/internal/platform/logger"
	"github.com/draftmint/clausebind-backend/internal/transform"
)

// SuggestService is the stateless half of the two-phase protocol: it
// classifies a fragment and hands back a receipt. Nothing is persisted and
// any number of calls may run in parallel.
type SuggestService interface {
	Suggest(ctx context.Context, input SuggestInput) (*Suggestion, error)
	SuggestBatch(ctx context.Context, inputs []SuggestInput) ([]BatchSuggestion, error)
	Catalog() []RuleView
}

type SuggestInput struct {
	DocumentID uuid.UUID `json:"document_id"`
	ClausePath string    `json:"clause_path"`
	SpanStart  int       `json:"span_start"`
	SpanEnd    int       `json:"span_end"`
	RawText    string    `json:"raw_text"`
	DocEtag    string    `json:"doc_etag,omitempty"`
}

type Suggestion struct {
	TransformID string                 `json:"transform_id"`
	AnswerKind  domain.AnswerKind      `json:"answer_kind"`
	Options     []transform.Option     `json:"options,omitempty"`
	Receipt     transform.ProbeReceipt `json:"probe_receipt"`
}

// BatchSuggestion carries one batch item's outcome; a failed item does not
// fail its siblings.
type BatchSuggestion struct {
	Index      int         `json:"index"`
	Suggestion *Suggestion `json:"suggestion,omitempty"`
	Error      string      `json:"error,omitempty"`
}

type RuleView struct {
	TransformID string            `json:"transform_id"`
	AnswerKind  domain.AnswerKind `json:"answer_kind"`
	Description string            `json:"description"`
}

type suggestService struct {
	log              *logger.Logger
	batchConcurrency int
}

func NewSuggestService(baseLog *logger.Logger, batchConcurrency int) SuggestService {
	if batchConcurrency <= 0 {
		batchConcurrency = 8
	}
	return &suggestService{
		log:              baseLog.With("service", "SuggestService"),
		batchConcurrency: batchConcurrency,
	}
}

func (s *suggestService) Suggest(ctx context.Context, input SuggestInput) (*Suggestion, error) {
	if input.DocumentID == uuid.Nil {
		return nil, errInvalidArgument(fmt.Errorf("document_id is required"))
	}
	if input.SpanEnd < input.SpanStart {
		return nil, errInvalidArgument(fmt.Errorf("span end %d before start %d", input.SpanEnd, input.SpanStart))
	}

	result, err := transform.Evaluate(input.RawText)
	if err != nil {
		if errors.Is(err, transform.ErrUnrecognizedPattern) {
			return nil, errUnrecognizedPattern(fmt.Errorf("classify %q: %w", input.RawText, err))
		}
		return nil, err
	}

	probe := transform.Probe{
		DocumentID: input.DocumentID,
		ClausePath: input.ClausePath,
		SpanStart:  input.SpanStart,
		SpanEnd:    input.SpanEnd,
		RawText:    input.RawText,
		DocEtag:    input.DocEtag,
	}
	s.log.Debug("Suggest",
		"document_id", input.DocumentID,
		"clause_path", input.ClausePath,
		"transform_id", result.TransformID,
		"answer_kind", result.AnswerKind,
	)
	return &Suggestion{
		TransformID: result.TransformID,
		AnswerKind:  result.AnswerKind,
		Options:     result.Options,
		Receipt:     probe.Receipt(result.PlaceholderKey),
	}, nil
}

func (s *suggestService) SuggestBatch(ctx context.Context, inputs []SuggestInput) ([]BatchSuggestion, error) {
	out := make([]BatchSuggestion, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, input := range inputs {
		g.Go(func() error {
			item := BatchSuggestion{Index: i}
			suggestion, err := s.Suggest(gctx, input)
			if err != nil {
				item.Error = err.Error()
			} else {
				item.Suggestion = suggestion
			}
			out[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *suggestService) Catalog() []RuleView {
	rulesList := transform.Catalog()
	views := make([]RuleView, len(rulesList))
	for i, r := range rulesList {
		views[i] = RuleView{TransformID: r.ID, AnswerKind: r.Kind, Description: r.Description}
	}
	return views
}
