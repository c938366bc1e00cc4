package services

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	rediscli "github.com/draftmint/clausebind-backend/internal/clients/redis"
	"github.com/draftmint/clausebind-backend/internal/data/repos"
	"github.com/draftmint/clausebind-backend/internal/domain"
	"github.com/draftmint/clausebind-backend/internal/platform/dbctx"
	"github.com/draftmint/clausebind-backend/internal/platform/logger"
	"github.com/draftmint/clausebind-backend/internal/transform"
)

const (
	BindModeApply  = "apply"
	BindModeVerify = "verify"
)

// BindingService is the consistency engine: it decides whether a classified
// fragment may be applied to a question, sets the answer model on the first
// bind, verifies exact agreement on every later bind, and rejects on
// mismatch. All of it runs in one transaction per call.
type BindingService interface {
	Bind(ctx context.Context, input BindInput) (*BindResult, error)
}

type BindInput struct {
	QuestionID       uuid.UUID              `json:"question_id"`
	TransformID      string                 `json:"transform_id"`
	RawText          string                 `json:"raw_text"`
	Receipt          transform.ProbeReceipt `json:"probe_receipt"`
	Mode             string                 `json:"mode"`
	IdempotencyKey   string                 `json:"idempotency_key"`
	PreconditionEtag string                 `json:"precondition_etag"`
}

type BindResult struct {
	Bound         bool               `json:"bound"`
	ModelCreated  bool               `json:"model_created"`
	PlaceholderID uuid.UUID          `json:"placeholder_id"`
	QuestionID    uuid.UUID          `json:"question_id"`
	AnswerKind    domain.AnswerKind  `json:"answer_kind"`
	Options       []transform.Option `json:"options,omitempty"`
	NewEtag       string             `json:"new_etag"`
}

// errVerifyOnly aborts the transaction after a verify-mode dry run; the
// rollback is the point, not a failure.
var errVerifyOnly = errors.New("verify-only rollback")

type bindingService struct {
	db              *gorm.DB
	log             *logger.Logger
	documentRepo    repos.DocumentRepo
	questionRepo    repos.QuestionRepo
	optionRepo      repos.AnswerOptionRepo
	placeholderRepo repos.PlaceholderRepo
	receiptRepo     repos.BindReceiptRepo
	idemCache       rediscli.IdempotencyCache
}

func NewBindingService(
	db *gorm.DB,
	baseLog *logger.Logger,
	documentRepo repos.DocumentRepo,
	questionRepo repos.QuestionRepo,
	optionRepo repos.AnswerOptionRepo,
	placeholderRepo repos.PlaceholderRepo,
	receiptRepo repos.BindReceiptRepo,
	idemCache rediscli.IdempotencyCache,
) BindingService {
	return &bindingService{
		db:              db,
		log:             baseLog.With("service", "BindingService"),
		documentRepo:    documentRepo,
		questionRepo:    questionRepo,
		optionRepo:      optionRepo,
		placeholderRepo: placeholderRepo,
		receiptRepo:     receiptRepo,
		idemCache:       idemCache,
	}
}

func (s *bindingService) Bind(ctx context.Context, input BindInput) (*BindResult, error) {
	if input.Mode == "" {
		input.Mode = BindModeApply
	}
	if input.Mode != BindModeApply && input.Mode != BindModeVerify {
		return nil, errInvalidArgument(fmt.Errorf("unknown bind mode %q", input.Mode))
	}
	if input.QuestionID == uuid.Nil {
		return nil, errInvalidArgument(fmt.Errorf("question_id is required"))
	}
	if input.Mode == BindModeApply && input.IdempotencyKey == "" {
		return nil, errInvalidArgument(fmt.Errorf("idempotency_key is required"))
	}
	if input.PreconditionEtag == "" {
		return nil, errInvalidArgument(fmt.Errorf("precondition_etag is required"))
	}

	// Re-run the deterministic transform; the suggestion is never trusted.
	result, err := transform.Evaluate(input.RawText)
	if err != nil {
		if errors.Is(err, transform.ErrUnrecognizedPattern) {
			return nil, errUnrecognizedPattern(fmt.Errorf("classify %q: %w", input.RawText, err))
		}
		return nil, err
	}
	if input.TransformID != "" && input.TransformID != result.TransformID {
		return nil, errProbeMismatch(fmt.Errorf("transform %q does not reproduce for this text (got %q)", input.TransformID, result.TransformID))
	}
	if !transform.VerifyReceipt(input.Receipt, input.RawText) {
		return nil, errProbeMismatch(fmt.Errorf("probe hash does not match receipt context"))
	}
	// The key is not part of the hashed context, so a rewritten receipt
	// could otherwise steer nested linkage at a different parent option.
	if input.Receipt.PlaceholderKey != result.PlaceholderKey {
		return nil, errProbeMismatch(fmt.Errorf("receipt placeholder key does not reproduce for this text"))
	}

	requestHash := bindRequestHash(input)

	// Fast path for replays. The ledger row inside the transaction stays
	// authoritative; a cache failure only costs the round trip.
	if input.Mode == BindModeApply && s.idemCache != nil {
		cached, cacheErr := s.idemCache.Get(ctx, input.IdempotencyKey)
		if cacheErr != nil {
			s.log.Warn("Idempotency cache read failed", "error", cacheErr)
		} else if cached != nil {
			return s.replay(input.IdempotencyKey, cached.RequestHash, requestHash, cached.Response)
		}
	}

	var out *BindResult
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)

		if input.Mode == BindModeApply {
			ledger, err := s.receiptRepo.GetByKey(dbc, input.IdempotencyKey)
			if err != nil {
				return fmt.Errorf("ledger lookup: %w", err)
			}
			if ledger != nil {
				replayed, err := s.replay(input.IdempotencyKey, ledger.RequestHash, requestHash, json.RawMessage(ledger.Response))
				if err != nil {
					return err
				}
				out = replayed
				return nil
			}
		}

		applied, err := s.bindInTx(dbc, input, result, requestHash)
		if err != nil {
			return err
		}
		out = applied

		if input.Mode == BindModeVerify {
			return errVerifyOnly
		}
		return nil
	})

	if errors.Is(txErr, errVerifyOnly) {
		out.Bound = false
		return out, nil
	}
	if txErr != nil {
		return nil, txErr
	}

	if s.idemCache != nil && out.Bound {
		raw, err := json.Marshal(out)
		if err == nil {
			if err := s.idemCache.Put(ctx, input.IdempotencyKey, rediscli.CachedBind{RequestHash: requestHash, Response: raw}); err != nil {
				s.log.Warn("Idempotency cache write failed", "error", err)
			}
		}
	}
	return out, nil
}

// bindInTx runs the full consistency check and, unless rolled back, the
// mutation. Caller owns the transaction.
func (s *bindingService) bindInTx(dbc dbctx.Context, input BindInput, result *transform.Result, requestHash string) (*BindResult, error) {
	if _, err := s.documentRepo.GetByID(dbc, input.Receipt.DocumentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound(fmt.Errorf("document %s not found", input.Receipt.DocumentID))
		}
		return nil, fmt.Errorf("load document: %w", err)
	}

	question, err := s.questionRepo.GetByID(dbc, input.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound(fmt.Errorf("question %s not found", input.QuestionID))
		}
		return nil, fmt.Errorf("load question: %w", err)
	}
	if question.Etag != input.PreconditionEtag {
		return nil, errPreconditionFailed(fmt.Errorf("stale etag for question %s", question.ID), question.Etag)
	}

	modelCreated := false
	if question.AnswerKind == domain.AnswerKindNone {
		modelCreated = true
	} else {
		stored, err := s.optionRepo.GetByQuestionID(dbc, question.ID)
		if err != nil {
			return nil, fmt.Errorf("load options: %w", err)
		}
		if conflict := modelDiff(question.AnswerKind, stored, result); conflict != nil {
			return nil, conflict
		}
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	placeholder := &domain.Placeholder{
		ID:             uuid.New(),
		DocumentID:     input.Receipt.DocumentID,
		QuestionID:     question.ID,
		ClausePath:     input.Receipt.ClausePath,
		SpanStart:      input.Receipt.SpanStart,
		SpanEnd:        input.Receipt.SpanEnd,
		TransformID:    result.TransformID,
		PlaceholderKey: result.PlaceholderKey,
		ProbeHash:      input.Receipt.ProbeHash,
		Payload:        datatypes.JSON(payload),
	}
	if _, err := s.placeholderRepo.Create(dbc, []*domain.Placeholder{placeholder}); err != nil {
		return nil, fmt.Errorf("create placeholder: %w", err)
	}

	if modelCreated && result.AnswerKind == domain.AnswerKindEnumSingle {
		rows := make([]*domain.AnswerOption, len(result.Options))
		for i, opt := range result.Options {
			row := &domain.AnswerOption{
				ID:         uuid.New(),
				QuestionID: question.ID,
				Value:      opt.Value,
				Label:      opt.Label,
				Position:   i,
			}
			if opt.PlaceholderKey != "" {
				key := opt.PlaceholderKey
				row.PlaceholderKey = &key
			}
			rows[i] = row
		}
		if _, err := s.optionRepo.Create(dbc, rows); err != nil {
			return nil, fmt.Errorf("create options: %w", err)
		}
	}

	// Serialize against concurrent binds on the same question: the etag
	// swap succeeds for exactly one writer per token.
	newEtag := uuid.NewString()
	applied, err := s.questionRepo.UpdateModelCAS(dbc, question.ID, question.Etag, newEtag, result.AnswerKind)
	if err != nil {
		return nil, fmt.Errorf("swap etag: %w", err)
	}
	if !applied {
		return nil, errPreconditionFailed(fmt.Errorf("question %s changed mid-bind", question.ID), question.Etag)
	}

	if err := s.resolveLinkage(dbc, placeholder); err != nil {
		return nil, err
	}

	res := &BindResult{
		Bound:         true,
		ModelCreated:  modelCreated,
		PlaceholderID: placeholder.ID,
		QuestionID:    question.ID,
		AnswerKind:    result.AnswerKind,
		Options:       result.Options,
		NewEtag:       newEtag,
	}

	if input.Mode == BindModeApply {
		raw, err := json.Marshal(res)
		if err != nil {
			return nil, fmt.Errorf("marshal bind result: %w", err)
		}
		record := &domain.BindReceiptRecord{
			ID:          uuid.New(),
			Key:         input.IdempotencyKey,
			QuestionID:  question.ID,
			RequestHash: requestHash,
			Response:    datatypes.JSON(raw),
		}
		if _, err := s.receiptRepo.Create(dbc, record); err != nil {
			return nil, fmt.Errorf("write idempotency ledger: %w", err)
		}
	}

	s.log.Info("Bind applied",
		"question_id", question.ID,
		"placeholder_id", placeholder.ID,
		"answer_kind", result.AnswerKind,
		"model_created", modelCreated,
		"mode", input.Mode,
	)
	return res, nil
}

func (s *bindingService) replay(key, storedHash, requestHash string, response json.RawMessage) (*BindResult, error) {
	if storedHash != requestHash {
		return nil, errIdempotencyConflict(fmt.Errorf("idempotency key %q was used with a different payload", key))
	}
	var res BindResult
	if err := json.Unmarshal(response, &res); err != nil {
		return nil, fmt.Errorf("unmarshal replayed bind result: %w", err)
	}
	s.log.Info("Bind replayed", "idempotency_key", key, "placeholder_id", res.PlaceholderID)
	return &res, nil
}

// modelDiff compares the stored model against a freshly computed transform.
// Only the answer kind and the canonical value set participate; labels and
// child references never conflict on their own. Option order is not
// compared: persisted order is already pinned by first-seen insertion.
func modelDiff(storedKind domain.AnswerKind, stored []*domain.AnswerOption, result *transform.Result) error {
	meta := map[string]any{
		"answer_kind": storedKind,
		"options":     optionValues(stored),
	}
	if storedKind != result.AnswerKind {
		return errModelConflict(
			fmt.Errorf("answer kind %s disagrees with existing model %s", result.AnswerKind, storedKind),
			meta,
		)
	}
	storedSet := make(map[string]struct{}, len(stored))
	for _, opt := range stored {
		storedSet[opt.Value] = struct{}{}
	}
	proposedSet := make(map[string]struct{}, len(result.Options))
	for _, opt := range result.Options {
		proposedSet[opt.Value] = struct{}{}
	}
	if len(storedSet) != len(proposedSet) {
		return errModelConflict(fmt.Errorf("option sets differ in size"), meta)
	}
	for value := range proposedSet {
		if _, ok := storedSet[value]; !ok {
			return errModelConflict(fmt.Errorf("option %s is not part of the existing model", value), meta)
		}
	}
	return nil
}

func optionValues(options []*domain.AnswerOption) []string {
	values := make([]string, len(options))
	for i, opt := range options {
		values[i] = opt.Value
	}
	return values
}

// bindRequestHash fingerprints everything that makes a bind request "the
// same request" for idempotency purposes.
func bindRequestHash(input BindInput) string {
	h := sha256.New()
	writeField := func(field string) {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(field)))
		h.Write(n[:])
		h.Write([]byte(field))
	}
	writeField("bind.v1")
	writeField(input.QuestionID.String())
	writeField(input.TransformID)
	writeField(input.RawText)
	writeField(input.Receipt.ProbeHash)
	writeField(input.PreconditionEtag)
	writeField(input.Mode)
	return hex.EncodeToString(h.Sum(nil))
}
