package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/draftmint/clausebind-backend/internal/data/repos"
	"github.com/draftmint/clausebind-backend/internal/data/repos/testutil"
	"github.com/draftmint/clausebind-backend/internal/domain"
	"github.com/draftmint/clausebind-backend/internal/platform/apierr"
	"github.com/draftmint/clausebind-backend/internal/platform/dbctx"
	"github.com/draftmint/clausebind-backend/internal/transform"
)

type bindingHarness struct {
	tx           *gorm.DB
	dbc          dbctx.Context
	binding      BindingService
	cleanup      CleanupService
	options      repos.AnswerOptionRepo
	placeholders repos.PlaceholderRepo
	questions    repos.QuestionRepo
}

func newBindingHarness(t *testing.T) *bindingHarness {
	t.Helper()
	conn := testutil.DB(t)
	tx := testutil.Tx(t, conn)
	logg := testutil.Logger(t)

	documentRepo := repos.NewDocumentRepo(tx, logg)
	questionRepo := repos.NewQuestionRepo(tx, logg)
	optionRepo := repos.NewAnswerOptionRepo(tx, logg)
	placeholderRepo := repos.NewPlaceholderRepo(tx, logg)
	receiptRepo := repos.NewBindReceiptRepo(tx, logg)

	return &bindingHarness{
		tx:  tx,
		dbc: dbctx.WithTx(context.Background(), tx),
		binding: NewBindingService(
			tx, logg, documentRepo, questionRepo, optionRepo, placeholderRepo, receiptRepo, nil,
		),
		cleanup: NewCleanupService(
			tx, logg, documentRepo, questionRepo, optionRepo, placeholderRepo,
		),
		options:      optionRepo,
		placeholders: placeholderRepo,
		questions:    questionRepo,
	}
}

func bindInput(docID, questionID uuid.UUID, clausePath string, start, end int, raw, etag, key string) BindInput {
	probe := transform.Probe{
		DocumentID: docID,
		ClausePath: clausePath,
		SpanStart:  start,
		SpanEnd:    end,
		RawText:    raw,
	}
	result, err := transform.Evaluate(raw)
	placeholderKey := ""
	if err == nil {
		placeholderKey = result.PlaceholderKey
	}
	return BindInput{
		QuestionID:       questionID,
		RawText:          raw,
		Receipt:          probe.Receipt(placeholderKey),
		Mode:             BindModeApply,
		IdempotencyKey:   key,
		PreconditionEtag: etag,
	}
}

func apiCode(t *testing.T, err error) string {
	t.Helper()
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected apierr, got %v", err)
	}
	return ae.Code
}

func TestBindFirstCreatesModel(t *testing.T) {
	ctx := context.Background()
	h := newBindingHarness(t)
	doc := testutil.SeedDocument(t, ctx, h.tx, "Employment Agreement")
	question := testutil.SeedQuestion(t, ctx, h.tx, "Who approves leave?")

	res, err := h.binding.Bind(ctx, bindInput(doc.ID, question.ID, "4.2", 100, 128,
		"The HR Manager OR [POSITION]", question.Etag, "bind-1"))
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if !res.Bound || !res.ModelCreated {
		t.Fatalf("expected bound model-creating bind, got %+v", res)
	}
	if res.AnswerKind != domain.AnswerKindEnumSingle {
		t.Fatalf("expected enum_single, got %s", res.AnswerKind)
	}
	if res.NewEtag == question.Etag {
		t.Fatal("etag did not rotate")
	}

	stored, err := h.questions.GetByID(h.dbc, question.ID)
	if err != nil {
		t.Fatalf("load question: %v", err)
	}
	if stored.AnswerKind != domain.AnswerKindEnumSingle || stored.Etag != res.NewEtag {
		t.Fatalf("question not updated: %+v", stored)
	}

	opts, err := h.options.GetByQuestionID(h.dbc, question.ID)
	if err != nil {
		t.Fatalf("load options: %v", err)
	}
	if len(opts) != 2 || opts[0].Value != "HR_MANAGER" || opts[1].Value != "POSITION" {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts[1].PlaceholderKey == nil || *opts[1].PlaceholderKey != "POSITION" {
		t.Fatalf("nested option lost its key: %+v", opts[1])
	}

	placed, err := h.placeholders.GetByQuestionID(h.dbc, question.ID)
	if err != nil || len(placed) != 1 {
		t.Fatalf("expected one placeholder, got %d (%v)", len(placed), err)
	}
	if placed[0].ID != res.PlaceholderID {
		t.Fatal("result placeholder id does not match stored row")
	}
}

func TestBindVerifyModePersistsNothing(t *testing.T) {
	ctx := context.Background()
	h := newBindingHarness(t)
	doc := testutil.SeedDocument(t, ctx, h.tx, "Lease")
	question := testutil.SeedQuestion(t, ctx, h.tx, "Notice period?")

	input := bindInput(doc.ID, question.ID, "7.1", 10, 30, "within [NUMBER] days", question.Etag, "")
	input.Mode = BindModeVerify

	res, err := h.binding.Bind(ctx, input)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Bound {
		t.Fatal("verify mode must not report a persisted bind")
	}
	if res.AnswerKind != domain.AnswerKindNumber {
		t.Fatalf("expected number, got %s", res.AnswerKind)
	}

	count, err := h.placeholders.CountByQuestionID(h.dbc, question.ID)
	if err != nil || count != 0 {
		t.Fatalf("verify leaked state: count=%d err=%v", count, err)
	}
	stored, err := h.questions.GetByID(h.dbc, question.ID)
	if err != nil {
		t.Fatalf("load question: %v", err)
	}
	if stored.AnswerKind != domain.AnswerKindNone || stored.Etag != question.Etag {
		t.Fatalf("verify mutated the question: %+v", stored)
	}
}

func TestBindAgreementThenConflict(t *testing.T) {
	ctx := context.Background()
	h := newBindingHarness(t)
	doc := testutil.SeedDocument(t, ctx, h.tx, "Policy")
	question := testutil.SeedQuestion(t, ctx, h.tx, "Approver?")

	first, err := h.binding.Bind(ctx, bindInput(doc.ID, question.ID, "2.1", 0, 28,
		"The HR Manager OR [POSITION]", question.Etag, "agree-1"))
	if err != nil {
		t.Fatalf("first bind: %v", err)
	}

	// Same canonical value set in a different surface order agrees.
	second, err := h.binding.Bind(ctx, bindInput(doc.ID, question.ID, "9.3", 400, 430,
		"[POSITION] or the hr manager", first.NewEtag, "agree-2"))
	if err != nil {
		t.Fatalf("agreeing bind: %v", err)
	}
	if second.ModelCreated {
		t.Fatal("agreeing bind must not recreate the model")
	}

	opts, err := h.options.GetByQuestionID(h.dbc, question.ID)
	if err != nil || len(opts) != 2 {
		t.Fatalf("agreeing bind changed options: %d (%v)", len(opts), err)
	}

	_, err = h.binding.Bind(ctx, bindInput(doc.ID, question.ID, "3.3", 500, 520,
		"The CFO OR [POSITION]", second.NewEtag, "conflict-1"))
	if code := apiCode(t, err); code != apierr.CodeModelConflict {
		t.Fatalf("expected model_conflict, got %s", code)
	}

	// Kind disagreement on the same question is also a conflict.
	_, err = h.binding.Bind(ctx, bindInput(doc.ID, question.ID, "3.4", 600, 615,
		"within [NUMBER] days", second.NewEtag, "conflict-2"))
	if code := apiCode(t, err); code != apierr.CodeModelConflict {
		t.Fatalf("expected model_conflict on kind change, got %s", code)
	}
}

func TestBindStaleEtagRejected(t *testing.T) {
	ctx := context.Background()
	h := newBindingHarness(t)
	doc := testutil.SeedDocument(t, ctx, h.tx, "NDA")
	question := testutil.SeedQuestion(t, ctx, h.tx, "Term?")

	_, err := h.binding.Bind(ctx, bindInput(doc.ID, question.ID, "1.1", 0, 10,
		"[TERM]", uuid.NewString(), "stale-1"))
	if code := apiCode(t, err); code != apierr.CodePreconditionFailed {
		t.Fatalf("expected precondition_failed, got %s", code)
	}
	count, _ := h.placeholders.CountByQuestionID(h.dbc, question.ID)
	if count != 0 {
		t.Fatal("rejected bind persisted a placeholder")
	}
}

func TestBindUnknownQuestionAndDocument(t *testing.T) {
	ctx := context.Background()
	h := newBindingHarness(t)
	doc := testutil.SeedDocument(t, ctx, h.tx, "MSA")
	question := testutil.SeedQuestion(t, ctx, h.tx, "Venue?")

	_, err := h.binding.Bind(ctx, bindInput(doc.ID, uuid.New(), "1.1", 0, 7,
		"[VENUE]", question.Etag, "nf-1"))
	if code := apiCode(t, err); code != apierr.CodeNotFound {
		t.Fatalf("expected not_found for question, got %s", code)
	}

	_, err = h.binding.Bind(ctx, bindInput(uuid.New(), question.ID, "1.1", 0, 7,
		"[VENUE]", question.Etag, "nf-2"))
	if code := apiCode(t, err); code != apierr.CodeNotFound {
		t.Fatalf("expected not_found for document, got %s", code)
	}
}

func TestBindTamperedReceiptRejected(t *testing.T) {
	ctx := context.Background()
	h := newBindingHarness(t)
	doc := testutil.SeedDocument(t, ctx, h.tx, "SOW")
	question := testutil.SeedQuestion(t, ctx, h.tx, "Rate?")

	input := bindInput(doc.ID, question.ID, "5.5", 40, 55, "[HOURLY_RATE]", question.Etag, "tamper-1")
	input.RawText = "[DAILY_RATE]"

	_, err := h.binding.Bind(ctx, input)
	if code := apiCode(t, err); code != apierr.CodeProbeMismatch {
		t.Fatalf("expected probe_mismatch, got %s", code)
	}
}

func TestBindRewrittenReceiptKeyRejected(t *testing.T) {
	ctx := context.Background()
	h := newBindingHarness(t)
	doc := testutil.SeedDocument(t, ctx, h.tx, "Handbook")
	question := testutil.SeedQuestion(t, ctx, h.tx, "Approver?")

	// The key is outside the hashed context, so the hash still verifies;
	// the bind must reject it by recomputation instead.
	input := bindInput(doc.ID, question.ID, "4.2", 100, 128,
		"The HR Manager OR [POSITION]", question.Etag, "rewrite-1")
	input.Receipt.PlaceholderKey = "SALARY"

	_, err := h.binding.Bind(ctx, input)
	if code := apiCode(t, err); code != apierr.CodeProbeMismatch {
		t.Fatalf("expected probe_mismatch, got %s", code)
	}
	count, _ := h.placeholders.CountByQuestionID(h.dbc, question.ID)
	if count != 0 {
		t.Fatal("rewritten receipt persisted a placeholder")
	}

	// Dropping the key entirely must not suppress linkage either.
	cleared := bindInput(doc.ID, question.ID, "4.2", 100, 128,
		"The HR Manager OR [POSITION]", question.Etag, "rewrite-2")
	cleared.Receipt.PlaceholderKey = ""
	_, err = h.binding.Bind(ctx, cleared)
	if code := apiCode(t, err); code != apierr.CodeProbeMismatch {
		t.Fatalf("expected probe_mismatch for cleared key, got %s", code)
	}
}

func TestBindUnrecognizedPattern(t *testing.T) {
	ctx := context.Background()
	h := newBindingHarness(t)
	doc := testutil.SeedDocument(t, ctx, h.tx, "Letter")
	question := testutil.SeedQuestion(t, ctx, h.tx, "Broken?")

	_, err := h.binding.Bind(ctx, bindInput(doc.ID, question.ID, "1.1", 0, 12,
		"Red OR OR Blue", question.Etag, "bad-1"))
	if code := apiCode(t, err); code != apierr.CodeUnrecognizedPattern {
		t.Fatalf("expected unrecognized_pattern, got %s", code)
	}
}

func TestBindIdempotentReplay(t *testing.T) {
	ctx := context.Background()
	h := newBindingHarness(t)
	doc := testutil.SeedDocument(t, ctx, h.tx, "Offer")
	question := testutil.SeedQuestion(t, ctx, h.tx, "Salary?")

	input := bindInput(doc.ID, question.ID, "3.1", 20, 34, "[ANNUAL_SALARY]", question.Etag, "idem-1")

	first, err := h.binding.Bind(ctx, input)
	if err != nil {
		t.Fatalf("first bind: %v", err)
	}
	replayed, err := h.binding.Bind(ctx, input)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if replayed.PlaceholderID != first.PlaceholderID || replayed.NewEtag != first.NewEtag {
		t.Fatalf("replay diverged: %+v vs %+v", replayed, first)
	}
	count, _ := h.placeholders.CountByQuestionID(h.dbc, question.ID)
	if count != 1 {
		t.Fatalf("replay created a second placeholder: count=%d", count)
	}

	// Same key with a different payload is a misuse, not a replay.
	other := bindInput(doc.ID, question.ID, "3.2", 60, 74, "[SIGNING_BONUS]", first.NewEtag, "idem-1")
	_, err = h.binding.Bind(ctx, other)
	if code := apiCode(t, err); code != apierr.CodeIdempotencyConflict {
		t.Fatalf("expected idempotency_conflict, got %s", code)
	}
}

func TestLinkageChildThenParent(t *testing.T) {
	ctx := context.Background()
	h := newBindingHarness(t)
	doc := testutil.SeedDocument(t, ctx, h.tx, "Handbook")
	parentQ := testutil.SeedQuestion(t, ctx, h.tx, "Approver?")
	childQ := testutil.SeedQuestion(t, ctx, h.tx, "Position?")

	child, err := h.binding.Bind(ctx, bindInput(doc.ID, childQ.ID, "4.2", 118, 128,
		"[POSITION]", childQ.Etag, "link-c"))
	if err != nil {
		t.Fatalf("child bind: %v", err)
	}
	if _, err := h.binding.Bind(ctx, bindInput(doc.ID, parentQ.ID, "4.2", 100, 128,
		"The HR Manager OR [POSITION]", parentQ.Etag, "link-p")); err != nil {
		t.Fatalf("parent bind: %v", err)
	}

	assertOptionLinked(t, h, parentQ.ID, "POSITION", child.PlaceholderID)
}

func TestLinkageParentThenChild(t *testing.T) {
	ctx := context.Background()
	h := newBindingHarness(t)
	doc := testutil.SeedDocument(t, ctx, h.tx, "Handbook")
	parentQ := testutil.SeedQuestion(t, ctx, h.tx, "Approver?")
	childQ := testutil.SeedQuestion(t, ctx, h.tx, "Position?")

	if _, err := h.binding.Bind(ctx, bindInput(doc.ID, parentQ.ID, "4.2", 100, 128,
		"The HR Manager OR [POSITION]", parentQ.Etag, "link-p")); err != nil {
		t.Fatalf("parent bind: %v", err)
	}
	child, err := h.binding.Bind(ctx, bindInput(doc.ID, childQ.ID, "4.2.1", 118, 128,
		"[POSITION]", childQ.Etag, "link-c"))
	if err != nil {
		t.Fatalf("child bind: %v", err)
	}

	assertOptionLinked(t, h, parentQ.ID, "POSITION", child.PlaceholderID)
}

func TestLinkageChildLinksAllEnclosingParents(t *testing.T) {
	ctx := context.Background()
	h := newBindingHarness(t)
	doc := testutil.SeedDocument(t, ctx, h.tx, "Handbook")
	firstQ := testutil.SeedQuestion(t, ctx, h.tx, "First approver?")
	secondQ := testutil.SeedQuestion(t, ctx, h.tx, "Second approver?")
	childQ := testutil.SeedQuestion(t, ctx, h.tx, "Position?")

	// Overlapping parent spans, neither containing the other; both enclose
	// the child and both carry an unresolved [POSITION] option.
	if _, err := h.binding.Bind(ctx, bindInput(doc.ID, firstQ.ID, "4.2", 0, 150,
		"The HR Manager OR [POSITION]", firstQ.Etag, "multi-first")); err != nil {
		t.Fatalf("first parent bind: %v", err)
	}
	if _, err := h.binding.Bind(ctx, bindInput(doc.ID, secondQ.ID, "4.2", 100, 300,
		"The CEO OR [POSITION]", secondQ.Etag, "multi-second")); err != nil {
		t.Fatalf("second parent bind: %v", err)
	}

	child, err := h.binding.Bind(ctx, bindInput(doc.ID, childQ.ID, "4.2", 118, 128,
		"[POSITION]", childQ.Etag, "multi-child"))
	if err != nil {
		t.Fatalf("child bind: %v", err)
	}

	assertOptionLinked(t, h, firstQ.ID, "POSITION", child.PlaceholderID)
	assertOptionLinked(t, h, secondQ.ID, "POSITION", child.PlaceholderID)
}

func TestLinkageIgnoresForeignClause(t *testing.T) {
	ctx := context.Background()
	h := newBindingHarness(t)
	doc := testutil.SeedDocument(t, ctx, h.tx, "Handbook")
	parentQ := testutil.SeedQuestion(t, ctx, h.tx, "Approver?")
	childQ := testutil.SeedQuestion(t, ctx, h.tx, "Position?")

	if _, err := h.binding.Bind(ctx, bindInput(doc.ID, parentQ.ID, "4.2", 100, 128,
		"The HR Manager OR [POSITION]", parentQ.Etag, "link-p")); err != nil {
		t.Fatalf("parent bind: %v", err)
	}
	// Overlapping span but an unrelated clause must not link.
	if _, err := h.binding.Bind(ctx, bindInput(doc.ID, childQ.ID, "9.9", 118, 128,
		"[POSITION]", childQ.Etag, "link-c")); err != nil {
		t.Fatalf("child bind: %v", err)
	}

	unresolved, err := h.options.GetUnresolvedByQuestionID(h.dbc, parentQ.ID)
	if err != nil {
		t.Fatalf("load unresolved: %v", err)
	}
	if len(unresolved) != 1 {
		t.Fatalf("foreign-clause child was linked: %+v", unresolved)
	}
}

func assertOptionLinked(t *testing.T, h *bindingHarness, questionID uuid.UUID, value string, placeholderID uuid.UUID) {
	t.Helper()
	opts, err := h.options.GetByQuestionID(h.dbc, questionID)
	if err != nil {
		t.Fatalf("load options: %v", err)
	}
	for _, opt := range opts {
		if opt.Value != value {
			continue
		}
		if opt.PlaceholderID == nil || *opt.PlaceholderID != placeholderID {
			t.Fatalf("option %s not linked to %s: %+v", value, placeholderID, opt)
		}
		return
	}
	t.Fatalf("option %s not found", value)
}
