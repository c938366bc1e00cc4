package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	httpH "github.com/draftmint/clausebind-backend/internal/http/handlers"
	"github.com/draftmint/clausebind-backend/internal/platform/logger"
	"github.com/draftmint/clausebind-backend/internal/services"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logg, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	suggest := services.NewSuggestService(logg, 2)
	return NewRouter(RouterConfig{
		ServiceName:      "clausebind-test",
		Log:              logg,
		TransformHandler: httpH.NewTransformHandler(suggest, logg),
	})
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSuggestEndpoint(t *testing.T) {
	r := testRouter(t)

	w := postJSON(t, r, "/api/transforms/suggest", map[string]any{
		"document_id": uuid.NewString(),
		"clause_path": "4.2",
		"span_start":  100,
		"span_end":    128,
		"raw_text":    "The HR Manager OR [POSITION]",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var payload struct {
		TransformID string `json:"transform_id"`
		AnswerKind  string `json:"answer_kind"`
		Receipt     struct {
			ProbeHash string `json:"probe_hash"`
		} `json:"probe_receipt"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.TransformID != "literal_or_placeholder" || payload.AnswerKind != "enum_single" {
		t.Fatalf("unexpected classification: %+v", payload)
	}
	if payload.Receipt.ProbeHash == "" {
		t.Fatal("missing probe hash")
	}
}

func TestSuggestEndpointRejectsMalformedText(t *testing.T) {
	r := testRouter(t)

	w := postJSON(t, r, "/api/transforms/suggest", map[string]any{
		"document_id": uuid.NewString(),
		"clause_path": "1.1",
		"span_start":  0,
		"span_end":    14,
		"raw_text":    "Red OR OR Blue",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error.Code != "unrecognized_pattern" {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
}

func TestSuggestBatchEndpoint(t *testing.T) {
	r := testRouter(t)

	w := postJSON(t, r, "/api/transforms/suggest-batch", map[string]any{
		"items": []map[string]any{
			{
				"document_id": uuid.NewString(),
				"clause_path": "1.1",
				"span_start":  0,
				"span_end":    10,
				"raw_text":    "[POSITION]",
			},
			{
				"document_id": uuid.NewString(),
				"clause_path": "1.2",
				"span_start":  0,
				"span_end":    14,
				"raw_text":    "Red OR OR Blue",
			},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var payload struct {
		Results []struct {
			Index      int             `json:"index"`
			Suggestion json.RawMessage `json:"suggestion"`
			Error      string          `json:"error"`
		} `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(payload.Results))
	}
	if payload.Results[0].Error != "" || len(payload.Results[0].Suggestion) == 0 {
		t.Fatalf("first item should classify: %+v", payload.Results[0])
	}
	if payload.Results[1].Error == "" {
		t.Fatal("second item should carry its own error")
	}
}

func TestCatalogEndpoint(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/transforms", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var payload struct {
		Transforms []struct {
			TransformID string `json:"transform_id"`
		} `json:"transforms"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Transforms) != 7 || payload.Transforms[0].TransformID != "literal_or_placeholder" {
		t.Fatalf("unexpected catalog: %+v", payload.Transforms)
	}
}
