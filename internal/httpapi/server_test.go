package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"moderd/internal/classifier"
	"moderd/pkg/types"
)

type mockService struct {
	result      types.Classification
	batchResult types.BatchClassification
	detectors   []types.Detector
	health      types.HealthResponse
	ready       bool
	classifyErr error
	batchErr    error
	gotText     string
	gotTexts    []string
}

func (m *mockService) Classify(ctx context.Context, text string) (types.Classification, error) {
	m.gotText = text
	if m.classifyErr != nil {
		return types.Classification{}, m.classifyErr
	}
	return m.result, nil
}

func (m *mockService) ClassifyBatch(ctx context.Context, texts []string) (types.BatchClassification, error) {
	m.gotTexts = append([]string(nil), texts...)
	if m.batchErr != nil {
		return types.BatchClassification{}, m.batchErr
	}
	return m.batchResult, nil
}

func (m *mockService) Detectors() []types.Detector  { return m.detectors }
func (m *mockService) Health() types.HealthResponse { return m.health }
func (m *mockService) Ready() bool                  { return m.ready }

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func keepResult() types.Classification {
	return types.Classification{
		Toxicity:       types.ToxicityResult{Label: types.LabelNonToxic, ScoreToxic: 0.02, ScoreNonToxic: 0.98, Confidence: 0.98},
		Spam:           types.SpamResult{Label: types.LabelNotSpam, ScoreSpam: 0.05, ScoreNotSpam: 0.95, Confidence: 0.95},
		Recommendation: types.RecommendationKeep,
	}
}

func TestClassifyHandler(t *testing.T) {
	svc := &mockService{result: keepResult()}
	r := NewMux(svc)
	w := postJSON(t, r, "/classify", `{"text":"  buen disco  "}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if svc.gotText != "buen disco" {
		t.Fatalf("text not trimmed: %q", svc.gotText)
	}
	var body types.Classification
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Recommendation != types.RecommendationKeep || body.ShouldBeRemoved {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestClassifyWrongContentType(t *testing.T) {
	r := NewMux(&mockService{})
	req := httptest.NewRequest(http.MethodPost, "/classify", bytes.NewBufferString(`{"text":"x"}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestClassifyBadJSON(t *testing.T) {
	r := NewMux(&mockService{})
	w := postJSON(t, r, "/classify", "not-json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestClassifyEmptyText(t *testing.T) {
	r := NewMux(&mockService{})
	for _, body := range []string{`{"text":""}`, `{"text":"   "}`, `{}`} {
		w := postJSON(t, r, "/classify", body)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("body=%s status=%d", body, w.Code)
		}
		var er types.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
			t.Fatalf("json: %v", err)
		}
		if er.ErrorCode != "EMPTY_TEXT" {
			t.Fatalf("error_code=%s", er.ErrorCode)
		}
	}
}

func TestClassifyTextTooLong(t *testing.T) {
	SetMaxTextChars(10)
	defer SetMaxTextChars(5000)
	r := NewMux(&mockService{})
	w := postJSON(t, r, "/classify", `{"text":"una reseña demasiado larga"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "TEXT_TOO_LONG") {
		t.Fatalf("body=%s", w.Body.String())
	}
}

func TestClassifyErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"too busy maps to 429", classifier.ErrTooBusy(), http.StatusTooManyRequests},
		{"backend unavailable maps to 503", classifier.ErrBackendUnavailable("model loading"), http.StatusServiceUnavailable},
		{"http error passes status through", mockHTTPError{msg: "teapot", code: http.StatusTeapot}, http.StatusTeapot},
		{"generic maps to 500", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewMux(&mockService{classifyErr: tc.err})
			w := postJSON(t, r, "/classify", `{"text":"hola"}`)
			if w.Code != tc.want {
				t.Fatalf("status=%d want=%d body=%s", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestBatchHandler(t *testing.T) {
	res := keepResult()
	svc := &mockService{batchResult: types.BatchClassification{
		Results:    []types.BatchItem{{Text: "a", Classification: &res}, {Text: "b", Error: "backend exploded"}},
		Total:      2,
		Successful: 1,
		Failed:     1,
	}}
	r := NewMux(svc)
	w := postJSON(t, r, "/classify/batch", `[{"text":"a"},{"text":"b"}]`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if len(svc.gotTexts) != 2 {
		t.Fatalf("texts=%v", svc.gotTexts)
	}
	var body types.BatchClassification
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Total != 2 || body.Successful != 1 || body.Failed != 1 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Results[1].Error != "backend exploded" {
		t.Fatalf("unexpected item: %+v", body.Results[1])
	}
}

func TestBatchTooManyItems(t *testing.T) {
	SetMaxBatchItems(2)
	defer SetMaxBatchItems(50)
	r := NewMux(&mockService{})
	w := postJSON(t, r, "/classify/batch", `[{"text":"a"},{"text":"b"},{"text":"c"}]`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "maximum 2 reviews per batch") {
		t.Fatalf("body=%s", w.Body.String())
	}
}

func TestBatchItemValidation(t *testing.T) {
	r := NewMux(&mockService{})
	w := postJSON(t, r, "/classify/batch", `[{"text":"ok"},{"text":"  "}]`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "review 1") {
		t.Fatalf("body=%s", w.Body.String())
	}
}

func TestModelsHandler(t *testing.T) {
	svc := &mockService{detectors: []types.Detector{{ID: "toxicity"}, {ID: "spam"}}}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/models", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.DetectorsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body.Models) != 2 {
		t.Fatalf("models len=%d", len(body.Models))
	}
}

func TestHealthHandler(t *testing.T) {
	svc := &mockService{health: types.HealthResponse{Status: "healthy", ToxicityModelLoaded: true, SpamModelLoaded: true, Version: "1.0.0"}}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Status != "healthy" || !body.ToxicityModelLoaded {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestReadiness(t *testing.T) {
	r := NewMux(&mockService{ready: true})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readiness", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ready":true`) {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestReadinessNotReady(t *testing.T) {
	r := NewMux(&mockService{ready: false})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readiness", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ready":false`) {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestLiveness(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/liveness", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"alive":true`) {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestRootInfo(t *testing.T) {
	svc := &mockService{ready: true, health: types.HealthResponse{Version: "1.0.0"}}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.InfoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Service != "moderd" || !body.ModelsLoaded || body.Version != "1.0.0" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}
