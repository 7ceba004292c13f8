package hub

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(srv.URL, "test-token", 5*time.Second, time.Second, opts...)
	return c, srv
}

func TestClassifyNestedShape(t *testing.T) {
	var gotAuth, gotPath string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[[{"label":"TOXIC","score":0.91},{"label":"NON_TOXIC","score":0.09}]]`))
	}))
	scores, err := c.Classify(context.Background(), "acme/tox-es", "qué horror")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("auth header=%q", gotAuth)
	}
	if gotPath != "/models/acme/tox-es" {
		t.Fatalf("path=%q", gotPath)
	}
	if scores["TOXIC"] != 0.91 || scores["NON_TOXIC"] != 0.09 {
		t.Fatalf("scores=%v", scores)
	}
}

func TestClassifyFlatShape(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"label":"spam","score":0.73}]`))
	}))
	scores, err := c.Classify(context.Background(), "acme/spam-es", "compra ahora")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if scores["spam"] != 0.73 {
		t.Fatalf("scores=%v", scores)
	}
}

func TestClassifyRetriesModelLoading(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"Model acme/tox-es is currently loading","estimated_time":20.0}`))
			return
		}
		w.Write([]byte(`[[{"label":"NON_TOXIC","score":0.99},{"label":"TOXIC","score":0.01}]]`))
	}))
	scores, err := c.Classify(context.Background(), "acme/tox-es", "hola")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("calls=%d, expected retry", calls)
	}
	if scores["NON_TOXIC"] != 0.99 {
		t.Fatalf("scores=%v", scores)
	}
}

func TestClassifyAuthErrorNotRetried(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid token"}`))
	}))
	_, err := c.Classify(context.Background(), "acme/tox-es", "hola")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsAuthError(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("auth errors must not be retried, calls=%d", calls)
	}
}

func TestClassifyServerErrorRetriedThenFails(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}), WithMaxRetries(1))
	_, err := c.Classify(context.Background(), "acme/tox-es", "hola")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsBackendError(err) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("calls=%d, expected 1 retry", calls)
	}
}

func TestClassifyUnexpectedBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a classification"}`))
	}))
	if _, err := c.Classify(context.Background(), "acme/tox-es", "hola"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestClassifyContextCanceled(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server starts its background read and
		// can observe the client disconnect; otherwise r.Context() is
		// never canceled and srv.Close deadlocks in t.Cleanup.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.Classify(ctx, "acme/tox-es", "hola"); err == nil {
		t.Fatalf("expected context error")
	}
}
