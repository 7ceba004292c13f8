package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"moderd/internal/classifier"
	"moderd/pkg/types"
)

const serviceName = "moderd"

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Classify(ctx context.Context, text string) (types.Classification, error)
	ClassifyBatch(ctx context.Context, texts []string) (types.BatchClassification, error)
	Detectors() []types.Detector
	Health() types.HealthResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   corsAllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
		}))
	}
	r.Use(MetricsMiddleware)
	r.Use(requestLogger)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		h := svc.Health()
		writeJSON(w, http.StatusOK, types.InfoResponse{
			Service:      serviceName,
			Version:      h.Version,
			Status:       "running",
			ModelsLoaded: svc.Ready(),
			Docs:         "/docs/index.html",
		})
	})

	r.Post("/classify", func(w http.ResponseWriter, r *http.Request) {
		if !requireJSON(w, r) {
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.ClassifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
			return
		}
		text, ok := validateText(w, req.Text, "")
		if !ok {
			return
		}
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		result, err := svc.Classify(joinedCtx, text)
		if err != nil {
			writeClassifierError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	r.Post("/classify/batch", func(w http.ResponseWriter, r *http.Request) {
		if !requireJSON(w, r) {
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var reviews []types.ClassifyRequest
		if err := json.NewDecoder(r.Body).Decode(&reviews); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
			return
		}
		if len(reviews) > maxBatchItems {
			writeJSONError(w, http.StatusBadRequest,
				"maximum "+itoa(maxBatchItems)+" reviews per batch", "BATCH_TOO_LARGE")
			return
		}
		texts := make([]string, len(reviews))
		for i, rev := range reviews {
			text, ok := validateText(w, rev.Text, "review "+itoa(i)+": ")
			if !ok {
				return
			}
			texts[i] = text
		}
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		result, err := svc.ClassifyBatch(joinedCtx, texts)
		if err != nil {
			writeClassifierError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.DetectorsResponse{Models: svc.Detectors()})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Health())
	})

	r.Get("/readiness", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			writeJSON(w, http.StatusOK, map[string]bool{"ready": true})
			return
		}
		writeJSON(w, http.StatusServiceUnavailable, map[string]bool{"ready": false})
	})

	r.Get("/liveness", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"alive": true})
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// requireJSON rejects requests without an application/json content type.
func requireJSON(w http.ResponseWriter, r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", "UNSUPPORTED_MEDIA_TYPE")
		return false
	}
	return true
}

// validateText enforces the request text constraints: non-empty after
// trimming and bounded length. Returns the trimmed text.
func validateText(w http.ResponseWriter, text, prefix string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		writeJSONError(w, http.StatusUnprocessableEntity,
			prefix+"text cannot be empty or only whitespace", "EMPTY_TEXT")
		return "", false
	}
	if maxTextChars > 0 && len([]rune(trimmed)) > maxTextChars {
		writeJSONError(w, http.StatusUnprocessableEntity,
			prefix+"text exceeds maximum length of "+itoa(maxTextChars)+" characters", "TEXT_TOO_LONG")
		return "", false
	}
	return trimmed, true
}

// writeClassifierError maps service errors to HTTP status codes.
func writeClassifierError(w http.ResponseWriter, r *http.Request, err error) {
	// Client disconnect or shutdown: nothing useful to write.
	if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
		return
	}
	switch {
	case classifier.IsTooBusy(err):
		IncrementBackpressure("queue_full")
		writeJSONError(w, http.StatusTooManyRequests, err.Error(), "TOO_BUSY")
	case classifier.IsBackendUnavailable(err):
		writeJSONError(w, http.StatusServiceUnavailable, err.Error(), "BACKEND_UNAVAILABLE")
	case classifier.IsBatchTooLarge(err):
		writeJSONError(w, http.StatusBadRequest, err.Error(), "BATCH_TOO_LARGE")
	default:
		if he, ok := err.(HTTPError); ok {
			writeJSONError(w, he.StatusCode(), he.Error(), "")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, err.Error(), "CLASSIFICATION_ERROR")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && zlog != nil {
		zlog.Error().Err(err).Msg("failed to encode response")
	}
}
