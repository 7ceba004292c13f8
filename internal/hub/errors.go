package hub

import "fmt"

// modelLoadingError signals the hosted model is still being loaded
// into the inference backend (HTTP 503 with an estimated_time hint).
type modelLoadingError struct {
	model         string
	estimatedTime float64
}

func (e modelLoadingError) Error() string {
	if e.estimatedTime > 0 {
		return fmt.Sprintf("model %s is loading (estimated %.0fs)", e.model, e.estimatedTime)
	}
	return fmt.Sprintf("model %s is loading", e.model)
}

// ErrModelLoading constructs a modelLoadingError.
func ErrModelLoading(model string, estimatedTime float64) error {
	return modelLoadingError{model: model, estimatedTime: estimatedTime}
}

// IsModelLoading reports whether err indicates the backend model is
// still warming up.
func IsModelLoading(err error) bool {
	_, ok := err.(modelLoadingError)
	return ok
}

// rateLimitedError signals the inference API rejected the call with 429.
type rateLimitedError struct{ model string }

func (e rateLimitedError) Error() string {
	return fmt.Sprintf("inference API rate limited request for model %s", e.model)
}

// ErrRateLimited constructs a rateLimitedError.
func ErrRateLimited(model string) error { return rateLimitedError{model: model} }

// IsRateLimited reports whether err indicates API rate limiting.
func IsRateLimited(err error) bool {
	_, ok := err.(rateLimitedError)
	return ok
}

// authError signals a rejected or missing API token.
type authError struct{ status int }

func (e authError) Error() string {
	return fmt.Sprintf("inference API rejected credentials (status %d)", e.status)
}

// IsAuthError reports whether err indicates an authentication failure.
func IsAuthError(err error) bool {
	_, ok := err.(authError)
	return ok
}

// statusError carries a non-2xx response that fits no specific class.
type statusError struct {
	model  string
	status int
	body   string
}

func (e statusError) Error() string {
	return fmt.Sprintf("inference API error for model %s: status %d: %s", e.model, e.status, e.body)
}

// IsBackendError reports whether err is a generic non-2xx backend response.
func IsBackendError(err error) bool {
	_, ok := err.(statusError)
	return ok
}
