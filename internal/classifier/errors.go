package classifier

import "fmt"

// tooBusyError signals admission queue overflow/timeout for 429 mapping.
type tooBusyError struct{}

func (tooBusyError) Error() string { return "too busy: classification queue is full" }

// ErrTooBusy constructs a tooBusyError.
func ErrTooBusy() error { return tooBusyError{} }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	_, ok := err.(tooBusyError)
	return ok
}

// backendUnavailableError signals the inference backend cannot serve
// right now (model loading, upstream rate limit, upstream 5xx) so the
// HTTP layer can return 503 instead of 500.
type backendUnavailableError struct{ msg string }

func (e backendUnavailableError) Error() string { return e.msg }

// ErrBackendUnavailable constructs a backendUnavailableError.
func ErrBackendUnavailable(msg string) error { return backendUnavailableError{msg: msg} }

// IsBackendUnavailable reports whether err indicates a temporarily
// unavailable inference backend.
func IsBackendUnavailable(err error) bool {
	_, ok := err.(backendUnavailableError)
	return ok
}

// batchTooLargeError signals a batch above the configured limit.
type batchTooLargeError struct{ max int }

func (e batchTooLargeError) Error() string {
	return fmt.Sprintf("maximum %d reviews per batch", e.max)
}

// ErrBatchTooLarge constructs a batchTooLargeError.
func ErrBatchTooLarge(max int) error { return batchTooLargeError{max: max} }

// IsBatchTooLarge reports whether err indicates an oversized batch.
func IsBatchTooLarge(err error) bool {
	_, ok := err.(batchTooLargeError)
	return ok
}
