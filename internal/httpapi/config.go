package httpapi

// maxBodyBytes controls the maximum allowed request body size for JSON endpoints.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// maxTextChars bounds the length of a single review text (runes).
var maxTextChars = 5000

// SetMaxTextChars configures the per-review text length limit (0 disables).
func SetMaxTextChars(n int) {
	if n < 0 {
		n = 0
	}
	maxTextChars = n
}

// maxBatchItems bounds how many reviews one batch request may carry.
var maxBatchItems = 50

// SetMaxBatchItems configures the batch size limit.
func SetMaxBatchItems(n int) {
	if n <= 0 {
		n = 50
	}
	maxBatchItems = n
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
}
