package types

// ClassifyRequest is the payload for POST /classify.
type ClassifyRequest struct {
	// Review text to analyze (Spanish).
	// example: Me encanta este álbum, las letras son increíbles
	Text string `json:"text" example:"Me encanta este álbum, las letras son increíbles"`
}

// ToxicityResult holds the toxicity detector output for one text.
type ToxicityResult struct {
	// Classification label.
	// example: NON_TOXIC
	Label string `json:"label" example:"NON_TOXIC"`
	// Probability of toxic content (0.0-1.0).
	// example: 0.0234
	ScoreToxic float64 `json:"score_toxic" example:"0.0234"`
	// Probability of non-toxic content (0.0-1.0).
	// example: 0.9766
	ScoreNonToxic float64 `json:"score_non_toxic" example:"0.9766"`
	// Highest probability score.
	// example: 0.9766
	Confidence float64 `json:"confidence" example:"0.9766"`
}

// SpamResult holds the spam detector output for one text.
type SpamResult struct {
	// Classification label.
	// example: NOT_SPAM
	Label string `json:"label" example:"NOT_SPAM"`
	// Probability of spam content (0.0-1.0).
	// example: 0.0512
	ScoreSpam float64 `json:"score_spam" example:"0.0512"`
	// Probability of legitimate content (0.0-1.0).
	// example: 0.9488
	ScoreNotSpam float64 `json:"score_not_spam" example:"0.9488"`
	// Highest probability score.
	// example: 0.9488
	Confidence float64 `json:"confidence" example:"0.9488"`
}

// Classification is the full moderation verdict for a single text.
type Classification struct {
	Toxicity ToxicityResult `json:"toxicity"`
	Spam     SpamResult     `json:"spam"`
	// Moderation action recommendation.
	// example: KEEP
	Recommendation Recommendation `json:"recommendation" example:"KEEP"`
	// Whether the content should be removed under the configured thresholds.
	// example: false
	ShouldBeRemoved bool `json:"should_be_removed" example:"false"`
}

// BatchItem is one entry of a batch classification response.
type BatchItem struct {
	// Original review text.
	Text string `json:"text"`
	// Classification result when the item succeeded.
	Classification *Classification `json:"classification,omitempty"`
	// Error message when the item failed.
	Error string `json:"error,omitempty"`
}

// BatchClassification is returned by POST /classify/batch.
type BatchClassification struct {
	// Per-review results, in request order.
	Results []BatchItem `json:"results"`
	// Total number of reviews processed.
	// example: 3
	Total int `json:"total" example:"3"`
	// Number of successful classifications.
	// example: 2
	Successful int `json:"successful" example:"2"`
	// Number of failed classifications.
	// example: 1
	Failed int `json:"failed" example:"1"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// Overall service status.
	// example: healthy
	Status string `json:"status" example:"healthy"`
	// Whether the toxicity detector answered its warmup probe.
	ToxicityModelLoaded bool `json:"toxicity_model_loaded"`
	// Whether the spam detector answered its warmup probe.
	SpamModelLoaded bool `json:"spam_model_loaded"`
	// Inference backend base URL.
	// example: https://api-inference.huggingface.co
	Backend string `json:"backend" example:"https://api-inference.huggingface.co"`
	// Server uptime in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// API version.
	// example: 1.0.0
	Version string `json:"version" example:"1.0.0"`
}

// InfoResponse is returned by GET /.
type InfoResponse struct {
	// Service name.
	// example: moderd
	Service string `json:"service" example:"moderd"`
	// API version.
	// example: 1.0.0
	Version string `json:"version" example:"1.0.0"`
	// Coarse status string.
	// example: running
	Status string `json:"status" example:"running"`
	// Whether both detectors are warmed up.
	ModelsLoaded bool `json:"models_loaded"`
	// Docs endpoint path.
	// example: /docs/index.html
	Docs string `json:"docs" example:"/docs/index.html"`
}

// DetectorsResponse wraps the detector catalog returned by GET /models.
type DetectorsResponse struct {
	Models []Detector `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: text cannot be empty or only whitespace
	Detail string `json:"detail" example:"text cannot be empty or only whitespace"`
	// Stable code for programmatic handling.
	// example: EMPTY_TEXT
	ErrorCode string `json:"error_code,omitempty" example:"EMPTY_TEXT"`
	// HTTP status code.
	// example: 422
	Code int `json:"code" example:"422"`
}
