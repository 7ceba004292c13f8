package types

// Recommendation is the moderation action derived from the two detectors.
type Recommendation string

const (
	RecommendationKeep        Recommendation = "KEEP"
	RecommendationRemoveToxic Recommendation = "REMOVE_TOXIC"
	RecommendationRemoveSpam  Recommendation = "REMOVE_SPAM"
	RecommendationRemoveBoth  Recommendation = "REMOVE_BOTH"
)

// Toxicity and spam labels as emitted in API responses.
const (
	LabelToxic    = "TOXIC"
	LabelNonToxic = "NON_TOXIC"
	LabelSpam     = "SPAM"
	LabelNotSpam  = "NOT_SPAM"
)

// Detector describes one configured classification backend.
type Detector struct {
	// Stable identifier for the detector.
	// example: toxicity
	ID string `json:"id" example:"toxicity"`
	// Classification task performed by the detector.
	// example: text-classification
	Task string `json:"task" example:"text-classification"`
	// Hugging Face model identifier backing the detector.
	// example: bgonzalezbustamante/bert-spanish-toxicity
	Model string `json:"model" example:"bgonzalezbustamante/bert-spanish-toxicity"`
	// Label reported when the positive class wins.
	// example: TOXIC
	PositiveLabel string `json:"positive_label" example:"TOXIC"`
	// Label reported when the negative class wins.
	// example: NON_TOXIC
	NegativeLabel string `json:"negative_label" example:"NON_TOXIC"`
}
