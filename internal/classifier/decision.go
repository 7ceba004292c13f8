package classifier

import "moderd/pkg/types"

// decide applies the moderation decision table. Content is flagged for
// removal when a detector both wins its pairwise comparison and its
// score meets the configured threshold. REMOVE_BOTH is reported when
// both labels are flagged, even if only one of them crossed its
// threshold.
func decide(tox types.ToxicityResult, spam types.SpamResult, toxicThreshold, spamThreshold float64) (types.Recommendation, bool) {
	isToxic := tox.Label == types.LabelToxic
	isSpam := spam.Label == types.LabelSpam

	shouldRemove := (isToxic && tox.ScoreToxic >= toxicThreshold) ||
		(isSpam && spam.ScoreSpam >= spamThreshold)

	if !shouldRemove {
		return types.RecommendationKeep, false
	}
	switch {
	case isToxic && isSpam:
		return types.RecommendationRemoveBoth, true
	case isToxic:
		return types.RecommendationRemoveToxic, true
	default:
		return types.RecommendationRemoveSpam, true
	}
}

// round4 matches the 4-decimal score precision of the API contract.
func round4(f float64) float64 {
	if f < 0 {
		return -round4(-f)
	}
	return float64(int64(f*10000+0.5)) / 10000
}
