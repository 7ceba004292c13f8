package classifier

import (
	"strings"

	"github.com/pkg/errors"

	"moderd/internal/hub"
)

// Pretrained checkpoints disagree on label naming: some emit semantic
// labels ("toxic", "ham"), others the generic LABEL_0/LABEL_1 pair.
// Each detector carries alias sets mapping raw labels onto its positive
// and negative class.
var (
	toxicAliases = aliasSet("toxic", "offensive", "label_1", "1")
	cleanAliases = aliasSet("non_toxic", "non-toxic", "nontoxic", "not_toxic", "neutral", "ok", "label_0", "0")

	spamAliases = aliasSet("spam", "label_1", "1")
	hamAliases  = aliasSet("not_spam", "no_spam", "not-spam", "ham", "legit", "label_0", "0")
)

func aliasSet(labels ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		s[l] = struct{}{}
	}
	return s
}

func normalizeLabel(l string) string {
	l = strings.ToLower(strings.TrimSpace(l))
	return strings.ReplaceAll(l, " ", "_")
}

// splitBinary resolves raw pipeline scores into (positive, negative)
// class probabilities. Pipelines configured to return only the winning
// label yield a single score; the missing side is complemented.
func splitBinary(scores hub.Scores, positive, negative map[string]struct{}) (pos, neg float64, err error) {
	foundPos, foundNeg := false, false
	for label, score := range scores {
		key := normalizeLabel(label)
		if _, ok := positive[key]; ok {
			pos, foundPos = score, true
			continue
		}
		if _, ok := negative[key]; ok {
			neg, foundNeg = score, true
		}
	}
	switch {
	case foundPos && foundNeg:
		return pos, neg, nil
	case foundPos:
		return pos, 1 - pos, nil
	case foundNeg:
		return 1 - neg, neg, nil
	default:
		return 0, 0, errors.Errorf("unrecognized classifier labels: %v", labelNames(scores))
	}
}

func labelNames(scores hub.Scores) []string {
	names := make([]string, 0, len(scores))
	for l := range scores {
		names = append(names, l)
	}
	return names
}
