// Package registry describes the configured detector catalog.
package registry

import "moderd/pkg/types"

// Detector identifiers used across the service and in metrics labels.
const (
	DetectorToxicity = "toxicity"
	DetectorSpam     = "spam"
)

// Build returns the detector catalog for the configured model IDs.
// The catalog is static for the lifetime of the process: the service
// runs exactly one toxicity and one spam detector.
func Build(toxicityModel, spamModel string) []types.Detector {
	return []types.Detector{
		{
			ID:            DetectorToxicity,
			Task:          "text-classification",
			Model:         toxicityModel,
			PositiveLabel: types.LabelToxic,
			NegativeLabel: types.LabelNonToxic,
		},
		{
			ID:            DetectorSpam,
			Task:          "text-classification",
			Model:         spamModel,
			PositiveLabel: types.LabelSpam,
			NegativeLabel: types.LabelNotSpam,
		},
	}
}
