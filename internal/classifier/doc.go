// Package classifier orchestrates the two content detectors. It fans a
// text out to the toxicity and spam models, normalizes their labels,
// applies the threshold decision table and produces a moderation
// recommendation. Admission control bounds concurrent backend calls and
// a TTL cache short-circuits repeated texts.
package classifier
