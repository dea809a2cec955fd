package curation

import "github.com/fyrsmithlabs/patternbank/internal/pattern"

// Strength is a caller-declared signal strength classification.
type Strength string

const (
	StrengthStrong Strength = "strong"
	StrengthMedium Strength = "medium"
	StrengthWeak   Strength = "weak"
)

// Fixed confidence per declared strength.
var strengthConfidence = map[Strength]float64{
	StrengthStrong: 0.85,
	StrengthMedium: 0.75,
	StrengthWeak:   0.60,
}

// WeightBySignalStrength assigns fixed confidence to each pattern the
// caller classified, by pattern id. Unclassified patterns and unknown
// strength labels leave the pattern untouched. Callable independently
// of the main pipeline.
func WeightBySignalStrength(patterns []pattern.Pattern, classes map[string]Strength) []pattern.Pattern {
	if len(classes) == 0 {
		return patterns
	}

	out := make([]pattern.Pattern, len(patterns))
	copy(out, patterns)
	for i := range out {
		strength, ok := classes[out[i].ID]
		if !ok {
			continue
		}
		if confidence, known := strengthConfidence[strength]; known {
			out[i].Confidence = confidence
		}
	}
	return out
}
