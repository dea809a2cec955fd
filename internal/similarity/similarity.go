// Package similarity compares two text fragments and scores how alike
// they are. It has no dependencies on the rest of the system and is
// used by curation and the learning loop to recognize near-duplicate
// code fragments and trigger phrases.
//
// The score blends token overlap (Jaccard) with line-count similarity:
//
//	score = 0.8*jaccard + 0.2*lineSim
//
// rounded to two decimals. Exact matches after normalization score 1.0.
package similarity

import (
	"math"
	"sort"
	"strings"
)

// DefaultThreshold is the near-duplicate cutoff used when the caller
// does not supply one.
const DefaultThreshold = 0.8

// Match pairs a candidate with its similarity to the target.
type Match struct {
	// Candidate is the matched fragment.
	Candidate string

	// Score is the similarity in [0, 1].
	Score float64

	// Index is the candidate's position in the input slice.
	Index int
}

// Score computes the similarity of two fragments in [0, 1].
//
// Normalization makes the comparison insensitive to whitespace runs,
// blank lines, quote style, and letter case. Two fragments identical
// after normalization score exactly 1.0.
func Score(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return 1.0
	}

	j := jaccard(tokenize(na), tokenize(nb))
	l := lineSimilarity(na, nb)

	return round2(0.8*j + 0.2*l)
}

// IsNearDuplicate reports whether a and b score at or above threshold.
// A threshold <= 0 falls back to DefaultThreshold.
func IsNearDuplicate(a, b string, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Score(a, b) >= threshold
}

// FindSimilar returns every candidate scoring at or above threshold
// against target, sorted by score descending. Ties keep input order.
func FindSimilar(target string, candidates []string, threshold float64) []Match {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	var matches []Match
	for i, c := range candidates {
		if s := Score(target, c); s >= threshold {
			matches = append(matches, Match{Candidate: c, Score: s, Index: i})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// Normalize canonicalizes a fragment for comparison: lines are trimmed,
// internal whitespace runs collapse to one space, quote styles unify to
// double quotes, blank lines drop, and everything lower-cases.
func Normalize(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		line = strings.ReplaceAll(line, "'", `"`)
		line = strings.ReplaceAll(line, "`", `"`)
		out = append(out, strings.ToLower(line))
	}
	return strings.Join(out, "\n")
}

// jaccard computes |A∩B| / |A∪B| over token sets. Both-empty is a
// perfect match (1.0); exactly one empty shares nothing (0.0).
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// lineSimilarity compares line counts: 1 − |Δ| / max. Two empty
// fragments are identical (1.0).
func lineSimilarity(a, b string) float64 {
	la, lb := countLines(a), countLines(b)
	if la == 0 && lb == 0 {
		return 1.0
	}
	maxLines := la
	if lb > maxLines {
		maxLines = lb
	}
	return 1.0 - math.Abs(float64(la-lb))/float64(maxLines)
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// tokenize splits a normalized fragment on every non-alphanumeric rune
// and returns the distinct tokens.
func tokenize(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens[cur.String()] = struct{}{}
			cur.Reset()
		}
	}
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' {
			cur.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
