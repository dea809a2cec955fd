package synthesis

import (
	"sort"

	"github.com/fyrsmithlabs/patternbank/internal/pattern"
)

// Merge folds freshly discovered patterns into a previously
// accumulated, feedback-weighted set.
//
// The merge is keyed by pattern identity. An existing entry is never
// overwritten by a duplicate discovery, regardless of the discovery's
// confidence: the existing entry carries accumulated learning (outcome
// counts, feedback-adjusted confidence) that a stale re-scan must not
// reset. Only genuinely new identities are appended.
//
// The merge is linear in combined size and the result is ordered by
// identity key, so repeated runs produce identical output.
func Merge(existing, discovered []pattern.Pattern) []pattern.Pattern {
	merged := make(map[pattern.Key]pattern.Pattern, len(existing)+len(discovered))

	for _, p := range existing {
		merged[p.Key()] = p
	}
	for _, p := range discovered {
		if _, ok := merged[p.Key()]; ok {
			continue
		}
		merged[p.Key()] = p
	}

	keys := make([]pattern.Key, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	out := make([]pattern.Pattern, 0, len(keys))
	for _, k := range keys {
		out = append(out, merged[k])
	}
	return out
}
