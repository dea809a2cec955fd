// Package curation is the quality-control pipeline for candidate
// patterns: cross-source boost, identity dedup, confidence threshold,
// and usage-based pruning, in that fixed order.
//
// Boosting must see raw duplicates before they collapse, and pruning
// should act on the smaller filtered set, so the order is part of the
// contract. Every stage is pure: input slice in, output slice out,
// with per-stage counts reported for auditability.
package curation

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/patternbank/internal/pattern"
)

// Defaults for caller-supplied knobs.
const (
	DefaultThreshold = 0.7
	DefaultRetention = 90 * 24 * time.Hour

	// crossSourceBoost is added to every member of an identity group
	// whose members were independently produced by distinguishable
	// sources.
	crossSourceBoost = 0.10
)

// UsageStat is one entry of the externally supplied usage map.
type UsageStat struct {
	LastUsed time.Time `json:"lastUsed"`
	UseCount int       `json:"useCount"`
}

// UsageStats maps pattern id to its external usage record. The map is
// supplied by the caller (the downstream test generator), not owned
// here.
type UsageStats map[string]UsageStat

// Report carries per-stage counts for one pipeline run.
type Report struct {
	Input            int `json:"input"`
	Boosted          int `json:"boosted"`
	AfterDedup       int `json:"afterDedup"`
	DroppedThreshold int `json:"droppedThreshold"`
	AfterThreshold   int `json:"afterThreshold"`
	DroppedPrune     int `json:"droppedPrune"`
	AfterPrune       int `json:"afterPrune"`
}

// Result is the pipeline output.
type Result struct {
	Patterns []pattern.Pattern
	Report   Report
}

// Pipeline holds the run configuration. The zero value is usable and
// applies every default.
type Pipeline struct {
	// Threshold is the minimum surviving confidence. Zero means
	// DefaultThreshold.
	Threshold float64

	// Retention is the pruning window. Zero means DefaultRetention.
	Retention time.Duration

	// Now is the clock, overridable in tests. Nil means time.Now.
	Now func() time.Time

	// Logger may be nil.
	Logger *zap.Logger
}

func (p *Pipeline) threshold() float64 {
	if p.Threshold <= 0 {
		return DefaultThreshold
	}
	return p.Threshold
}

func (p *Pipeline) retention() time.Duration {
	if p.Retention <= 0 {
		return DefaultRetention
	}
	return p.Retention
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Run executes boost → dedup → threshold → prune and reports per-stage
// counts. The output is ordered by identity key.
func (p *Pipeline) Run(patterns []pattern.Pattern, stats UsageStats) Result {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	report := Report{Input: len(patterns)}

	boosted, boostedCount := Boost(patterns)
	report.Boosted = boostedCount

	deduped := Dedup(boosted)
	report.AfterDedup = len(deduped)

	filtered := Filter(deduped, p.threshold())
	report.AfterThreshold = len(filtered)
	report.DroppedThreshold = len(deduped) - len(filtered)

	pruned := Prune(filtered, stats, p.retention(), p.now())
	report.AfterPrune = len(pruned)
	report.DroppedPrune = len(filtered) - len(pruned)

	logger.Info("curation complete",
		zap.Int("input", report.Input),
		zap.Int("boosted", report.Boosted),
		zap.Int("after_dedup", report.AfterDedup),
		zap.Int("after_threshold", report.AfterThreshold),
		zap.Int("after_prune", report.AfterPrune))

	return Result{Patterns: pruned, Report: report}
}

// Boost adds crossSourceBoost to every member of an identity group
// whose members carry differing attribution — differing non-empty
// template source, entity name, or source-journey sets — meaning at
// least two distinguishable sources produced the same pattern
// independently. Singleton groups and groups with identical
// attribution are untouched. Returns the (possibly) boosted slice and
// how many patterns were boosted.
func Boost(patterns []pattern.Pattern) ([]pattern.Pattern, int) {
	groups := make(map[pattern.Key][]int, len(patterns))
	for i := range patterns {
		k := patterns[i].Key()
		groups[k] = append(groups[k], i)
	}

	out := make([]pattern.Pattern, len(patterns))
	copy(out, patterns)

	boosted := 0
	for _, idx := range groups {
		if len(idx) < 2 || !attributionDiffers(out, idx) {
			continue
		}
		for _, i := range idx {
			out[i].Confidence = pattern.ClampConfidence(out[i].Confidence + crossSourceBoost)
			boosted++
		}
	}
	return out, boosted
}

// attributionDiffers reports whether the group members at idx disagree
// on template source, entity name, or source journeys.
func attributionDiffers(patterns []pattern.Pattern, idx []int) bool {
	first := patterns[idx[0]]
	for _, i := range idx[1:] {
		p := patterns[i]
		if p.TemplateSource != first.TemplateSource ||
			p.EntityName != first.EntityName ||
			!sameStringSet(p.SourceJourneys, first.SourceJourneys) {
			return true
		}
	}
	return false
}

func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		if !set[s] {
			return false
		}
	}
	return true
}

// Dedup collapses each identity group into one pattern: confidence is
// the max, selector hints are the union, outcome counts sum, and
// source journeys union. The first member seen provides the id and
// texts. Output is ordered by identity key, making Dedup idempotent.
func Dedup(patterns []pattern.Pattern) []pattern.Pattern {
	order := make([]pattern.Key, 0, len(patterns))
	merged := make(map[pattern.Key]pattern.Pattern, len(patterns))

	for _, p := range patterns {
		k := p.Key()
		existing, ok := merged[k]
		if !ok {
			order = append(order, k)
			// Copy slices so later mutation never aliases the input.
			cp := p
			cp.SelectorHints = append([]pattern.SelectorHint(nil), p.SelectorHints...)
			cp.SourceJourneys = append([]string(nil), p.SourceJourneys...)
			merged[k] = cp
			continue
		}

		if p.Confidence > existing.Confidence {
			existing.Confidence = p.Confidence
		}
		existing.SelectorHints = unionHints(existing.SelectorHints, p.SelectorHints)
		existing.SuccessCount += p.SuccessCount
		existing.FailCount += p.FailCount
		for _, j := range p.SourceJourneys {
			existing.AddJourney(j)
		}
		merged[k] = existing
	}

	sort.Slice(order, func(i, j int) bool { return order[i].String() < order[j].String() })

	out := make([]pattern.Pattern, 0, len(order))
	for _, k := range order {
		out = append(out, merged[k])
	}
	return out
}

// unionHints appends hints from b not already present in a, matching
// on (strategy, value).
func unionHints(a, b []pattern.SelectorHint) []pattern.SelectorHint {
	type hk struct{ strategy, value string }
	seen := make(map[hk]bool, len(a))
	for _, h := range a {
		seen[hk{h.Strategy, h.Value}] = true
	}
	for _, h := range b {
		k := hk{h.Strategy, h.Value}
		if seen[k] {
			continue
		}
		seen[k] = true
		a = append(a, h)
	}
	return a
}

// Filter drops patterns below the confidence threshold.
func Filter(patterns []pattern.Pattern, threshold float64) []pattern.Pattern {
	out := make([]pattern.Pattern, 0, len(patterns))
	for _, p := range patterns {
		if p.Confidence >= threshold {
			out = append(out, p)
		}
	}
	return out
}

// Prune drops a pattern only when all three hold: it has been tried
// (outcome counts > 0), the caller's usage stats know it, and its last
// use is older than the retention window. Never-tried patterns and
// patterns absent from the stats are kept conservatively — absence of
// evidence is not staleness.
func Prune(patterns []pattern.Pattern, stats UsageStats, retention time.Duration, now time.Time) []pattern.Pattern {
	out := make([]pattern.Pattern, 0, len(patterns))
	for _, p := range patterns {
		if p.SuccessCount+p.FailCount > 0 {
			if stat, ok := stats[p.ID]; ok && now.Sub(stat.LastUsed) > retention {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}
