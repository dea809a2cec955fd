// Package orchestrator runs the full discovery pipeline end to end:
// profile the project, mine its source for elements, synthesize
// candidate patterns, merge them with the long-lived store, curate,
// and persist.
//
// The pipeline degrades gracefully: a miner that fails, an unreadable
// cached profile, or a missing pattern store each produce a warning
// and the run continues with what it has. Only a failure to persist
// the final result aborts the run.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/patternbank/internal/curation"
	"github.com/fyrsmithlabs/patternbank/internal/discovery"
	"github.com/fyrsmithlabs/patternbank/internal/knowledge"
	"github.com/fyrsmithlabs/patternbank/internal/miner"
	"github.com/fyrsmithlabs/patternbank/internal/pattern"
	"github.com/fyrsmithlabs/patternbank/internal/synthesis"
)

// Options configures one pipeline run.
type Options struct {
	// Root is the project directory to discover.
	Root string

	// Threshold is the curation confidence floor. Zero means the
	// curation default.
	Threshold float64

	// Retention is the pattern pruning window. Zero means the curation
	// default.
	Retention time.Duration

	// Stats supplies external usage records for pruning. May be nil,
	// in which case nothing is ever pruned.
	Stats curation.UsageStats
}

// RunReport summarizes one pipeline run.
type RunReport struct {
	// Profile is the discovered application profile.
	Profile *discovery.AppProfile `json:"profile"`

	// ElementsMined counts mined elements by kind.
	ElementsMined map[string]int `json:"elementsMined"`

	// Synthesized is how many candidate patterns synthesis produced.
	Synthesized int `json:"synthesized"`

	// Merged is the pattern count after merging with the stored set.
	Merged int `json:"merged"`

	// Curation carries the per-stage curation counts.
	Curation curation.Report `json:"curation"`

	// Saved is the number of patterns persisted.
	Saved int `json:"saved"`

	// Warnings lists non-fatal problems encountered along the way.
	Warnings []string `json:"warnings,omitempty"`

	// Duration is the wall-clock time of the run.
	Duration time.Duration `json:"duration"`
}

// Pipeline wires the discovery stages over one knowledge store.
type Pipeline struct {
	store  *knowledge.Store
	logger *zap.Logger
	now    func() time.Time
}

// New creates a pipeline over store.
func New(store *knowledge.Store, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{store: store, logger: logger, now: time.Now}
}

// Run executes the full pipeline against opts.Root and persists the
// curated pattern set and the refreshed profile.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*RunReport, error) {
	if opts.Root == "" {
		return nil, errors.New("project root is required")
	}
	start := p.now()
	report := &RunReport{ElementsMined: map[string]int{}}

	// A previously stored profile lets auth detection reuse confirmed
	// hints; its absence is a fresh install, not an error.
	cached, err := p.store.LoadProfile()
	if err != nil && !errors.Is(err, knowledge.ErrUnavailable) {
		report.Warnings = append(report.Warnings, fmt.Sprintf("cached profile: %v", err))
	}

	profile := discovery.NewEngine(opts.Root, p.logger).Discover(cached)
	report.Profile = profile

	if err := ctx.Err(); err != nil {
		return report, err
	}

	elements, warnings := miner.RunAll(opts.Root, p.logger)
	report.Warnings = append(report.Warnings, warnings...)
	for _, el := range elements {
		report.ElementsMined[string(el.Kind)]++
	}

	discovered := synthesis.Generate(profile, elements)
	report.Synthesized = len(discovered)

	// Boost and dedup run on the raw synthesized set: cross-source
	// agreement only exists while the duplicates are still visible, and
	// dedup is what unions their selector hints. Merging first would
	// collapse every identity group to a singleton.
	curationReport := curation.Report{Input: len(discovered)}
	boosted, boostedCount := curation.Boost(discovered)
	curationReport.Boosted = boostedCount
	deduped := curation.Dedup(boosted)
	curationReport.AfterDedup = len(deduped)

	// Existing store patterns win over freshly synthesized duplicates:
	// their confidence reflects real outcomes.
	var existing []pattern.Pattern
	if doc, err := p.store.LoadPatterns(); err == nil {
		existing = doc.Patterns
	} else if !errors.Is(err, knowledge.ErrUnavailable) {
		report.Warnings = append(report.Warnings, fmt.Sprintf("existing patterns: %v", err))
	}
	merged := synthesis.Merge(existing, deduped)
	report.Merged = len(merged)

	if err := ctx.Err(); err != nil {
		return report, err
	}

	// Threshold and prune apply after the merge so carried-over store
	// patterns are re-filtered alongside the new ones.
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = curation.DefaultThreshold
	}
	retention := opts.Retention
	if retention <= 0 {
		retention = curation.DefaultRetention
	}
	filtered := curation.Filter(merged, threshold)
	curationReport.AfterThreshold = len(filtered)
	curationReport.DroppedThreshold = len(merged) - len(filtered)
	pruned := curation.Prune(filtered, opts.Stats, retention, p.now())
	curationReport.AfterPrune = len(pruned)
	curationReport.DroppedPrune = len(filtered) - len(pruned)

	report.Curation = curationReport
	report.Duration = p.now().Sub(start)

	doc := p.buildDoc(profile, pruned, report.Duration)
	if err := p.store.SavePatterns(doc); err != nil {
		return report, fmt.Errorf("persist patterns: %w", err)
	}
	if err := p.store.SaveProfile(profile); err != nil {
		return report, fmt.Errorf("persist profile: %w", err)
	}
	report.Saved = len(pruned)

	p.logger.Info("discovery run complete",
		zap.Int("synthesized", report.Synthesized),
		zap.Int("merged", report.Merged),
		zap.Int("saved", report.Saved),
		zap.Int("warnings", len(report.Warnings)),
		zap.Duration("duration", report.Duration))

	return report, nil
}

func (p *Pipeline) buildDoc(profile *discovery.AppProfile, patterns []pattern.Pattern, duration time.Duration) *knowledge.PatternsDoc {
	meta := knowledge.PatternsMetadata{
		Frameworks:          detectionNames(profile.Frameworks),
		UILibraries:         detectionNames(profile.UILibraries),
		TotalPatterns:       len(patterns),
		ByCategory:          map[string]int{},
		ByTemplate:          map[string]int{},
		DiscoveryDurationMS: duration.Milliseconds(),
	}
	var confSum float64
	for _, pt := range patterns {
		meta.ByCategory[pt.Category]++
		if pt.TemplateSource != "" {
			meta.ByTemplate[pt.TemplateSource]++
		}
		confSum += pt.Confidence
	}
	if len(patterns) > 0 {
		meta.AverageConfidence = confSum / float64(len(patterns))
	}

	return &knowledge.PatternsDoc{
		Version:     knowledge.SchemaVersion,
		GeneratedAt: p.now().UTC(),
		Source:      "discovery",
		Patterns:    patterns,
		Metadata:    meta,
	}
}

func detectionNames(detections []discovery.Detection) []string {
	names := make([]string, 0, len(detections))
	for _, d := range detections {
		names = append(names, d.Name)
	}
	return names
}
