// Package analytics computes aggregate effectiveness snapshots over the
// lessons and components stores.
//
// A snapshot is recomputed from scratch on demand — nothing incremental,
// nothing cached. If either source store is unreadable the recompute
// fails closed and the previous analytics.json is left untouched.
package analytics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/patternbank/internal/knowledge"
)

// Snapshot is the persisted shape of analytics.json.
type Snapshot struct {
	Version       string         `json:"version"`
	GeneratedAt   time.Time      `json:"generatedAt"`
	Overview      Overview       `json:"overview"`
	ByCategory    map[string]int `json:"byCategory"`
	ByScope       map[string]int `json:"byScope"`
	TopLessons    []RankedEntry  `json:"topLessons"`
	TopComponents []RankedEntry  `json:"topComponents"`
	NeedsReview   []RankedEntry  `json:"needsReview"`
}

// Overview carries the headline counters.
type Overview struct {
	TotalLessons       int     `json:"totalLessons"`
	ActiveLessons      int     `json:"activeLessons"`
	ArchivedLessons    int     `json:"archivedLessons"`
	TotalComponents    int     `json:"totalComponents"`
	TotalApplications  int     `json:"totalApplications"`
	OverallSuccessRate float64 `json:"overallSuccessRate"`
	AverageConfidence  float64 `json:"averageConfidence"`
}

// RankedEntry is one row in a top/review list.
type RankedEntry struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Uses        int     `json:"uses"`
	SuccessRate float64 `json:"successRate"`
	Confidence  float64 `json:"confidence,omitempty"`
	Reason      string  `json:"reason,omitempty"`
}

const topListSize = 5

// Engine recomputes analytics over one knowledge store.
type Engine struct {
	store  *knowledge.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewEngine creates an analytics engine over store.
func NewEngine(store *knowledge.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, logger: logger, now: time.Now}
}

// Recompute reads lessons and components fresh, builds a snapshot, and
// persists it as analytics.json. Either store being unreadable aborts
// before any write.
func (e *Engine) Recompute() (*Snapshot, error) {
	lessons, err := e.store.LoadLessons()
	if err != nil {
		return nil, fmt.Errorf("load lessons: %w", err)
	}
	components, err := e.store.LoadComponents()
	if err != nil {
		return nil, fmt.Errorf("load components: %w", err)
	}

	snap := e.build(lessons, components)
	if err := e.store.SaveDoc(knowledge.AnalyticsFile, snap); err != nil {
		return nil, fmt.Errorf("save analytics: %w", err)
	}

	e.logger.Info("analytics recomputed",
		zap.Int("active_lessons", snap.Overview.ActiveLessons),
		zap.Int("components", snap.Overview.TotalComponents),
		zap.Int("needs_review", len(snap.NeedsReview)))

	return snap, nil
}

// Load returns the last persisted snapshot.
func (e *Engine) Load() (*Snapshot, error) {
	var snap Snapshot
	if err := e.store.LoadDoc(knowledge.AnalyticsFile, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (e *Engine) build(lessons *knowledge.LessonsDoc, components *knowledge.ComponentsDoc) *Snapshot {
	snap := &Snapshot{
		Version:       knowledge.SchemaVersion,
		GeneratedAt:   e.now().UTC(),
		ByCategory:    map[string]int{},
		ByScope:       map[string]int{},
		TopLessons:    []RankedEntry{},
		TopComponents: []RankedEntry{},
		NeedsReview:   []RankedEntry{},
	}

	var (
		occurrences int
		successSum  float64
		confSum     float64
	)
	for _, l := range lessons.Lessons {
		if l.Archived {
			snap.Overview.ArchivedLessons++
			continue
		}
		snap.Overview.ActiveLessons++
		snap.ByCategory[l.Category]++
		snap.ByScope[l.Scope]++

		occurrences += l.Metrics.Occurrences
		successSum += l.Metrics.SuccessRate * float64(l.Metrics.Occurrences)
		confSum += l.Metrics.Confidence

		if reason := reviewReason(l); reason != "" {
			snap.NeedsReview = append(snap.NeedsReview, RankedEntry{
				ID:          l.ID,
				Title:       l.Title,
				Uses:        l.Metrics.Occurrences,
				SuccessRate: l.Metrics.SuccessRate,
				Confidence:  l.Metrics.Confidence,
				Reason:      reason,
			})
		}
	}
	snap.Overview.ArchivedLessons += len(lessons.Archived)
	snap.Overview.TotalLessons = snap.Overview.ActiveLessons + snap.Overview.ArchivedLessons
	snap.Overview.TotalApplications = occurrences
	if occurrences > 0 {
		snap.Overview.OverallSuccessRate = successSum / float64(occurrences)
	}
	if snap.Overview.ActiveLessons > 0 {
		snap.Overview.AverageConfidence = confSum / float64(snap.Overview.ActiveLessons)
	}

	for _, c := range components.Components {
		if c.Archived {
			continue
		}
		snap.Overview.TotalComponents++
	}

	snap.TopLessons = topLessons(lessons.Lessons)
	snap.TopComponents = topComponents(components.Components)
	sort.SliceStable(snap.NeedsReview, func(i, j int) bool {
		return snap.NeedsReview[i].SuccessRate < snap.NeedsReview[j].SuccessRate
	})

	return snap
}

// reviewReason flags lessons a human should look at: chronically
// failing, or only ever seen once.
func reviewReason(l knowledge.Lesson) string {
	if l.Metrics.Occurrences >= 2 && l.Metrics.SuccessRate < 0.5 {
		return "success rate below 50%"
	}
	if l.Metrics.Occurrences == 1 {
		return "single occurrence"
	}
	return ""
}

func topLessons(lessons []knowledge.Lesson) []RankedEntry {
	entries := make([]RankedEntry, 0, len(lessons))
	for _, l := range lessons {
		if l.Archived || l.Metrics.Occurrences == 0 {
			continue
		}
		entries = append(entries, RankedEntry{
			ID:          l.ID,
			Title:       l.Title,
			Uses:        l.Metrics.Occurrences,
			SuccessRate: l.Metrics.SuccessRate,
			Confidence:  l.Metrics.Confidence,
		})
	}
	return rank(entries)
}

func topComponents(components []knowledge.Component) []RankedEntry {
	entries := make([]RankedEntry, 0, len(components))
	for _, c := range components {
		if c.Archived || c.Metrics.TotalUses == 0 {
			continue
		}
		entries = append(entries, RankedEntry{
			ID:          c.ID,
			Title:       c.Name,
			Uses:        c.Metrics.TotalUses,
			SuccessRate: c.Metrics.SuccessRate,
		})
	}
	return rank(entries)
}

// rank orders by uses desc, success rate desc, id asc, and keeps the
// top five.
func rank(entries []RankedEntry) []RankedEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Uses != entries[j].Uses {
			return entries[i].Uses > entries[j].Uses
		}
		if entries[i].SuccessRate != entries[j].SuccessRate {
			return entries[i].SuccessRate > entries[j].SuccessRate
		}
		return entries[i].ID < entries[j].ID
	})
	if len(entries) > topListSize {
		entries = entries[:topListSize]
	}
	return entries
}

// Maintain prunes expired history files and recomputes the snapshot —
// the periodic housekeeping entry point. Unlike Recompute, a missing
// lessons or components store counts as empty here: a fresh install
// has nothing to aggregate yet, and the prune that already happened
// must not be reported as a failure.
func (e *Engine) Maintain(historyRetention time.Duration) (*Snapshot, knowledge.PruneResult, error) {
	pruned := e.store.PruneHistory(historyRetention, e.now())

	lessons, err := e.store.LoadLessons()
	if err != nil {
		if !errors.Is(err, knowledge.ErrUnavailable) {
			return nil, pruned, fmt.Errorf("load lessons: %w", err)
		}
		lessons = knowledge.NewLessonsDoc()
	}
	components, err := e.store.LoadComponents()
	if err != nil {
		if !errors.Is(err, knowledge.ErrUnavailable) {
			return nil, pruned, fmt.Errorf("load components: %w", err)
		}
		components = knowledge.NewComponentsDoc()
	}

	snap := e.build(lessons, components)
	if err := e.store.SaveDoc(knowledge.AnalyticsFile, snap); err != nil {
		return nil, pruned, fmt.Errorf("save analytics: %w", err)
	}
	return snap, pruned, nil
}
