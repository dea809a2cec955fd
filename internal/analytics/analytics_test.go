package analytics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/patternbank/internal/knowledge"
)

func newTestEngine(t *testing.T) (*Engine, *knowledge.Store) {
	t.Helper()
	store := knowledge.NewStore(t.TempDir(), zap.NewNop())
	return NewEngine(store, zap.NewNop()), store
}

func lesson(id, title, category, scope string, occurrences int, successRate, confidence float64) knowledge.Lesson {
	return knowledge.Lesson{
		ID:       id,
		Title:    title,
		Category: category,
		Scope:    scope,
		Metrics: knowledge.LessonMetrics{
			Occurrences: occurrences,
			SuccessRate: successRate,
			Confidence:  confidence,
		},
	}
}

func TestRecomputeSnapshot(t *testing.T) {
	e, store := newTestEngine(t)

	doc := knowledge.NewLessonsDoc()
	doc.Lessons = []knowledge.Lesson{
		lesson("l1", "Use testid selectors", "selectors", "global", 10, 0.9, 0.8),
		lesson("l2", "Wait for network idle", "timing", "project", 5, 0.4, 0.5),
		lesson("l3", "One-off quirk", "timing", "journey", 1, 1.0, 0.3),
	}
	doc.Archived = []knowledge.Lesson{
		lesson("l4", "Retired", "selectors", "global", 20, 0.1, 0.2),
	}
	require.NoError(t, store.SaveLessons(doc))

	comps := knowledge.NewComponentsDoc()
	comps.Components = []knowledge.Component{
		{ID: "c1", Name: "LoginHelper", Metrics: knowledge.ComponentMetrics{TotalUses: 8, SuccessRate: 0.9}},
		{ID: "c2", Name: "Unused", Metrics: knowledge.ComponentMetrics{}},
		{ID: "c3", Name: "OldThing", Archived: true, Metrics: knowledge.ComponentMetrics{TotalUses: 99}},
	}
	require.NoError(t, store.SaveComponents(comps))

	snap, err := e.Recompute()
	require.NoError(t, err)

	assert.Equal(t, 3, snap.Overview.ActiveLessons)
	assert.Equal(t, 1, snap.Overview.ArchivedLessons)
	assert.Equal(t, 4, snap.Overview.TotalLessons)
	assert.Equal(t, 2, snap.Overview.TotalComponents) // archived excluded
	assert.Equal(t, 16, snap.Overview.TotalApplications)
	// (0.9*10 + 0.4*5 + 1.0*1) / 16 = 12/16
	assert.InDelta(t, 0.75, snap.Overview.OverallSuccessRate, 1e-9)
	// (0.8 + 0.5 + 0.3) / 3
	assert.InDelta(t, 0.5333, snap.Overview.AverageConfidence, 1e-3)

	assert.Equal(t, map[string]int{"selectors": 1, "timing": 2}, snap.ByCategory)
	assert.Equal(t, map[string]int{"global": 1, "project": 1, "journey": 1}, snap.ByScope)

	require.NotEmpty(t, snap.TopLessons)
	assert.Equal(t, "l1", snap.TopLessons[0].ID)
	require.Len(t, snap.TopComponents, 1)
	assert.Equal(t, "c1", snap.TopComponents[0].ID)
}

func TestRecomputeNeedsReview(t *testing.T) {
	e, store := newTestEngine(t)

	doc := knowledge.NewLessonsDoc()
	doc.Lessons = []knowledge.Lesson{
		lesson("fail", "Mostly fails", "timing", "global", 6, 0.3, 0.4),
		lesson("once", "Seen once", "timing", "global", 1, 1.0, 0.5),
		lesson("fine", "Healthy", "timing", "global", 6, 0.9, 0.8),
	}
	require.NoError(t, store.SaveLessons(doc))
	require.NoError(t, store.SaveComponents(knowledge.NewComponentsDoc()))

	snap, err := e.Recompute()
	require.NoError(t, err)

	require.Len(t, snap.NeedsReview, 2)
	// Lowest success rate first.
	assert.Equal(t, "fail", snap.NeedsReview[0].ID)
	assert.Equal(t, "success rate below 50%", snap.NeedsReview[0].Reason)
	assert.Equal(t, "once", snap.NeedsReview[1].ID)
	assert.Equal(t, "single occurrence", snap.NeedsReview[1].Reason)
}

func TestRecomputeTopListsCappedAtFive(t *testing.T) {
	e, store := newTestEngine(t)

	doc := knowledge.NewLessonsDoc()
	for i := 0; i < 8; i++ {
		doc.Lessons = append(doc.Lessons,
			lesson(string(rune('a'+i)), "L", "c", "global", 10-i, 0.9, 0.8))
	}
	require.NoError(t, store.SaveLessons(doc))
	require.NoError(t, store.SaveComponents(knowledge.NewComponentsDoc()))

	snap, err := e.Recompute()
	require.NoError(t, err)

	require.Len(t, snap.TopLessons, 5)
	assert.Equal(t, "a", snap.TopLessons[0].ID)
	assert.Equal(t, 10, snap.TopLessons[0].Uses)
}

func TestRecomputeFailsClosedWhenSourceUnreadable(t *testing.T) {
	e, store := newTestEngine(t)
	require.NoError(t, store.SaveLessons(knowledge.NewLessonsDoc()))
	// components.json missing entirely

	_, err := e.Recompute()
	require.Error(t, err)
	assert.ErrorIs(t, err, knowledge.ErrUnavailable)

	// No analytics file written.
	_, statErr := os.Stat(store.Path(knowledge.AnalyticsFile))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRecomputePersistsAndLoads(t *testing.T) {
	e, store := newTestEngine(t)
	require.NoError(t, store.SaveLessons(knowledge.NewLessonsDoc()))
	require.NoError(t, store.SaveComponents(knowledge.NewComponentsDoc()))

	snap, err := e.Recompute()
	require.NoError(t, err)
	assert.Equal(t, knowledge.SchemaVersion, snap.Version)

	loaded, err := e.Load()
	require.NoError(t, err)
	assert.Equal(t, snap.Overview, loaded.Overview)
	assert.Equal(t, snap.ByCategory, loaded.ByCategory)
}

func TestMaintainFreshStoreSucceeds(t *testing.T) {
	// Nothing persisted yet: maintenance still completes, with an
	// all-zero snapshot written.
	e, store := newTestEngine(t)

	snap, pruned, err := e.Maintain(30 * 24 * time.Hour)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Empty(t, pruned.Deleted)
	assert.Zero(t, snap.Overview.TotalLessons)
	assert.Zero(t, snap.Overview.TotalComponents)

	// Snapshot is on disk despite the empty sources.
	loaded, err := e.Load()
	require.NoError(t, err)
	assert.Equal(t, snap.Overview, loaded.Overview)

	// Direct recompute still fails closed: the tolerance is specific
	// to maintenance.
	require.NoError(t, os.Remove(store.Path(knowledge.AnalyticsFile)))
	_, err = e.Recompute()
	require.Error(t, err)
	assert.ErrorIs(t, err, knowledge.ErrUnavailable)
}

func TestMaintainPrunesHistoryAndRecomputes(t *testing.T) {
	e, store := newTestEngine(t)
	require.NoError(t, store.SaveLessons(knowledge.NewLessonsDoc()))
	require.NoError(t, store.SaveComponents(knowledge.NewComponentsDoc()))

	now := time.Now().UTC()
	require.NoError(t, store.AppendHistory(knowledge.HistoryEvent{
		Event: "lesson_applied", Timestamp: now.Add(-60 * 24 * time.Hour),
	}))
	require.NoError(t, store.AppendHistory(knowledge.HistoryEvent{
		Event: "lesson_applied", Timestamp: now,
	}))

	snap, pruned, err := e.Maintain(30 * 24 * time.Hour)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Len(t, pruned.Deleted, 1)

	entries, err := os.ReadDir(filepath.Join(store.Dir(), knowledge.HistoryDir))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
