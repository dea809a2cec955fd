package learning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/patternbank/internal/knowledge"
	"github.com/fyrsmithlabs/patternbank/internal/pattern"
)

func newTestRecorder(t *testing.T) (*Recorder, *knowledge.Store) {
	t.Helper()
	store := knowledge.NewStore(t.TempDir(), zap.NewNop())
	return NewRecorder(store, zap.NewNop()), store
}

func seedLessons(t *testing.T, store *knowledge.Store, lessons []knowledge.Lesson, archived []knowledge.Lesson) {
	t.Helper()
	doc := knowledge.NewLessonsDoc()
	doc.Lessons = lessons
	doc.Archived = archived
	require.NoError(t, store.SaveLessons(doc))
}

func seedComponents(t *testing.T, store *knowledge.Store, components []knowledge.Component) {
	t.Helper()
	doc := knowledge.NewComponentsDoc()
	doc.Components = components
	require.NoError(t, store.SaveComponents(doc))
}

func seedPatterns(t *testing.T, store *knowledge.Store, patterns []pattern.Pattern) {
	t.Helper()
	require.NoError(t, store.SavePatterns(&knowledge.PatternsDoc{
		Version:     knowledge.SchemaVersion,
		GeneratedAt: time.Now().UTC(),
		Source:      "test",
		Patterns:    patterns,
	}))
}

func TestRecordOutcomeValidation(t *testing.T) {
	r, _ := newTestRecorder(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		outcome Outcome
		wantErr error
	}{
		{
			name:    "missing target id",
			outcome: Outcome{Type: OutcomeLesson, Success: true},
			wantErr: ErrMissingTargetID,
		},
		{
			name:    "whitespace target id",
			outcome: Outcome{Type: OutcomePattern, TargetID: "   "},
			wantErr: ErrMissingTargetID,
		},
		{
			name:    "unknown type",
			outcome: Outcome{Type: "journey", TargetID: "x"},
			wantErr: ErrUnknownOutcomeType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.RecordOutcome(ctx, tt.outcome)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, res.OK)
		})
	}
}

func TestRecordComponentUseWeightedAverage(t *testing.T) {
	r, store := newTestRecorder(t)
	seedComponents(t, store, []knowledge.Component{{
		ID:       "comp-login",
		Name:     "LoginHelper",
		Category: "auth",
		Metrics:  knowledge.ComponentMetrics{TotalUses: 5, SuccessRate: 0.9},
	}})

	res, err := r.RecordOutcome(context.Background(), Outcome{
		Type:      OutcomeComponent,
		TargetID:  "comp-login",
		JourneyID: "journey-7",
		Success:   false,
	})
	require.NoError(t, err)
	assert.True(t, res.OK)

	// (0.9*5 + 0) / 6 = 0.75
	assert.InDelta(t, 0.75, res.NewRate, 1e-9)

	doc, err := store.LoadComponents()
	require.NoError(t, err)
	c := doc.Components[0]
	assert.Equal(t, 6, c.Metrics.TotalUses)
	assert.InDelta(t, 0.75, c.Metrics.SuccessRate, 1e-9)
	assert.False(t, c.Metrics.LastUsed.IsZero())
	assert.Equal(t, []string{"journey-7"}, c.JourneyIDs)
}

func TestRecordComponentUseResolvesByName(t *testing.T) {
	r, store := newTestRecorder(t)
	seedComponents(t, store, []knowledge.Component{{
		ID:   "comp-abc",
		Name: "TableSorter",
	}})

	res, err := r.RecordOutcome(context.Background(), Outcome{
		Type:     OutcomeComponent,
		TargetID: "TableSorter",
		Success:  true,
	})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "comp-abc", res.TargetID)
	assert.InDelta(t, 1.0, res.NewRate, 1e-9)
}

func TestRecordComponentUseArchivedIsNotFound(t *testing.T) {
	r, store := newTestRecorder(t)
	seedComponents(t, store, []knowledge.Component{{
		ID:       "comp-old",
		Name:     "LegacyModal",
		Archived: true,
		Metrics:  knowledge.ComponentMetrics{TotalUses: 3, SuccessRate: 0.5},
	}})

	res, err := r.RecordOutcome(context.Background(), Outcome{
		Type:     OutcomeComponent,
		TargetID: "comp-old",
		Success:  true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, knowledge.ErrNotFound)
	assert.False(t, res.OK)

	// Archived record untouched.
	doc, err := store.LoadComponents()
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Components[0].Metrics.TotalUses)
	assert.InDelta(t, 0.5, doc.Components[0].Metrics.SuccessRate, 1e-9)
}

func TestRecordLessonApplication(t *testing.T) {
	r, store := newTestRecorder(t)
	seedLessons(t, store, []knowledge.Lesson{{
		ID:    "lesson-1",
		Title: "Prefer testid selectors",
		Metrics: knowledge.LessonMetrics{
			Occurrences: 4,
			SuccessRate: 0.5,
			Confidence:  0.6,
		},
	}}, nil)

	res, err := r.RecordOutcome(context.Background(), Outcome{
		Type:      OutcomeLesson,
		TargetID:  "lesson-1",
		JourneyID: "journey-2",
		Success:   true,
	})
	require.NoError(t, err)
	assert.True(t, res.OK)

	doc, err := store.LoadLessons()
	require.NoError(t, err)
	l := doc.Lessons[0]
	assert.Equal(t, 5, l.Metrics.Occurrences)
	// (0.5*4 + 1) / 5 = 0.6
	assert.InDelta(t, 0.6, l.Metrics.SuccessRate, 1e-9)
	// (0.6*4 + 1) / 5 = 0.68
	assert.InDelta(t, 0.68, l.Metrics.Confidence, 1e-9)
	require.Len(t, l.Metrics.History, 1)
	assert.True(t, l.Metrics.History[0].Success)
	assert.Equal(t, "journey-2", l.Metrics.History[0].JourneyID)
	assert.Equal(t, []string{"journey-2"}, l.JourneyIDs)
}

func TestRecordLessonConfidenceCeiling(t *testing.T) {
	r, store := newTestRecorder(t)
	seedLessons(t, store, []knowledge.Lesson{{
		ID:    "lesson-max",
		Title: "Always works",
		Metrics: knowledge.LessonMetrics{
			Occurrences: 100,
			SuccessRate: 0.95,
			Confidence:  0.95,
		},
	}}, nil)

	for i := 0; i < 5; i++ {
		_, err := r.RecordOutcome(context.Background(), Outcome{
			Type: OutcomeLesson, TargetID: "lesson-max", Success: true,
		})
		require.NoError(t, err)
	}

	doc, err := store.LoadLessons()
	require.NoError(t, err)
	assert.LessOrEqual(t, doc.Lessons[0].Metrics.Confidence, pattern.MaxConfidence)
}

func TestRecordLessonResolvesByTitleCaseInsensitive(t *testing.T) {
	r, store := newTestRecorder(t)
	seedLessons(t, store, []knowledge.Lesson{{
		ID:    "lesson-t",
		Title: "Avoid Brittle XPaths",
	}}, nil)

	res, err := r.RecordOutcome(context.Background(), Outcome{
		Type: OutcomeLesson, TargetID: "avoid brittle xpaths", Success: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "lesson-t", res.TargetID)
}

func TestRecordLessonArchivedSetIsNotFound(t *testing.T) {
	r, store := newTestRecorder(t)
	archived := knowledge.Lesson{
		ID:    "lesson-gone",
		Title: "Retired advice",
		Metrics: knowledge.LessonMetrics{
			Occurrences: 7,
			SuccessRate: 0.2,
		},
		Archived: true,
	}
	seedLessons(t, store, nil, []knowledge.Lesson{archived})

	res, err := r.RecordOutcome(context.Background(), Outcome{
		Type: OutcomeLesson, TargetID: "lesson-gone", Success: true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, knowledge.ErrNotFound)
	assert.False(t, res.OK)

	doc, err := store.LoadLessons()
	require.NoError(t, err)
	require.Len(t, doc.Archived, 1)
	assert.Equal(t, 7, doc.Archived[0].Metrics.Occurrences)
	assert.InDelta(t, 0.2, doc.Archived[0].Metrics.SuccessRate, 1e-9)
}

func TestRecordPatternOutcome(t *testing.T) {
	r, store := newTestRecorder(t)
	seedPatterns(t, store, []pattern.Pattern{{
		ID:             "pat-1",
		NormalizedText: "click the save button",
		Action:         pattern.ActionClick,
		Confidence:     0.8,
		SuccessCount:   3,
		FailCount:      1,
	}})

	res, err := r.RecordOutcome(context.Background(), Outcome{
		Type:      OutcomePattern,
		TargetID:  "pat-1",
		JourneyID: "journey-9",
		Success:   true,
	})
	require.NoError(t, err)
	assert.True(t, res.OK)

	doc, err := store.LoadPatterns()
	require.NoError(t, err)
	p := doc.Patterns[0]
	assert.Equal(t, 4, p.SuccessCount)
	assert.Equal(t, 1, p.FailCount)
	// (0.8*4 + 1) / 5 = 0.84
	assert.InDelta(t, 0.84, p.Confidence, 1e-9)
	assert.Equal(t, []string{"journey-9"}, p.SourceJourneys)
}

func TestRecordPatternResolvesByText(t *testing.T) {
	r, store := newTestRecorder(t)
	seedPatterns(t, store, []pattern.Pattern{{
		ID:             "pat-x",
		NormalizedText: "Open The Settings Menu",
		Action:         pattern.ActionClick,
		Confidence:     0.7,
	}})

	res, err := r.RecordOutcome(context.Background(), Outcome{
		Type: OutcomePattern, TargetID: "open the settings menu", Success: false,
	})
	require.NoError(t, err)
	assert.Equal(t, "pat-x", res.TargetID)
}

func TestRecordPatternNotFound(t *testing.T) {
	r, store := newTestRecorder(t)
	seedPatterns(t, store, nil)

	_, err := r.RecordOutcome(context.Background(), Outcome{
		Type: OutcomePattern, TargetID: "pat-nope", Success: true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, knowledge.ErrNotFound)
	_ = store
}

func TestRecordAppendsHistory(t *testing.T) {
	r, store := newTestRecorder(t)
	seedComponents(t, store, []knowledge.Component{{ID: "comp-1", Name: "Nav"}})

	_, err := r.RecordOutcome(context.Background(), Outcome{
		Type:      OutcomeComponent,
		TargetID:  "comp-1",
		JourneyID: "journey-h",
		Success:   true,
		Detail:    "used in checkout flow",
	})
	require.NoError(t, err)

	events, err := store.ReadHistory(time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "component_used", events[0].Event)
	assert.Equal(t, "comp-1", events[0].TargetID)
	assert.Equal(t, "journey-h", events[0].JourneyID)
	assert.Equal(t, "used in checkout flow", events[0].Detail)
	assert.True(t, events[0].Success)
}

func TestRecordJourneyAttributionIdempotent(t *testing.T) {
	r, store := newTestRecorder(t)
	seedComponents(t, store, []knowledge.Component{{ID: "comp-1", Name: "Nav"}})

	for i := 0; i < 3; i++ {
		_, err := r.RecordOutcome(context.Background(), Outcome{
			Type: OutcomeComponent, TargetID: "comp-1", JourneyID: "journey-same", Success: true,
		})
		require.NoError(t, err)
	}

	doc, err := store.LoadComponents()
	require.NoError(t, err)
	assert.Equal(t, []string{"journey-same"}, doc.Components[0].JourneyIDs)
	assert.Equal(t, 3, doc.Components[0].Metrics.TotalUses)
}

func TestRecordUnavailableStoreFails(t *testing.T) {
	r, _ := newTestRecorder(t)

	_, err := r.RecordOutcome(context.Background(), Outcome{
		Type: OutcomeLesson, TargetID: "lesson-1", Success: true,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, knowledge.ErrUnavailable))
}
