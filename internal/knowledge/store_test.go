package knowledge

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/patternbank/internal/discovery"
	"github.com/fyrsmithlabs/patternbank/internal/pattern"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), nil)
}

func TestPatternsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	doc := &PatternsDoc{
		Version:     SchemaVersion,
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Source:      "discovery",
		Patterns: []pattern.Pattern{{
			ID:             "pat-1",
			NormalizedText: "click save button",
			OriginalText:   "Click Save Button",
			Action:         pattern.ActionClick,
			SelectorHints:  []pattern.SelectorHint{{Strategy: "testid", Value: "save-btn"}},
			Confidence:     0.85,
			Layer:          pattern.LayerAppSpecific,
			Category:       "crud",
			SourceJourneys: []string{"j1"},
			SuccessCount:   3,
			FailCount:      1,
			TemplateSource: "crud",
			EntityName:     "Invoice",
		}},
		Metadata: PatternsMetadata{
			Frameworks:        []string{"react"},
			UILibraries:       []string{"mui"},
			TotalPatterns:     1,
			ByCategory:        map[string]int{"crud": 1},
			ByTemplate:        map[string]int{"crud": 1},
			AverageConfidence: 0.85,
		},
	}
	require.NoError(t, s.SavePatterns(doc))

	got, err := s.LoadPatterns()
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestLoadUnavailableCases(t *testing.T) {
	s := newTestStore(t)

	t.Run("missing file", func(t *testing.T) {
		_, err := s.LoadPatterns()
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("empty file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(s.Path(PatternsFile), []byte("  \n"), 0o644))
		_, err := s.LoadPatterns()
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		require.NoError(t, os.WriteFile(s.Path(PatternsFile), []byte("{broken"), 0o644))
		_, err := s.LoadPatterns()
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("wrong shape", func(t *testing.T) {
		// Parseable JSON missing the version tag fails the shape check.
		require.NoError(t, os.WriteFile(s.Path(PatternsFile), []byte(`{"patterns": []}`), 0o644))
		_, err := s.LoadPatterns()
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestLessonsRoundTripNormalizesNilSlices(t *testing.T) {
	s := newTestStore(t)

	doc := &LessonsDoc{Version: SchemaVersion}
	require.NoError(t, s.SaveLessons(doc))

	got, err := s.LoadLessons()
	require.NoError(t, err)
	assert.NotNil(t, got.Lessons)
	assert.NotNil(t, got.Archived)
	assert.Empty(t, got.Lessons)
	assert.False(t, got.LastUpdated.IsZero())
}

func TestProfileRoundTrip(t *testing.T) {
	s := newTestStore(t)

	profile := &discovery.AppProfile{
		Frameworks:  []discovery.Detection{{Name: "react", Confidence: 0.8, Evidence: []string{"manifest:react"}}},
		UILibraries: []discovery.Detection{},
		SelectorSignals: discovery.SelectorSignals{
			PrimaryAttribute: "data-testid",
			NamingConvention: "kebab-case",
			Coverage:         map[string]float64{"data-testid": 0.5},
		},
		AuthHints:   discovery.AuthHints{Detected: true, Type: discovery.AuthForm, LoginRoute: "/login"},
		GeneratedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveProfile(profile))

	got, err := s.LoadProfile()
	require.NoError(t, err)
	assert.Equal(t, profile, got)
}

func TestSaveCreatesDirectories(t *testing.T) {
	root := t.TempDir()
	s := NewStore(filepath.Join(root, "nested", "kb"), nil)
	require.NoError(t, s.SaveComponents(NewComponentsDoc()))

	_, err := os.Stat(s.Path(ComponentsFile))
	assert.NoError(t, err)
}

func TestAppendAndReadHistory(t *testing.T) {
	s := newTestStore(t)
	ts := time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC)

	require.NoError(t, s.AppendHistory(HistoryEvent{
		Event: "pattern_outcome", Timestamp: ts, JourneyID: "j1", TargetID: "pat-1", Success: true,
	}))
	require.NoError(t, s.AppendHistory(HistoryEvent{
		Event: "lesson_applied", Timestamp: ts.Add(time.Hour), JourneyID: "j2", TargetID: "les-1", Success: false,
	}))

	events, err := s.ReadHistory(ts)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "pattern_outcome", events[0].Event)
	assert.Equal(t, "les-1", events[1].TargetID)

	// A different date has no events.
	events, err = s.ReadHistory(ts.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestPruneHistory(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	old := now.AddDate(0, 0, -45)
	recent := now.AddDate(0, 0, -5)
	require.NoError(t, s.AppendHistory(HistoryEvent{Event: "pattern_outcome", Timestamp: old, JourneyID: "j", TargetID: "p"}))
	require.NoError(t, s.AppendHistory(HistoryEvent{Event: "pattern_outcome", Timestamp: recent, JourneyID: "j", TargetID: "p"}))
	// A stray file that is not a history log is left alone.
	require.NoError(t, os.WriteFile(filepath.Join(s.Path(HistoryDir), "notes.txt"), []byte("keep"), 0o644))

	result := s.PruneHistory(30*24*time.Hour, now)
	assert.Equal(t, []string{old.Format("2006-01-02") + ".jsonl"}, result.Deleted)
	assert.Empty(t, result.Errors)

	events, err := s.ReadHistory(recent)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	_, err = os.Stat(filepath.Join(s.Path(HistoryDir), "notes.txt"))
	assert.NoError(t, err)
}

func TestPruneHistoryNoDirectory(t *testing.T) {
	result := newTestStore(t).PruneHistory(time.Hour, time.Now())
	assert.Empty(t, result.Deleted)
	assert.Empty(t, result.Errors)
}

func TestHealthCheckMissingRootIsFatal(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope"), nil)
	report := s.HealthCheck()
	assert.Equal(t, StatusError, report.Status)
	require.Len(t, report.Checks, 1)
	assert.Equal(t, "store-root", report.Checks[0].Name)
}

func TestHealthCheckFreshStoreWarnsOnConfigOnly(t *testing.T) {
	s := newTestStore(t)
	report := s.HealthCheck()

	// Absent files are healthy; absent config.yml is only a warning.
	assert.Equal(t, StatusWarning, report.Status)
	for _, c := range report.Checks {
		if c.Name == ConfigFile {
			assert.Equal(t, StatusWarning, c.Status)
		} else {
			assert.Equal(t, StatusHealthy, c.Status, "check %s", c.Name)
		}
	}
}

func TestHealthCheckUnparseableFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(LessonsFile), []byte("{oops"), 0o644))
	require.NoError(t, os.WriteFile(s.Path(ConfigFile), []byte("threshold: 0.7\n"), 0o644))

	report := s.HealthCheck()
	assert.Equal(t, StatusError, report.Status)

	var lessonCheck *Check
	for i := range report.Checks {
		if report.Checks[i].Name == LessonsFile {
			lessonCheck = &report.Checks[i]
		}
	}
	require.NotNil(t, lessonCheck)
	assert.Equal(t, StatusError, lessonCheck.Status)
}

func TestHealthCheckLowConfidenceLessonWarning(t *testing.T) {
	s := newTestStore(t)
	doc := NewLessonsDoc()
	doc.Lessons = append(doc.Lessons, Lesson{
		ID: "les-1", Title: "flaky selector", Category: "selectors", Severity: "warning", Scope: "project",
		Metrics: LessonMetrics{Occurrences: 4, SuccessRate: 0.2, Confidence: 0.1},
	})
	require.NoError(t, s.SaveLessons(doc))
	require.NoError(t, os.WriteFile(s.Path(ConfigFile), []byte("x: 1\n"), 0o644))

	report := s.HealthCheck()
	assert.Equal(t, StatusWarning, report.Status)

	found := false
	for _, c := range report.Checks {
		if c.Name == "lesson-confidence" {
			found = true
			assert.Equal(t, StatusWarning, c.Status)
			assert.Contains(t, c.Detail, "1 lesson(s)")
		}
	}
	assert.True(t, found)
}
