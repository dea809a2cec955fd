// Package learning records real test outcomes back into the knowledge
// store, updating confidence and success rates.
//
// Every record operation is a self-contained read-modify-write: it
// reads the relevant store fresh, resolves its target, applies an
// incremental weighted-average update, writes the whole store back,
// and appends one immutable line to the day's history log. A missing
// or archived target is a structured failure with no partial write.
package learning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/patternbank/internal/knowledge"
	"github.com/fyrsmithlabs/patternbank/internal/pattern"
)

// Common errors for outcome recording.
var (
	ErrUnknownOutcomeType = errors.New("unknown outcome type")
	ErrMissingTargetID    = errors.New("target id is required")
)

// OutcomeType selects which store an outcome applies to.
type OutcomeType string

const (
	OutcomePattern   OutcomeType = "pattern"
	OutcomeComponent OutcomeType = "component"
	OutcomeLesson    OutcomeType = "lesson"
)

// Outcome is one reported result from a real test run.
type Outcome struct {
	// Type routes the outcome to its store.
	Type OutcomeType `json:"type"`

	// TargetID identifies the pattern, component, or lesson. Required;
	// resolution falls back to a best-effort name/title match when the
	// id is unknown.
	TargetID string `json:"targetId"`

	// JourneyID names the reporting journey. Repeat reports from the
	// same journey never duplicate attribution.
	JourneyID string `json:"journeyId,omitempty"`

	// Success is the outcome itself.
	Success bool `json:"success"`

	// Detail optionally annotates the history line.
	Detail string `json:"detail,omitempty"`
}

// Result reports what one record operation did.
type Result struct {
	// OK is false when the target was missing or archived; the store
	// is untouched in that case.
	OK bool `json:"ok"`

	// Reason explains a failed record.
	Reason string `json:"reason,omitempty"`

	// TargetID is the resolved target's id, which can differ from the
	// request when resolution fell back to a name match.
	TargetID string `json:"targetId,omitempty"`

	// NewRate is the updated success rate or confidence after the write.
	NewRate float64 `json:"newRate,omitempty"`
}

// Recorder applies outcomes to one knowledge store.
type Recorder struct {
	store  *knowledge.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewRecorder creates a recorder over store. A nil logger falls back
// to a no-op logger.
func NewRecorder(store *knowledge.Store, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{store: store, logger: logger, now: time.Now}
}

// RecordOutcome validates the outcome's type-specific identifiers and
// delegates to the matching recorder. The uniform entry point for all
// three outcome kinds.
func (r *Recorder) RecordOutcome(ctx context.Context, o Outcome) (Result, error) {
	if strings.TrimSpace(o.TargetID) == "" {
		return Result{Reason: "missing target id"}, fmt.Errorf("%w for %s outcome", ErrMissingTargetID, o.Type)
	}

	switch o.Type {
	case OutcomePattern:
		return r.recordPatternOutcome(ctx, o)
	case OutcomeComponent:
		return r.recordComponentUse(ctx, o)
	case OutcomeLesson:
		return r.recordLessonApplication(ctx, o)
	default:
		return Result{Reason: "unknown outcome type"}, fmt.Errorf("%w: %q", ErrUnknownOutcomeType, o.Type)
	}
}

// weightedRate is the incremental weighted-average update shared by
// every outcome kind: newRate = (oldRate*oldCount + outcome) / (oldCount+1).
func weightedRate(oldRate float64, oldCount int, success bool) float64 {
	outcome := 0.0
	if success {
		outcome = 1.0
	}
	return (oldRate*float64(oldCount) + outcome) / float64(oldCount+1)
}

func (r *Recorder) recordPatternOutcome(ctx context.Context, o Outcome) (Result, error) {
	doc, err := r.store.LoadPatterns()
	if err != nil {
		return Result{Reason: "patterns store unavailable"}, err
	}

	idx := -1
	for i := range doc.Patterns {
		if doc.Patterns[i].ID == o.TargetID {
			idx = i
			break
		}
	}
	if idx < 0 {
		// Best effort: the caller may only know the trigger phrase.
		want := strings.ToLower(strings.TrimSpace(o.TargetID))
		for i := range doc.Patterns {
			if strings.ToLower(doc.Patterns[i].NormalizedText) == want {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return Result{Reason: "pattern not found"}, fmt.Errorf("pattern %q: %w", o.TargetID, knowledge.ErrNotFound)
	}

	p := &doc.Patterns[idx]
	tried := p.SuccessCount + p.FailCount
	p.Confidence = pattern.ClampConfidence(weightedRate(p.Confidence, tried, o.Success))
	if o.Success {
		p.SuccessCount++
	} else {
		p.FailCount++
	}
	p.AddJourney(o.JourneyID)

	if err := r.store.SavePatterns(doc); err != nil {
		return Result{Reason: "write failed"}, err
	}
	if err := r.appendHistory("pattern_outcome", o, p.ID); err != nil {
		return Result{Reason: "history append failed"}, err
	}

	r.logger.Info("pattern outcome recorded",
		zap.String("pattern_id", p.ID),
		zap.Bool("success", o.Success),
		zap.Float64("confidence", p.Confidence))

	return Result{OK: true, TargetID: p.ID, NewRate: p.Confidence}, nil
}

func (r *Recorder) recordComponentUse(ctx context.Context, o Outcome) (Result, error) {
	doc, err := r.store.LoadComponents()
	if err != nil {
		return Result{Reason: "components store unavailable"}, err
	}

	idx := resolveComponent(doc.Components, o.TargetID)
	if idx < 0 {
		return Result{Reason: "component not found"}, fmt.Errorf("component %q: %w", o.TargetID, knowledge.ErrNotFound)
	}

	c := &doc.Components[idx]
	c.Metrics.SuccessRate = weightedRate(c.Metrics.SuccessRate, c.Metrics.TotalUses, o.Success)
	c.Metrics.TotalUses++
	c.Metrics.LastUsed = r.now().UTC()
	c.AddJourney(o.JourneyID)

	if err := r.store.SaveComponents(doc); err != nil {
		return Result{Reason: "write failed"}, err
	}
	if err := r.appendHistory("component_used", o, c.ID); err != nil {
		return Result{Reason: "history append failed"}, err
	}

	r.logger.Info("component use recorded",
		zap.String("component_id", c.ID),
		zap.Bool("success", o.Success),
		zap.Float64("success_rate", c.Metrics.SuccessRate))

	return Result{OK: true, TargetID: c.ID, NewRate: c.Metrics.SuccessRate}, nil
}

// resolveComponent finds a non-archived component by id, then by exact
// name. Archived components are logically deleted: invisible here.
func resolveComponent(components []knowledge.Component, target string) int {
	for i := range components {
		if components[i].Archived {
			continue
		}
		if components[i].ID == target {
			return i
		}
	}
	for i := range components {
		if components[i].Archived {
			continue
		}
		if components[i].Name == target {
			return i
		}
	}
	return -1
}

func (r *Recorder) recordLessonApplication(ctx context.Context, o Outcome) (Result, error) {
	doc, err := r.store.LoadLessons()
	if err != nil {
		return Result{Reason: "lessons store unavailable"}, err
	}

	idx := resolveLesson(doc.Lessons, o.TargetID)
	if idx < 0 {
		return Result{Reason: "lesson not found"}, fmt.Errorf("lesson %q: %w", o.TargetID, knowledge.ErrNotFound)
	}

	l := &doc.Lessons[idx]
	n := l.Metrics.Occurrences
	l.Metrics.SuccessRate = weightedRate(l.Metrics.SuccessRate, n, o.Success)
	// Confidence follows the same incremental rule, capped at the
	// pattern ceiling: monotone under repeated success, bounded above.
	l.Metrics.Confidence = pattern.ClampConfidence(weightedRate(l.Metrics.Confidence, n, o.Success))
	l.Metrics.Occurrences = n + 1
	l.Metrics.UpdatedAt = r.now().UTC()
	l.Metrics.History = append(l.Metrics.History, knowledge.MetricPoint{
		Timestamp: r.now().UTC(),
		Success:   o.Success,
		JourneyID: o.JourneyID,
	})
	l.AddJourney(o.JourneyID)

	if err := r.store.SaveLessons(doc); err != nil {
		return Result{Reason: "write failed"}, err
	}
	if err := r.appendHistory("lesson_applied", o, l.ID); err != nil {
		return Result{Reason: "history append failed"}, err
	}

	r.logger.Info("lesson application recorded",
		zap.String("lesson_id", l.ID),
		zap.Bool("success", o.Success),
		zap.Float64("confidence", l.Metrics.Confidence))

	return Result{OK: true, TargetID: l.ID, NewRate: l.Metrics.SuccessRate}, nil
}

// resolveLesson finds an active lesson by id, then by case-insensitive
// title. Lessons in the archived list are never candidates — archived
// means logically deleted.
func resolveLesson(lessons []knowledge.Lesson, target string) int {
	for i := range lessons {
		if lessons[i].Archived {
			continue
		}
		if lessons[i].ID == target {
			return i
		}
	}
	for i := range lessons {
		if lessons[i].Archived {
			continue
		}
		if strings.EqualFold(lessons[i].Title, target) {
			return i
		}
	}
	return -1
}

func (r *Recorder) appendHistory(event string, o Outcome, resolvedID string) error {
	return r.store.AppendHistory(knowledge.HistoryEvent{
		Event:     event,
		Timestamp: r.now().UTC(),
		JourneyID: o.JourneyID,
		TargetID:  resolvedID,
		Success:   o.Success,
		Detail:    o.Detail,
	})
}
