// Package knowledge implements the durable file store for the pattern
// knowledge base: discovered patterns, lessons, components, analytics,
// and the append-only outcome history.
//
// Stores are whole-file JSON documents under a caller-supplied
// directory. A save is a full overwrite; a load parses and validates
// the top-level shape before returning. Any parse failure, missing or
// empty file, or shape mismatch yields ErrUnavailable rather than an
// exception, so callers treat absence uniformly — a fresh install and
// a corrupted file look the same from the outside.
package knowledge

import (
	"errors"
	"time"

	"github.com/fyrsmithlabs/patternbank/internal/pattern"
)

// Common errors for knowledge store operations.
var (
	// ErrUnavailable means a store document could not be produced:
	// missing file, empty file, unparseable JSON, or a shape mismatch.
	ErrUnavailable = errors.New("store unavailable")

	// ErrNotFound means a lookup targeted an entity that does not exist
	// or is archived.
	ErrNotFound = errors.New("not found")
)

// SchemaVersion is written into every persisted document.
const SchemaVersion = "1.0"

// Store file names, rooted at the knowledge-base directory.
const (
	PatternsFile   = "discovered-patterns.json"
	ProfileFile    = "discovered-profile.json"
	LessonsFile    = "lessons.json"
	ComponentsFile = "components.json"
	AnalyticsFile  = "analytics.json"
	HistoryDir     = "history"
	ConfigFile     = "config.yml"
)

// LessonMetrics tracks how a lesson has performed across journeys.
type LessonMetrics struct {
	Occurrences int           `json:"occurrences"`
	SuccessRate float64       `json:"successRate"`
	Confidence  float64       `json:"confidence"`
	History     []MetricPoint `json:"history,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// MetricPoint is one observation in a lesson's metric history.
type MetricPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
	JourneyID string    `json:"journeyId,omitempty"`
}

// LessonValidation carries human-review metadata for a lesson.
type LessonValidation struct {
	Status     string    `json:"status"` // pending, approved, rejected
	ReviewedBy string    `json:"reviewedBy,omitempty"`
	ReviewedAt time.Time `json:"reviewedAt,omitzero"`
}

// Lesson is a curated rule distilled from repeated outcomes.
//
// Lessons are authored upstream; this core only mutates their metrics
// and journey attribution. Deletion is always the Archived flag —
// archived lessons are logically deleted and every lookup treats them
// as not found.
type Lesson struct {
	ID          string           `json:"id"`
	Category    string           `json:"category"`
	Severity    string           `json:"severity"` // info, warning, critical
	Scope       string           `json:"scope"`    // journey, project, global
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	BeforeCode  string           `json:"beforeCode,omitempty"`
	AfterCode   string           `json:"afterCode,omitempty"`
	Metrics     LessonMetrics    `json:"metrics"`
	Validation  LessonValidation `json:"validation"`
	JourneyIDs  []string         `json:"journeyIds,omitempty"`
	Archived    bool             `json:"archived"`
}

// AddJourney records journeyID against the lesson if not already present.
func (l *Lesson) AddJourney(journeyID string) {
	if journeyID == "" {
		return
	}
	for _, j := range l.JourneyIDs {
		if j == journeyID {
			return
		}
	}
	l.JourneyIDs = append(l.JourneyIDs, journeyID)
}

// ComponentMetrics tracks reuse of an extracted component.
type ComponentMetrics struct {
	TotalUses   int       `json:"totalUses"`
	SuccessRate float64   `json:"successRate"`
	LastUsed    time.Time `json:"lastUsed,omitzero"`
}

// Component is a reusable extracted code fragment tracked by reuse.
type Component struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	Category      string           `json:"category"`
	Scope         string           `json:"scope"`
	Code          string           `json:"code,omitempty"`
	Metrics       ComponentMetrics `json:"metrics"`
	SourceJourney string           `json:"sourceJourney,omitempty"`
	JourneyIDs    []string         `json:"journeyIds,omitempty"`
	Archived      bool             `json:"archived"`
}

// AddJourney records journeyID against the component if not already present.
func (c *Component) AddJourney(journeyID string) {
	if journeyID == "" {
		return
	}
	for _, j := range c.JourneyIDs {
		if j == journeyID {
			return
		}
	}
	c.JourneyIDs = append(c.JourneyIDs, journeyID)
}

// HistoryEvent is one append-only outcome log line. Events are
// immutable once written.
type HistoryEvent struct {
	Event     string    `json:"event"` // pattern_outcome, component_used, lesson_applied
	Timestamp time.Time `json:"timestamp"`
	JourneyID string    `json:"journeyId"`
	TargetID  string    `json:"targetId"`
	Success   bool      `json:"success"`
	Detail    string    `json:"detail,omitempty"`
}

// PatternsMetadata summarizes a discovery run's pattern output.
type PatternsMetadata struct {
	Frameworks          []string       `json:"frameworks"`
	UILibraries         []string       `json:"uiLibraries"`
	TotalPatterns       int            `json:"totalPatterns"`
	ByCategory          map[string]int `json:"byCategory"`
	ByTemplate          map[string]int `json:"byTemplate"`
	AverageConfidence   float64        `json:"averageConfidence"`
	DiscoveryDurationMS int64          `json:"discoveryDuration,omitempty"`
}

// PatternsDoc is the persisted shape of discovered-patterns.json.
type PatternsDoc struct {
	Version     string            `json:"version"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Source      string            `json:"source"`
	Patterns    []pattern.Pattern `json:"patterns"`
	Metadata    PatternsMetadata  `json:"metadata"`
}

// LessonsDoc is the persisted shape of lessons.json. Archived lessons
// live in their own list so active scans never see them.
type LessonsDoc struct {
	Version     string    `json:"version"`
	LastUpdated time.Time `json:"lastUpdated"`
	Lessons     []Lesson  `json:"lessons"`
	Archived    []Lesson  `json:"archived"`
}

// ComponentsDoc is the persisted shape of components.json.
type ComponentsDoc struct {
	Version     string      `json:"version"`
	LastUpdated time.Time   `json:"lastUpdated"`
	Components  []Component `json:"components"`
}

// validate functions perform the explicit shape check required after
// deserialization. They normalize nil slices/maps so callers never
// branch on nil, and reject documents missing a version tag.

func (d *PatternsDoc) validate() error {
	if d.Version == "" {
		return errors.New("missing version")
	}
	if d.Patterns == nil {
		d.Patterns = []pattern.Pattern{}
	}
	if d.Metadata.ByCategory == nil {
		d.Metadata.ByCategory = map[string]int{}
	}
	if d.Metadata.ByTemplate == nil {
		d.Metadata.ByTemplate = map[string]int{}
	}
	return nil
}

func (d *LessonsDoc) validate() error {
	if d.Version == "" {
		return errors.New("missing version")
	}
	if d.Lessons == nil {
		d.Lessons = []Lesson{}
	}
	if d.Archived == nil {
		d.Archived = []Lesson{}
	}
	return nil
}

func (d *ComponentsDoc) validate() error {
	if d.Version == "" {
		return errors.New("missing version")
	}
	if d.Components == nil {
		d.Components = []Component{}
	}
	return nil
}

// NewLessonsDoc returns an empty, valid lessons document.
func NewLessonsDoc() *LessonsDoc {
	return &LessonsDoc{Version: SchemaVersion, LastUpdated: time.Now().UTC(), Lessons: []Lesson{}, Archived: []Lesson{}}
}

// NewComponentsDoc returns an empty, valid components document.
func NewComponentsDoc() *ComponentsDoc {
	return &ComponentsDoc{Version: SchemaVersion, LastUpdated: time.Now().UTC(), Components: []Component{}}
}
