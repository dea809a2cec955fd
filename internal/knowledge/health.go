package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
)

// Status is a health level. Levels order error > warning > healthy;
// the overall report carries the worst level any check produced.
type Status string

const (
	StatusHealthy Status = "healthy"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// worse reports whether a outranks b.
func (a Status) worse(b Status) bool {
	rank := map[Status]int{StatusHealthy: 0, StatusWarning: 1, StatusError: 2}
	return rank[a] > rank[b]
}

// Check is one independent health probe result.
type Check struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// HealthReport summarizes the store's condition.
type HealthReport struct {
	Status Status  `json:"status"`
	Checks []Check `json:"checks"`
}

// lowConfidenceLessonFloor triggers the review warning: lessons this
// uncertain have been failing and deserve a human look.
const lowConfidenceLessonFloor = 0.3

// HealthCheck evaluates the store: root existence (fatal when absent),
// per-file parseability, config presence, and a derived
// low-confidence-lesson warning. Checks are independent; one failing
// file never hides the state of the others.
func (s *Store) HealthCheck() HealthReport {
	report := HealthReport{Status: StatusHealthy}

	add := func(c Check) {
		report.Checks = append(report.Checks, c)
		if c.Status.worse(report.Status) {
			report.Status = c.Status
		}
	}

	if info, err := os.Stat(s.dir); err != nil || !info.IsDir() {
		add(Check{Name: "store-root", Status: StatusError, Detail: fmt.Sprintf("knowledge base directory %s does not exist", s.dir)})
		return report
	}
	add(Check{Name: "store-root", Status: StatusHealthy})

	for _, name := range []string{PatternsFile, ProfileFile, LessonsFile, ComponentsFile, AnalyticsFile} {
		add(s.checkFileParseable(name))
	}

	if _, err := os.Stat(s.Path(ConfigFile)); err != nil {
		add(Check{Name: ConfigFile, Status: StatusWarning, Detail: "config.yml not found"})
	} else {
		add(Check{Name: ConfigFile, Status: StatusHealthy})
	}

	add(s.checkLessonConfidence())
	return report
}

// checkFileParseable verifies one store file holds valid JSON. Missing
// files are healthy — a fresh install has none of them.
func (s *Store) checkFileParseable(name string) Check {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return Check{Name: name, Status: StatusHealthy, Detail: "absent"}
	}
	if !json.Valid(data) {
		return Check{Name: name, Status: StatusError, Detail: "unparseable JSON"}
	}
	return Check{Name: name, Status: StatusHealthy}
}

// checkLessonConfidence warns when any active lesson's confidence has
// sunk below the review floor. An unavailable lessons store is not a
// failure here — parseability has its own check.
func (s *Store) checkLessonConfidence() Check {
	doc, err := s.LoadLessons()
	if err != nil {
		return Check{Name: "lesson-confidence", Status: StatusHealthy, Detail: "lessons unavailable"}
	}

	low := 0
	for _, lesson := range doc.Lessons {
		if lesson.Metrics.Confidence < lowConfidenceLessonFloor {
			low++
		}
	}
	if low > 0 {
		return Check{
			Name:   "lesson-confidence",
			Status: StatusWarning,
			Detail: fmt.Sprintf("%d lesson(s) below confidence %.1f need review", low, lowConfidenceLessonFloor),
		}
	}
	return Check{Name: "lesson-confidence", Status: StatusHealthy}
}
