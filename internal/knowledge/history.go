package knowledge

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// historyDateLayout names one history file per UTC day.
const historyDateLayout = "2006-01-02"

// AppendHistory appends one event line to the current date's history
// log, creating the history directory as needed. Events are immutable
// once written; nothing in the system rewrites a history file.
func (s *Store) AppendHistory(event HistoryEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	dir := s.Path(HistoryDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling history event: %w", err)
	}

	name := event.Timestamp.UTC().Format(historyDateLayout) + ".jsonl"
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("appending history event: %w", err)
	}
	return nil
}

// ReadHistory returns the events logged on one UTC date. A missing
// file yields an empty slice; unparseable lines are skipped.
func (s *Store) ReadHistory(date time.Time) ([]HistoryEvent, error) {
	name := date.UTC().Format(historyDateLayout) + ".jsonl"
	f, err := os.Open(filepath.Join(s.Path(HistoryDir), name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	var events []HistoryEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var event HistoryEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, scanner.Err()
}

// PruneResult reports one history pruning pass.
type PruneResult struct {
	// Deleted lists the history files removed.
	Deleted []string `json:"deleted"`

	// Errors collects per-file failures. A file that cannot be removed
	// never aborts the pass for the rest.
	Errors []string `json:"errors,omitempty"`
}

// DefaultHistoryRetention is how long history files are kept.
const DefaultHistoryRetention = 30 * 24 * time.Hour

// PruneHistory deletes history files whose date is older than the
// retention window. Files with unrecognizable names are left alone.
// Errors are collected per file; the pass always completes for
// unaffected files.
func (s *Store) PruneHistory(retention time.Duration, now time.Time) PruneResult {
	if retention <= 0 {
		retention = DefaultHistoryRetention
	}
	cutoff := now.UTC().Add(-retention)

	var result PruneResult
	entries, err := os.ReadDir(s.Path(HistoryDir))
	if err != nil {
		// No history directory means nothing to prune.
		return result
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		base, ok := historyFileDate(name)
		if !ok {
			continue
		}
		if !base.Before(cutoff) {
			continue
		}
		path := filepath.Join(s.Path(HistoryDir), name)
		if err := os.Remove(path); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		result.Deleted = append(result.Deleted, name)
	}

	if len(result.Deleted) > 0 {
		s.logger.Info("history pruned",
			zap.Int("deleted", len(result.Deleted)),
			zap.Int("errors", len(result.Errors)))
	}
	return result
}

// historyFileDate parses the date out of a history file name.
func historyFileDate(name string) (time.Time, bool) {
	const suffix = ".jsonl"
	if len(name) != len(historyDateLayout)+len(suffix) || name[len(name)-len(suffix):] != suffix {
		return time.Time{}, false
	}
	t, err := time.Parse(historyDateLayout, name[:len(historyDateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
