package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/patternbank/internal/discovery"
)

// Store is the file-backed knowledge base rooted at one directory.
//
// The store offers no locking: two concurrent writers to the same file
// race and the last full-document overwrite wins. That is an accepted
// risk for a local tooling store, not a correctness guarantee — every
// caller re-reads before mutating to keep the common case safe.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates a store rooted at dir. The directory is created
// lazily on first save. A nil logger falls back to a no-op logger.
func NewStore(dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, logger: logger}
}

// Dir returns the knowledge-base root.
func (s *Store) Dir() string { return s.dir }

// Path returns the absolute path of a store file.
func (s *Store) Path(name string) string { return filepath.Join(s.dir, name) }

// LoadDoc reads and parses one store file into v. Missing, empty, or
// unparseable files return ErrUnavailable — absence is an expected
// state, reported uniformly, never raised.
func (s *Store) LoadDoc(name string, v any) error {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return fmt.Errorf("%w: %s missing", ErrUnavailable, name)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return fmt.Errorf("%w: %s empty", ErrUnavailable, name)
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("store file unparseable", zap.String("file", name), zap.Error(err))
		return fmt.Errorf("%w: %s unparseable", ErrUnavailable, name)
	}
	return nil
}

// SaveDoc writes v as the whole content of one store file, creating
// the store directory as needed. Saves are full overwrites.
func (s *Store) SaveDoc(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating store dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}
	if err := os.WriteFile(s.Path(name), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// LoadPatterns returns the discovered-patterns document, or
// ErrUnavailable when it is missing or fails the shape check.
func (s *Store) LoadPatterns() (*PatternsDoc, error) {
	var doc PatternsDoc
	if err := s.LoadDoc(PatternsFile, &doc); err != nil {
		return nil, err
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s shape: %v", ErrUnavailable, PatternsFile, err)
	}
	return &doc, nil
}

// SavePatterns overwrites the discovered-patterns document.
func (s *Store) SavePatterns(doc *PatternsDoc) error {
	if doc.Version == "" {
		doc.Version = SchemaVersion
	}
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = time.Now().UTC()
	}
	if err := doc.validate(); err != nil {
		return fmt.Errorf("invalid patterns document: %w", err)
	}
	return s.SaveDoc(PatternsFile, doc)
}

// LoadProfile returns the cached discovery profile, or ErrUnavailable.
func (s *Store) LoadProfile() (*discovery.AppProfile, error) {
	var profile discovery.AppProfile
	if err := s.LoadDoc(ProfileFile, &profile); err != nil {
		return nil, err
	}
	if profile.GeneratedAt.IsZero() {
		return nil, fmt.Errorf("%w: %s shape: missing generatedAt", ErrUnavailable, ProfileFile)
	}
	profile.Normalize()
	return &profile, nil
}

// SaveProfile overwrites the cached discovery profile.
func (s *Store) SaveProfile(profile *discovery.AppProfile) error {
	profile.Normalize()
	if profile.GeneratedAt.IsZero() {
		profile.GeneratedAt = time.Now().UTC()
	}
	return s.SaveDoc(ProfileFile, profile)
}

// LoadLessons returns the lessons document, or ErrUnavailable.
func (s *Store) LoadLessons() (*LessonsDoc, error) {
	var doc LessonsDoc
	if err := s.LoadDoc(LessonsFile, &doc); err != nil {
		return nil, err
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s shape: %v", ErrUnavailable, LessonsFile, err)
	}
	return &doc, nil
}

// SaveLessons overwrites the lessons document, stamping LastUpdated.
func (s *Store) SaveLessons(doc *LessonsDoc) error {
	if doc.Version == "" {
		doc.Version = SchemaVersion
	}
	doc.LastUpdated = time.Now().UTC()
	if err := doc.validate(); err != nil {
		return fmt.Errorf("invalid lessons document: %w", err)
	}
	return s.SaveDoc(LessonsFile, doc)
}

// LoadComponents returns the components document, or ErrUnavailable.
func (s *Store) LoadComponents() (*ComponentsDoc, error) {
	var doc ComponentsDoc
	if err := s.LoadDoc(ComponentsFile, &doc); err != nil {
		return nil, err
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s shape: %v", ErrUnavailable, ComponentsFile, err)
	}
	return &doc, nil
}

// SaveComponents overwrites the components document, stamping LastUpdated.
func (s *Store) SaveComponents(doc *ComponentsDoc) error {
	if doc.Version == "" {
		doc.Version = SchemaVersion
	}
	doc.LastUpdated = time.Now().UTC()
	if err := doc.validate(); err != nil {
		return fmt.Errorf("invalid components document: %w", err)
	}
	return s.SaveDoc(ComponentsFile, doc)
}
