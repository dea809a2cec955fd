package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/patternbank/internal/source"
)

// Engine runs the three detectors over a project root.
type Engine struct {
	root   string
	logger *zap.Logger
}

// NewEngine creates a discovery engine for the project at root.
// A nil logger falls back to a no-op logger.
func NewEngine(root string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{root: root, logger: logger}
}

// Discover produces the full AppProfile for the project.
//
// cached, when non-nil, is a previously persisted profile; its auth
// hints are reused verbatim when they recorded a detection, protecting
// hand-verified selectors from being clobbered by a weaker re-scan.
func (e *Engine) Discover(cached *AppProfile) *AppProfile {
	manifest := ReadManifest(e.root)

	profile := &AppProfile{
		Frameworks:      e.detect(manifest, frameworkSignatures),
		UILibraries:     e.detect(manifest, uiLibrarySignatures),
		SelectorSignals: e.ScanSelectors(),
		AuthHints:       e.DetectAuth(cached),
		Runtime:         e.DetectRuntime(),
		GeneratedAt:     time.Now().UTC(),
	}
	profile.Normalize()

	e.logger.Info("discovery complete",
		zap.String("root", e.root),
		zap.Int("frameworks", len(profile.Frameworks)),
		zap.Int("ui_libraries", len(profile.UILibraries)),
		zap.String("primary_attribute", profile.SelectorSignals.PrimaryAttribute),
		zap.Bool("auth_detected", profile.AuthHints.Detected))

	return profile
}

// DetectFrameworks returns detected frameworks, highest confidence first.
func (e *Engine) DetectFrameworks() []Detection {
	return e.detect(ReadManifest(e.root), frameworkSignatures)
}

// DetectUILibraries returns detected UI libraries, highest confidence first.
func (e *Engine) DetectUILibraries() []Detection {
	return e.detect(ReadManifest(e.root), uiLibrarySignatures)
}

// detect matches the manifest against a signature table, then raises
// confidence for each corroborating marker file or import signature.
func (e *Engine) detect(manifest *Manifest, table []signature) []Detection {
	var detections []Detection

	for _, sig := range table {
		var evidence []string
		for _, pkg := range sig.Packages {
			if manifest.Has(pkg) {
				evidence = append(evidence, "manifest:"+pkg)
				break
			}
		}
		if len(evidence) == 0 {
			continue
		}

		confidence := sig.BaseConfidence
		for _, marker := range sig.MarkerFiles {
			if _, err := os.Stat(filepath.Join(e.root, marker)); err == nil {
				confidence += evidenceBoost
				evidence = append(evidence, "marker:"+marker)
				break
			}
		}
		if sig.ImportPattern != nil && e.hasImportSignature(sig) {
			confidence += evidenceBoost
			evidence = append(evidence, "imports")
		}
		if confidence > maxDetectionConfidence {
			confidence = maxDetectionConfidence
		}

		detections = append(detections, Detection{
			Name:       sig.Name,
			Confidence: confidence,
			Evidence:   evidence,
		})
	}

	sort.SliceStable(detections, func(i, j int) bool {
		if detections[i].Confidence != detections[j].Confidence {
			return detections[i].Confidence > detections[j].Confidence
		}
		return detections[i].Name < detections[j].Name
	})
	return detections
}

// hasImportSignature reports whether any scanned source file matches
// the signature's import pattern. The scan stops at the first match.
func (e *Engine) hasImportSignature(sig signature) bool {
	exts := append([]string{}, uiFileExtensions...)
	exts = append(exts, ".py")

	found := false
	source.Walk(e.root, exts, func(f source.File) bool {
		if sig.ImportPattern.MatchString(f.Content) {
			found = true
			return false
		}
		return true
	})
	return found
}
