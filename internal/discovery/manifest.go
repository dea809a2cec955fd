package discovery

import (
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/fyrsmithlabs/patternbank/internal/source"
)

// Manifest is the flattened set of declared dependency names from
// whatever manifests the project carries. Versions are irrelevant to
// detection; only names matter.
type Manifest struct {
	// Dependencies maps dependency name to the manifest it came from.
	Dependencies map[string]string
}

// Has reports whether the manifest declares name.
func (m *Manifest) Has(name string) bool {
	if m == nil {
		return false
	}
	_, ok := m.Dependencies[strings.ToLower(name)]
	return ok
}

// ReadManifest collects declared dependencies from package.json and
// pyproject.toml at the project root. Missing or unparseable manifests
// contribute nothing; an empty project yields an empty manifest.
func ReadManifest(root string) *Manifest {
	m := &Manifest{Dependencies: map[string]string{}}
	readPackageJSON(filepath.Join(root, "package.json"), m)
	readPyprojectTOML(filepath.Join(root, "pyproject.toml"), m)
	return m
}

func readPackageJSON(path string, m *Manifest) {
	content := source.ReadFileCapped(path)
	if content == "" {
		return
	}

	var doc struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return
	}
	for name := range doc.Dependencies {
		m.Dependencies[strings.ToLower(name)] = "package.json"
	}
	for name := range doc.DevDependencies {
		m.Dependencies[strings.ToLower(name)] = "package.json"
	}
}

// pepNameRe extracts the bare distribution name from a PEP 508
// requirement string like "django>=4.2" or "uvicorn[standard]".
var pepNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*`)

func readPyprojectTOML(path string, m *Manifest) {
	content := source.ReadFileCapped(path)
	if content == "" {
		return
	}

	var doc struct {
		Project struct {
			Dependencies []string `toml:"dependencies"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if _, err := toml.Decode(content, &doc); err != nil {
		return
	}

	for _, req := range doc.Project.Dependencies {
		if name := pepNameRe.FindString(strings.TrimSpace(req)); name != "" {
			m.Dependencies[strings.ToLower(name)] = "pyproject.toml"
		}
	}
	for name := range doc.Tool.Poetry.Dependencies {
		if strings.EqualFold(name, "python") {
			continue
		}
		m.Dependencies[strings.ToLower(name)] = "pyproject.toml"
	}
}
