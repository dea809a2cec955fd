package miner

import (
	"encoding/json"
	"regexp"
	"strings"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"

	"github.com/fyrsmithlabs/patternbank/internal/source"
)

// flagFileRe marks feature-flag definition files.
var flagFileRe = regexp.MustCompile(`(?i)(^|/)(feature-?flags?|flags|features)\.(json|ya?ml)$`)

// flagCallRes extract flag keys from runtime checks (LaunchDarkly,
// Unleash, homegrown isEnabled helpers).
var flagCallRes = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:isEnabled|isFeatureEnabled|useFlag|useFeatureFlag|getFlag|variation)\(\s*['"` + "`" + `]([a-zA-Z][a-zA-Z0-9._-]*)['"` + "`" + `]`),
	regexp.MustCompile(`featureFlags?\.\s*([a-zA-Z][a-zA-Z0-9_]*)\b`),
}

// MineFeatureFlags scans flag definition files and runtime flag checks
// and reports one element per distinct flag key.
func MineFeatureFlags(root string) ([]Element, error) {
	seen := map[string]bool{}
	var elements []Element

	add := func(name, file, origin string) {
		if name == "" || seen[name] || excluded(name) {
			return
		}
		seen[name] = true
		elements = append(elements, Element{
			Kind:  KindFeatureFlag,
			Name:  name,
			File:  file,
			Attrs: map[string]string{"origin": origin},
		})
	}

	source.Walk(root, []string{".json", ".yml", ".yaml", ".ts", ".tsx", ".js", ".jsx"}, func(f source.File) bool {
		if flagFileRe.MatchString(f.Rel) {
			for _, key := range topLevelKeys(f.Rel, f.Content) {
				add(key, f.Rel, "definition")
			}
			return true
		}
		for _, re := range flagCallRes {
			for _, m := range re.FindAllStringSubmatch(f.Content, -1) {
				add(m[1], f.Rel, "usage")
			}
		}
		return true
	})

	return sortElements(elements), nil
}

// topLevelKeys parses a JSON or YAML flag file and returns its
// top-level keys. Unparseable files contribute nothing.
func topLevelKeys(rel, content string) []string {
	var doc map[string]any
	if strings.HasSuffix(rel, ".json") {
		if err := json.Unmarshal([]byte(content), &doc); err != nil {
			return nil
		}
	} else {
		parsed, err := koanfyaml.Parser().Unmarshal([]byte(content))
		if err != nil {
			return nil
		}
		doc = parsed
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	return keys
}
