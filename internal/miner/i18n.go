package miner

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"

	"github.com/fyrsmithlabs/patternbank/internal/source"
)

// i18nPathHint marks translation catalog locations: locales/ and i18n/
// directories, and lang/ trees.
var i18nPathHint = regexp.MustCompile(`(?i)(^|/)(locales?|i18n|lang|translations?)/`)

// MineI18N scans translation catalogs and reports one element per
// namespace (catalog file) with its key count. Catalogs that fail to
// parse contribute nothing.
func MineI18N(root string) ([]Element, error) {
	var elements []Element

	source.Walk(root, []string{".json", ".yml", ".yaml"}, func(f source.File) bool {
		if !i18nPathHint.MatchString(f.Rel) {
			return true
		}

		var doc map[string]any
		switch {
		case strings.HasSuffix(f.Rel, ".json"):
			if err := json.Unmarshal([]byte(f.Content), &doc); err != nil {
				return true
			}
		default:
			parsed, err := koanfyaml.Parser().Unmarshal([]byte(f.Content))
			if err != nil {
				return true
			}
			doc = parsed
		}

		count := countLeafKeys(doc)
		if count == 0 {
			return true
		}
		elements = append(elements, Element{
			Kind: KindI18N,
			Name: componentBaseName(f.Rel),
			File: f.Rel,
			Attrs: map[string]string{
				"keys": strconv.Itoa(count),
			},
		})
		return true
	})

	return sortElements(elements), nil
}

// countLeafKeys counts string-valued keys at any nesting depth.
func countLeafKeys(node map[string]any) int {
	count := 0
	for _, v := range node {
		switch child := v.(type) {
		case map[string]any:
			count += countLeafKeys(child)
		case string:
			count++
		}
	}
	return count
}
