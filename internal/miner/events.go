package miner

import (
	"regexp"

	"github.com/fyrsmithlabs/patternbank/internal/source"
)

// eventCallRes extract analytics event names from the common tracking
// call shapes (Segment, Amplitude, GA, PostHog, homegrown).
var eventCallRes = []*regexp.Regexp{
	regexp.MustCompile(`(?:analytics|segment|posthog|mixpanel)\.(?:track|capture)\(\s*['"` + "`" + `]([^'"` + "`" + `]+)['"` + "`" + `]`),
	regexp.MustCompile(`\btrackEvent\(\s*['"` + "`" + `]([^'"` + "`" + `]+)['"` + "`" + `]`),
	regexp.MustCompile(`\blogEvent\(\s*(?:[a-zA-Z]+,\s*)?['"` + "`" + `]([^'"` + "`" + `]+)['"` + "`" + `]`),
	regexp.MustCompile(`\bgtag\(\s*['"]event['"]\s*,\s*['"]([^'"]+)['"]`),
}

// MineAnalyticsEvents scans for tracked analytics event names.
// Duplicates collapse on the event name.
func MineAnalyticsEvents(root string) ([]Element, error) {
	seen := map[string]bool{}
	var elements []Element

	source.Walk(root, []string{".ts", ".tsx", ".js", ".jsx", ".vue", ".svelte"}, func(f source.File) bool {
		for _, re := range eventCallRes {
			for _, m := range re.FindAllStringSubmatch(f.Content, -1) {
				name := m[1]
				if name == "" || seen[name] {
					continue
				}
				seen[name] = true
				elements = append(elements, Element{
					Kind: KindEvent,
					Name: name,
					File: f.Rel,
				})
			}
		}
		return true
	})

	return sortElements(elements), nil
}
