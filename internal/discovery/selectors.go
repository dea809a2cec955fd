package discovery

import (
	"regexp"
	"strings"

	"github.com/fyrsmithlabs/patternbank/internal/source"
)

// maxSampleValues bounds how many selector values the scan keeps as
// examples in the profile.
const maxSampleValues = 20

// attrValueRes holds a compiled value extractor per candidate attribute.
var attrValueRes = func() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(selectorAttributes))
	for _, attr := range selectorAttributes {
		res[attr] = regexp.MustCompile(regexp.QuoteMeta(attr) + `\s*=\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]`)
	}
	return res
}()

// ScanSelectors measures per-attribute coverage over the project's UI
// source files and derives the primary attribute and the dominant
// naming convention.
//
// Coverage is the fraction of scanned files that use the attribute at
// least once. With no files or no matches the result still carries
// DefaultSelectorAttribute so downstream consumers never branch on
// "no convention".
func (e *Engine) ScanSelectors() SelectorSignals {
	filesWith := make(map[string]int, len(selectorAttributes))
	var samples []string
	filesScanned := 0

	source.Walk(e.root, uiFileExtensions, func(f source.File) bool {
		filesScanned++
		for _, attr := range selectorAttributes {
			matches := attrValueRes[attr].FindAllStringSubmatch(f.Content, -1)
			if len(matches) == 0 {
				continue
			}
			filesWith[attr]++
			if attr != "id" { // id values are rarely test-oriented; skip as samples
				for _, m := range matches {
					if len(samples) < maxSampleValues {
						samples = append(samples, m[1])
					}
				}
			}
		}
		return true
	})

	signals := SelectorSignals{
		PrimaryAttribute: DefaultSelectorAttribute,
		NamingConvention: "kebab-case",
		Coverage:         make(map[string]float64, len(selectorAttributes)),
		SampleValues:     samples,
		FilesScanned:     filesScanned,
	}

	best := 0.0
	for _, attr := range selectorAttributes {
		coverage := 0.0
		if filesScanned > 0 {
			coverage = float64(filesWith[attr]) / float64(filesScanned)
		}
		signals.Coverage[attr] = coverage
		if coverage > best {
			best = coverage
			signals.PrimaryAttribute = attr
		}
	}

	if convention := voteNamingConvention(samples); convention != "" {
		signals.NamingConvention = convention
	}
	return signals
}

// voteNamingConvention is a majority vote over sampled selector
// values. Ties and empty samples fall back to kebab-case, the most
// common convention in the wild.
func voteNamingConvention(samples []string) string {
	votes := map[string]int{}
	for _, s := range samples {
		votes[classifyNaming(s)]++
	}

	winner, best := "", 0
	for _, convention := range []string{"kebab-case", "camelCase", "snake_case"} {
		if votes[convention] > best {
			best = votes[convention]
			winner = convention
		}
	}
	return winner
}

func classifyNaming(s string) string {
	switch {
	case strings.Contains(s, "-"):
		return "kebab-case"
	case strings.Contains(s, "_"):
		return "snake_case"
	case strings.ToLower(s) != s:
		return "camelCase"
	default:
		return "kebab-case"
	}
}
