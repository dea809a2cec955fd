package miner

import "strings"

// irregularPlurals are English nouns the suffix rules get wrong.
var irregularPlurals = map[string]string{
	"person":    "people",
	"child":     "children",
	"man":       "men",
	"woman":     "women",
	"foot":      "feet",
	"tooth":     "teeth",
	"goose":     "geese",
	"mouse":     "mice",
	"datum":     "data",
	"medium":    "media",
	"analysis":  "analyses",
	"status":    "statuses",
	"criterion": "criteria",
	"category":  "categories",
	"company":   "companies",
	"country":   "countries",
	"currency":  "currencies",
	"inventory": "inventories",
}

// Pluralize returns the plural of an entity name, honoring known
// irregulars and preserving the original's leading capitalization.
func Pluralize(name string) string {
	if name == "" {
		return ""
	}

	lower := strings.ToLower(name)
	if plural, ok := irregularPlurals[lower]; ok {
		return matchCapitalization(name, plural)
	}

	switch {
	case strings.HasSuffix(lower, "y") && len(lower) > 1 && !isVowel(lower[len(lower)-2]):
		return name[:len(name)-1] + "ies"
	case strings.HasSuffix(lower, "s"),
		strings.HasSuffix(lower, "x"),
		strings.HasSuffix(lower, "z"),
		strings.HasSuffix(lower, "ch"),
		strings.HasSuffix(lower, "sh"):
		return name + "es"
	default:
		return name + "s"
	}
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// matchCapitalization upper-cases the plural's first letter when the
// original was capitalized.
func matchCapitalization(original, plural string) string {
	if original == "" || plural == "" {
		return plural
	}
	if original[0] >= 'A' && original[0] <= 'Z' {
		return strings.ToUpper(plural[:1]) + plural[1:]
	}
	return plural
}
