// Package synthesis turns a discovery profile and mined elements into
// candidate patterns via template tables and confidence rules.
//
// Template generation always emits the fixed navigation set; auth
// templates follow auth detection; library templates follow UI-library
// detection with a confidence ceiling; element templates instantiate
// CRUD/form/table/modal recipes per mined element. Merge folds a fresh
// discovery into a previously accumulated feedback-weighted set
// without ever overwriting accumulated learning.
package synthesis

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/patternbank/internal/discovery"
	"github.com/fyrsmithlabs/patternbank/internal/miner"
	"github.com/fyrsmithlabs/patternbank/internal/pattern"
)

// Confidence constants for generated patterns. Auth patterns with a
// known selector earn the high tier; everything template-derived sits
// in the middle band until feedback moves it.
const (
	navigationConfidence     = 0.80
	authKnownConfidence      = 0.90
	authFallbackConfidence   = 0.75
	libraryCeilingConfidence = 0.85
	entityConfidence         = 0.75
	formConfidence           = 0.75
	tableConfidence          = 0.70
	modalConfidence          = 0.70
)

// navigationTemplates is the fixed set every run emits, framework or
// no framework: a test generator can always at least navigate.
var navigationTemplates = []struct {
	text   string
	action pattern.Action
	route  string
}{
	{"navigate to home page", pattern.ActionNavigate, "/"},
	{"navigate to login page", pattern.ActionNavigate, "/login"},
	{"navigate to dashboard", pattern.ActionNavigate, "/dashboard"},
	{"assert page loaded", pattern.ActionAssert, ""},
	{"assert page title visible", pattern.ActionAssert, ""},
}

// libraryTemplates carries curated interaction recipes per detected UI
// library. Selector values are the library's stable class/role hooks.
var libraryTemplates = map[string][]struct {
	text     string
	action   pattern.Action
	strategy string
	value    string
}{
	"mui": {
		{"click button by label", pattern.ActionClick, "role", "button"},
		{"select option from dropdown", pattern.ActionSelect, "css", ".MuiSelect-select"},
		{"check checkbox", pattern.ActionCheck, "css", ".MuiCheckbox-root input"},
		{"assert snackbar message", pattern.ActionAssert, "css", ".MuiSnackbar-root"},
		{"fill text field by label", pattern.ActionFill, "label", ""},
	},
	"antd": {
		{"click button by label", pattern.ActionClick, "css", ".ant-btn"},
		{"select option from dropdown", pattern.ActionSelect, "css", ".ant-select-selector"},
		{"assert notification message", pattern.ActionAssert, "css", ".ant-notification-notice"},
		{"check checkbox", pattern.ActionCheck, "css", ".ant-checkbox-input"},
	},
	"chakra": {
		{"click button by label", pattern.ActionClick, "role", "button"},
		{"assert toast message", pattern.ActionAssert, "css", ".chakra-toast"},
		{"fill input by label", pattern.ActionFill, "label", ""},
	},
	"bootstrap": {
		{"click button by label", pattern.ActionClick, "css", ".btn"},
		{"assert alert message", pattern.ActionAssert, "css", ".alert"},
		{"check checkbox", pattern.ActionCheck, "css", ".form-check-input"},
	},
	"tailwind": {
		{"click button by label", pattern.ActionClick, "role", "button"},
		{"assert heading visible", pattern.ActionAssert, "role", "heading"},
	},
}

// Generate produces the full candidate set for a profile and its mined
// elements. Output order is deterministic: templates in table order,
// elements in input order.
func Generate(profile *discovery.AppProfile, elements []miner.Element) []pattern.Pattern {
	patterns := FromProfile(profile)
	patterns = append(patterns, FromElements(profile, elements)...)
	return patterns
}

// FromProfile emits the navigation set, the auth set when auth was
// detected, and curated templates for each detected UI library.
func FromProfile(profile *discovery.AppProfile) []pattern.Pattern {
	var out []pattern.Pattern

	for _, tpl := range navigationTemplates {
		p := newPattern(tpl.text, tpl.action, navigationConfidence, pattern.LayerUniversal, "navigation", "navigation")
		if tpl.route != "" {
			p.SelectorHints = []pattern.SelectorHint{{Strategy: "route", Value: tpl.route}}
		}
		out = append(out, p)
	}

	if profile != nil && profile.AuthHints.Detected {
		out = append(out, authPatterns(profile.AuthHints)...)
	}

	if profile != nil {
		for _, lib := range profile.UILibraries {
			templates, ok := libraryTemplates[lib.Name]
			if !ok {
				continue
			}
			// Library patterns never exceed the library ceiling nor the
			// library's own detection confidence.
			confidence := libraryCeilingConfidence
			if lib.Confidence < confidence {
				confidence = lib.Confidence
			}
			for _, tpl := range templates {
				p := newPattern(tpl.text, tpl.action, confidence, pattern.LayerFramework, "library", "library:"+lib.Name)
				p.SelectorHints = []pattern.SelectorHint{{Strategy: tpl.strategy, Value: tpl.value}}
				out = append(out, p)
			}
		}
	}
	return out
}

// authPatterns emits the fixed auth set. Each pattern earns the high
// confidence tier only when discovery pinned down its selector.
func authPatterns(hints discovery.AuthHints) []pattern.Pattern {
	var out []pattern.Pattern

	add := func(text string, action pattern.Action, selector string) {
		confidence := authFallbackConfidence
		var sel []pattern.SelectorHint
		if selector != "" {
			confidence = authKnownConfidence
			sel = []pattern.SelectorHint{{Strategy: "testid", Value: selector}}
		}
		p := newPattern(text, action, confidence, pattern.LayerAppSpecific, "auth", "auth")
		p.SelectorHints = sel
		out = append(out, p)
	}

	add("fill username field", pattern.ActionFill, hints.UsernameSelector)
	add("fill password field", pattern.ActionFill, hints.PasswordSelector)
	add("click login button", pattern.ActionClick, hints.SubmitSelector)

	assertText := "assert logged in"
	p := newPattern(assertText, pattern.ActionAssert, authFallbackConfidence, pattern.LayerAppSpecific, "auth", "auth")
	if hints.LoginRoute != "" {
		p.SelectorHints = []pattern.SelectorHint{{Strategy: "route-away", Value: hints.LoginRoute}}
		p.Confidence = authKnownConfidence
	}
	out = append(out, p)
	return out
}

// FromElements instantiates CRUD, form, table, and modal templates per
// mined element, tagging origin and template source.
func FromElements(profile *discovery.AppProfile, elements []miner.Element) []pattern.Pattern {
	attr := discovery.DefaultSelectorAttribute
	convention := "kebab-case"
	if profile != nil {
		if profile.SelectorSignals.PrimaryAttribute != "" {
			attr = profile.SelectorSignals.PrimaryAttribute
		}
		if profile.SelectorSignals.NamingConvention != "" {
			convention = profile.SelectorSignals.NamingConvention
		}
	}

	var out []pattern.Pattern
	for _, el := range elements {
		switch el.Kind {
		case miner.KindEntity:
			out = append(out, entityPatterns(el, attr, convention)...)
		case miner.KindForm:
			out = append(out, formPatterns(el, attr, convention)...)
		case miner.KindTable:
			out = append(out, tablePatterns(el, attr, convention)...)
		case miner.KindModal:
			out = append(out, modalPatterns(el, attr, convention)...)
		}
	}
	return out
}

func entityPatterns(el miner.Element, attr, convention string) []pattern.Pattern {
	entity := strings.ToLower(el.Name)
	plural := strings.ToLower(el.Plural)
	if plural == "" {
		plural = miner.Pluralize(entity)
	}

	make := func(text string, action pattern.Action, selectorParts ...string) pattern.Pattern {
		p := newPattern(text, action, entityConfidence, pattern.LayerAppSpecific, "crud", "crud")
		p.EntityName = el.Name
		if len(selectorParts) > 0 {
			p.SelectorHints = []pattern.SelectorHint{{
				Strategy: "testid",
				Value:    formatSelector(convention, selectorParts...),
				Name:     attr,
			}}
		}
		return p
	}

	return []pattern.Pattern{
		make(fmt.Sprintf("navigate to %s list", plural), pattern.ActionNavigate),
		make(fmt.Sprintf("click create %s button", entity), pattern.ActionClick, "create", entity),
		make(fmt.Sprintf("fill %s form", entity), pattern.ActionFill, entity, "form"),
		make(fmt.Sprintf("assert %s created", entity), pattern.ActionAssert),
		make(fmt.Sprintf("click edit %s button", entity), pattern.ActionClick, "edit", entity),
		make(fmt.Sprintf("click delete %s button", entity), pattern.ActionClick, "delete", entity),
		make(fmt.Sprintf("assert %s list visible", plural), pattern.ActionAssert, plural, "list"),
	}
}

func formPatterns(el miner.Element, attr, convention string) []pattern.Pattern {
	form := humanize(el.Name)

	fill := newPattern(fmt.Sprintf("fill %s", form), pattern.ActionFill, formConfidence, pattern.LayerAppSpecific, "form", "form")
	fill.EntityName = el.Name
	for _, field := range el.Fields {
		fill.SelectorHints = append(fill.SelectorHints, pattern.SelectorHint{
			Strategy: "name",
			Value:    field,
		})
	}

	submit := newPattern(fmt.Sprintf("click %s submit button", form), pattern.ActionClick, formConfidence, pattern.LayerAppSpecific, "form", "form")
	submit.EntityName = el.Name
	submit.SelectorHints = []pattern.SelectorHint{{
		Strategy: "testid",
		Value:    formatSelector(convention, el.Name, "submit"),
		Name:     attr,
	}}

	return []pattern.Pattern{fill, submit}
}

func tablePatterns(el miner.Element, attr, convention string) []pattern.Pattern {
	table := humanize(el.Name)

	rows := newPattern(fmt.Sprintf("assert %s has rows", table), pattern.ActionAssert, tableConfidence, pattern.LayerAppSpecific, "table", "table")
	rows.EntityName = el.Name
	rows.SelectorHints = []pattern.SelectorHint{{
		Strategy: "testid",
		Value:    formatSelector(convention, el.Name),
		Name:     attr,
	}}

	out := []pattern.Pattern{rows}
	if len(el.Fields) > 0 {
		sort := newPattern(fmt.Sprintf("click %s column header to sort", table), pattern.ActionClick, tableConfidence, pattern.LayerAppSpecific, "table", "table")
		sort.EntityName = el.Name
		for _, col := range el.Fields {
			sort.SelectorHints = append(sort.SelectorHints, pattern.SelectorHint{Strategy: "column", Value: col})
		}
		out = append(out, sort)
	}
	return out
}

func modalPatterns(el miner.Element, attr, convention string) []pattern.Pattern {
	modal := humanize(el.Name)

	make := func(text string, action pattern.Action, parts ...string) pattern.Pattern {
		p := newPattern(text, action, modalConfidence, pattern.LayerAppSpecific, "modal", "modal")
		p.EntityName = el.Name
		if len(parts) > 0 {
			p.SelectorHints = []pattern.SelectorHint{{
				Strategy: "testid",
				Value:    formatSelector(convention, parts...),
				Name:     attr,
			}}
		}
		return p
	}

	return []pattern.Pattern{
		make(fmt.Sprintf("click open %s", modal), pattern.ActionClick, "open", el.Name),
		make(fmt.Sprintf("assert %s visible", modal), pattern.ActionAssert, el.Name),
		make(fmt.Sprintf("click close %s", modal), pattern.ActionClick, "close", el.Name),
	}
}

// newPattern builds a pattern with a fresh opaque id. The normalized
// text is the template text itself; templates are authored normalized.
func newPattern(text string, action pattern.Action, confidence float64, layer pattern.Layer, category, templateSource string) pattern.Pattern {
	return pattern.Pattern{
		ID:             pattern.NewID(),
		NormalizedText: text,
		OriginalText:   text,
		Action:         action,
		Confidence:     pattern.ClampConfidence(confidence),
		Layer:          layer,
		Category:       category,
		TemplateSource: templateSource,
	}
}

// formatSelector joins name parts per the project's naming convention.
func formatSelector(convention string, parts ...string) string {
	var words []string
	for _, part := range parts {
		words = append(words, splitWords(part)...)
	}
	if len(words) == 0 {
		return ""
	}

	switch convention {
	case "camelCase":
		out := strings.ToLower(words[0])
		for _, w := range words[1:] {
			out += strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
		return out
	case "snake_case":
		return strings.ToLower(strings.Join(words, "_"))
	default:
		return strings.ToLower(strings.Join(words, "-"))
	}
}

// splitWords breaks an identifier into lower-cased words on case
// boundaries and separators.
func splitWords(s string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '-' || r == '_' || r == ' ' || r == '.':
			flush()
		case r >= 'A' && r <= 'Z':
			flush()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return words
}

// humanize renders an identifier as lower-case words for trigger text.
func humanize(s string) string {
	return strings.Join(splitWords(s), " ")
}
