package miner

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fyrsmithlabs/patternbank/internal/source"
)

var (
	// formMarkerRe detects form markup or form-library hooks.
	formMarkerRe = regexp.MustCompile(`<form\b|<Form\b|useForm\s*\(|<Formik\b|FormGroup\(`)

	// inputNameRe extracts field names from inputs and form controls.
	inputNameRe = regexp.MustCompile(`(?:name|id)\s*=\s*["']([a-zA-Z][a-zA-Z0-9_-]*)["']`)

	// registerRe extracts react-hook-form register("field") calls.
	registerRe = regexp.MustCompile(`register\(\s*["']([a-zA-Z][a-zA-Z0-9_.-]*)["']`)
)

// MineForms scans for form definitions and their field names. One
// element per file containing a form; the form is named after the file.
func MineForms(root string) ([]Element, error) {
	var elements []Element

	source.Walk(root, []string{".tsx", ".jsx", ".vue", ".svelte", ".html", ".ts", ".js"}, func(f source.File) bool {
		if !formMarkerRe.MatchString(f.Content) {
			return true
		}

		var fields []string
		for _, m := range inputNameRe.FindAllStringSubmatch(f.Content, -1) {
			fields = append(fields, m[1])
		}
		for _, m := range registerRe.FindAllStringSubmatch(f.Content, -1) {
			fields = append(fields, m[1])
		}

		name := componentBaseName(f.Rel)
		if name == "" || excluded(name) {
			return true
		}
		elements = append(elements, Element{
			Kind:   KindForm,
			Name:   name,
			File:   f.Rel,
			Fields: dedupeStrings(fields),
		})
		return true
	})

	return sortElements(elements), nil
}

// componentBaseName strips extension and framework suffixes from a
// file path to name the component it defines.
func componentBaseName(rel string) string {
	base := filepath.Base(rel)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	for _, suffix := range []string{".component", ".form", ".view", ".page"} {
		base = strings.TrimSuffix(base, suffix)
	}
	return base
}
