package miner

import (
	"regexp"

	"github.com/fyrsmithlabs/patternbank/internal/source"
)

// modalMarkerRe detects modal/dialog/drawer components across the
// common UI libraries plus the native dialog element.
var modalMarkerRe = regexp.MustCompile(`<Modal\b|<Dialog\b|<Drawer\b|<dialog\b|useDisclosure\s*\(|showModal\s*\(`)

// MineModals scans for modal and dialog components. One element per
// file containing modal markup, named after the file.
func MineModals(root string) ([]Element, error) {
	var elements []Element

	source.Walk(root, []string{".tsx", ".jsx", ".vue", ".svelte", ".html", ".ts", ".js"}, func(f source.File) bool {
		if !modalMarkerRe.MatchString(f.Content) {
			return true
		}
		name := componentBaseName(f.Rel)
		if name == "" || excluded(name) {
			return true
		}
		elements = append(elements, Element{
			Kind: KindModal,
			Name: name,
			File: f.Rel,
		})
		return true
	})

	return sortElements(elements), nil
}
