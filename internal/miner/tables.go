package miner

import (
	"regexp"

	"github.com/fyrsmithlabs/patternbank/internal/source"
)

var (
	// tableMarkerRe detects data-table markup and the common grid
	// components (MUI DataGrid, Ant Table, TanStack).
	tableMarkerRe = regexp.MustCompile(`<table\b|<Table\b|<DataGrid\b|<DataTable\b|useReactTable\s*\(`)

	// columnRes extract column identifiers from the usual column
	// definition shapes.
	columnRes = []*regexp.Regexp{
		regexp.MustCompile(`field:\s*['"]([a-zA-Z][a-zA-Z0-9_]*)['"]`),       // MUI DataGrid
		regexp.MustCompile(`dataIndex:\s*['"]([a-zA-Z][a-zA-Z0-9_]*)['"]`),   // Ant Design
		regexp.MustCompile(`accessorKey:\s*['"]([a-zA-Z][a-zA-Z0-9_]*)['"]`), // TanStack
		regexp.MustCompile(`<th[^>]*>([A-Za-z][A-Za-z0-9 ]{0,30})</th>`),     // plain HTML
	}
)

// MineTables scans for data tables and their column names. One element
// per file containing table markup, named after the file.
func MineTables(root string) ([]Element, error) {
	var elements []Element

	source.Walk(root, []string{".tsx", ".jsx", ".vue", ".svelte", ".html", ".ts", ".js"}, func(f source.File) bool {
		if !tableMarkerRe.MatchString(f.Content) {
			return true
		}

		var columns []string
		for _, re := range columnRes {
			for _, m := range re.FindAllStringSubmatch(f.Content, -1) {
				columns = append(columns, m[1])
			}
		}

		name := componentBaseName(f.Rel)
		if name == "" || excluded(name) {
			return true
		}
		elements = append(elements, Element{
			Kind:   KindTable,
			Name:   name,
			File:   f.Rel,
			Fields: dedupeStrings(columns),
		})
		return true
	})

	return sortElements(elements), nil
}
