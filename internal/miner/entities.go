package miner

import (
	"regexp"
	"strings"

	"github.com/fyrsmithlabs/patternbank/internal/source"
)

// entityDeclRes match type declarations in the languages and ORMs the
// miner understands. Lightweight pattern scanning, not parsing: false
// negatives are acceptable.
var entityDeclRes = []*regexp.Regexp{
	// TS/JS: export interface User { ... } / export class Order ... /
	// export type Invoice = { ... }
	regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:interface|class)\s+([A-Z][A-Za-z0-9]*)\b`),
	regexp.MustCompile(`(?m)^\s*(?:export\s+)?type\s+([A-Z][A-Za-z0-9]*)\s*=\s*\{`),
	// Prisma: model User { ... }
	regexp.MustCompile(`(?m)^\s*model\s+([A-Z][A-Za-z0-9]*)\s*\{`),
	// Python: class User(models.Model) / class Order(Base)
	regexp.MustCompile(`(?m)^\s*class\s+([A-Z][A-Za-z0-9]*)\s*\((?:[A-Za-z0-9_.]*(?:Model|Base)[A-Za-z0-9_.]*)\)`),
}

// entityPathHint marks directories and filename conventions where
// entity declarations conventionally live. Declarations elsewhere are
// ignored to keep the false-positive rate down.
var entityPathHint = regexp.MustCompile(`(?i)(^|/)(models?|entities|schemas?|domain|types)(/|\.)|\.(model|entity|schema)\.[a-z]+$|(^|/)schema\.prisma$`)

// MineEntities scans the tree for domain entity declarations and
// derives a correctly pluralized name for each.
func MineEntities(root string) ([]Element, error) {
	seen := map[string]bool{}
	var elements []Element

	source.Walk(root, []string{".ts", ".tsx", ".js", ".py", ".prisma"}, func(f source.File) bool {
		if !entityPathHint.MatchString(f.Rel) {
			return true
		}
		for _, re := range entityDeclRes {
			for _, m := range re.FindAllStringSubmatch(f.Content, -1) {
				name := m[1]
				if excluded(name) || seen[strings.ToLower(name)] {
					continue
				}
				seen[strings.ToLower(name)] = true
				elements = append(elements, Element{
					Kind:   KindEntity,
					Name:   name,
					Plural: Pluralize(name),
					File:   f.Rel,
				})
			}
		}
		return true
	})

	return sortElements(elements), nil
}
