// Package miner turns a project source tree into structured element
// lists: entities, routes, forms, tables, modals, plus specialty
// i18n, analytics-event, and feature-flag scans.
//
// Every miner is an independent pure function sharing one signature.
// Adding a miner means adding one function and one registry row, not a
// subclass. Miners read the tree once through lightweight pattern
// extractors tuned to well-known conventions; they accept false
// negatives and tolerate missing directories, unparseable files, and
// zero matches by returning empty. Mining runs speculatively before
// any convention is confirmed present, so nothing here errors on
// absence.
package miner

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Kind labels what a mined element is.
type Kind string

const (
	KindEntity      Kind = "entity"
	KindRoute       Kind = "route"
	KindForm        Kind = "form"
	KindTable       Kind = "table"
	KindModal       Kind = "modal"
	KindI18N        Kind = "i18n"
	KindEvent       Kind = "event"
	KindFeatureFlag Kind = "feature-flag"
)

// Element is one structured finding from a miner.
type Element struct {
	// Kind is the miner family that produced the element.
	Kind Kind `json:"kind"`

	// Name is the element's canonical name (entity name, route name,
	// form name, event name...).
	Name string `json:"name"`

	// Plural is the correctly pluralized entity name, entities only.
	Plural string `json:"plural,omitempty"`

	// File is the tree-relative path the element was found in.
	File string `json:"file"`

	// Route is the URL path, route elements only.
	Route string `json:"route,omitempty"`

	// Fields lists field names for forms and column names for tables.
	Fields []string `json:"fields,omitempty"`

	// Attrs carries miner-specific extras (i18n key counts, flag
	// providers, event properties).
	Attrs map[string]string `json:"attrs,omitempty"`
}

// Func is the one signature every miner shares: project root in,
// elements out. A non-nil error means the walk itself broke, never
// that nothing was found.
type Func func(root string) ([]Element, error)

// Miner is one registry row.
type Miner struct {
	Name string
	Kind Kind
	Fn   Func
}

// Registry is the closed, ordered set of miners. RunAll executes them
// in this order; the order is part of the deterministic-output
// contract, so append only.
var Registry = []Miner{
	{Name: "entities", Kind: KindEntity, Fn: MineEntities},
	{Name: "routes", Kind: KindRoute, Fn: MineRoutes},
	{Name: "forms", Kind: KindForm, Fn: MineForms},
	{Name: "tables", Kind: KindTable, Fn: MineTables},
	{Name: "modals", Kind: KindModal, Fn: MineModals},
	{Name: "i18n", Kind: KindI18N, Fn: MineI18N},
	{Name: "analytics-events", Kind: KindEvent, Fn: MineAnalyticsEvents},
	{Name: "feature-flags", Kind: KindFeatureFlag, Fn: MineFeatureFlags},
}

// RunAll executes every registered miner against root in registry
// order. A failing miner is collected as a warning and the run
// continues with whatever signal is available; one broken scanner
// never aborts the batch.
func RunAll(root string, logger *zap.Logger) ([]Element, []string) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var elements []Element
	var warnings []string

	for _, m := range Registry {
		found, err := m.Fn(root)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("miner %s: %v", m.Name, err))
			logger.Warn("miner failed", zap.String("miner", m.Name), zap.Error(err))
			continue
		}
		logger.Debug("miner complete",
			zap.String("miner", m.Name),
			zap.Int("elements", len(found)))
		elements = append(elements, found...)
	}
	return elements, warnings
}

// exclusions are structural and utility names that pattern extractors
// routinely hit but that are never domain elements worth templating.
var exclusions = map[string]bool{
	"base": true, "abstract": true, "helper": true, "util": true,
	"utils": true, "index": true, "main": true, "app": true,
	"test": true, "tests": true, "spec": true, "mock": true,
	"stub": true, "fixture": true, "props": true, "state": true,
	"config": true, "context": true, "provider": true, "type": true,
	"types": true, "interface": true, "error": true, "response": true,
	"request": true, "result": true, "options": true, "params": true,
	"data": true, "item": true, "list": true, "wrapper": true,
	"component": true, "container": true, "layout": true, "style": true,
	"theme": true, "constant": true, "constants": true, "enum": true,
}

// excludedSuffixes catch compound structural names like UserProps or
// OrderState that the bare exclusion set misses.
var excludedSuffixes = []string{
	"Props", "State", "Config", "Context", "Provider", "Options",
	"Params", "Response", "Request", "Error", "Type", "Enum",
}

// excluded reports whether name is a structural/utility false positive.
func excluded(name string) bool {
	if exclusions[strings.ToLower(name)] {
		return true
	}
	for _, suffix := range excludedSuffixes {
		if strings.HasSuffix(name, suffix) && name != suffix {
			return true
		}
	}
	return false
}

// sortElements orders elements by name then file, giving every miner
// deterministic output regardless of walk order.
func sortElements(elements []Element) []Element {
	sort.SliceStable(elements, func(i, j int) bool {
		if elements[i].Name != elements[j].Name {
			return elements[i].Name < elements[j].Name
		}
		return elements[i].File < elements[j].File
	})
	return elements
}

// dedupeStrings returns s with duplicates removed, preserving order.
func dedupeStrings(s []string) []string {
	seen := make(map[string]bool, len(s))
	out := s[:0]
	for _, v := range s {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
