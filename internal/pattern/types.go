// Package pattern defines the scored interaction-pattern model shared by
// discovery, synthesis, curation, and the knowledge store.
//
// A Pattern is a (trigger phrase, action) recipe with ordered selector
// hints and a confidence score that evolves from feedback. Two patterns
// are "the same" when they share an identity key: the lower-cased
// normalized text plus the action. The same phrase with a different
// action is a distinct pattern.
package pattern

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors for pattern operations.
var (
	ErrInvalidAction     = errors.New("invalid pattern action")
	ErrInvalidConfidence = errors.New("confidence must be between 0.0 and 0.95")
	ErrEmptyText         = errors.New("pattern text cannot be empty")
)

// MaxConfidence is the hard ceiling for pattern confidence. No pattern
// ever reaches 1.0; certainty is reserved for nothing.
const MaxConfidence = 0.95

// Action is the closed set of interactions a pattern can describe.
type Action string

const (
	ActionClick    Action = "click"
	ActionFill     Action = "fill"
	ActionAssert   Action = "assert"
	ActionCheck    Action = "check"
	ActionNavigate Action = "navigate"
	ActionSelect   Action = "select"
)

// ValidActions lists every recognized action, in stable order.
var ValidActions = []Action{
	ActionClick, ActionFill, ActionAssert, ActionCheck, ActionNavigate, ActionSelect,
}

// Valid reports whether a is a member of the closed action set.
func (a Action) Valid() bool {
	switch a {
	case ActionClick, ActionFill, ActionAssert, ActionCheck, ActionNavigate, ActionSelect:
		return true
	}
	return false
}

// Layer describes how portable a pattern is across projects.
type Layer string

const (
	// LayerAppSpecific marks patterns tied to one application's entities
	// or routes.
	LayerAppSpecific Layer = "app-specific"

	// LayerFramework marks patterns tied to a detected framework or UI
	// library, reusable across apps built on it.
	LayerFramework Layer = "framework"

	// LayerUniversal marks patterns that hold for any web application.
	LayerUniversal Layer = "universal"
)

// SelectorHint is one way to locate the element a pattern acts on.
// Hints are ordered by preference; consumers try them in sequence.
type SelectorHint struct {
	// Strategy names the lookup mechanism, e.g. "testid", "role",
	// "label", "css", "text".
	Strategy string `json:"strategy"`

	// Value is the strategy-specific selector value.
	Value string `json:"value"`

	// Name optionally labels the hint for accessible-name lookups.
	Name string `json:"name,omitempty"`

	// Confidence optionally scores this hint relative to its siblings.
	Confidence float64 `json:"confidence,omitempty"`
}

// Pattern is a scored (trigger phrase, action) automation recipe.
//
// Patterns are created by synthesis, mutated by the curation pipeline
// during a run or by the learning loop once merged into the long-lived
// store, and never destroyed — only pruned from the active view.
type Pattern struct {
	// ID is an opaque unique token. It carries no ordering.
	ID string `json:"id"`

	// NormalizedText is the canonical trigger phrase used for identity.
	NormalizedText string `json:"normalizedText"`

	// OriginalText preserves the phrase as it was discovered.
	OriginalText string `json:"originalText"`

	// Action is what the pattern does when triggered.
	Action Action `json:"action"`

	// SelectorHints locate the target element, in preference order.
	SelectorHints []SelectorHint `json:"selectorHints,omitempty"`

	// Confidence is the current belief the pattern works, in [0, 0.95].
	Confidence float64 `json:"confidence"`

	// Layer describes portability (app-specific, framework, universal).
	Layer Layer `json:"layer"`

	// Category groups patterns for reporting (navigation, auth, crud,
	// form, table, modal, library).
	Category string `json:"category"`

	// SourceJourneys records which journeys contributed this pattern.
	// Treated as a set; duplicates are never stored.
	SourceJourneys []string `json:"sourceJourneys,omitempty"`

	// SuccessCount and FailCount accumulate real outcomes.
	SuccessCount int `json:"successCount"`
	FailCount    int `json:"failCount"`

	// TemplateSource names the template that generated the pattern.
	TemplateSource string `json:"templateSource,omitempty"`

	// EntityName names the mined entity the pattern was instantiated for.
	EntityName string `json:"entityName,omitempty"`
}

// Key is the identity key used to recognize "the same" pattern across
// sources: lower-cased normalized text plus action.
type Key struct {
	Text   string
	Action Action
}

// String renders the key in a stable, sortable form.
func (k Key) String() string {
	return k.Text + "\x00" + string(k.Action)
}

// Key returns the identity key for p.
func (p *Pattern) Key() Key {
	return Key{Text: strings.ToLower(p.NormalizedText), Action: p.Action}
}

// Validate checks the invariants every stored pattern must hold.
func (p *Pattern) Validate() error {
	if strings.TrimSpace(p.NormalizedText) == "" {
		return ErrEmptyText
	}
	if !p.Action.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAction, p.Action)
	}
	if p.Confidence < 0 || p.Confidence > MaxConfidence {
		return fmt.Errorf("%w: got %.2f", ErrInvalidConfidence, p.Confidence)
	}
	if p.SuccessCount < 0 || p.FailCount < 0 {
		return fmt.Errorf("outcome counts cannot be negative (success=%d fail=%d)", p.SuccessCount, p.FailCount)
	}
	return nil
}

// ClampConfidence bounds c to [0, MaxConfidence].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > MaxConfidence {
		return MaxConfidence
	}
	return c
}

// AddJourney adds journeyID to SourceJourneys if not already present.
func (p *Pattern) AddJourney(journeyID string) {
	if journeyID == "" {
		return
	}
	for _, j := range p.SourceJourneys {
		if j == journeyID {
			return
		}
	}
	p.SourceJourneys = append(p.SourceJourneys, journeyID)
}
