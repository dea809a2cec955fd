// Package discovery inspects a project for framework and UI-library
// signals, selector-naming conventions, and authentication hints.
//
// Detection is table-driven: every framework and UI library is an
// entry in a signature table (manifest dependency name, marker files,
// source-import pattern), so the table is the single testable source
// of truth rather than ad hoc control flow. All detectors return
// empty or default results rather than fail on a missing manifest or
// absent source — an empty project is an expected input.
package discovery

import "time"

// DefaultSelectorAttribute is the primary selector attribute assumed
// when a project shows no selector evidence at all, so downstream
// consumers always have a usable default.
const DefaultSelectorAttribute = "data-testid"

// Detection is one detected framework or UI library.
type Detection struct {
	// Name is the canonical library name, e.g. "react" or "mui".
	Name string `json:"name"`

	// Confidence is the detection confidence in [0, 0.95].
	Confidence float64 `json:"confidence"`

	// Evidence lists what corroborated the detection.
	Evidence []string `json:"evidence,omitempty"`
}

// SelectorSignals summarizes the project's selector conventions.
type SelectorSignals struct {
	// PrimaryAttribute is the attribute with the highest coverage,
	// defaulting to DefaultSelectorAttribute without evidence.
	PrimaryAttribute string `json:"primaryAttribute"`

	// NamingConvention is the majority style of sampled selector
	// values: "kebab-case", "camelCase", or "snake_case".
	NamingConvention string `json:"namingConvention"`

	// Coverage maps each candidate attribute to the fraction of
	// scanned UI files that use it.
	Coverage map[string]float64 `json:"coverage"`

	// SampleValues holds example selector values seen in source.
	SampleValues []string `json:"sampleValues,omitempty"`

	// FilesScanned counts the UI files the scan actually read.
	FilesScanned int `json:"filesScanned"`
}

// AuthType classifies detected authentication.
type AuthType string

const (
	AuthOIDC  AuthType = "oidc"
	AuthOAuth AuthType = "oauth"
	AuthForm  AuthType = "form"
	AuthNone  AuthType = "none"
)

// AuthHints describes the authentication shape of the project, as far
// as filename and config-field heuristics can see it.
type AuthHints struct {
	Detected         bool     `json:"detected"`
	Type             AuthType `json:"type"`
	LoginRoute       string   `json:"loginRoute,omitempty"`
	UsernameSelector string   `json:"usernameSelector,omitempty"`
	PasswordSelector string   `json:"passwordSelector,omitempty"`
	SubmitSelector   string   `json:"submitSelector,omitempty"`

	// Bypass names an environment-provided bypass (e.g. a token
	// variable) when one is advertised by config.
	Bypass string `json:"bypass,omitempty"`
}

// RuntimeStatus captures what version control says about the project.
type RuntimeStatus struct {
	// Git reports whether the project root is inside a git work tree.
	Git bool `json:"git"`

	// Branch is the checked-out branch name, empty on detached HEAD
	// or outside a repository.
	Branch string `json:"branch,omitempty"`

	// Dirty reports uncommitted changes in the work tree.
	Dirty bool `json:"dirty,omitempty"`
}

// AppProfile is discovery's summary of a project: its frameworks, UI
// libraries, selector conventions, and auth shape.
type AppProfile struct {
	Frameworks      []Detection     `json:"frameworks"`
	UILibraries     []Detection     `json:"uiLibraries"`
	SelectorSignals SelectorSignals `json:"selectorSignals"`
	AuthHints       AuthHints       `json:"authHints"`
	Runtime         RuntimeStatus   `json:"runtime"`
	GeneratedAt     time.Time       `json:"generatedAt"`
}

// Normalize ensures slices and maps are non-nil and defaults are
// filled, so a zero profile round-trips cleanly through JSON.
func (p *AppProfile) Normalize() {
	if p.Frameworks == nil {
		p.Frameworks = []Detection{}
	}
	if p.UILibraries == nil {
		p.UILibraries = []Detection{}
	}
	if p.SelectorSignals.Coverage == nil {
		p.SelectorSignals.Coverage = map[string]float64{}
	}
	if p.SelectorSignals.PrimaryAttribute == "" {
		p.SelectorSignals.PrimaryAttribute = DefaultSelectorAttribute
	}
	if p.AuthHints.Type == "" {
		p.AuthHints.Type = AuthNone
	}
}
