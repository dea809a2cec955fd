package discovery

import "regexp"

// signature describes how one framework or UI library shows up in a
// project. Detection starts from the manifest dependency, then raises
// confidence for each corroborating marker file or source import.
type signature struct {
	// Name is the canonical name reported in Detection.
	Name string

	// Packages are manifest dependency names that declare the library.
	Packages []string

	// BaseConfidence applies when only the manifest mentions it.
	BaseConfidence float64

	// MarkerFiles corroborate when present at the project root.
	MarkerFiles []string

	// ImportPattern corroborates when it matches any scanned source file.
	ImportPattern *regexp.Regexp
}

// evidenceBoost is added per corroborating signal, capped at the
// pattern confidence ceiling.
const evidenceBoost = 0.10

// maxDetectionConfidence mirrors the pattern ceiling: detection is
// never certain either.
const maxDetectionConfidence = 0.95

// frameworkSignatures is the single source of truth for framework
// detection. Adding a framework means adding a row, not code.
var frameworkSignatures = []signature{
	{
		Name:           "react",
		Packages:       []string{"react", "react-dom"},
		BaseConfidence: 0.70,
		ImportPattern:  regexp.MustCompile(`(?m)from\s+['"]react['"]|require\(['"]react['"]\)`),
	},
	{
		Name:           "next",
		Packages:       []string{"next"},
		BaseConfidence: 0.70,
		MarkerFiles:    []string{"next.config.js", "next.config.mjs", "next.config.ts"},
		ImportPattern:  regexp.MustCompile(`(?m)from\s+['"]next(/[a-z-]+)?['"]`),
	},
	{
		Name:           "vue",
		Packages:       []string{"vue"},
		BaseConfidence: 0.70,
		MarkerFiles:    []string{"vue.config.js", "vite.config.ts"},
		ImportPattern:  regexp.MustCompile(`(?m)from\s+['"]vue['"]|<template>`),
	},
	{
		Name:           "nuxt",
		Packages:       []string{"nuxt"},
		BaseConfidence: 0.70,
		MarkerFiles:    []string{"nuxt.config.js", "nuxt.config.ts"},
	},
	{
		Name:           "angular",
		Packages:       []string{"@angular/core"},
		BaseConfidence: 0.70,
		MarkerFiles:    []string{"angular.json"},
		ImportPattern:  regexp.MustCompile(`(?m)from\s+['"]@angular/`),
	},
	{
		Name:           "svelte",
		Packages:       []string{"svelte"},
		BaseConfidence: 0.70,
		MarkerFiles:    []string{"svelte.config.js"},
		ImportPattern:  regexp.MustCompile(`(?m)from\s+['"]svelte`),
	},
	{
		Name:           "django",
		Packages:       []string{"django"},
		BaseConfidence: 0.70,
		MarkerFiles:    []string{"manage.py"},
		ImportPattern:  regexp.MustCompile(`(?m)^from\s+django|^import\s+django`),
	},
	{
		Name:           "flask",
		Packages:       []string{"flask"},
		BaseConfidence: 0.70,
		ImportPattern:  regexp.MustCompile(`(?m)^from\s+flask\s+import`),
	},
	{
		Name:           "fastapi",
		Packages:       []string{"fastapi"},
		BaseConfidence: 0.70,
		ImportPattern:  regexp.MustCompile(`(?m)^from\s+fastapi\s+import`),
	},
}

// uiLibrarySignatures detects component libraries the same way.
var uiLibrarySignatures = []signature{
	{
		Name:           "mui",
		Packages:       []string{"@mui/material", "@material-ui/core", "mui"},
		BaseConfidence: 0.70,
		ImportPattern:  regexp.MustCompile(`(?m)from\s+['"]@mui/|from\s+['"]@material-ui/`),
	},
	{
		Name:           "antd",
		Packages:       []string{"antd"},
		BaseConfidence: 0.70,
		ImportPattern:  regexp.MustCompile(`(?m)from\s+['"]antd['"]`),
	},
	{
		Name:           "chakra",
		Packages:       []string{"@chakra-ui/react"},
		BaseConfidence: 0.70,
		ImportPattern:  regexp.MustCompile(`(?m)from\s+['"]@chakra-ui/`),
	},
	{
		Name:           "bootstrap",
		Packages:       []string{"bootstrap", "react-bootstrap"},
		BaseConfidence: 0.65,
		ImportPattern:  regexp.MustCompile(`(?m)from\s+['"]react-bootstrap['"]|btn btn-`),
	},
	{
		Name:           "tailwind",
		Packages:       []string{"tailwindcss"},
		BaseConfidence: 0.65,
		MarkerFiles:    []string{"tailwind.config.js", "tailwind.config.ts"},
	},
}

// selectorAttributes is the fixed candidate set the selector scan
// measures coverage for, in preference order.
var selectorAttributes = []string{
	"data-testid",
	"data-test",
	"data-cy",
	"data-qa",
	"id",
	"aria-label",
}

// uiFileExtensions are the file types the selector and import scans read.
var uiFileExtensions = []string{".jsx", ".tsx", ".js", ".ts", ".vue", ".svelte", ".html"}
