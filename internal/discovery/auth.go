package discovery

import (
	"regexp"
	"strings"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"

	"github.com/fyrsmithlabs/patternbank/internal/source"
)

// loginFileRe matches filenames that conventionally hold login UI.
var loginFileRe = regexp.MustCompile(`(?i)(^|/)(login|signin|sign-in|auth)[^/]*\.(jsx?|tsx?|vue|svelte|html)$`)

// loginRouteRe finds a login-ish route literal in source.
var loginRouteRe = regexp.MustCompile(`["'` + "`" + `](/(?:auth/)?(?:login|signin|sign-in))["'` + "`" + `]`)

// oidc/oauth config field names, matched against flattened YAML keys
// and raw JSON/env content.
var (
	oidcFields  = []string{"oidc", "issuer", "well_known", "well-known", "discovery_url"}
	oauthFields = []string{"oauth", "client_secret", "client-secret", "authorization_url", "token_url"}
)

// selector value extractors for the login form's inputs. These look at
// test-id style values only; auth patterns built on anything weaker
// are not worth the high-confidence tier.
var (
	userSelectorRe   = regexp.MustCompile(`data-test(?:id)?\s*=\s*["']([^"']*(?:user|email|username)[^"']*)["']`)
	passSelectorRe   = regexp.MustCompile(`data-test(?:id)?\s*=\s*["']([^"']*password[^"']*)["']`)
	submitSelectorRe = regexp.MustCompile(`data-test(?:id)?\s*=\s*["']([^"']*(?:submit|login|signin)[^"']*)["']`)
)

// DetectAuth extracts authentication hints for the project.
//
// A cached profile that already recorded a detection is reused
// verbatim: cached hints may carry hand-verified selectors a fresh
// heuristic scan cannot reproduce. Otherwise the detector scans for
// login-related filenames and auth config fields, classifies the auth
// type, and extracts a login route and form selectors where visible.
func (e *Engine) DetectAuth(cached *AppProfile) AuthHints {
	if cached != nil && cached.AuthHints.Detected {
		return cached.AuthHints
	}

	hints := AuthHints{Type: AuthNone}

	var loginFiles []source.File
	oidcSeen, oauthSeen := false, false

	scanExts := append([]string{".yml", ".yaml", ".json", ".env", ".py"}, uiFileExtensions...)
	source.Walk(e.root, scanExts, func(f source.File) bool {
		if loginFileRe.MatchString(f.Rel) {
			loginFiles = append(loginFiles, f)
		}
		switch {
		case strings.HasSuffix(f.Rel, ".yml"), strings.HasSuffix(f.Rel, ".yaml"):
			keys := flattenYAMLKeys(f.Content)
			oidcSeen = oidcSeen || containsAnyField(keys, oidcFields)
			oauthSeen = oauthSeen || containsAnyField(keys, oauthFields)
		default:
			lower := strings.ToLower(f.Content)
			oidcSeen = oidcSeen || containsAnyField(lower, oidcFields)
			oauthSeen = oauthSeen || containsAnyField(lower, oauthFields)
		}
		if hints.LoginRoute == "" {
			if m := loginRouteRe.FindStringSubmatch(f.Content); m != nil {
				hints.LoginRoute = m[1]
			}
		}
		return true
	})

	switch {
	case oidcSeen:
		hints.Detected = true
		hints.Type = AuthOIDC
	case oauthSeen:
		hints.Detected = true
		hints.Type = AuthOAuth
	case len(loginFiles) > 0:
		hints.Detected = true
		hints.Type = AuthForm
	default:
		return hints
	}

	for _, f := range loginFiles {
		if hints.UsernameSelector == "" {
			if m := userSelectorRe.FindStringSubmatch(f.Content); m != nil {
				hints.UsernameSelector = m[1]
			}
		}
		if hints.PasswordSelector == "" {
			if m := passSelectorRe.FindStringSubmatch(f.Content); m != nil {
				hints.PasswordSelector = m[1]
			}
		}
		if hints.SubmitSelector == "" {
			if m := submitSelectorRe.FindStringSubmatch(f.Content); m != nil {
				hints.SubmitSelector = m[1]
			}
		}
	}
	return hints
}

// flattenYAMLKeys parses YAML and returns a lower-cased space-joined
// string of every key path, suitable for substring field matching.
// Unparseable YAML contributes nothing.
func flattenYAMLKeys(content string) string {
	parsed, err := koanfyaml.Parser().Unmarshal([]byte(content))
	if err != nil {
		return ""
	}
	var keys []string
	var walk func(prefix string, node map[string]any)
	walk = func(prefix string, node map[string]any) {
		for k, v := range node {
			full := k
			if prefix != "" {
				full = prefix + "." + k
			}
			keys = append(keys, strings.ToLower(full))
			if child, ok := v.(map[string]any); ok {
				walk(full, child)
			}
		}
	}
	walk("", parsed)
	return strings.Join(keys, " ")
}

func containsAnyField(haystack string, fields []string) bool {
	for _, f := range fields {
		if strings.Contains(haystack, f) {
			return true
		}
	}
	return false
}
