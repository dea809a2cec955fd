package miner

import (
	"regexp"
	"strings"

	"github.com/fyrsmithlabs/patternbank/internal/source"
)

// routeRes extract URL paths from the common routing conventions:
// route-table objects, router registrations, and JSX route elements.
var routeRes = []*regexp.Regexp{
	// { path: '/users' } route tables (React Router, Vue Router, Angular)
	regexp.MustCompile(`path:\s*['"` + "`" + `](/[^'"` + "`" + `\s]*)['"` + "`" + `]`),
	// router.get('/users'), app.post('/users/:id'), @app.route("/users")
	regexp.MustCompile(`\.(?:get|post|put|patch|delete|route)\(\s*['"` + "`" + `](/[^'"` + "`" + `\s]*)['"` + "`" + `]`),
	// <Route path="/users" ...>
	regexp.MustCompile(`<Route[^>]*\spath=["'](/[^"']*)["']`),
}

// routeFileHint limits the scan to files that plausibly define routes.
var routeFileHint = regexp.MustCompile(`(?i)(rout|pages?|views?|urls|app|api|server|navigation)`)

// MineRoutes scans for navigable URL paths. Parameterized segments are
// kept verbatim; duplicates collapse on the path.
func MineRoutes(root string) ([]Element, error) {
	seen := map[string]bool{}
	var elements []Element

	source.Walk(root, []string{".ts", ".tsx", ".js", ".jsx", ".vue", ".py"}, func(f source.File) bool {
		if !routeFileHint.MatchString(f.Rel) {
			return true
		}
		for _, re := range routeRes {
			for _, m := range re.FindAllStringSubmatch(f.Content, -1) {
				path := m[1]
				if path == "" || seen[path] {
					continue
				}
				name := routeName(path)
				if name == "" || excluded(name) {
					continue
				}
				seen[path] = true
				elements = append(elements, Element{
					Kind:  KindRoute,
					Name:  name,
					File:  f.Rel,
					Route: path,
				})
			}
		}
		return true
	})

	return sortElements(elements), nil
}

// routeName derives a readable name from a path: the last static
// segment, so /users/:id/orders names "orders" and / names "home".
func routeName(path string) string {
	if path == "/" {
		return "home"
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if seg == "" || strings.HasPrefix(seg, ":") || strings.HasPrefix(seg, "[") ||
			strings.HasPrefix(seg, "{") || strings.HasPrefix(seg, "*") {
			continue
		}
		return strings.ToLower(seg)
	}
	return ""
}
