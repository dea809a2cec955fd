// Package source provides the shared read-only file-tree walk used by
// discovery and the source miners.
//
// The walk skips dependency and build directories, ignores files above
// a size cap, and silently skips anything unreadable. Mining runs
// speculatively before any convention is confirmed present, so absence
// and unreadability are expected, never errors.
package source

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize caps how much of a file the walk will read. Source files
// this large are generated artifacts, not conventions worth mining.
const MaxFileSize = 1 << 20 // 1MB

// skipDirs are directories never worth scanning: generated code,
// dependencies, or version control data.
var skipDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	".idea":        true,
	".vscode":      true,
	".cache":       true,
	"dist":         true,
	"build":        true,
	".next":        true,
	".nuxt":        true,
	"coverage":     true,
	"target":       true,
}

// File is one readable source file delivered by Walk.
type File struct {
	// Path is the absolute path on disk.
	Path string

	// Rel is the path relative to the walk root, with forward slashes.
	Rel string

	// Content is the full file content, capped at MaxFileSize.
	Content string
}

// WalkFunc receives each matching file. Returning false stops the walk.
type WalkFunc func(f File) bool

// Walk visits every regular file under root whose extension is in exts
// (all files when exts is empty), reading its content and passing it to
// fn. A missing or unreadable root is not an error: the walk simply
// visits nothing.
func Walk(root string, exts []string, fn WalkFunc) {
	extSet := make(map[string]bool, len(exts))
	for _, e := range exts {
		extSet[strings.ToLower(e)] = true
	}

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] || (strings.HasPrefix(d.Name(), ".") && path != root) {
				return filepath.SkipDir
			}
			return nil
		}
		if len(extSet) > 0 && !extSet[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() > MaxFileSize {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		if !fn(File{Path: path, Rel: filepath.ToSlash(rel), Content: string(content)}) {
			return filepath.SkipAll
		}
		return nil
	})
}

// ReadFileCapped reads a single file, returning "" for missing,
// unreadable, or oversized files.
func ReadFileCapped(path string) string {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() > MaxFileSize {
		return ""
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(content)
}
