// Package locator discovers source files under a codebase root and resolves
// bare frame filenames back to on-disk paths.
package locator

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"tracescope/internal/analyzer"
)

// DefaultMaxFiles caps discovery-mode results to bound cost on large trees.
const DefaultMaxFiles = 50

// extensionPriority orders the discovery allow-list: primary domain-language
// sources first, general-purpose languages second. Truncation at the file
// cap follows this ordering, so on a large tree the primary language wins.
var extensionPriority = []string{
	".rb", ".rake",
	".js", ".jsx", ".ts", ".tsx",
	".py",
	".go",
	".java",
	".php",
	".cs",
	".rs",
}

// excludedDirs are build, dependency and version-control directories that
// are never scanned, independent of ignore-file rules.
var excludedDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"tmp":          true,
	"log":          true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
	"__pycache__":  true,
	".bundle":      true,
}

// resolveDirs are the candidate join points tried by Resolve, in order.
const (
	srcDir = "src"
	appDir = "app"
)

// ScanOptions tunes a discovery-mode scan.
type ScanOptions struct {
	MaxFiles int // <= 0 means DefaultMaxFiles
}

// Scan enumerates eligible source files under root and analyzes each one.
// Exclusions apply before the cap: fixed directory exclusions, then the
// root's .gitignore rules when present. A file that cannot be read is
// skipped, never aborting the batch. The returned error only reflects a
// failure to walk the root itself.
func Scan(root string, opts ScanOptions) ([]*analyzer.FileAnalysis, error) {
	maxFiles := opts.MaxFiles
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}

	ignore := LoadIgnoreRules(root)

	// One walk, bucketed per extension, then concatenated in priority
	// order. Equivalent to globbing once per pattern but with a single
	// traversal.
	buckets := make(map[string][]string, len(extensionPriority))
	err := walkEligible(root, ignore, func(path, ext string) {
		buckets[ext] = append(buckets[ext], path)
	})
	if err != nil {
		return nil, err
	}

	var analyses []*analyzer.FileAnalysis
	for _, ext := range extensionPriority {
		for _, path := range buckets[ext] {
			if len(analyses) >= maxFiles {
				return analyses, nil
			}
			fa, err := analyzer.AnalyzeFile(path, 0, 0)
			if err != nil {
				continue // unreadable file: skip, keep scanning
			}
			analyses = append(analyses, fa)
		}
	}
	return analyses, nil
}

func walkEligible(root string, ignore *IgnoreRules, visit func(path, ext string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // unreadable subtree: skip
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}

		if d.IsDir() {
			if excludedDirs[d.Name()] || ignore.Ignored(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(d.Name()))
		if !eligibleExt(ext) {
			return nil
		}
		if ignore.Ignored(rel) {
			return nil
		}
		visit(path, ext)
		return nil
	})
}

func eligibleExt(ext string) bool {
	for _, e := range extensionPriority {
		if e == ext {
			return true
		}
	}
	return false
}

// Resolve maps a bare frame filename to an on-disk path. The fixed join
// points are tried first; when none hit, the tree is searched for the first
// basename match, since frames only carry the final path component. An empty
// result is "not found, likely external or library code", not an error.
func Resolve(filename, root string) (string, bool) {
	if filename == "" {
		return "", false
	}

	candidates := []string{
		filepath.Join(root, filename),
		filepath.Join(root, srcDir, filename),
		filepath.Join(root, appDir, filename),
	}
	for _, c := range candidates {
		if readableFile(c) {
			return c, true
		}
	}

	// Fallback: first basename match anywhere under root, in enumeration
	// order, skipping excluded directories.
	var found string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if excludedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == filename && readableFile(path) {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	return found, found != ""
}

func readableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
