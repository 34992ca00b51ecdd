package gitctx

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// scanConcurrency bounds parallel file reads in file-scan mode.
const scanConcurrency = 8

// skipDirs are directories never worth reviewing, applied when globs expand
// into generated or vendored trees.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	"dist":         true,
	"build":        true,
	".next":        true,
	"target":       true,
	"vendor":       true,
}

// ScanFiles reads the files matched by the given glob patterns and renders
// each as a synthetic "new file" diff, so downstream prompt building and
// parsing never special-case this mode. Unreadable and binary files become
// warnings rather than failures; only zero readable files is fatal. Reads run
// concurrently but the resulting order follows the resolved path order.
func ScanFiles(ctx context.Context, patterns []string, opts Options) (ChangeSet, error) {
	paths, warnings := resolvePatterns(patterns, opts)
	if len(paths) == 0 {
		return ChangeSet{}, &ExtractionError{
			Msg:  fmt.Sprintf("no files matched: %s", strings.Join(patterns, ", ")),
			Hint: "use glob patterns like 'src/*.go'",
		}
	}

	type scanned struct {
		change  FileChange
		warning string
		ok      bool
	}
	results := make([]scanned, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				results[i] = scanned{warning: fmt.Sprintf("skipped %s: cannot read file", relPath(path))}
				return nil
			}
			if isBinary(data) {
				results[i] = scanned{warning: fmt.Sprintf("skipped %s: binary file", relPath(path))}
				return nil
			}
			rel := relPath(path)
			hunk, truncated := truncateLines(syntheticDiff(rel, string(data)), opts.maxFileLines())
			results[i] = scanned{
				change: FileChange{Path: rel, Kind: KindAdded, Hunk: hunk, Truncated: truncated},
				ok:     true,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ChangeSet{}, err
	}

	var files []FileChange
	var anyTruncated bool
	for _, r := range results {
		if r.warning != "" {
			warnings = append(warnings, r.warning)
			continue
		}
		if r.ok {
			files = append(files, r.change)
			anyTruncated = anyTruncated || r.change.Truncated
		}
	}

	if len(files) == 0 {
		return ChangeSet{}, &ExtractionError{
			Msg:  "no readable files matched the given patterns",
			Hint: "check file permissions, or pass text files",
		}
	}

	return ChangeSet{
		Files:     files,
		BaseRef:   "N/A",
		TargetRef: "files",
		Warnings:  warnings,
		Truncated: anyTruncated,
	}, nil
}

// resolvePatterns expands globs into a deduplicated, input-ordered list of
// file paths, filtering excludes and well-known junk directories.
func resolvePatterns(patterns []string, opts Options) ([]string, []string) {
	seen := make(map[string]bool)
	var paths []string
	var warnings []string

	for _, pattern := range patterns {
		matches := expandPattern(pattern)
		if len(matches) == 0 {
			warnings = append(warnings, fmt.Sprintf("no match for pattern %q", pattern))
			continue
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("skipped %s: not found", relPath(m)))
				continue
			}
			if info.IsDir() {
				warnings = append(warnings, fmt.Sprintf("skipped %s: is a directory (use a glob like %s/*.go)", relPath(m), relPath(m)))
				continue
			}
			rel := relPath(m)
			if seen[rel] || inSkippedDir(rel) || matchesAny(rel, opts.Exclude) {
				continue
			}
			seen[rel] = true
			paths = append(paths, m)
		}
	}
	return paths, warnings
}

func expandPattern(pattern string) []string {
	if strings.ContainsAny(pattern, "*?[") {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil
		}
		return matches
	}
	return []string{pattern}
}

func inSkippedDir(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if skipDirs[part] {
			return true
		}
	}
	return false
}

// relPath renders a path relative to the working directory; paths that
// cannot be made relative fall back to the basename so absolute locations
// never leak into the ChangeSet.
func relPath(path string) string {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path))
	}
	cwd, err := os.Getwd()
	if err == nil {
		if rel, err := filepath.Rel(cwd, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.Base(path)
}

// isBinary applies git's heuristic: a NUL byte in the first 8000 bytes.
func isBinary(data []byte) bool {
	probe := data
	if len(probe) > 8000 {
		probe = probe[:8000]
	}
	return bytes.IndexByte(probe, 0) >= 0
}

// syntheticDiff renders full file content as a "new file" unified diff.
func syntheticDiff(path, content string) string {
	lines := strings.Split(content, "\n")
	var b strings.Builder
	fmt.Fprintf(&b, "diff --git a/%s b/%s\n", path, path)
	b.WriteString("new file mode 100644\n")
	b.WriteString("--- /dev/null\n")
	fmt.Fprintf(&b, "+++ b/%s\n", path)
	fmt.Fprintf(&b, "@@ -0,0 +1,%d @@\n", len(lines))
	for _, line := range lines {
		b.WriteString("+")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
