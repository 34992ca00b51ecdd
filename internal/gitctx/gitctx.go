package gitctx

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/dshills/ebert/internal/redact"
)

// ChangeKind classifies how a file changed.
type ChangeKind string

const (
	KindAdded    ChangeKind = "added"
	KindModified ChangeKind = "modified"
	KindDeleted  ChangeKind = "deleted"
	KindRenamed  ChangeKind = "renamed"
)

// FileChange is one file's diff within a ChangeSet.
type FileChange struct {
	Path      string
	Kind      ChangeKind
	Hunk      string
	Truncated bool
}

// ChangeSet is the bounded, ordered representation of what changed.
// It is built once per run and never mutated afterward.
type ChangeSet struct {
	Files     []FileChange
	BaseRef   string
	TargetRef string
	Warnings  []string
	Truncated bool
}

// Empty reports whether the ChangeSet contains no file changes.
func (cs ChangeSet) Empty() bool { return len(cs.Files) == 0 }

// Paths returns the file paths in discovery order.
func (cs ChangeSet) Paths() []string {
	paths := make([]string, len(cs.Files))
	for i, f := range cs.Files {
		paths[i] = f.Path
	}
	return paths
}

// Options controls how changes are gathered.
type Options struct {
	ContextLines int
	MaxFileLines int
	Exclude      []string
}

// DefaultMaxFileLines bounds a single file's hunk so the prompt stays within
// provider context limits.
const DefaultMaxFileLines = 1500

func (o Options) maxFileLines() int {
	if o.MaxFileLines > 0 {
		return o.MaxFileLines
	}
	return DefaultMaxFileLines
}

// ExtractionError is a user-actionable failure to build a ChangeSet. Messages
// carry a remediation hint and never include absolute paths.
type ExtractionError struct {
	Msg  string
	Hint string
}

func (e *ExtractionError) Error() string {
	if e.Hint != "" {
		return e.Msg + " (" + e.Hint + ")"
	}
	return e.Msg
}

// Staged extracts the diff of the index vs HEAD. Unstaged working-tree edits
// are excluded; that boundary is deliberate, not an omission.
func Staged(opts Options) (ChangeSet, error) {
	diff, err := gitOutput(append([]string{"diff", "--cached"}, diffArgs(opts)...)...)
	if err != nil {
		return ChangeSet{}, fmt.Errorf("git diff --cached: %w", err)
	}
	if strings.TrimSpace(diff) == "" {
		return ChangeSet{}, &ExtractionError{
			Msg:  "no staged changes found",
			Hint: "stage changes with 'git add' first",
		}
	}
	files, truncated, err := parseDiff(diff, opts)
	if err != nil {
		return ChangeSet{}, err
	}
	return ChangeSet{
		Files:     files,
		BaseRef:   "HEAD",
		TargetRef: "staged",
		Truncated: truncated,
	}, nil
}

// Branch extracts the diff between the merge base of HEAD and target, and
// HEAD. Scoping to the merge base keeps unrelated commits already on the
// target branch out of the review.
func Branch(target string, opts Options) (ChangeSet, error) {
	if _, err := gitOutput("rev-parse", "--verify", target); err != nil {
		return ChangeSet{}, &ExtractionError{
			Msg:  fmt.Sprintf("cannot resolve branch %q", target),
			Hint: "check the branch name, or fetch it first",
		}
	}
	base, err := gitOutput("merge-base", target, "HEAD")
	if err != nil {
		return ChangeSet{}, &ExtractionError{
			Msg:  fmt.Sprintf("no merge base between %q and HEAD", target),
			Hint: "the branches may have unrelated histories",
		}
	}
	base = strings.TrimSpace(base)

	diff, err := gitOutput(append([]string{"diff", base, "HEAD"}, diffArgs(opts)...)...)
	if err != nil {
		return ChangeSet{}, fmt.Errorf("git diff %s HEAD: %w", target, err)
	}
	if strings.TrimSpace(diff) == "" {
		return ChangeSet{}, &ExtractionError{
			Msg:  fmt.Sprintf("no changes between %q and HEAD", target),
			Hint: "the branches point at identical trees",
		}
	}
	files, truncated, err := parseDiff(diff, opts)
	if err != nil {
		return ChangeSet{}, err
	}
	return ChangeSet{
		Files:     files,
		BaseRef:   target,
		TargetRef: "HEAD",
		Truncated: truncated,
	}, nil
}

func diffArgs(opts Options) []string {
	var args []string
	if opts.ContextLines > 0 {
		args = append(args, fmt.Sprintf("-U%d", opts.ContextLines))
	}
	return args
}

// parseDiff splits raw unified diff output into per-file entries, using
// go-gitdiff for change-kind and rename detection. Discovery order is
// preserved.
func parseDiff(raw string, opts Options) ([]FileChange, bool, error) {
	parsed, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, false, fmt.Errorf("parsing diff: %w", err)
	}

	sections := splitSections(raw)
	var files []FileChange
	var anyTruncated bool
	for i, f := range parsed {
		path := f.NewName
		if path == "" || f.IsDelete {
			path = f.OldName
		}
		if path == "" || matchesAny(path, opts.Exclude) {
			continue
		}

		kind := KindModified
		switch {
		case f.IsRename:
			kind = KindRenamed
		case f.IsNew:
			kind = KindAdded
		case f.IsDelete:
			kind = KindDeleted
		}

		hunk := ""
		if i < len(sections) {
			hunk = sections[i]
		}
		hunk, truncated := truncateLines(hunk, opts.maxFileLines())
		anyTruncated = anyTruncated || truncated

		files = append(files, FileChange{
			Path:      path,
			Kind:      kind,
			Hunk:      hunk,
			Truncated: truncated,
		})
	}
	return files, anyTruncated, nil
}

// splitSections cuts a combined diff into per-file sections at each
// "diff --git" header.
func splitSections(diff string) []string {
	var sections []string
	var current strings.Builder
	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "diff --git") && current.Len() > 0 {
			sections = append(sections, current.String())
			current.Reset()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if current.Len() > 0 {
		sections = append(sections, current.String())
	}
	return sections
}

// truncateLines caps text at max lines, appending a marker when content was
// dropped so reduced coverage is visible downstream.
func truncateLines(text string, max int) (string, bool) {
	lines := strings.Split(text, "\n")
	if len(lines) <= max {
		return text, false
	}
	kept := strings.Join(lines[:max], "\n")
	return kept + fmt.Sprintf("\n... (truncated at %d lines)\n", max), true
}

// matchesAny reports whether path matches any of the glob patterns. Patterns
// with a "**/" prefix also match against the basename.
func matchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := filepath.Match(pattern, path); err == nil && matched {
			return true
		}
		clean := strings.TrimPrefix(pattern, "**/")
		if clean == pattern {
			continue
		}
		if matched, err := filepath.Match(clean, filepath.Base(path)); err == nil && matched {
			return true
		}
		if matched, err := filepath.Match(clean, path); err == nil && matched {
			return true
		}
	}
	return false
}

// gitOutput runs a read-only git query. Stderr is sanitized before being
// wrapped so failures never surface absolute paths.
func gitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, redact.Error(strings.TrimSpace(string(exitErr.Stderr))))
		}
		return "", err
	}
	return string(out), nil
}
