package review

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/ebert/internal/gitctx"
)

// Prompt is a fully rendered provider request. Building one has no side
// effects; the same changeset and config always produce the same bytes.
type Prompt struct {
	System string
	User   string
}

var focusDescriptions = map[FocusArea]string{
	FocusSecurity:    "security vulnerabilities, injection risks, secrets in code, and unsafe handling of untrusted input",
	FocusBugs:        "logic errors, off-by-one mistakes, nil/null dereferences, race conditions, and unhandled error paths",
	FocusStyle:       "naming, readability, dead code, and consistency with the surrounding codebase",
	FocusPerformance: "unnecessary allocations, quadratic loops, blocking calls on hot paths, and missing caching opportunities",
	FocusAll:         "correctness, security, performance, and readability",
}

// BuildPrompt renders the system and user messages for a changeset.
func BuildPrompt(cs gitctx.ChangeSet, cfg Config) Prompt {
	return Prompt{
		System: buildSystem(cfg),
		User:   buildUser(cs),
	}
}

func buildSystem(cfg Config) string {
	var b strings.Builder

	b.WriteString("You are an expert code reviewer. Review the provided diff and report concrete, actionable findings.\n\n")

	if cfg.mode() == ModeQuick {
		b.WriteString("Perform a quick review: flag only clear, high-confidence issues.\n")
	} else {
		b.WriteString("Perform a thorough review: examine correctness, edge cases, and design.\n")
	}

	areas := cfg.focus()
	sorted := make([]string, 0, len(areas))
	for _, a := range areas {
		if desc, ok := focusDescriptions[a]; ok {
			sorted = append(sorted, fmt.Sprintf("- %s: %s", a, desc))
		}
	}
	sort.Strings(sorted)
	b.WriteString("Focus on:\n")
	b.WriteString(strings.Join(sorted, "\n"))
	b.WriteString("\n")

	if cfg.StyleGuide != "" {
		b.WriteString("\nProject style guide to enforce:\n")
		b.WriteString(strings.TrimSpace(cfg.StyleGuide))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nReport at most %d comments. Prefer the most impactful issues.\n", cfg.maxComments())

	b.WriteString(`
Respond with ONLY a JSON object, no prose before or after, in exactly this shape:
{
  "summary": "one or two sentence overall assessment",
  "comments": [
    {
      "file": "path/to/file",
      "line": 42,
      "severity": "high|medium|low|info",
      "message": "what is wrong and why it matters",
      "suggestion": "optional concrete fix"
    }
  ]
}

Severity meanings: high = must fix before merge, medium = should fix,
low = minor improvement, info = observation only. Omit "line" when no
single line applies. An empty "comments" array is a valid response for
clean changes.
`)

	return b.String()
}

func buildUser(cs gitctx.ChangeSet) string {
	var b strings.Builder

	b.WriteString("Files changed:\n")
	for _, fc := range cs.Files {
		fmt.Fprintf(&b, "- %s (%s)", fc.Path, fc.Kind)
		if fc.Truncated {
			b.WriteString(" [truncated]")
		}
		b.WriteString("\n")
	}

	b.WriteString("\n--- BEGIN DIFF ---\n")
	for _, fc := range cs.Files {
		b.WriteString(fc.Hunk)
		if !strings.HasSuffix(fc.Hunk, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("--- END DIFF ---\n")

	return b.String()
}
