package rules

import (
	"fmt"
	"strings"

	"github.com/dshills/ebert/internal/gitctx"
	"github.com/dshills/ebert/internal/review"
)

// Version identifies the rule set in result metadata.
const Version = "rules-v1"

// Engine runs deterministic rules over a changeset and produces a Result
// shaped like provider output.
type Engine struct {
	rules []Rule
}

// NewEngine builds an Engine. With no arguments the built-in rules are
// selected per the config's focus areas at review time.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

// Review executes every applicable rule against the changeset.
func (e *Engine) Review(cs gitctx.ChangeSet, cfg review.Config) *review.Result {
	selected := e.rules
	if selected == nil {
		focus := cfg.Focus
		if len(focus) == 0 {
			focus = []review.FocusArea{review.FocusAll}
		}
		selected = ForFocus(focus)
	}

	var findings []review.Finding
	for _, fc := range cs.Files {
		if fc.Kind == gitctx.KindDeleted {
			continue
		}
		content := extractContent(fc.Hunk)
		for _, rule := range selected {
			for _, m := range rule.Check(fc.Path, content) {
				findings = append(findings, review.Finding{
					Severity:   m.Severity,
					File:       fc.Path,
					Line:       m.Line,
					Message:    fmt.Sprintf("[%s] %s", rule.ID(), m.Message),
					Suggestion: m.Suggestion,
				})
			}
		}
	}

	maxShown := cfg.MaxComments
	if maxShown <= 0 {
		maxShown = review.DefaultMaxComments
	}
	summary := summarize(findings, maxShown)
	if len(findings) > maxShown {
		findings = findings[:maxShown]
	}

	return &review.Result{
		Findings:  findings,
		Summary:   summary,
		Provider:  "deterministic",
		Model:     Version,
		Truncated: cs.Truncated,
	}
}

// extractContent recovers analyzable text from a diff hunk: added lines
// stripped of the leading +, context lines stripped of the leading space,
// headers and removals dropped. Line numbers reported by rules are positions
// in this extracted text.
func extractContent(hunk string) string {
	var lines []string
	for _, line := range strings.Split(hunk, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git"),
			strings.HasPrefix(line, "index "),
			strings.HasPrefix(line, "new file"),
			strings.HasPrefix(line, "deleted file"),
			strings.HasPrefix(line, "similarity"),
			strings.HasPrefix(line, "rename "),
			strings.HasPrefix(line, "---"),
			strings.HasPrefix(line, "+++"),
			strings.HasPrefix(line, "@@"),
			strings.HasPrefix(line, "-"):
			continue
		case strings.HasPrefix(line, "+"):
			lines = append(lines, line[1:])
		case strings.HasPrefix(line, " "):
			lines = append(lines, line[1:])
		default:
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func summarize(findings []review.Finding, maxShown int) string {
	total := len(findings)
	if total == 0 {
		return "No issues found."
	}
	counts := make(map[review.Severity]int)
	for _, f := range findings {
		counts[f.Severity]++
	}
	var parts []string
	for _, sev := range []review.Severity{review.SeverityHigh, review.SeverityMedium, review.SeverityLow, review.SeverityInfo} {
		if n := counts[sev]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, sev))
		}
	}
	plural := "s"
	if total == 1 {
		plural = ""
	}
	summary := fmt.Sprintf("Found %d issue%s", total, plural)
	if len(parts) > 0 {
		summary += ": " + strings.Join(parts, ", ")
	}
	summary += "."
	if total > maxShown {
		summary += fmt.Sprintf(" (showing first %d)", maxShown)
	}
	return summary
}
