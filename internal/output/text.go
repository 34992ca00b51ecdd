package output

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/ebert/internal/review"
)

// TextWriter outputs a human-readable report styled for terminals.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, result *review.Result) error {
	ew := &errWriter{w: w}
	counts := result.Counts()
	total := len(result.Findings)

	ew.println(headerStyle.Render("Ebert Code Review") + dimStyle.Render("  ("+result.Provider+"/"+result.Model+")"))
	if result.Summary != "" {
		ew.println(result.Summary)
	}
	ew.println(strings.Repeat("─", 60))

	if total == 0 {
		ew.println(cleanStyle.Render("No issues found. Looks good!"))
		return ew.err
	}

	ew.printf("Findings: %d total (%d high, %d medium, %d low, %d info)\n",
		total,
		counts[review.SeverityHigh],
		counts[review.SeverityMedium],
		counts[review.SeverityLow],
		counts[review.SeverityInfo],
	)

	grouped := groupBySeverity(result.Findings)
	for _, sev := range severityOrder {
		findings := grouped[sev]
		if len(findings) == 0 {
			continue
		}

		label := strings.ToUpper(string(sev))
		ew.printf("\n%s\n", severityStyle(sev).Render(label))
		ew.println(strings.Repeat("─", 40))

		sort.SliceStable(findings, func(i, j int) bool {
			if findings[i].File != findings[j].File {
				return findings[i].File < findings[j].File
			}
			return findings[i].Line < findings[j].Line
		})

		for _, f := range findings {
			ew.printf("\n  %s\n", location(f))
			for _, line := range wrapText(f.Message, 70) {
				ew.printf("    %s\n", line)
			}
			if f.Suggestion != "" {
				ew.println("  Suggestion:")
				for _, line := range wrapText(f.Suggestion, 70) {
					ew.printf("    %s\n", line)
				}
			}
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	if result.Truncated {
		ew.println(dimStyle.Render("Note: the diff was truncated before review."))
	}
	if result.Degraded {
		ew.println(dimStyle.Render("Note: the provider response was incomplete or malformed; findings may be partial."))
	}
	for _, a := range result.Anomalies {
		ew.println(dimStyle.Render("  - " + a))
	}

	return ew.err
}

func severityStyle(s review.Severity) lipgloss.Style {
	switch s {
	case review.SeverityHigh:
		return highStyle
	case review.SeverityMedium:
		return mediumStyle
	case review.SeverityLow:
		return lowStyle
	default:
		return infoStyle
	}
}

func location(f review.Finding) string {
	switch {
	case f.File == "":
		return "(general)"
	case f.Line > 0:
		return f.File + ":" + strconv.Itoa(f.Line)
	default:
		return f.File
	}
}

// wrapText breaks text into lines of at most width characters, splitting on
// word boundaries.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	lines = append(lines, current)
	return lines
}
