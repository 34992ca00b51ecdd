package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dshills/ebert/internal/review"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, result *review.Result) error {
	counts := result.Counts()
	total := len(result.Findings)

	fmt.Fprintf(w, "## Ebert Code Review\n\n")
	if result.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", result.Summary)
	}

	fmt.Fprintf(w, "| Severity | Count |\n")
	fmt.Fprintf(w, "|----------|-------|\n")
	fmt.Fprintf(w, "| High     | %d    |\n", counts[review.SeverityHigh])
	fmt.Fprintf(w, "| Medium   | %d    |\n", counts[review.SeverityMedium])
	fmt.Fprintf(w, "| Low      | %d    |\n", counts[review.SeverityLow])
	fmt.Fprintf(w, "| Info     | %d    |\n", counts[review.SeverityInfo])
	fmt.Fprintf(w, "| **Total** | **%d** |\n\n", total)

	if total == 0 {
		fmt.Fprintln(w, "No issues found. :white_check_mark:")
		return nil
	}

	grouped := groupBySeverity(result.Findings)
	for _, sev := range severityOrder {
		findings := grouped[sev]
		if len(findings) == 0 {
			continue
		}

		label := strings.ToUpper(string(sev))
		fmt.Fprintf(w, "<details>\n<summary>%s (%d)</summary>\n\n", label, len(findings))

		sort.SliceStable(findings, func(i, j int) bool {
			return findings[i].File < findings[j].File
		})

		for _, f := range findings {
			fmt.Fprintf(w, "- **`%s`** %s\n", location(f), f.Message)
			if f.Suggestion != "" {
				fmt.Fprintf(w, "  - Suggestion: %s\n", f.Suggestion)
			}
		}
		fmt.Fprintf(w, "\n</details>\n\n")
	}

	fmt.Fprintf(w, "_Reviewed by %s (%s)_\n", result.Provider, result.Model)
	return nil
}
