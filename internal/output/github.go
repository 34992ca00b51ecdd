package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/ebert/internal/review"
)

// GitHubWriter emits GitHub Actions workflow commands so findings appear as
// PR annotations.
type GitHubWriter struct{}

func (g *GitHubWriter) Write(w io.Writer, result *review.Result) error {
	for _, f := range result.Findings {
		location := "file=" + f.File
		if f.Line > 0 {
			location += fmt.Sprintf(",line=%d", f.Line)
		}
		if _, err := fmt.Fprintf(w, "::%s %s::%s\n",
			annotationLevel(f.Severity), location, escapeWorkflowData(f.Message)); err != nil {
			return err
		}
	}
	return nil
}

func annotationLevel(s review.Severity) string {
	switch s {
	case review.SeverityHigh:
		return "error"
	case review.SeverityMedium:
		return "warning"
	default:
		return "notice"
	}
}

// escapeWorkflowData encodes characters that terminate or corrupt a
// workflow command. Percent must be escaped first.
func escapeWorkflowData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}
