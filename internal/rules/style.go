package rules

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dshills/ebert/internal/review"
)

// STY001: overly long lines.
type lineLengthRule struct {
	warnLength  int
	errorLength int
}

func newLineLengthRule() lineLengthRule {
	return lineLengthRule{warnLength: 120, errorLength: 150}
}

var longLineSkipExts = []string{".md", ".json", ".svg", ".lock"}

func (lineLengthRule) ID() string              { return "STY001" }
func (lineLengthRule) Name() string            { return "long-line" }
func (lineLengthRule) Focus() review.FocusArea { return review.FocusStyle }

func (r lineLengthRule) Check(path, content string) []Match {
	for _, ext := range longLineSkipExts {
		if strings.HasSuffix(path, ext) {
			return nil
		}
	}
	var matches []Match
	for i, line := range strings.Split(content, "\n") {
		length := len(line)
		switch {
		case length > r.errorLength:
			matches = append(matches, Match{
				Line:       i + 1,
				Severity:   review.SeverityMedium,
				Message:    fmt.Sprintf("Line exceeds %d characters (%d)", r.errorLength, length),
				Suggestion: "Break this line for better readability",
			})
		case length > r.warnLength:
			matches = append(matches, Match{
				Line:     i + 1,
				Severity: review.SeverityLow,
				Message:  fmt.Sprintf("Line exceeds %d characters (%d)", r.warnLength, length),
			})
		}
	}
	return matches
}

// STY002: functions that exceed the recommended length.
type functionLengthRule struct {
	maxLines int
}

func newFunctionLengthRule() functionLengthRule {
	return functionLengthRule{maxLines: 50}
}

var jsFuncPattern = regexp.MustCompile(`^\s*(?:async\s+)?(?:function\s+(\w+)|(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s+)?\([^)]*\)\s*=>|(\w+)\s*\([^)]*\)\s*\{)`)

var funcPatterns = map[string]*regexp.Regexp{
	".py":   regexp.MustCompile(`^\s*(?:async\s+)?def\s+(\w+)\s*\(`),
	".js":   jsFuncPattern,
	".ts":   jsFuncPattern,
	".go":   regexp.MustCompile(`^\s*func\s+(?:\([^)]+\)\s+)?(\w+)\s*\(`),
	".rb":   regexp.MustCompile(`^\s*def\s+(\w+)`),
	".java": regexp.MustCompile(`^\s*(?:public|private|protected)?\s*(?:static\s+)?(?:[\w.<>\[\]]+\s+)?(\w+)\s*\([^)]*\)\s*\{?`),
}

var braceLanguages = map[string]bool{".js": true, ".ts": true, ".go": true, ".java": true}

var rubyBlockKeyword = regexp.MustCompile(`^(?:def|class|module|if|unless|case|while|until|for|begin|do)\b`)
var rubyEndKeyword = regexp.MustCompile(`^end\b`)

func (functionLengthRule) ID() string              { return "STY002" }
func (functionLengthRule) Name() string            { return "long-function" }
func (functionLengthRule) Focus() review.FocusArea { return review.FocusStyle }

func (r functionLengthRule) Check(path, content string) []Match {
	ext := filepath.Ext(path)
	pattern, ok := funcPatterns[ext]
	if !ok {
		return nil
	}
	lines := strings.Split(content, "\n")
	var matches []Match
	for i := 0; i < len(lines); {
		m := pattern.FindStringSubmatch(lines[i])
		if m == nil {
			i++
			continue
		}
		name := "function"
		for _, g := range m[1:] {
			if g != "" {
				name = g
				break
			}
		}
		length := measureFunction(lines, i, ext)
		if length > r.maxLines {
			matches = append(matches, Match{
				Line:       i + 1,
				Severity:   review.SeverityMedium,
				Message:    fmt.Sprintf("Function %q is %d lines (max %d)", name, length, r.maxLines),
				Suggestion: "Consider breaking into smaller functions",
			})
			i += length
			continue
		}
		i++
	}
	return matches
}

func measureFunction(lines []string, start int, ext string) int {
	switch {
	case ext == ".py":
		return measurePythonFunction(lines, start)
	case ext == ".rb":
		return measureRubyFunction(lines, start)
	case braceLanguages[ext]:
		return measureBracedFunction(lines, start)
	default:
		return 1
	}
}

func measureBracedFunction(lines []string, start int) int {
	depth := 0
	started := false
	for i := start; i < len(lines); i++ {
		line := lines[i]
		if !started && strings.Contains(line, "{") {
			started = true
		}
		if started {
			depth += strings.Count(line, "{") - strings.Count(line, "}")
			if depth <= 0 {
				return i - start + 1
			}
		}
	}
	if !started {
		return 1
	}
	return len(lines) - start
}

func measurePythonFunction(lines []string, start int) int {
	if start >= len(lines) {
		return 1
	}
	def := lines[start]
	baseIndent := len(def) - len(strings.TrimLeft(def, " \t"))
	for i := start + 1; i < len(lines); i++ {
		stripped := strings.TrimSpace(lines[i])
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}
		indent := len(lines[i]) - len(strings.TrimLeft(lines[i], " \t"))
		if indent <= baseIndent {
			return i - start
		}
	}
	return len(lines) - start
}

func measureRubyFunction(lines []string, start int) int {
	if start >= len(lines) {
		return 1
	}
	depth := 1
	for i := start + 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if rubyBlockKeyword.MatchString(line) {
			depth++
		}
		if rubyEndKeyword.MatchString(line) {
			depth--
			if depth == 0 {
				return i - start + 1
			}
		}
	}
	return len(lines) - start
}
