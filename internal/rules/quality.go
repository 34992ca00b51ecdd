package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/ebert/internal/review"
)

// QUA001: debug statements left in committed code.
type debugStatementRule struct{}

var jsDebugPattern = regexp.MustCompile(`^\s*(?:console\.(?:log|debug|warn|error|trace|info)\s*\(|debugger\b)`)

var debugPatterns = map[string]*regexp.Regexp{
	".py":  regexp.MustCompile(`^\s*(?:print\s*\(|breakpoint\s*\(|import\s+pdb|pdb\.set_trace\s*\()`),
	".js":  jsDebugPattern,
	".ts":  jsDebugPattern,
	".tsx": jsDebugPattern,
	".jsx": jsDebugPattern,
	".go":  regexp.MustCompile(`^\s*(?:fmt\.Print|log\.Print)`),
	".rb":  regexp.MustCompile(`^\s*(?:puts\s|p\s+[^=]|pp\s|binding\.pry)`),
}

func (debugStatementRule) ID() string              { return "QUA001" }
func (debugStatementRule) Name() string            { return "debug-statement" }
func (debugStatementRule) Focus() review.FocusArea { return review.FocusBugs }

func (debugStatementRule) Check(path, content string) []Match {
	pattern := patternForExt(debugPatterns, path)
	if pattern == nil {
		return nil
	}
	var matches []Match
	for i, line := range strings.Split(content, "\n") {
		if isCommentLine(line) {
			continue
		}
		if pattern.MatchString(line) {
			matches = append(matches, Match{
				Line:       i + 1,
				Severity:   review.SeverityMedium,
				Message:    "Debug statement found",
				Suggestion: "Remove debug statements before committing",
			})
		}
	}
	return matches
}

func patternForExt(patterns map[string]*regexp.Regexp, path string) *regexp.Regexp {
	for ext, p := range patterns {
		if strings.HasSuffix(path, ext) {
			return p
		}
	}
	return nil
}

// QUA002: deferred-work markers in comments.
type todoCommentRule struct{}

var todoPattern = regexp.MustCompile(`(?i)(?:^|\s)(?:#|//|/\*|\*|<!--|--)\s*(TODO|FIXME|HACK|XXX|BUG|OPTIMIZE)[\s:(\[]`)

var todoSeverity = map[string]review.Severity{
	"TODO":     review.SeverityInfo,
	"FIXME":    review.SeverityMedium,
	"HACK":     review.SeverityMedium,
	"XXX":      review.SeverityMedium,
	"BUG":      review.SeverityHigh,
	"OPTIMIZE": review.SeverityLow,
}

func (todoCommentRule) ID() string              { return "QUA002" }
func (todoCommentRule) Name() string            { return "todo-comment" }
func (todoCommentRule) Focus() review.FocusArea { return review.FocusBugs }

func (todoCommentRule) Check(path, content string) []Match {
	var matches []Match
	for i, line := range strings.Split(content, "\n") {
		m := todoPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		keyword := strings.ToUpper(m[1])
		sev, ok := todoSeverity[keyword]
		if !ok {
			sev = review.SeverityInfo
		}
		matches = append(matches, Match{
			Line:       i + 1,
			Severity:   sev,
			Message:    keyword + " comment found",
			Suggestion: fmt.Sprintf("Address the %s before merging or create a tracking issue", keyword),
		})
	}
	return matches
}

// QUA003: blocks of commented-out code.
type commentedCodeRule struct{}

const minCommentedBlock = 3

var commentedCodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*#\s*(?:def|class|if|for|while|return|import|from)\s`),
	regexp.MustCompile(`^\s*//\s*(?:function|const|let|var|if|for|while|return|import)\s`),
	regexp.MustCompile(`^\s*//\s*(?:func|type|var|const|if|for|return|import)\s`),
	regexp.MustCompile(`^\s*#\s*\w+\s*=`),
	regexp.MustCompile(`^\s*//\s*\w+\s*=`),
	regexp.MustCompile(`^\s*#\s*\w+\(`),
	regexp.MustCompile(`^\s*//\s*\w+\(`),
}

func (commentedCodeRule) ID() string              { return "QUA003" }
func (commentedCodeRule) Name() string            { return "commented-code" }
func (commentedCodeRule) Focus() review.FocusArea { return review.FocusStyle }

func (commentedCodeRule) Check(path, content string) []Match {
	lines := strings.Split(content, "\n")
	var matches []Match
	for i := 0; i < len(lines); {
		if !looksLikeCodeComment(lines[i]) {
			i++
			continue
		}
		blockStart := i
		blockLen := 1
		j := i + 1
		for j < len(lines) && isCommentContinuation(lines[j]) {
			blockLen++
			j++
		}
		if blockLen >= minCommentedBlock {
			matches = append(matches, Match{
				Line:       blockStart + 1,
				Severity:   review.SeverityLow,
				Message:    fmt.Sprintf("Block of %d commented-out lines", blockLen),
				Suggestion: "Remove commented-out code or restore if needed",
			})
			i = j
			continue
		}
		i++
	}
	return matches
}

func looksLikeCodeComment(line string) bool {
	for _, p := range commentedCodePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

func isCommentContinuation(line string) bool {
	s := strings.TrimSpace(line)
	if strings.HasPrefix(s, "#") && len(s) > 1 {
		return true
	}
	if strings.HasPrefix(s, "//") && len(s) > 2 {
		return true
	}
	return false
}
