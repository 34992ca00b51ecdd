package rules

import (
	"regexp"
	"strings"

	"github.com/dshills/ebert/internal/review"
)

// SEC001: hardcoded secrets in assignments or known key prefixes.
type hardcodedSecretRule struct{}

var (
	secretAssignPattern = regexp.MustCompile(`(?i)(?:api[_-]?key|apikey|secret|password|passwd|pwd|token|auth[_-]?token)\s*[:=]\s*['"][^'"]{8,}['"]`)
	secretPrefixPattern = regexp.MustCompile(`['"](?:sk-[a-zA-Z0-9]{20,}|pk-[a-zA-Z0-9]{20,}|ghp_[a-zA-Z0-9]{36,}|gho_[a-zA-Z0-9]{36,}|xox[baprs]-[a-zA-Z0-9-]{10,})['"]`)
)

func (hardcodedSecretRule) ID() string              { return "SEC001" }
func (hardcodedSecretRule) Name() string            { return "hardcoded-secret" }
func (hardcodedSecretRule) Focus() review.FocusArea { return review.FocusSecurity }

func (hardcodedSecretRule) Check(path, content string) []Match {
	if isTestOrExample(path) {
		return nil
	}
	var matches []Match
	for i, line := range strings.Split(content, "\n") {
		if isCommentLine(line) {
			continue
		}
		switch {
		case secretAssignPattern.MatchString(line):
			matches = append(matches, Match{
				Line:       i + 1,
				Severity:   review.SeverityHigh,
				Message:    "Potential hardcoded secret detected",
				Suggestion: "Use environment variables or a secrets manager",
			})
		case secretPrefixPattern.MatchString(line):
			matches = append(matches, Match{
				Line:       i + 1,
				Severity:   review.SeverityHigh,
				Message:    "API key or token detected in code",
				Suggestion: "Move to environment variable or .env file (not committed)",
			})
		}
	}
	return matches
}

func isTestOrExample(path string) bool {
	lower := strings.ToLower(path)
	for _, p := range []string{"test", "example", "mock", "fixture", "fake"} {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func isCommentLine(line string) bool {
	s := strings.TrimSpace(line)
	return strings.HasPrefix(s, "#") || strings.HasPrefix(s, "//")
}

// SEC002: cloud credentials, private keys, and connection strings.
type credentialPatternRule struct{}

var (
	awsAccessKeyPattern = regexp.MustCompile(`(^|[^A-Z0-9])AKIA[0-9A-Z]{16}([^A-Z0-9]|$)`)
	awsSecretKeyPattern = regexp.MustCompile(`(?i)(?:aws[_-]?secret|secret[_-]?key)\s*[:=]\s*['"]?[A-Za-z0-9/+=]{40}['"]?`)
	privateKeyPattern   = regexp.MustCompile(`-----BEGIN\s+(?:RSA\s+)?(?:EC\s+)?(?:DSA\s+)?(?:OPENSSH\s+)?PRIVATE\s+KEY-----`)
	connStringPattern   = regexp.MustCompile(`(?i)(?:mysql|postgres|postgresql|mongodb|redis)://[^:]+:[^@]+@|(?i:password|pwd)=[^&\s;]+`)
	gcpServiceAccount   = regexp.MustCompile(`"type"\s*:\s*"service_account"`)
)

func (credentialPatternRule) ID() string              { return "SEC002" }
func (credentialPatternRule) Name() string            { return "credential-pattern" }
func (credentialPatternRule) Focus() review.FocusArea { return review.FocusSecurity }

func (credentialPatternRule) Check(path, content string) []Match {
	lower := strings.ToLower(path)
	if strings.Contains(lower, "test") || strings.Contains(lower, "spec") {
		return nil
	}
	var matches []Match
	for i, line := range strings.Split(content, "\n") {
		switch {
		case awsAccessKeyPattern.MatchString(line):
			matches = append(matches, Match{
				Line:       i + 1,
				Severity:   review.SeverityHigh,
				Message:    "AWS access key ID detected",
				Suggestion: "Use IAM roles or environment variables instead",
			})
		case awsSecretKeyPattern.MatchString(line):
			matches = append(matches, Match{
				Line:       i + 1,
				Severity:   review.SeverityHigh,
				Message:    "Potential AWS secret key detected",
				Suggestion: "Use IAM roles or AWS Secrets Manager",
			})
		case privateKeyPattern.MatchString(line):
			matches = append(matches, Match{
				Line:       i + 1,
				Severity:   review.SeverityHigh,
				Message:    "Private key detected in code",
				Suggestion: "Store private keys in a secure key management system",
			})
		case connStringPattern.MatchString(line) && !isPlaceholder(line):
			matches = append(matches, Match{
				Line:       i + 1,
				Severity:   review.SeverityHigh,
				Message:    "Connection string with credentials detected",
				Suggestion: "Use environment variables for connection strings",
			})
		}
	}
	if gcpServiceAccount.MatchString(content) {
		matches = append(matches, Match{
			Severity:   review.SeverityHigh,
			Message:    "GCP service account key file detected",
			Suggestion: "Use Workload Identity or store in Secret Manager",
		})
	}
	return matches
}

func isPlaceholder(line string) bool {
	lower := strings.ToLower(line)
	for _, p := range []string{"example", "placeholder", "your_", "xxx", "changeme", "<password>", "${", "{{", "localhost"} {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// SEC003: unresolved merge conflict markers.
type mergeConflictRule struct{}

var (
	conflictStart     = regexp.MustCompile(`^<{7}\s`)
	conflictSeparator = regexp.MustCompile(`^={7}$`)
	conflictEnd       = regexp.MustCompile(`^>{7}\s`)
)

func (mergeConflictRule) ID() string              { return "SEC003" }
func (mergeConflictRule) Name() string            { return "merge-conflict" }
func (mergeConflictRule) Focus() review.FocusArea { return review.FocusSecurity }

func (mergeConflictRule) Check(path, content string) []Match {
	var matches []Match
	for i, line := range strings.Split(content, "\n") {
		var kind string
		switch {
		case conflictStart.MatchString(line):
			kind = "start"
		case conflictSeparator.MatchString(line):
			kind = "separator"
		case conflictEnd.MatchString(line):
			kind = "end"
		default:
			continue
		}
		matches = append(matches, Match{
			Line:       i + 1,
			Severity:   review.SeverityHigh,
			Message:    "Unresolved merge conflict marker (" + kind + ")",
			Suggestion: "Resolve the merge conflict before committing",
		})
	}
	return matches
}
