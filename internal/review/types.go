package review

import (
	"strings"
	"time"
)

// Severity is the closed set of finding severities.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
	SeverityInfo   Severity = "info"
)

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// ParseSeverity normalizes a severity token from provider output. "critical"
// is accepted as an alias of high. The second return is false when the token
// was not recognized and the lowest confidence level was substituted.
func ParseSeverity(token string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "critical", "high":
		return SeverityHigh, true
	case "medium":
		return SeverityMedium, true
	case "low":
		return SeverityLow, true
	case "info":
		return SeverityInfo, true
	default:
		return SeverityInfo, false
	}
}

// MeetsThreshold reports whether s is at or above the named threshold.
// "none" and the empty string never match.
func MeetsThreshold(s Severity, threshold string) bool {
	if threshold == "none" || threshold == "" {
		return false
	}
	return SeverityRank(s) >= SeverityRank(Severity(threshold))
}

// FocusArea names a review focus category.
type FocusArea string

const (
	FocusSecurity    FocusArea = "security"
	FocusBugs        FocusArea = "bugs"
	FocusStyle       FocusArea = "style"
	FocusPerformance FocusArea = "performance"
	FocusAll         FocusArea = "all"
)

// ParseFocus parses a focus-area name.
func ParseFocus(s string) (FocusArea, bool) {
	switch FocusArea(strings.ToLower(strings.TrimSpace(s))) {
	case FocusSecurity:
		return FocusSecurity, true
	case FocusBugs:
		return FocusBugs, true
	case FocusStyle:
		return FocusStyle, true
	case FocusPerformance:
		return FocusPerformance, true
	case FocusAll:
		return FocusAll, true
	default:
		return "", false
	}
}

// Mode selects review thoroughness.
type Mode string

const (
	ModeQuick Mode = "quick"
	ModeFull  Mode = "full"
)

// Config is the immutable per-run review configuration. Derived configs are
// new values; nothing mutates a Config in place.
type Config struct {
	Mode        Mode
	Focus       []FocusArea
	StyleGuide  string
	MaxComments int
	Provider    string
	Model       string
	NoRedact    bool
}

// DefaultMaxComments bounds the number of findings requested from a provider.
const DefaultMaxComments = 20

func (c Config) maxComments() int {
	if c.MaxComments > 0 {
		return c.MaxComments
	}
	return DefaultMaxComments
}

func (c Config) mode() Mode {
	if c.Mode == "" {
		return ModeQuick
	}
	return c.Mode
}

func (c Config) focus() []FocusArea {
	if len(c.Focus) == 0 {
		return []FocusArea{FocusAll}
	}
	return c.Focus
}

// Finding is one reported issue. Line 0 means no line number was available.
type Finding struct {
	Severity   Severity `json:"severity"`
	File       string   `json:"file"`
	Line       int      `json:"line,omitempty"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Result is the terminal artifact of one review run. It is created once and
// never mutated afterward.
type Result struct {
	Findings   []Finding     `json:"findings"`
	Summary    string        `json:"summary"`
	Provider   string        `json:"provider"`
	Model      string        `json:"model"`
	Degraded   bool          `json:"degraded"`
	Anomalies  []string      `json:"anomalies,omitempty"`
	Truncated  bool          `json:"truncated,omitempty"`
	TokensUsed int           `json:"tokensUsed,omitempty"`
	Duration   time.Duration `json:"-"`
}

// HasSevereIssues reports whether the result contains any HIGH finding.
func (r *Result) HasSevereIssues() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

// Counts tallies findings by severity.
func (r *Result) Counts() map[Severity]int {
	counts := make(map[Severity]int)
	for _, f := range r.Findings {
		counts[f.Severity]++
	}
	return counts
}
