package rules

import (
	"github.com/dshills/ebert/internal/review"
)

// Match is a single rule hit. Line 0 means the match applies to the whole
// file.
type Match struct {
	Line       int
	Severity   review.Severity
	Message    string
	Suggestion string
}

// Rule detects one category of issue. Rules are stateless and operate on
// extracted file content, never on raw diff syntax.
type Rule interface {
	ID() string
	Name() string
	Focus() review.FocusArea
	Check(path, content string) []Match
}

// All returns every built-in rule in a stable order.
func All() []Rule {
	return []Rule{
		hardcodedSecretRule{},
		credentialPatternRule{},
		mergeConflictRule{},
		debugStatementRule{},
		todoCommentRule{},
		commentedCodeRule{},
		newLineLengthRule(),
		newFunctionLengthRule(),
	}
}

// ForFocus filters the built-in rules by focus area. FocusAll selects
// everything.
func ForFocus(areas []review.FocusArea) []Rule {
	for _, a := range areas {
		if a == review.FocusAll {
			return All()
		}
	}
	var out []Rule
	for _, r := range All() {
		for _, a := range areas {
			if r.Focus() == a {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
