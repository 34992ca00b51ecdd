package rules

import (
	"strings"
	"testing"

	"github.com/dshills/ebert/internal/gitctx"
	"github.com/dshills/ebert/internal/review"
)

func TestExtractContent(t *testing.T) {
	hunk := strings.Join([]string{
		"diff --git a/app.py b/app.py",
		"index 1234567..89abcde 100644",
		"--- a/app.py",
		"+++ b/app.py",
		"@@ -1,3 +1,3 @@",
		" import os",
		"-print(old)",
		"+print(new)",
		" main()",
	}, "\n")
	got := extractContent(hunk)
	want := "import os\nprint(new)\nmain()"
	if got != want {
		t.Errorf("extractContent = %q, want %q", got, want)
	}
}

func TestEngineReview(t *testing.T) {
	cs := gitctx.ChangeSet{Files: []gitctx.FileChange{
		{
			Path: "app.py",
			Kind: gitctx.KindModified,
			Hunk: "@@ -1,2 +1,2 @@\n+print(debugging)\n context\n",
		},
		{
			Path: "gone.py",
			Kind: gitctx.KindDeleted,
			Hunk: "@@ -1,2 +0,0 @@\n-print(bye)\n",
		},
	}}

	res := NewEngine().Review(cs, review.Config{})
	if res.Provider != "deterministic" || res.Model != Version {
		t.Errorf("metadata = %q/%q", res.Provider, res.Model)
	}
	if len(res.Findings) != 1 {
		t.Fatalf("findings = %d, want 1 (deleted file must be skipped): %+v", len(res.Findings), res.Findings)
	}
	f := res.Findings[0]
	if f.File != "app.py" {
		t.Errorf("File = %q", f.File)
	}
	if !strings.HasPrefix(f.Message, "[QUA001]") {
		t.Errorf("Message = %q, want [QUA001] prefix", f.Message)
	}
	if !strings.Contains(res.Summary, "Found 1 issue:") {
		t.Errorf("Summary = %q", res.Summary)
	}
}

func TestEngineReviewClean(t *testing.T) {
	cs := gitctx.ChangeSet{Files: []gitctx.FileChange{{
		Path: "util.go",
		Kind: gitctx.KindModified,
		Hunk: "@@ -1 +1 @@\n+return nil\n",
	}}}
	res := NewEngine().Review(cs, review.Config{})
	if len(res.Findings) != 0 {
		t.Errorf("findings = %+v, want none", res.Findings)
	}
	if res.Summary != "No issues found." {
		t.Errorf("Summary = %q", res.Summary)
	}
}

func TestEngineMaxComments(t *testing.T) {
	var b strings.Builder
	b.WriteString("@@ -0,0 +1,5 @@\n")
	for i := 0; i < 5; i++ {
		b.WriteString("+print(step)\n")
	}
	cs := gitctx.ChangeSet{Files: []gitctx.FileChange{{
		Path: "batch.py",
		Kind: gitctx.KindAdded,
		Hunk: b.String(),
	}}}

	res := NewEngine().Review(cs, review.Config{MaxComments: 2})
	if len(res.Findings) != 2 {
		t.Errorf("findings = %d, want 2", len(res.Findings))
	}
	if !strings.Contains(res.Summary, "Found 5 issues") {
		t.Errorf("Summary = %q, want total count of 5", res.Summary)
	}
	if !strings.Contains(res.Summary, "(showing first 2)") {
		t.Errorf("Summary = %q, want truncation note", res.Summary)
	}
}

func TestEngineFocusFilter(t *testing.T) {
	cs := gitctx.ChangeSet{Files: []gitctx.FileChange{{
		Path: "app.py",
		Kind: gitctx.KindModified,
		Hunk: "@@ -1 +1 @@\n+print(noise)\n",
	}}}

	// QUA001 is a bugs-focus rule; a security-only review must not run it.
	res := NewEngine().Review(cs, review.Config{Focus: []review.FocusArea{review.FocusSecurity}})
	if len(res.Findings) != 0 {
		t.Errorf("security focus found %+v, want none", res.Findings)
	}
}
