package review

import (
	"strings"
	"testing"

	"github.com/dshills/ebert/internal/gitctx"
)

func sampleChangeSet() gitctx.ChangeSet {
	return gitctx.ChangeSet{
		Files: []gitctx.FileChange{
			{
				Path: "pkg/server.go",
				Kind: gitctx.KindModified,
				Hunk: "diff --git a/pkg/server.go b/pkg/server.go\n@@ -1,3 +1,4 @@\n+\tlog.Println(\"boot\")\n",
			},
			{
				Path:      "pkg/client.go",
				Kind:      gitctx.KindAdded,
				Hunk:      "diff --git a/pkg/client.go b/pkg/client.go\nnew file mode 100644\n@@ -0,0 +1,2 @@\n+package pkg\n",
				Truncated: true,
			},
		},
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	cs := sampleChangeSet()
	cfg := Config{Mode: ModeFull, Focus: []FocusArea{FocusSecurity, FocusBugs}, MaxComments: 5}
	a := BuildPrompt(cs, cfg)
	b := BuildPrompt(cs, cfg)
	if a.System != b.System || a.User != b.User {
		t.Error("identical inputs must produce identical prompts")
	}
}

func TestBuildPromptSystemContents(t *testing.T) {
	p := BuildPrompt(sampleChangeSet(), Config{
		Mode:        ModeFull,
		Focus:       []FocusArea{FocusSecurity},
		StyleGuide:  "Prefer table-driven tests.",
		MaxComments: 7,
	})
	for _, want := range []string{
		"thorough review",
		"security",
		"Prefer table-driven tests.",
		"at most 7 comments",
		`"summary"`,
		`"comments"`,
		`"severity"`,
		"high|medium|low|info",
	} {
		if !strings.Contains(p.System, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}

func TestBuildPromptDefaults(t *testing.T) {
	p := BuildPrompt(sampleChangeSet(), Config{})
	if !strings.Contains(p.System, "quick review") {
		t.Error("default mode should be quick")
	}
	if !strings.Contains(p.System, "correctness, security, performance, and readability") {
		t.Error("default focus should be all")
	}
	if !strings.Contains(p.System, "at most 20 comments") {
		t.Error("default max comments should apply")
	}
}

func TestBuildPromptUserContents(t *testing.T) {
	p := BuildPrompt(sampleChangeSet(), Config{})
	for _, want := range []string{
		"pkg/server.go (modified)",
		"pkg/client.go (added) [truncated]",
		"--- BEGIN DIFF ---",
		"--- END DIFF ---",
		"log.Println",
	} {
		if !strings.Contains(p.User, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
	if strings.Index(p.User, "pkg/server.go") > strings.Index(p.User, "--- BEGIN DIFF ---") {
		t.Error("file list should precede the diff")
	}
}
