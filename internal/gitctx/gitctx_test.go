package gitctx

import (
	"strings"
	"testing"
)

const sampleDiff = `diff --git a/main.go b/main.go
index 1111111..2222222 100644
--- a/main.go
+++ b/main.go
@@ -1,1 +1,2 @@
 package main
+import "fmt"
diff --git a/query.go b/query.go
new file mode 100644
index 0000000..3333333
--- /dev/null
+++ b/query.go
@@ -0,0 +1,2 @@
+package main
+var q = "SELECT * FROM users WHERE id = " + id
diff --git a/old.go b/old.go
deleted file mode 100644
index 4444444..0000000
--- a/old.go
+++ /dev/null
@@ -1,1 +0,0 @@
-package main
`

func TestParseDiff_Kinds(t *testing.T) {
	files, truncated, err := parseDiff(sampleDiff, Options{})
	if err != nil {
		t.Fatalf("parseDiff error: %v", err)
	}
	if truncated {
		t.Error("small diff should not be truncated")
	}
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3", len(files))
	}

	want := []struct {
		path string
		kind ChangeKind
	}{
		{"main.go", KindModified},
		{"query.go", KindAdded},
		{"old.go", KindDeleted},
	}
	for i, w := range want {
		if files[i].Path != w.path {
			t.Errorf("files[%d].Path = %q, want %q", i, files[i].Path, w.path)
		}
		if files[i].Kind != w.kind {
			t.Errorf("files[%d].Kind = %q, want %q", i, files[i].Kind, w.kind)
		}
	}
	if !strings.Contains(files[1].Hunk, "SELECT * FROM users") {
		t.Error("hunk body should carry the added lines")
	}
}

func TestParseDiff_Exclude(t *testing.T) {
	files, _, err := parseDiff(sampleDiff, Options{Exclude: []string{"query.go"}})
	if err != nil {
		t.Fatalf("parseDiff error: %v", err)
	}
	for _, f := range files {
		if f.Path == "query.go" {
			t.Error("query.go should be excluded")
		}
	}
	if len(files) != 2 {
		t.Errorf("got %d files, want 2", len(files))
	}
}

func TestParseDiff_Truncation(t *testing.T) {
	var b strings.Builder
	b.WriteString("diff --git a/big.go b/big.go\nnew file mode 100644\n--- /dev/null\n+++ b/big.go\n@@ -0,0 +1,100 @@\n")
	for i := 0; i < 100; i++ {
		b.WriteString("+var x = 1\n")
	}

	files, truncated, err := parseDiff(b.String(), Options{MaxFileLines: 20})
	if err != nil {
		t.Fatalf("parseDiff error: %v", err)
	}
	if !truncated {
		t.Fatal("expected truncation")
	}
	if !files[0].Truncated {
		t.Error("file should be marked truncated")
	}
	if !strings.Contains(files[0].Hunk, "truncated at 20 lines") {
		t.Error("hunk should carry a truncation marker")
	}
	if n := strings.Count(files[0].Hunk, "\n"); n > 25 {
		t.Errorf("hunk has %d lines after truncation", n)
	}
}

func TestSplitSections(t *testing.T) {
	sections := splitSections(sampleDiff)
	if len(sections) != 3 {
		t.Fatalf("got %d sections, want 3", len(sections))
	}
	if !strings.Contains(sections[0], "main.go") {
		t.Error("section 0 should contain main.go")
	}
	if !strings.Contains(sections[2], "old.go") {
		t.Error("section 2 should contain old.go")
	}
}

func TestMatchesAny(t *testing.T) {
	tests := []struct {
		path     string
		patterns []string
		want     bool
	}{
		{"vendor/lib.go", []string{"vendor/**"}, true},
		{"main.go", []string{"vendor/**"}, false},
		{"foo.gen.go", []string{"**/*.gen.go"}, true},
		{"pkg/foo.gen.go", []string{"**/*.gen.go"}, true},
		{"main.go", []string{"*.go"}, true},
		{"main.go", nil, false},
	}
	for _, tt := range tests {
		got := matchesAny(tt.path, tt.patterns)
		if got != tt.want {
			t.Errorf("matchesAny(%q, %v) = %v, want %v", tt.path, tt.patterns, got, tt.want)
		}
	}
}

func TestTruncateLines_NoOp(t *testing.T) {
	text := "a\nb\nc"
	out, truncated := truncateLines(text, 10)
	if truncated || out != text {
		t.Errorf("truncateLines should be a no-op below the limit, got %q", out)
	}
}

func TestExtractionError_Message(t *testing.T) {
	err := &ExtractionError{Msg: "no staged changes found", Hint: "stage changes with 'git add' first"}
	got := err.Error()
	if !strings.Contains(got, "no staged changes") || !strings.Contains(got, "git add") {
		t.Errorf("Error() = %q", got)
	}
}
