package gitctx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScanFiles_SyntheticDiff(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.go", "package main\n\nfunc main() {}\n")
	b := writeFile(t, dir, "b.go", "package main\n\nvar x = 1\n")

	cs, err := ScanFiles(context.Background(), []string{a, b}, Options{})
	if err != nil {
		t.Fatalf("ScanFiles error: %v", err)
	}
	if len(cs.Files) != 2 {
		t.Fatalf("got %d files, want 2", len(cs.Files))
	}
	for _, f := range cs.Files {
		if f.Kind != KindAdded {
			t.Errorf("%s: Kind = %q, want %q", f.Path, f.Kind, KindAdded)
		}
		if !strings.Contains(f.Hunk, "new file mode 100644") {
			t.Errorf("%s: hunk missing new-file header", f.Path)
		}
		if filepath.IsAbs(f.Path) {
			t.Errorf("%s: path must not be absolute", f.Path)
		}
	}
	if !strings.Contains(cs.Files[0].Hunk, "+func main() {}") {
		t.Error("hunk should contain full file content as added lines")
	}
	if cs.TargetRef != "files" {
		t.Errorf("TargetRef = %q, want %q", cs.TargetRef, "files")
	}
}

func TestScanFiles_Idempotent(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.go", "package main\n")
	b := writeFile(t, dir, "b.go", "package other\n")

	first, err := ScanFiles(context.Background(), []string{a, b}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := ScanFiles(context.Background(), []string{a, b}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Files) != len(second.Files) {
		t.Fatalf("file counts differ: %d vs %d", len(first.Files), len(second.Files))
	}
	for i := range first.Files {
		if first.Files[i] != second.Files[i] {
			t.Errorf("entry %d differs between runs", i)
		}
	}
}

func TestScanFiles_SkipsBinaryWithWarning(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "ok.go", "package main\n")
	bin := filepath.Join(dir, "blob.bin")
	if err := os.WriteFile(bin, []byte{0x00, 0x01, 0x02, 'a'}, 0o644); err != nil {
		t.Fatal(err)
	}

	cs, err := ScanFiles(context.Background(), []string{good, bin}, Options{})
	if err != nil {
		t.Fatalf("ScanFiles error: %v", err)
	}
	if len(cs.Files) != 1 {
		t.Fatalf("got %d files, want 1", len(cs.Files))
	}
	if len(cs.Warnings) != 1 || !strings.Contains(cs.Warnings[0], "binary") {
		t.Errorf("Warnings = %v, want one binary warning", cs.Warnings)
	}
}

func TestScanFiles_NoMatch(t *testing.T) {
	dir := t.TempDir()
	_, err := ScanFiles(context.Background(), []string{filepath.Join(dir, "*.zig")}, Options{})
	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected *ExtractionError, got %v", err)
	}
}

func TestScanFiles_AllUnreadableIsFatal(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "ghost.go")

	_, err := ScanFiles(context.Background(), []string{missing}, Options{})
	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected *ExtractionError, got %v", err)
	}
}

func TestScanFiles_Glob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.go", "package a\n")
	writeFile(t, dir, "two.go", "package a\n")
	writeFile(t, dir, "notes.txt", "hello\n")

	cs, err := ScanFiles(context.Background(), []string{filepath.Join(dir, "*.go")}, Options{})
	if err != nil {
		t.Fatalf("ScanFiles error: %v", err)
	}
	if len(cs.Files) != 2 {
		t.Errorf("got %d files, want 2", len(cs.Files))
	}
}

func TestIsBinary(t *testing.T) {
	if isBinary([]byte("plain text\n")) {
		t.Error("plain text flagged as binary")
	}
	if !isBinary([]byte{'a', 0x00, 'b'}) {
		t.Error("NUL byte not flagged as binary")
	}
}
