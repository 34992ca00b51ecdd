package review

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/ebert/internal/cache"
	"github.com/dshills/ebert/internal/gitctx"
	"github.com/dshills/ebert/internal/providers"
)

// scriptedReviewer returns canned responses or errors in order, recording
// every request it receives.
type scriptedReviewer struct {
	name     string
	model    string
	script   []any // string responses or errors, consumed in order
	requests []providers.Request
}

func (s *scriptedReviewer) Name() string    { return s.name }
func (s *scriptedReviewer) Model() string   { return s.model }
func (s *scriptedReviewer) Available() bool { return true }

func (s *scriptedReviewer) Review(_ context.Context, req providers.Request) (providers.Response, error) {
	s.requests = append(s.requests, req)
	if len(s.script) == 0 {
		return providers.Response{}, errors.New("script exhausted")
	}
	step := s.script[0]
	s.script = s.script[1:]
	switch v := step.(type) {
	case error:
		return providers.Response{}, v
	case string:
		return providers.Response{Content: v, Model: s.model, TokensUsed: 100, Duration: time.Millisecond}, nil
	default:
		panic("bad script step")
	}
}

func testEngine(r *scriptedReviewer) *Engine {
	reg := providers.NewRegistry()
	reg.Register(r.name, func(string) providers.Reviewer { return r })
	e := NewEngine(reg, nil, nil)
	e.Backoff = time.Millisecond
	return e
}

func transientErr() error {
	return &providers.Error{Provider: "stub", Kind: providers.KindRateLimit, Status: 429, Message: "slow down"}
}

func fatalErr() error {
	return &providers.Error{Provider: "stub", Kind: providers.KindAuth, Status: 401, Message: "bad key"}
}

const goodResponse = `{"summary":"One issue.","comments":[{"file":"a.go","line":3,"severity":"high","message":"nil deref"}]}`

func TestRunEndToEnd(t *testing.T) {
	stub := &scriptedReviewer{name: "stub", model: "stub-1", script: []any{goodResponse}}
	e := testEngine(stub)

	res, err := e.Run(context.Background(), sampleChangeSet(), Config{Provider: "stub"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Findings) != 1 || res.Findings[0].Severity != SeverityHigh {
		t.Fatalf("findings = %+v", res.Findings)
	}
	if res.Provider != "stub" || res.Model != "stub-1" {
		t.Errorf("metadata = %q/%q", res.Provider, res.Model)
	}
	if res.Degraded {
		t.Error("well-formed response must not degrade")
	}
	if !res.HasSevereIssues() {
		t.Error("HasSevereIssues should report the high finding")
	}
	if len(stub.requests) != 1 {
		t.Errorf("provider called %d times, want 1", len(stub.requests))
	}
}

func TestRunRetriesTransientThenSucceeds(t *testing.T) {
	stub := &scriptedReviewer{
		name: "stub", model: "stub-1",
		script: []any{transientErr(), transientErr(), goodResponse},
	}
	e := testEngine(stub)

	res, err := e.Run(context.Background(), sampleChangeSet(), Config{Provider: "stub"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(stub.requests) != 3 {
		t.Errorf("provider called %d times, want 3 (2 failures + 1 success)", len(stub.requests))
	}
	if len(res.Findings) != 1 {
		t.Errorf("findings = %d, want 1", len(res.Findings))
	}
}

func TestRunGivesUpAfterRetryCap(t *testing.T) {
	stub := &scriptedReviewer{
		name: "stub", model: "stub-1",
		script: []any{transientErr(), transientErr(), transientErr(), transientErr(), transientErr()},
	}
	e := testEngine(stub)
	e.MaxRetries = 3

	_, err := e.Run(context.Background(), sampleChangeSet(), Config{Provider: "stub"})
	if err == nil {
		t.Fatal("expected failure after exhausting retries")
	}
	if got := len(stub.requests); got != 4 {
		t.Errorf("provider called %d times, want 4 (1 initial + 3 retries)", got)
	}
	if !providers.IsRetryable(err) {
		t.Error("surfaced error should keep its transient classification")
	}
}

func TestRunFatalErrorNoRetry(t *testing.T) {
	stub := &scriptedReviewer{name: "stub", model: "stub-1", script: []any{fatalErr()}}
	e := testEngine(stub)

	_, err := e.Run(context.Background(), sampleChangeSet(), Config{Provider: "stub"})
	if err == nil {
		t.Fatal("expected auth failure")
	}
	if len(stub.requests) != 1 {
		t.Errorf("provider called %d times, want 1 (fatal errors must not retry)", len(stub.requests))
	}
	if !providers.IsAuth(err) {
		t.Errorf("expected auth classification, got %v", err)
	}
}

func TestRunContextCancelStopsRetry(t *testing.T) {
	stub := &scriptedReviewer{
		name: "stub", model: "stub-1",
		script: []any{transientErr(), transientErr(), transientErr(), transientErr()},
	}
	e := testEngine(stub)
	e.Backoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	_, err := e.Run(ctx, sampleChangeSet(), Config{Provider: "stub"})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("cancellation did not interrupt the backoff sleep")
	}
}

func TestRunEmptyChangeSet(t *testing.T) {
	stub := &scriptedReviewer{name: "stub", model: "stub-1"}
	e := testEngine(stub)
	if _, err := e.Run(context.Background(), gitctx.ChangeSet{}, Config{Provider: "stub"}); err == nil {
		t.Fatal("expected error for empty changeset")
	}
	if len(stub.requests) != 0 {
		t.Error("provider must not be called for an empty changeset")
	}
}

func TestRunRedactsSecretsFromPrompt(t *testing.T) {
	stub := &scriptedReviewer{name: "stub", model: "stub-1", script: []any{goodResponse}}
	e := testEngine(stub)

	cs := gitctx.ChangeSet{Files: []gitctx.FileChange{{
		Path: "config.go",
		Kind: gitctx.KindModified,
		Hunk: "diff --git a/config.go b/config.go\n@@ -1 +1 @@\n+apiKey := \"sk-ant-REDACTED\"\n",
	}}}
	if _, err := e.Run(context.Background(), cs, Config{Provider: "stub"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	sent := stub.requests[0].User
	if strings.Contains(sent, "sk-ant-REDACTED") {
		t.Error("secret leaked into prompt")
	}
	if !strings.Contains(sent, "[REDACTED]") {
		t.Error("expected redaction placeholder in prompt")
	}
	// The caller's changeset must not be mutated.
	if !strings.Contains(cs.Files[0].Hunk, "sk-ant-") {
		t.Error("input changeset was mutated")
	}
}

func TestRunNoRedactPassesThrough(t *testing.T) {
	stub := &scriptedReviewer{name: "stub", model: "stub-1", script: []any{goodResponse}}
	e := testEngine(stub)

	cs := gitctx.ChangeSet{Files: []gitctx.FileChange{{
		Path: "config.go",
		Kind: gitctx.KindModified,
		Hunk: "+apiKey := \"sk-ant-REDACTED\"\n",
	}}}
	if _, err := e.Run(context.Background(), cs, Config{Provider: "stub", NoRedact: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(stub.requests[0].User, "sk-ant-REDACTED") {
		t.Error("NoRedact should leave the hunk untouched")
	}
}

func TestRunUsesCache(t *testing.T) {
	cc, err := cache.New(true, t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	stub := &scriptedReviewer{name: "stub", model: "stub-1", script: []any{goodResponse, goodResponse}}
	e := testEngine(stub)
	e.Cache = cc

	cs := sampleChangeSet()
	cfg := Config{Provider: "stub"}
	if _, err := e.Run(context.Background(), cs, cfg); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	res, err := e.Run(context.Background(), cs, cfg)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(stub.requests) != 1 {
		t.Errorf("provider called %d times, want 1 (second run should hit cache)", len(stub.requests))
	}
	if len(res.Findings) != 1 {
		t.Errorf("cached run findings = %d, want 1", len(res.Findings))
	}
}

func TestRunTrimsExcessComments(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"summary":"many","comments":[`)
	for i := 0; i < 6; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"file":"a.go","line":1,"severity":"low","message":"issue"}`)
	}
	b.WriteString(`]}`)

	stub := &scriptedReviewer{name: "stub", model: "stub-1", script: []any{b.String()}}
	e := testEngine(stub)

	res, err := e.Run(context.Background(), sampleChangeSet(), Config{Provider: "stub", MaxComments: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Findings) != 3 {
		t.Errorf("findings = %d, want 3", len(res.Findings))
	}
	if len(res.Anomalies) == 0 {
		t.Error("trimming should record an anomaly")
	}
	if !res.Degraded {
		t.Error("trimming should mark the result degraded")
	}
}

func TestRunPropagatesTruncation(t *testing.T) {
	stub := &scriptedReviewer{name: "stub", model: "stub-1", script: []any{goodResponse}}
	e := testEngine(stub)

	cs := sampleChangeSet()
	cs.Truncated = true
	cs.Warnings = []string{"skipped binary file assets/logo.png"}
	res, err := e.Run(context.Background(), cs, Config{Provider: "stub"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Truncated {
		t.Error("truncation flag lost")
	}
	if len(res.Anomalies) == 0 || !strings.Contains(res.Anomalies[0], "logo.png") {
		t.Errorf("extraction warnings lost: %v", res.Anomalies)
	}
	if !res.Degraded {
		t.Error("extraction warnings should mark the result degraded")
	}
}

func TestRunDoesNotMutateWarnings(t *testing.T) {
	stub := &scriptedReviewer{name: "stub", model: "stub-1", script: []any{goodResponse}}
	e := testEngine(stub)

	backing := make([]string, 2)
	backing[0] = "skipped binary file assets/logo.png"
	backing[1] = "sentinel"

	cs := sampleChangeSet()
	cs.Warnings = backing[:1]
	if _, err := e.Run(context.Background(), cs, Config{Provider: "stub"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if backing[1] != "sentinel" {
		t.Errorf("Run wrote into the caller's warnings backing array: %q", backing[1])
	}
}

func TestReviewFilesEndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	if err := os.WriteFile(path, []byte("package main\n\nfunc main() {}\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	stub := &scriptedReviewer{name: "stub", model: "stub-1", script: []any{goodResponse}}
	e := testEngine(stub)

	res, err := e.ReviewFiles(context.Background(), []string{path}, Config{Provider: "stub"})
	if err != nil {
		t.Fatalf("ReviewFiles: %v", err)
	}
	if len(res.Findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(res.Findings))
	}
	if !strings.Contains(stub.requests[0].User, "func main()") {
		t.Error("file contents missing from prompt")
	}
}
