package cli

import (
	"testing"

	"github.com/dshills/ebert/internal/config"
	"github.com/dshills/ebert/internal/review"
)

// resetFlags resets all package-level flag variables to their zero values.
func resetFlags() {
	flagBranch = ""
	flagProvider = ""
	flagModel = ""
	flagEngine = ""
	flagFull = false
	flagFocus = ""
	flagFormat = ""
	flagOut = ""
	flagFailOn = ""
	flagMaxComments = 0
	flagExclude = ""
	flagConfig = ""
	flagNoCache = false
	flagNoRedact = false
	flagDebug = false
}

func TestBuildOverrides(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)

	flagProvider = "anthropic"
	flagModel = "claude-opus-4-5-20251101"
	flagFull = true
	flagFocus = "security,bugs"
	flagFailOn = "high"
	flagMaxComments = 5

	m := buildOverrides()
	tests := []struct {
		key, want string
	}{
		{"provider", "anthropic"},
		{"model", "claude-opus-4-5-20251101"},
		{"mode", "full"},
		{"focus", "security,bugs"},
		{"failOn", "high"},
		{"maxComments", "5"},
	}
	for _, tt := range tests {
		if got := m[tt.key]; got != tt.want {
			t.Errorf("overrides[%q] = %q, want %q", tt.key, got, tt.want)
		}
	}
	if _, ok := m["format"]; ok {
		t.Error("unset flags must not appear in overrides")
	}
}

func TestBuildOverridesEmpty(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)
	if m := buildOverrides(); len(m) != 0 {
		t.Errorf("overrides = %v, want empty", m)
	}
}

func TestShouldFail(t *testing.T) {
	result := &review.Result{Findings: []review.Finding{
		{Severity: review.SeverityMedium, File: "a.go", Message: "m"},
	}}
	tests := []struct {
		failOn string
		want   bool
	}{
		{"none", false},
		{"", false},
		{"high", false},
		{"medium", true},
		{"low", true},
	}
	for _, tt := range tests {
		if got := shouldFail(result, tt.failOn); got != tt.want {
			t.Errorf("shouldFail(medium finding, %q) = %v, want %v", tt.failOn, got, tt.want)
		}
	}
	if shouldFail(&review.Result{}, "info") {
		t.Error("no findings should never fail")
	}
}

func TestDebugEnabled(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)

	t.Setenv("EBERT_DEBUG", "")
	if debugEnabled() {
		t.Error("debug should default off")
	}
	flagDebug = true
	if !debugEnabled() {
		t.Error("flag should enable debug")
	}
	flagDebug = false
	t.Setenv("EBERT_DEBUG", "true")
	if !debugEnabled() {
		t.Error("EBERT_DEBUG=true should enable debug")
	}
}

func TestOpenCacheBypass(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()

	c, err := openCache(cfg, true)
	if err != nil {
		t.Fatalf("openCache: %v", err)
	}
	if c.Enabled() {
		t.Error("bypassed cache should be disabled")
	}

	c, err = openCache(cfg, false)
	if err != nil {
		t.Fatalf("openCache: %v", err)
	}
	if !c.Enabled() {
		t.Error("cache should be enabled by default")
	}
}
