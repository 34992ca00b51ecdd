package review

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/ebert/internal/cache"
	"github.com/dshills/ebert/internal/gitctx"
	"github.com/dshills/ebert/internal/providers"
	"github.com/dshills/ebert/internal/redact"
)

const defaultMaxTokens = 4096

// Engine sequences a review run: extract, redact, prompt, invoke, parse.
// The zero value is not usable; construct with NewEngine.
type Engine struct {
	Registry *providers.Registry
	Cache    *cache.Cache
	Logger   *zap.Logger
	Git      gitctx.Options

	// MaxRetries and Backoff tune transient-failure handling. Zero values
	// select the package defaults.
	MaxRetries int
	Backoff    time.Duration
}

// NewEngine builds an Engine. cc may be nil to disable caching; logger may
// be nil for silence.
func NewEngine(registry *providers.Registry, cc *cache.Cache, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		Registry:   registry,
		Cache:      cc,
		Logger:     logger,
		MaxRetries: DefaultMaxRetries,
		Backoff:    DefaultBackoff,
	}
}

// ReviewStaged reviews the staged changes in the current repository.
func (e *Engine) ReviewStaged(ctx context.Context, cfg Config) (*Result, error) {
	cs, err := gitctx.Staged(e.Git)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, cs, cfg)
}

// ReviewBranch reviews the changes between the merge base with target and
// HEAD.
func (e *Engine) ReviewBranch(ctx context.Context, target string, cfg Config) (*Result, error) {
	cs, err := gitctx.Branch(target, e.Git)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, cs, cfg)
}

// ReviewFiles reviews whole files matched by the given path patterns.
func (e *Engine) ReviewFiles(ctx context.Context, patterns []string, cfg Config) (*Result, error) {
	cs, err := gitctx.ScanFiles(ctx, patterns, e.Git)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, cs, cfg)
}

// Run reviews an already extracted changeset.
func (e *Engine) Run(ctx context.Context, cs gitctx.ChangeSet, cfg Config) (*Result, error) {
	if cs.Empty() {
		return nil, fmt.Errorf("nothing to review")
	}

	name := cfg.Provider
	if name == "" {
		detected, ok := e.Registry.Detect()
		if !ok {
			return nil, e.Registry.UnavailableError("")
		}
		name = detected
		e.Logger.Debug("auto-detected provider", zap.String("provider", name))
	}

	reviewer, err := e.Registry.Get(name, cfg.Model)
	if err != nil {
		return nil, err
	}
	if !reviewer.Available() {
		return nil, e.Registry.UnavailableError(name)
	}

	if !cfg.NoRedact {
		cs = redactChangeSet(cs)
	}
	prompt := BuildPrompt(cs, cfg)

	key := cache.Key(name, reviewer.Model(), prompt.System, prompt.User)
	content, tokens, duration, cached := "", 0, time.Duration(0), false
	if e.Cache != nil {
		if hit, ok := e.Cache.Get(key); ok {
			e.Logger.Debug("cache hit", zap.String("key", key[:12]))
			content, cached = hit, true
		}
	}

	if !cached {
		var resp providers.Response
		err := withRetry(ctx, e.Logger, e.maxRetries(), e.backoff(), func() error {
			var callErr error
			resp, callErr = reviewer.Review(ctx, providers.Request{
				System:    prompt.System,
				User:      prompt.User,
				MaxTokens: defaultMaxTokens,
			})
			return callErr
		})
		if err != nil {
			return nil, fmt.Errorf("%s review failed: %w", name, err)
		}
		content, tokens, duration = resp.Content, resp.TokensUsed, resp.Duration
		if e.Cache != nil {
			if err := e.Cache.Put(key, name, reviewer.Model(), content); err != nil {
				e.Logger.Debug("cache write failed", zap.Error(err))
			}
		}
	}

	result := ParseResponse(content, name, reviewer.Model())
	result.Model = reviewer.Model()
	result.TokensUsed = tokens
	result.Duration = duration
	result.Truncated = cs.Truncated
	if len(cs.Warnings) > 0 {
		result.Anomalies = append(append([]string(nil), cs.Warnings...), result.Anomalies...)
		result.Degraded = true
	}
	if max := cfg.maxComments(); len(result.Findings) > max {
		result.Anomalies = append(result.Anomalies,
			fmt.Sprintf("provider returned %d comments, keeping the first %d", len(result.Findings), max))
		result.Findings = result.Findings[:max]
		result.Degraded = true
	}
	return result, nil
}

func (e *Engine) maxRetries() int {
	if e.MaxRetries > 0 {
		return e.MaxRetries
	}
	return DefaultMaxRetries
}

func (e *Engine) backoff() time.Duration {
	if e.Backoff > 0 {
		return e.Backoff
	}
	return DefaultBackoff
}

// redactChangeSet returns a copy of cs with secrets masked in every hunk.
// The input is never modified.
func redactChangeSet(cs gitctx.ChangeSet) gitctx.ChangeSet {
	files := make([]gitctx.FileChange, len(cs.Files))
	copy(files, cs.Files)
	for i := range files {
		files[i].Hunk = redact.Secrets(files[i].Hunk)
	}
	cs.Files = files
	return cs
}
