package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/ebert/internal/cache"
	"github.com/dshills/ebert/internal/config"
	"github.com/dshills/ebert/internal/gitctx"
	"github.com/dshills/ebert/internal/logging"
	"github.com/dshills/ebert/internal/output"
	"github.com/dshills/ebert/internal/providers"
	"github.com/dshills/ebert/internal/redact"
	"github.com/dshills/ebert/internal/review"
	"github.com/dshills/ebert/internal/rules"
)

var (
	flagBranch      string
	flagProvider    string
	flagModel       string
	flagEngine      string
	flagFull        bool
	flagFocus       string
	flagFormat      string
	flagOut         string
	flagFailOn      string
	flagMaxComments int
	flagExclude     string
	flagConfig      string
	flagNoCache     bool
	flagNoRedact    bool
	flagDebug       bool
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagBranch, "branch", "b", "", "Review changes since diverging from this branch")
	cmd.Flags().StringVarP(&flagProvider, "provider", "p", "", "LLM provider (anthropic, openai, gemini, ollama)")
	cmd.Flags().StringVarP(&flagModel, "model", "m", "", "Model to use")
	cmd.Flags().StringVar(&flagEngine, "engine", "", "Review engine (llm or deterministic)")
	cmd.Flags().BoolVarP(&flagFull, "full", "f", false, "Full review (default: quick review)")
	cmd.Flags().StringVar(&flagFocus, "focus", "", "Focus areas: security,bugs,style,performance")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, github)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "Exit nonzero at this severity (none, high, medium, low, info)")
	cmd.Flags().IntVar(&flagMaxComments, "max-comments", 0, "Maximum number of findings to report")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "Exclude file path globs (comma-separated)")
	cmd.Flags().StringVarP(&flagConfig, "config", "c", "", "Config file path")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the response cache")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	cmd.Flags().BoolVarP(&flagDebug, "debug", "d", false, "Enable debug logging")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagEngine != "" {
		m["engine"] = flagEngine
	}
	if flagFull {
		m["mode"] = string(review.ModeFull)
	}
	if flagFocus != "" {
		m["focus"] = flagFocus
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagFailOn != "" {
		m["failOn"] = flagFailOn
	}
	if flagMaxComments > 0 {
		m["maxComments"] = strconv.Itoa(flagMaxComments)
	}
	if flagExclude != "" {
		m["exclude"] = flagExclude
	}
	return m
}

func debugEnabled() bool {
	if flagDebug {
		return true
	}
	switch strings.ToLower(os.Getenv("EBERT_DEBUG")) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func executeReview(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig, buildOverrides())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return nil
	}

	logger := logging.New(debugEnabled())
	defer logger.Sync()

	gitOpts := gitctx.Options{
		ContextLines: cfg.ContextLines,
		MaxFileLines: cfg.MaxFileLines,
		Exclude:      cfg.Exclude,
	}

	ctx := context.Background()

	rc := cfg.ReviewConfig()
	if flagNoRedact {
		rc.NoRedact = true
		fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
	}

	var result *review.Result
	if cfg.Engine == config.EngineDeterministic {
		var cs gitctx.ChangeSet
		switch {
		case len(args) > 0:
			cs, err = gitctx.ScanFiles(ctx, args, gitOpts)
		case flagBranch != "":
			cs, err = gitctx.Branch(flagBranch, gitOpts)
		default:
			cs, err = gitctx.Staged(gitOpts)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", redact.Error(err.Error()))
			exitCode = ExitRuntimeError
			return nil
		}
		result = rules.NewEngine().Review(cs, rc)
	} else {
		cc, cacheErr := openCache(cfg, flagNoCache)
		if cacheErr != nil {
			logger.Debug("cache unavailable, continuing without it")
			cc = nil
		}
		eng := review.NewEngine(providers.NewRegistry(), cc, logger)
		eng.Git = gitOpts

		switch {
		case len(args) > 0:
			result, err = eng.ReviewFiles(ctx, args, rc)
		case flagBranch != "":
			result, err = eng.ReviewBranch(ctx, flagBranch, rc)
		default:
			result, err = eng.ReviewStaged(ctx, rc)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", redact.Error(err.Error()))
			if providers.IsAuth(err) {
				exitCode = ExitAuthError
			} else {
				exitCode = ExitRuntimeError
			}
			return nil
		}
	}

	if err := output.WriteResult(result, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %s\n", redact.Error(err.Error()))
		exitCode = ExitRuntimeError
		return nil
	}

	if shouldFail(result, cfg.FailOn) {
		exitCode = ExitFindings
	}
	return nil
}

func shouldFail(result *review.Result, failOn string) bool {
	if failOn == "none" || failOn == "" {
		return false
	}
	for _, f := range result.Findings {
		if review.MeetsThreshold(f.Severity, failOn) {
			return true
		}
	}
	return false
}

func openCache(cfg config.Config, bypass bool) (*cache.Cache, error) {
	if bypass || !cfg.Cache.Enabled {
		return cache.New(false, "", 0)
	}
	return cache.New(true, cfg.Cache.Dir, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
}
