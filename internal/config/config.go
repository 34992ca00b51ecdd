package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/ebert/internal/review"
)

// Config is the ebert configuration.
type Config struct {
	Engine       string        `yaml:"engine"`
	Provider     string        `yaml:"provider"`
	Model        string        `yaml:"model"`
	Mode         string        `yaml:"mode"`
	Focus        []string      `yaml:"focus"`
	StyleGuide   string        `yaml:"styleGuide"`
	Format       string        `yaml:"format"`
	FailOn       string        `yaml:"failOn"`
	MaxComments  int           `yaml:"maxComments"`
	ContextLines int           `yaml:"contextLines"`
	MaxFileLines int           `yaml:"maxFileLines"`
	Exclude      []string      `yaml:"exclude"`
	Cache        CacheConfig   `yaml:"cache"`
	Privacy      PrivacyConfig `yaml:"privacy"`
}

// CacheConfig controls response caching.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Dir        string `yaml:"dir"`
	TTLSeconds int    `yaml:"ttlSeconds"`
}

// PrivacyConfig controls redaction behavior.
type PrivacyConfig struct {
	RedactSecrets bool `yaml:"redactSecrets"`
}

// Engine modes.
const (
	EngineLLM           = "llm"
	EngineDeterministic = "deterministic"
)

// configNames are the project config filenames searched in the working
// directory, in priority order.
var configNames = []string{".ebert.yaml", ".ebert.yml", "ebert.yaml", "ebert.yml"}

// Default returns a Config with all defaults applied. Provider is left empty
// so the first available one is auto-detected.
func Default() Config {
	return Config{
		Engine:      EngineLLM,
		Mode:        string(review.ModeQuick),
		Focus:       []string{string(review.FocusAll)},
		Format:      "text",
		FailOn:      "none",
		MaxComments: review.DefaultMaxComments,
		Exclude:     []string{"vendor/**", "node_modules/**", "**/*.lock"},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
		},
	}
}

// FindFile locates the project config file. explicit takes priority; when it
// is set but missing that is an error, while an absent project file is not.
func FindFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", filepath.Base(explicit))
		}
		return explicit, nil
	}
	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", nil
}

// Load builds the effective config by merging: defaults <- file <- env <-
// overrides. The overrides map comes from CLI flags; only explicitly set
// flags should appear in it.
func Load(explicit string, overrides map[string]string) (Config, error) {
	cfg := Default()

	path, err := FindFile(explicit)
	if err != nil {
		return Config{}, err
	}
	if path != "" {
		fileCfg, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		mergeFile(&cfg, fileCfg)
	}
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// fileConfig mirrors Config for YAML decoding. The booleans are pointers so
// an explicit false in the file is distinguishable from an absent key.
type fileConfig struct {
	Engine       string   `yaml:"engine"`
	Provider     string   `yaml:"provider"`
	Model        string   `yaml:"model"`
	Mode         string   `yaml:"mode"`
	Focus        []string `yaml:"focus"`
	StyleGuide   string   `yaml:"styleGuide"`
	Format       string   `yaml:"format"`
	FailOn       string   `yaml:"failOn"`
	MaxComments  int      `yaml:"maxComments"`
	ContextLines int      `yaml:"contextLines"`
	MaxFileLines int      `yaml:"maxFileLines"`
	Exclude      []string `yaml:"exclude"`
	Cache        struct {
		Enabled    *bool  `yaml:"enabled"`
		Dir        string `yaml:"dir"`
		TTLSeconds int    `yaml:"ttlSeconds"`
	} `yaml:"cache"`
	Privacy struct {
		RedactSecrets *bool `yaml:"redactSecrets"`
	} `yaml:"privacy"`
}

func loadFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

func mergeFile(dst *Config, src fileConfig) {
	if src.Engine != "" {
		dst.Engine = src.Engine
	}
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Mode != "" {
		dst.Mode = src.Mode
	}
	if len(src.Focus) > 0 {
		dst.Focus = src.Focus
	}
	if src.StyleGuide != "" {
		dst.StyleGuide = src.StyleGuide
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.FailOn != "" {
		dst.FailOn = src.FailOn
	}
	if src.MaxComments > 0 {
		dst.MaxComments = src.MaxComments
	}
	if src.ContextLines > 0 {
		dst.ContextLines = src.ContextLines
	}
	if src.MaxFileLines > 0 {
		dst.MaxFileLines = src.MaxFileLines
	}
	if len(src.Exclude) > 0 {
		dst.Exclude = src.Exclude
	}
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = *src.Cache.Enabled
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	if src.Privacy.RedactSecrets != nil {
		dst.Privacy.RedactSecrets = *src.Privacy.RedactSecrets
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("EBERT_ENGINE"); v != "" {
		cfg.Engine = v
	}
	if v := os.Getenv("EBERT_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("EBERT_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("EBERT_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("EBERT_FAIL_ON"); v != "" {
		cfg.FailOn = v
	}
	if v := os.Getenv("EBERT_MAX_COMMENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxComments = n
		}
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	for key, value := range overrides {
		if value == "" {
			continue
		}
		switch key {
		case "engine":
			cfg.Engine = value
		case "provider":
			cfg.Provider = value
		case "model":
			cfg.Model = value
		case "mode":
			cfg.Mode = value
		case "focus":
			cfg.Focus = splitList(value)
		case "styleGuide":
			cfg.StyleGuide = value
		case "format":
			cfg.Format = value
		case "failOn":
			cfg.FailOn = value
		case "maxComments":
			if n, err := strconv.Atoi(value); err == nil {
				cfg.MaxComments = n
			}
		case "exclude":
			cfg.Exclude = splitList(value)
		}
	}
}

// Validate rejects values outside the known enumerations.
func (c Config) Validate() error {
	switch c.Engine {
	case EngineLLM, EngineDeterministic:
	default:
		return fmt.Errorf("invalid engine %q (llm or deterministic)", c.Engine)
	}
	switch review.Mode(c.Mode) {
	case review.ModeQuick, review.ModeFull:
	default:
		return fmt.Errorf("invalid mode %q (quick or full)", c.Mode)
	}
	for _, f := range c.Focus {
		if _, ok := review.ParseFocus(f); !ok {
			return fmt.Errorf("invalid focus area %q", f)
		}
	}
	switch c.Format {
	case "text", "json", "markdown", "github":
	default:
		return fmt.Errorf("invalid format %q (text, json, markdown or github)", c.Format)
	}
	switch c.FailOn {
	case "none", "high", "medium", "low", "info":
	default:
		return fmt.Errorf("invalid failOn %q (none, high, medium, low or info)", c.FailOn)
	}
	return nil
}

// FocusAreas converts the configured focus names to their typed form.
// Validate must have accepted the config first.
func (c Config) FocusAreas() []review.FocusArea {
	areas := make([]review.FocusArea, 0, len(c.Focus))
	for _, f := range c.Focus {
		if a, ok := review.ParseFocus(f); ok {
			areas = append(areas, a)
		}
	}
	return areas
}

// ReviewConfig derives the per-run review configuration.
func (c Config) ReviewConfig() review.Config {
	return review.Config{
		Mode:        review.Mode(c.Mode),
		Focus:       c.FocusAreas(),
		StyleGuide:  c.StyleGuide,
		MaxComments: c.MaxComments,
		Provider:    c.Provider,
		Model:       c.Model,
		NoRedact:    !c.Privacy.RedactSecrets,
	}
}

func splitList(value string) []string {
	var out []string
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
