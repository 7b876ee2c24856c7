// Package config handles loading and parsing acme-brackets' YAML config.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cptaffe/acme-brackets"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix marks environment variables that override config keys, e.g.
// ACME_BRACKETS_MAX_DOCUMENT_SIZE or ACME_BRACKETS_KINDS_ANGLE.
const EnvPrefix = "ACME_BRACKETS_"

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// Config is the top-level structure of ~/lib/acme-brackets/config.yaml.
type Config struct {
	// Enabled is the master switch.  When false windows are left unstyled.
	Enabled bool `yaml:"enabled"`

	// HighlightSelection paints the interior of the innermost bracket pair
	// enclosing the selection.
	HighlightSelection bool `yaml:"highlight_selection"`

	// HighlightCaretBlock extends selection highlighting to an empty
	// selection, using the innermost pair around the caret.
	HighlightCaretBlock bool `yaml:"highlight_caret_block"`

	// Kinds toggles each bracket family.
	Kinds Kinds `yaml:"kinds"`

	// Palette names the acme-styles entries used for levels 0..5.
	Palette []string `yaml:"palette"`

	// SelectionPalette names the background entries for enclosing blocks.
	SelectionPalette []string `yaml:"selection_palette"`

	// MismatchStyle names the entry for unmatched brackets; empty leaves
	// them unstyled.
	MismatchStyle string `yaml:"mismatch_style"`

	// MaxDocumentSize is the largest body, in runes, that is processed.
	MaxDocumentSize int `yaml:"max_document_size"`

	ScanBudget      time.Duration `yaml:"scan_budget"`
	SelectionBudget time.Duration `yaml:"selection_budget"`

	// Debounce delays re-highlighting after edits.
	Debounce time.Duration `yaml:"debounce"`

	// PollInterval is how often each window's selection is sampled.
	PollInterval time.Duration `yaml:"poll_interval"`

	// FilenameHandlers maps filename patterns to grammar language IDs.
	// Evaluated in order; first match wins.  Patterns are Go regular
	// expressions.
	FilenameHandlers []FilenameHandler `yaml:"filename_handlers"`
}

// Kinds enables or disables each bracket family.
type Kinds struct {
	Round  bool `yaml:"round"`
	Square bool `yaml:"square"`
	Curly  bool `yaml:"curly"`
	Angle  bool `yaml:"angle"`
}

// FilenameHandler associates a filename regex pattern with a grammar language ID.
type FilenameHandler struct {
	Pattern    string `yaml:"pattern"`
	LanguageID string `yaml:"language_id"`
}

// Default returns the configuration used for keys a file does not set.
func Default() *Config {
	l := brackets.DefaultLimits()
	return &Config{
		Enabled:            true,
		HighlightSelection: true,
		Kinds:              Kinds{Round: true, Square: true, Curly: true, Angle: true},
		Palette: []string{
			"rainbow0", "rainbow1", "rainbow2", "rainbow3", "rainbow4", "rainbow5",
		},
		SelectionPalette: []string{
			"rainbowbg0", "rainbowbg1", "rainbowbg2", "rainbowbg3", "rainbowbg4", "rainbowbg5",
		},
		MismatchStyle:   "e",
		MaxDocumentSize: l.MaxDocumentSize,
		ScanBudget:      l.ScanBudget,
		SelectionBudget: l.SelectionBudget,
		Debounce:        200 * time.Millisecond,
		PollInterval:    150 * time.Millisecond,
		FilenameHandlers: []FilenameHandler{
			{Pattern: `\.go$`, LanguageID: "go"},
			{Pattern: `\.[ch]$`, LanguageID: "c"},
			{Pattern: `\.(cc|cpp|cxx|hh|hpp)$`, LanguageID: "cpp"},
			{Pattern: `\.py$`, LanguageID: "python"},
			{Pattern: `\.rs$`, LanguageID: "rust"},
			{Pattern: `\.(js|jsx|mjs|cjs)$`, LanguageID: "javascript"},
			{Pattern: `\.(sh|bash)$`, LanguageID: "bash"},
			{Pattern: `\.java$`, LanguageID: "java"},
			{Pattern: `\.(scala|sc)$`, LanguageID: "scala"},
			{Pattern: `\.(json|toml)$`, LanguageID: "text"},
		},
	}
}

// Load returns Default overridden by the YAML file at path (skipped when
// path is empty) and then by ACME_BRACKETS_* environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	// Lists given in the file replace the defaults rather than merging
	// element by element.
	if k.Exists("palette") {
		cfg.Palette = nil
	}
	if k.Exists("selection_palette") {
		cfg.SelectionPalette = nil
	}
	if k.Exists("filename_handlers") {
		cfg.FilenameHandlers = nil
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps ACME_BRACKETS_SCAN_BUDGET to scan_budget and
// ACME_BRACKETS_KINDS_ANGLE to kinds.angle.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "kinds_"); ok {
		return "kinds." + rest
	}
	return key
}

// Validate checks invariants Load cannot express in YAML.
func (c *Config) Validate() error {
	if n := len(c.Palette); n != brackets.CycleLength {
		return fmt.Errorf("%w: palette has %d entries, want %d", ErrInvalid, n, brackets.CycleLength)
	}
	if n := len(c.SelectionPalette); n != brackets.CycleLength {
		return fmt.Errorf("%w: selection_palette has %d entries, want %d", ErrInvalid, n, brackets.CycleLength)
	}
	if c.MaxDocumentSize <= 0 {
		return fmt.Errorf("%w: max_document_size must be positive", ErrInvalid)
	}
	if c.ScanBudget <= 0 || c.SelectionBudget <= 0 {
		return fmt.Errorf("%w: budgets must be positive", ErrInvalid)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("%w: debounce must not be negative", ErrInvalid)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll_interval must be positive", ErrInvalid)
	}
	for _, fh := range c.FilenameHandlers {
		if fh.Pattern == "" || fh.LanguageID == "" {
			return fmt.Errorf("%w: filename handler needs pattern and language_id", ErrInvalid)
		}
	}
	return nil
}

// Limits returns the governor limits described by c.
func (c *Config) Limits() brackets.Limits {
	return brackets.Limits{
		MaxDocumentSize: c.MaxDocumentSize,
		ScanBudget:      c.ScanBudget,
		SelectionBudget: c.SelectionBudget,
	}
}

// Disabled lists the bracket kinds switched off.
func (k Kinds) Disabled() []brackets.Kind {
	on := [...]bool{
		brackets.Round:  k.Round,
		brackets.Square: k.Square,
		brackets.Curly:  k.Curly,
		brackets.Angle:  k.Angle,
	}
	var off []brackets.Kind
	for _, kind := range brackets.Kinds() {
		if !on[kind] {
			off = append(off, kind)
		}
	}
	return off
}

// Admission returns the AdmitFunc dropping disabled kinds, or nil when all
// kinds are on.
func (c *Config) Admission() brackets.AdmitFunc {
	return brackets.ExcludeKinds(c.Kinds.Disabled()...)
}

// Encode writes c to w as YAML.
func (c *Config) Encode(w io.Writer) error {
	enc := yamlv3.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
