package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cptaffe/acme-brackets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Nil(t, cfg.Admission(), "all kinds enabled admits everything")
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
highlight_selection: false
max_document_size: 1000
selection_budget: 10ms
kinds:
  angle: false
filename_handlers:
  - pattern: '\.go$'
    language_id: go
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Enabled)
	assert.False(t, cfg.HighlightSelection)
	assert.Equal(t, 1000, cfg.MaxDocumentSize)
	assert.Equal(t, 10*time.Millisecond, cfg.SelectionBudget)
	assert.Equal(t, 5*time.Millisecond, cfg.ScanBudget)
	assert.Equal(t, Kinds{Round: true, Square: true, Curly: true}, cfg.Kinds)
	assert.Equal(t, []FilenameHandler{{Pattern: `\.go$`, LanguageID: "go"}}, cfg.FilenameHandlers)

	admit := cfg.Admission()
	require.NotNil(t, admit)
	assert.False(t, admit('<', 0))
	assert.True(t, admit('(', 0))
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "max_document_size: 1000\n")
	t.Setenv("ACME_BRACKETS_MAX_DOCUMENT_SIZE", "2000")
	t.Setenv("ACME_BRACKETS_KINDS_CURLY", "false")
	t.Setenv("ACME_BRACKETS_POLL_INTERVAL", "1s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.MaxDocumentSize)
	assert.False(t, cfg.Kinds.Curly)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, []brackets.Kind{brackets.Curly}, cfg.Kinds.Disabled())
}

func TestLoadRejectsShortPalette(t *testing.T) {
	path := writeConfig(t, "palette: [a, b, c]\n")
	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero size", func(c *Config) { c.MaxDocumentSize = 0 }},
		{"zero scan budget", func(c *Config) { c.ScanBudget = 0 }},
		{"negative debounce", func(c *Config) { c.Debounce = -time.Second }},
		{"zero poll", func(c *Config) { c.PollInterval = 0 }},
		{"long selection palette", func(c *Config) { c.SelectionPalette = append(c.SelectionPalette, "x") }},
		{"handler without language", func(c *Config) {
			c.FilenameHandlers = []FilenameHandler{{Pattern: `\.x$`}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestEncodeRoundTrip(t *testing.T) {
	want := Default()
	want.HighlightCaretBlock = true
	want.Kinds.Square = false
	want.MismatchStyle = ""

	var buf bytes.Buffer
	require.NoError(t, want.Encode(&buf))
	assert.Contains(t, buf.String(), "scan_budget: 5ms")

	got, err := Load(writeConfig(t, buf.String()))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLimits(t *testing.T) {
	cfg := Default()
	assert.Equal(t, brackets.DefaultLimits(), cfg.Limits())
}
