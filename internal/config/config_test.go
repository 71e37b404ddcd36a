package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "subject_ids", cfg.Columns.Subject)
	assert.Equal(t, "annotations", cfg.Columns.Annotation)
	assert.Equal(t, "utf-8", cfg.Columns.Charset)
	assert.Empty(t, cfg.Clean.ExtraFragments)
	assert.Equal(t, int64(0), cfg.Dedupe.Seed)
	assert.Equal(t, 4, cfg.Dedupe.Concurrency)
	assert.Equal(t, "-cleaned", cfg.Dedupe.OutputSuffix)
	assert.Equal(t, "cleaned-zooniverse-data.csv", cfg.Dedupe.DefaultName)
	assert.Equal(t, 4, cfg.Split.PadWidth)
	assert.Equal(t, "00000nam a2200000 a 4500", cfg.MARC.Leader)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 32, cfg.Server.MaxUploadMB)
	assert.InDelta(t, 5.0, cfg.Server.RatePerSec, 0.001)
	assert.Equal(t, 10, cfg.Server.Burst)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
  format: console
columns:
  subject: Subject
clean:
  extra_fragments:
    - "[unclear]"
    - "[illegible]"
dedupe:
  seed: 42
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "Subject", cfg.Columns.Subject)
	assert.Equal(t, []string{"[unclear]", "[illegible]"}, cfg.Clean.ExtraFragments)
	assert.Equal(t, int64(42), cfg.Dedupe.Seed)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, "annotations", cfg.Columns.Annotation)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
columns:
  subject: Subject
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("TRANSCRIBE_COLUMNS_SUBJECT", "subject_id")
	t.Setenv("TRANSCRIBE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "subject_id", cfg.Columns.Subject)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("TRANSCRIBE_SERVER_PORT", "3000")
	t.Setenv("TRANSCRIBE_DEDUPE_SEED", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, int64(7), cfg.Dedupe.Seed)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Columns.Subject = "subject_ids"
	cfg.Columns.Annotation = "annotations"
	cfg.Dedupe.Concurrency = 4
	cfg.Split.PadWidth = 4
	cfg.Server.Port = 8080
	cfg.Server.MaxUploadMB = 32
	cfg.Server.RatePerSec = 5
	cfg.Server.Burst = 10
	return cfg
}

func TestValidate_AllModesWithDefaults(t *testing.T) {
	cfg := validDefaults()
	for _, mode := range []string{"dedupe", "split", "marc", "xhtml", "serve"} {
		assert.NoError(t, cfg.Validate(mode), mode)
	}
}

func TestValidateDedupe_MissingColumns(t *testing.T) {
	cfg := validDefaults()
	cfg.Columns.Subject = ""
	cfg.Columns.Annotation = ""

	err := cfg.Validate("dedupe")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "columns.subject is required")
	assert.Contains(t, err.Error(), "columns.annotation is required")
}

func TestValidateDedupe_ConcurrencyBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Dedupe.Concurrency = 0
	err := cfg.Validate("dedupe")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "dedupe.concurrency must be between 1 and 64")

	cfg.Dedupe.Concurrency = 65
	assert.Error(t, cfg.Validate("dedupe"))

	cfg.Dedupe.Concurrency = 64
	assert.NoError(t, cfg.Validate("dedupe"))
}

func TestValidateSplit_PadWidth(t *testing.T) {
	cfg := validDefaults()
	cfg.Split.PadWidth = 0

	err := cfg.Validate("split")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split.pad_width")
}

func TestValidateServe_InvalidSettings(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0
	cfg.Server.MaxUploadMB = 0
	cfg.Server.RatePerSec = 0
	cfg.Server.Burst = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
	assert.Contains(t, err.Error(), "server.max_upload_mb must be > 0")
	assert.Contains(t, err.Error(), "server.rate_per_sec must be > 0")
	assert.Contains(t, err.Error(), "server.burst must be >= 1")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
