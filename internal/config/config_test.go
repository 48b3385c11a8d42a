package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattdef/dampen-sub004/pkg/watch"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"."}, cfg.Watch.Roots)
	assert.Equal(t, []string{".ui.json"}, cfg.Watch.Extensions)
	assert.Equal(t, watch.DefaultWindow, cfg.DebounceWindow())
	assert.Equal(t, "localhost:8090", cfg.Addr())
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	src := `
watch:
  roots: [ui, shared]
  extensions: [".ui.json", ".ui.yaml"]
  debounce_ms: 250
dev:
  host: 0.0.0.0
  port: 9999
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(src), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"ui", "shared"}, cfg.Watch.Roots)
	assert.Equal(t, 250*time.Millisecond, cfg.DebounceWindow())
	assert.Equal(t, "0.0.0.0:9999", cfg.Addr())
	// Unset keys keep their defaults.
	assert.True(t, cfg.Dev.Inspector)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("watch: ["), 0o644))
	_, err := Load(dir)
	assert.Error(t, err)
}
