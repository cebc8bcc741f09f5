package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catnav.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultsValidate(t *testing.T) {
	require.NoError(t, Validate(Default()))
	require.NoError(t, ValidateEngine(DefaultEngine()))
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeYAML(t, `
engine:
  oscillators: 32
  coupling: 2.5
  regime:
    low_flow: 100
    high_flow: 200
validation:
  skip: [kuramoto]
store:
  path: runs.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 32, cfg.Engine.Oscillators)
	assert.Equal(t, 2.5, cfg.Engine.Coupling)
	assert.Equal(t, 100.0, cfg.Engine.Regime.LowFlow)
	assert.Equal(t, []string{"kuramoto"}, cfg.Validation.Skip)
	assert.Equal(t, "runs.db", cfg.Store.Path)

	// untouched fields keep defaults
	assert.Equal(t, 10.0, cfg.Engine.MeanFrequency)
	assert.Equal(t, DefaultEngine().Solver, cfg.Engine.Solver)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"zero oscillators": "engine:\n  oscillators: 0\n",
		"inverted regime":  "engine:\n  regime:\n    low_flow: 500\n    high_flow: 100\n",
		"coupling down":    "engine:\n  coupling_down: 1.5\n",
		"bad level":        "log:\n  level: loud\n",
		"deep ternary":     "validation:\n  ternary_depth: 41\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeYAML(t, body))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeYAML(t, "engine: [not, a, map]"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CATNAV_DB", "env.db")
	t.Setenv("CATNAV_SEED", "42")
	t.Setenv("CATNAV_OSCILLATORS", "7")
	t.Setenv("CATNAV_COUPLING", "3.5")
	t.Setenv("CATNAV_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.Store.Path)
	assert.Equal(t, uint64(42), cfg.Engine.Seed)
	assert.Equal(t, 7, cfg.Engine.Oscillators)
	assert.Equal(t, 3.5, cfg.Engine.Coupling)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvOverrideParseError(t *testing.T) {
	t.Setenv("CATNAV_SEED", "minus-one")
	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalid)
}
