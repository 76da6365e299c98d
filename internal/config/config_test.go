package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nonlinear_eq/internal/config"
	"nonlinear_eq/internal/solver"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), c)

	c, err = config.Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, solver.DefaultConfig(), c.Solver)
	assert.Equal(t, ":8080", c.Addr)
}

func TestLoad_PartialOverride(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"addr": ":9090", "solver": {"max_steps": 50}}`), 0o600))

	c, err := config.Load(p)
	require.NoError(t, err)
	assert.Equal(t, ":9090", c.Addr)
	assert.Equal(t, 50, c.Solver.MaxSteps)
	assert.Equal(t, solver.DefaultPrecision, c.Solver.Precision)
	assert.Equal(t, "static", c.StaticDir)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"addr": `), 0o600))
	_, err := config.Load(bad)
	assert.Error(t, err)

	neg := filepath.Join(dir, "neg.json")
	require.NoError(t, os.WriteFile(neg, []byte(`{"solver": {"precision": -1}}`), 0o600))
	_, err = config.Load(neg)
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.json")
	c := config.Default()
	c.Plot.Points = 200
	c.Solver.Horizon = 50

	require.NoError(t, config.Save(p, c))
	got, err := config.Load(p)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestPath(t *testing.T) {
	t.Setenv(config.EnvPath, "/etc/eq.json")
	assert.Equal(t, "/etc/eq.json", config.Path(""))
	assert.Equal(t, "local.json", config.Path("local.json"))
}
