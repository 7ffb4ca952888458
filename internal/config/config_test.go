package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/WaveSlider/pkg/waveslider"
)

var fullArgs = []string{
	"--f1", "0.5", "--f2", "4",
	"--ev1", "DPRK4", "--ev2", "DPRK3",
	"--station", "AAK",
	"--chan1", "BHZ", "--chan2", "BHN", "--chan3", "BHE",
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(NewFlagSet("test"), fullArgs)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.F1)
	assert.Equal(t, 4.0, cfg.F2)
	assert.Equal(t, 1.0, cfg.CCValue)
	assert.Equal(t, "relative_times.txt", cfg.OutFile)
	assert.Equal(t, "P", cfg.Phase)
	assert.Equal(t, ".", cfg.TopDir)
	assert.Equal(t, 4, cfg.Corners)
	assert.Equal(t, 2000.0, cfg.Rate)
	assert.Equal(t, "127.0.0.1:8765", cfg.Addr)
	assert.Empty(t, cfg.Catalog)
}

func TestLoadReportsEveryMissingKey(t *testing.T) {
	_, err := Load(NewFlagSet("test"), []string{"--f1", "1"})
	require.ErrorIs(t, err, ErrInvalid)
	for _, key := range []string{"--f2", "--ev1", "--ev2", "--station", "--chan1", "--chan2", "--chan3"} {
		assert.Contains(t, err.Error(), "missing "+key)
	}
	assert.NotContains(t, err.Error(), "missing --f1")
}

func TestLoadRejectsBadValues(t *testing.T) {
	args := append([]string{}, fullArgs...)
	args[1] = "abc"
	_, err := Load(NewFlagSet("test"), args)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "--f1 must be a positive number")

	args = append(append([]string{}, fullArgs...), "--corners", "3")
	_, err = Load(NewFlagSet("test"), args)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "corners 3")

	args = append([]string{}, fullArgs...)
	args[1], args[3] = "5", "4"
	_, err = Load(NewFlagSet("test"), args)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "must be below f2")
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("WAVESLIDER_PHASE", "S")
	t.Setenv("WAVESLIDER_CCVAL", "0.87")
	t.Setenv("WAVESLIDER_LOG_LEVEL", "debug")

	cfg, err := Load(NewFlagSet("test"), append(append([]string{}, fullArgs...), "--ccval", "0.5"))
	require.NoError(t, err)
	assert.Equal(t, "S", cfg.Phase)
	assert.Equal(t, 0.5, cfg.CCValue, "flags win over environment")
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waveslider.yaml")
	yaml := "f1: 1\nf2: 8\nev1: DPRK6\nev2: DPRK5\nstation: MDJ\nchan1: HHZ\nchan2: HHN\nchan3: HHE\ncatalog: runs.sqlite3\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(NewFlagSet("test"), []string{"--config", path, "--station", "AAK"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.F1)
	assert.Equal(t, 8.0, cfg.F2)
	assert.Equal(t, "DPRK6", cfg.Event1)
	assert.Equal(t, "AAK", cfg.Station)
	assert.Equal(t, "runs.sqlite3", cfg.Catalog)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(NewFlagSet("test"), []string{"--config", filepath.Join(t.TempDir(), "absent.yaml")})
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	cfg, err := Load(NewFlagSet("test"), append(append([]string{}, fullArgs...), "--catalog", "c.sqlite3"))
	require.NoError(t, err)

	opts := cfg.Options()
	a, err := waveslider.New(append(opts, waveslider.WithCatalog(""))...)
	require.NoError(t, err)
	defer a.Close()

	got := a.Config()
	assert.Equal(t, []string{"BHZ", "BHN", "BHE"}, got.Channels)
	assert.Equal(t, "DPRK4", got.Event1)
	assert.Equal(t, 0.5, got.LowHz)
	assert.Equal(t, 2000.0, got.TargetRate)
	assert.Len(t, opts, 12)
}
