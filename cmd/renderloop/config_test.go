package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/joeycumines/go-renderloop/affinity"
	"github.com/joeycumines/go-renderloop/gfx"
	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "renderloop.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig_valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ModeSoft, cfg.Mode)
	assert.Equal(t, gfx.APISoftware, cfg.Graphics.Context.API)
	assert.Len(t, cfg.Loops, 2)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
mode = "manual"
duration = "1500ms"
output = "frames"
log_level = "debug"
log_format = "json"
terminal_frequency = 24.0

[compute]
jobs = 2
size = 1024
core = 2

[graphics.context]
api = "software"
width = 64
height = 48

[graphics.control]
vsync = "adaptive"

[[loop]]
name = "only"
frequency = 1000.0
core = 1
colour = [0.0, 1.0, 0.5]
`)
	cfg := DefaultConfig()
	require.NoError(t, LoadConfig(path, &cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ModeManual, cfg.Mode)
	assert.Equal(t, 1500*time.Millisecond, cfg.Duration)
	assert.Equal(t, `frames`, cfg.Output)
	assert.Equal(t, `json`, cfg.LogFormat)
	assert.Equal(t, 24.0, cfg.Terminal)
	assert.Equal(t, ComputeConfig{Jobs: 2, Size: 1024, Core: 0b10}, cfg.Compute)
	assert.Equal(t, gfx.APISoftware, cfg.Graphics.Context.API)
	assert.Equal(t, gfx.VSyncAdaptive, cfg.Graphics.VSync())
	w, h := cfg.Graphics.Context.Size()
	assert.Equal(t, [2]int{64, 48}, [2]int{w, h})
	if diff := cmp.Diff([]LoopConfig{{
		Name:      `only`,
		Frequency: 500,
		Core:      affinity.Mask(1),
		Colour:    [3]float64{0, 1, 0.5},
	}}, cfg.Loops); diff != `` {
		t.Errorf("unexpected loops (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_unknownKeys(t *testing.T) {
	path := writeConfig(t, "mode = \"soft\"\nspeed = 3\n")
	cfg := DefaultConfig()
	assert.ErrorContains(t, LoadConfig(path, &cfg), `unknown keys: speed`)
}

func TestLoadConfig_invalid(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, LoadConfig(writeConfig(t, "mode = "), &cfg))
	assert.Error(t, LoadConfig(filepath.Join(t.TempDir(), "missing.toml"), &cfg))
	assert.Error(t, LoadConfig(writeConfig(t, "[graphics.context]\napi = \"vulkan\"\n"), &cfg))
}

func TestConfig_Validate(t *testing.T) {
	for _, tc := range [...]struct {
		name   string
		modify func(*Config)
		err    string
	}{
		{`mode`, func(c *Config) { c.Mode = `gpu` }, `invalid mode`},
		{`log level`, func(c *Config) { c.LogLevel = `loud` }, `invalid log level`},
		{`log format`, func(c *Config) { c.LogFormat = `xml` }, `invalid log format`},
		{`no loops`, func(c *Config) { c.Loops = nil }, `at least one loop`},
		{`unnamed loop`, func(c *Config) { c.Loops[1].Name = `` }, `loop 1 has no name`},
		{`duplicate loop`, func(c *Config) { c.Loops[1].Name = c.Loops[0].Name }, `duplicate loop name`},
		{`manual uncapped`, func(c *Config) {
			c.Mode = ModeManual
			c.Loops[0].Frequency = 0.5
		}, `requires a capped frequency`},
		{`compute`, func(c *Config) { c.Compute.Jobs = -1 }, `must not be negative`},
		{`duration`, func(c *Config) { c.Duration = -time.Second }, `duration must not be negative`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.err)
		})
	}
}

func TestParseLevel(t *testing.T) {
	for _, level := range []logiface.Level{
		logiface.LevelDisabled,
		logiface.LevelEmergency,
		logiface.LevelError,
		logiface.LevelInformational,
		logiface.LevelTrace,
	} {
		got, err := ParseLevel(level.String())
		require.NoError(t, err)
		assert.Equal(t, level, got)
	}
	_, err := ParseLevel(`verbose`)
	assert.Error(t, err)
}

func TestParseArgs_flagsOverrideConfig(t *testing.T) {
	path := writeConfig(t, "mode = \"manual\"\nduration = \"1s\"\n")
	cfg, err := parseArgs([]string{`-config`, path, `-mode`, `soft`, `-log-level`, `warning`}, &lockedBuffer{})
	require.NoError(t, err)
	assert.Equal(t, ModeSoft, cfg.Mode)
	assert.Equal(t, time.Second, cfg.Duration)
	assert.Equal(t, `warning`, cfg.LogLevel)

	_, err = parseArgs([]string{`-mode`, `gpu`}, &lockedBuffer{})
	assert.ErrorContains(t, err, `invalid mode`)
}
