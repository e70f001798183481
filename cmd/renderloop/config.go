package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joeycumines/go-renderloop/affinity"
	"github.com/joeycumines/go-renderloop/gfx"
	"github.com/joeycumines/go-renderloop/pacer"
	"github.com/joeycumines/logiface"
)

// Mode selects how frames are produced and presented.
type Mode string

const (
	// ModeSoft paces each configured loop on its own software context.
	ModeSoft Mode = "soft"
	// ModeTerminal paces the first loop, and mirrors its frames to the
	// terminal.
	ModeTerminal Mode = "terminal"
	// ModeManual drives the first loop from a ticker, submitting each frame
	// to a dispatcher.
	ModeManual Mode = "manual"
)

type (
	// Config is the demo configuration, read from TOML.
	Config struct {
		Mode Mode `toml:"mode"`
		// Output is a directory to write the final frame of each loop to,
		// as <name>.png. Empty disables output.
		Output string `toml:"output"`
		// LogLevel is a logiface level keyword, e.g. "info".
		LogLevel string `toml:"log_level"`
		// LogFormat is "text" or "json".
		LogFormat string        `toml:"log_format"`
		Loops     []LoopConfig  `toml:"loop"`
		Graphics  gfx.Settings  `toml:"graphics"`
		Compute   ComputeConfig `toml:"compute"`
		// Terminal is the presentation frequency in terminal mode, in Hz.
		Terminal float64 `toml:"terminal_frequency"`
		// Duration stops the demo after the given time, 0 running until
		// interrupted.
		Duration time.Duration `toml:"duration"`
	}

	// LoopConfig configures one paced loop.
	LoopConfig struct {
		Name      string        `toml:"name"`
		Frequency float64       `toml:"frequency"`
		Core      affinity.Mask `toml:"core"`
		// Colour is the RGB colour of the animated shape, each in [0, 1].
		Colour [3]float64 `toml:"colour"`
	}

	// ComputeConfig configures the compute jobs submitted to a dispatcher.
	ComputeConfig struct {
		Jobs int           `toml:"jobs"`
		Size int           `toml:"size"`
		Core affinity.Mask `toml:"core"`
	}
)

// DefaultConfig returns two software loops at 60 and 30 Hz, running until
// interrupted.
func DefaultConfig() Config {
	settings := gfx.DefaultSettings()
	settings.Context.API = gfx.APISoftware
	settings.Context.Width = 320
	settings.Context.Height = 240
	return Config{
		Mode:      ModeSoft,
		LogLevel:  logiface.LevelInformational.String(),
		LogFormat: "text",
		Loops: []LoopConfig{
			{Name: "fast", Frequency: 60, Colour: [3]float64{1, 0.3, 0.3}},
			{Name: "slow", Frequency: 30, Colour: [3]float64{0.3, 0.3, 1}},
		},
		Graphics: settings,
		Compute:  ComputeConfig{Jobs: 4, Size: 1 << 20},
		Terminal: 30,
	}
}

// LoadConfig decodes the TOML file at path over cfg. Unknown keys are an
// error.
func LoadConfig(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config: unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks cfg, normalising loop frequencies.
func (x *Config) Validate() error {
	switch x.Mode {
	case ModeSoft, ModeTerminal, ModeManual:
	default:
		return fmt.Errorf("config: invalid mode: %q", x.Mode)
	}
	if _, err := ParseLevel(x.LogLevel); err != nil {
		return err
	}
	switch x.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: invalid log format: %q", x.LogFormat)
	}
	if len(x.Loops) == 0 {
		return errors.New("config: at least one loop is required")
	}
	names := make(map[string]struct{}, len(x.Loops))
	for i := range x.Loops {
		loop := &x.Loops[i]
		if loop.Name == "" {
			return fmt.Errorf("config: loop %d has no name", i)
		}
		if _, ok := names[loop.Name]; ok {
			return fmt.Errorf("config: duplicate loop name: %q", loop.Name)
		}
		names[loop.Name] = struct{}{}
		loop.Frequency = pacer.ClampFrequency(loop.Frequency)
	}
	if x.Mode == ModeManual && x.Loops[0].Frequency == 0 {
		return errors.New("config: manual mode requires a capped frequency")
	}
	x.Terminal = pacer.ClampFrequency(x.Terminal)
	if x.Compute.Jobs < 0 || x.Compute.Size < 0 {
		return errors.New("config: compute jobs and size must not be negative")
	}
	if x.Duration < 0 {
		return errors.New("config: duration must not be negative")
	}
	return nil
}

// ParseLevel parses a logiface level keyword, as returned by
// [logiface.Level.String].
func ParseLevel(s string) (logiface.Level, error) {
	for level := logiface.LevelDisabled; level <= logiface.LevelTrace; level++ {
		if level.String() == s {
			return level, nil
		}
	}
	return 0, fmt.Errorf("config: invalid log level: %q", s)
}
