// Command renderloop demonstrates frame pacing and context dispatch on
// software and terminal graphics contexts.
//
// Usage:
//
//	renderloop [-config file.toml] [-mode soft|terminal|manual] [-duration 5s] [-output dir] [-log-level info] [-log-format text|json]
//
// In terminal mode, press Escape or Ctrl-C to exit.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/KimMachineGun/automemlimit"
	"github.com/gogpu/gg"
	"github.com/joeycumines/go-renderloop"
	"github.com/joeycumines/go-renderloop/affinity"
	"github.com/joeycumines/go-renderloop/internal/logging"
	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	cfg, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	level, _ := ParseLevel(cfg.LogLevel)
	logger := logging.NewText(stderr, level)
	if cfg.LogFormat == "json" {
		logger = logging.NewJSON(stderr, level)
	}
	renderloop.SetLogger(logger)
	defer renderloop.SetLogger(nil)
	gg.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if undo, err := maxprocs.Set(maxprocs.Logger(func(format string, a ...any) {
		logger.Debug().Log(fmt.Sprintf(format, a...))
	})); err != nil {
		logger.Warning().Err(err).Log("failed to set GOMAXPROCS")
	} else {
		defer undo()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	cores, err := affinity.NewManager()
	if err != nil {
		return err
	}
	logger.Info().
		Str("mode", string(cfg.Mode)).
		Stringer("cores", cores.Allowed()).
		Log("starting")

	return (&demo{cfg: cfg, cores: cores, logger: logger}).run(ctx)
}

func parseArgs(args []string, stderr io.Writer) (Config, error) {
	fs := flag.NewFlagSet("renderloop", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath = fs.String("config", "", "TOML config file")
		mode       = fs.String("mode", "", "soft, terminal or manual, overriding the config")
		duration   = fs.Duration("duration", 0, "stop after this long, overriding the config")
		output     = fs.String("output", "", "directory to write final frames to, overriding the config")
		logLevel   = fs.String("log-level", "", "log level keyword, overriding the config")
		logFormat  = fs.String("log-format", "", "text or json, overriding the config")
	)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		if err := LoadConfig(*configPath, &cfg); err != nil {
			return Config{}, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = Mode(*mode)
		case "duration":
			cfg.Duration = *duration
		case "output":
			cfg.Output = *output
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-format":
			cfg.LogFormat = *logFormat
		}
	})
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// shutdownTimeout bounds how long stopping all loops may take.
const shutdownTimeout = 5 * time.Second
