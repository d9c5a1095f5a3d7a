// Command vengine runs a scene either headless, printing a benchmark report,
// or in an ebiten window with optional debug panels.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/vengine/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type flags struct {
	configPath string
	headless   bool
	frames     uint64
	duration   time.Duration
	scene      string
	script     string
	profile    string
	debugUI    bool
}

func main() {
	var f flags
	flag.StringVar(&f.configPath, "config", "vengine.toml", "Path to the TOML config file. Overridden by VENGINE_CONFIG.")
	flag.BoolVar(&f.headless, "headless", false, "Render with no window and print a report.")
	flag.Uint64Var(&f.frames, "frames", 600, "Frames to render in headless mode. 0 runs until -duration.")
	flag.DurationVar(&f.duration, "duration", 0, "Stop a headless run after this long.")
	flag.StringVar(&f.scene, "scene", "", "Scene file, overriding the config.")
	flag.StringVar(&f.script, "script", "", "Lua script, overriding the config.")
	flag.StringVar(&f.profile, "profile", "", "Write a cpu or mem profile to the working directory.")
	flag.BoolVar(&f.debugUI, "debug-ui", false, "Show the ImGui debug panels in windowed mode.")
	flag.Parse()

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "vengine: %v\n", err)
		os.Exit(1)
	}
}

func run(f flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	switch cfg.Debug.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	if f.headless {
		ctx := context.Background()
		if f.duration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, f.duration)
			defer cancel()
		}
		if f.frames == 0 && f.duration == 0 {
			return errors.New("headless run needs -frames or -duration")
		}
		return runHeadless(ctx, cfg, f.frames, log, os.Stdout)
	}
	return runWindowed(cfg, log)
}

// loadConfig reads the config file when present and applies flag overrides.
// A missing file at the default path falls back to the defaults.
func loadConfig(f flags) (*config.Config, error) {
	path := f.configPath
	explicit := false
	flag.Visit(func(fl *flag.Flag) {
		if fl.Name == "config" {
			explicit = true
		}
	})
	if p := os.Getenv("VENGINE_CONFIG"); p != "" {
		path, explicit = p, true
	}

	cfg, err := config.Load(path)
	switch {
	case err == nil:
	case !explicit && errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	default:
		return nil, fmt.Errorf("load config: %w", err)
	}

	if f.scene != "" {
		cfg.Scene.File = f.scene
	}
	if f.script != "" {
		cfg.Script.File = f.script
	}
	if f.profile != "" {
		cfg.Debug.Profile = f.profile
	}
	if f.debugUI {
		cfg.Debug.UI = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
