package main

import (
	"context"
	"errors"
	"io"
	"runtime"
	"time"

	"github.com/plus3/vengine/config"
	"github.com/plus3/vengine/engine"
	"github.com/plus3/vengine/gpu/headless"
	"github.com/plus3/vengine/platform"
	"go.uber.org/zap"
)

// runHeadless renders on the software device until frames have run or ctx is
// done, then writes a report to w. A frames value of zero means no limit.
func runHeadless(ctx context.Context, cfg *config.Config, frames uint64, log *zap.Logger, w io.Writer) error {
	window := platform.NewHeadlessWindow(cfg.Window.Width, cfg.Window.Height)
	device := headless.New(headless.WithSurface(window), headless.WithLogger(log))

	eng, err := engine.New(engine.Options{
		Config: cfg,
		Window: window,
		Device: device,
		Log:    log,
	})
	if err != nil {
		return errors.Join(err, device.Close())
	}

	report := &Report{
		Width:          cfg.Window.Width,
		Height:         cfg.Window.Height,
		FramesInFlight: cfg.Renderer.FramesInFlight,
		SceneFile:      cfg.Scene.File,
		ScriptFile:     cfg.Script.File,
	}
	if frames > 0 {
		report.FrameTime.Samples = make([]time.Duration, 0, frames)
	}

	runtime.ReadMemStats(&report.MemStatsStart)
	log.Info("headless run started",
		zap.Uint64("frames", frames),
		zap.Int("entities", eng.Scene.Len()))

	start := time.Now()
	last := start
	var runErr error

Loop:
	for frames == 0 || eng.Frames() < frames {
		select {
		case <-ctx.Done():
			break Loop
		default:
		}

		now := time.Now()
		dt := now.Sub(last).Seconds()
		last = now

		if runErr = eng.Frame(dt); runErr != nil {
			break
		}
		report.FrameTime.Samples = append(report.FrameTime.Samples, time.Since(now))
	}

	report.TotalTime = time.Since(start)
	report.FrameTime.Finalize()
	report.Engine = eng.Stats()
	report.Device = device.Stats()
	runtime.ReadMemStats(&report.MemStatsEnd)

	closeErr := errors.Join(eng.Close(), device.Close())
	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return closeErr
	}

	log.Info("headless run finished",
		zap.Uint64("frames", report.Engine.Frames),
		zap.Duration("elapsed", report.TotalTime))
	return report.Generate(w)
}
