package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gg"

	particlelogo "github.com/alleriumlabs/particlelogo"
	"github.com/alleriumlabs/particlelogo/logort/rt/app"
	"github.com/alleriumlabs/particlelogo/logort/rt/core"
	"github.com/alleriumlabs/particlelogo/logort/rt/fallback"
	"github.com/alleriumlabs/particlelogo/logort/rt/fallback/glhost"
	"github.com/alleriumlabs/particlelogo/logort/rt/host"
	"github.com/alleriumlabs/particlelogo/logort/rt/preview"
)

func init() {
	runtime.LockOSThread()
}

var (
	debug         = flag.Bool("debug", false, "Enable debug logging")
	settingsPath  = flag.String("settings", "settings.json", "Path to the JSON settings file")
	logoPath      = flag.String("logo", "", "Logo image (overrides effect.logoPath)")
	numParticles  = flag.Int("particles", 0, "Particle count (overrides effect.numParticles)")
	forceFallback = flag.Bool("force-fallback", false, "Skip the particle effect and show the static logo")
	previewPath   = flag.String("preview", "", "Render a CPU preview PNG to this path and exit")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	settings, err := particlelogo.LoadSettings(*settingsPath)
	logger := particlelogo.NewDefaultLogger("logort", settings.Debug || *debug)
	if err != nil {
		logger.Errorf("invalid settings: %v", err)
		return 1
	}
	if *logoPath != "" {
		settings.Effect.LogoPath = *logoPath
	}
	if *numParticles > 0 {
		settings.Effect.NumParticles = *numParticles
	}
	if *forceFallback {
		settings.Effect.ForceFallback = true
	}
	if logger.DebugEnabled() {
		gg.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if *previewPath != "" {
		opts := preview.DefaultOptions()
		opts.Width, opts.Height = settings.Window.Width, settings.Window.Height
		opts.NumParticles = settings.Effect.NumParticles
		opts.DeltaTime = settings.Tuning.DeltaTime
		opts.Brightness = settings.Tuning.Brightness
		if err := preview.WritePNG(settings.Effect.LogoPath, *previewPath, opts); err != nil {
			logger.Errorf("%v", err)
			return 1
		}
		logger.Infof("preview written to %s", *previewPath)
		return 0
	}

	toneMapping, _ := core.ParseToneMappingMode(settings.Tuning.ToneMapping)
	tuning := core.NewTuning(core.SimulationParameters{
		Simulate:           settings.Tuning.Simulate,
		DeltaTime:          settings.Tuning.DeltaTime,
		ToneMapping:        toneMapping,
		Brightness:         settings.Tuning.Brightness,
		RespawnWhilePaused: settings.Tuning.RespawnWhilePaused,
	})

	if err := glfw.Init(); err != nil {
		logger.Errorf("failed to initialise GLFW: %v", err)
		return 1
	}
	defer glfw.Terminate()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fallbackWindow := glhost.New(settings.Window, logger)
	defer fallbackWindow.Release()

	bootstrap := &host.Bootstrap{
		Logger:        logger,
		ForceFallback: settings.Effect.ForceFallback,
		Probe:         app.Probe,
		NewEffect:     app.NewEffectFactory(settings, tuning, logger),
		Fallback:      fallback.NewRenderer(fallbackWindow, settings.Fallback, logger),
	}
	outcome := bootstrap.Run(ctx)
	logger.Debugf("bootstrap finished: %s", outcome)

	if outcome == host.OutcomeFallback {
		if err := fallbackWindow.Run(ctx); err != nil {
			logger.Errorf("%v", err)
		}
	}
	return 0
}
