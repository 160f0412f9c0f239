package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	particlelogo "github.com/alleriumlabs/particlelogo"
	"github.com/alleriumlabs/particlelogo/logort/rt/asset"
	"github.com/alleriumlabs/particlelogo/logort/rt/core"
	"github.com/alleriumlabs/particlelogo/logort/rt/gpu"
	"github.com/alleriumlabs/particlelogo/logort/rt/host"
)

const panelFontSize = 16

// App is the particle logo effect bound to one GLFW window. It implements
// host.Effect.
type App struct {
	Window   *glfw.Window
	Settings particlelogo.Settings
	Logger   particlelogo.Logger

	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	Logo      *gpu.LogoTexture
	Particles *gpu.ParticleSystem
	Depth     *gpu.DepthTarget
	PanelPass *gpu.PanelPass

	Tuning   *core.Tuning
	Camera   *core.CameraState
	Panel    *host.Panel
	Profiler *host.Profiler
	Loop     *host.Loop

	TextRenderer *core.TextRenderer

	resizer *host.Resizer
	rng     *rand.Rand
	formats []wgpu.TextureFormat
}

func NewApp(window *glfw.Window, settings particlelogo.Settings, tuning *core.Tuning, logger particlelogo.Logger) *App {
	logger = particlelogo.OrNop(logger)
	return &App{
		Window:   window,
		Settings: settings,
		Logger:   logger,
		Tuning:   tuning,
		Camera:   core.NewCameraState(),
		Profiler: host.NewProfiler(),
		Loop:     host.NewLoop(logger),
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
	}
}

// Init acquires the device, builds the probability map once and creates every
// per-frame resource. Errors wrap ErrMissingTarget or ErrCapabilityUnavailable
// when the effect should fall back.
func (a *App) Init(ctx context.Context) error {
	if a.Window == nil {
		return particlelogo.ErrMissingTarget
	}

	a.Instance = wgpu.CreateInstance(nil)
	if a.Instance == nil {
		return fmt.Errorf("%w: no instance", particlelogo.ErrCapabilityUnavailable)
	}

	a.Surface = a.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.Window))
	if a.Surface == nil {
		return fmt.Errorf("%w: no surface for window", particlelogo.ErrMissingTarget)
	}

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil || adapter == nil {
		return fmt.Errorf("%w: adapter: %v", particlelogo.ErrCapabilityUnavailable, err)
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil || a.Device == nil {
		return fmt.Errorf("%w: device: %v", particlelogo.ErrCapabilityUnavailable, err)
	}
	a.Queue = a.Device.GetQueue()

	if err := ctx.Err(); err != nil {
		return err
	}

	// Config
	width, height := a.Window.GetFramebufferSize()
	caps := a.Surface.GetCapabilities(adapter)
	a.formats = caps.Formats
	format, _ := SurfaceFormatFor(a.Tuning.Snapshot().ToneMapping, a.formats)
	alphaMode := wgpu.CompositeAlphaModeAuto
	if len(caps.AlphaModes) > 0 {
		alphaMode = caps.AlphaModes[0]
	}
	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   alphaMode,
	}
	if width > 0 && height > 0 {
		a.Surface.Configure(adapter, a.Device, a.Config)
	}

	// Probability map, built once.
	staged, err := asset.PrepareLogo(a.Settings.Effect.LogoPath)
	if err != nil {
		return fmt.Errorf("failed to prepare logo: %w", err)
	}
	a.Logger.Debugf("logo %s staged at %dx%d, offset (%.1f, %.1f)",
		staged.Source, staged.Size, staged.Size, staged.Padding.OffsetX, staged.Padding.OffsetY)

	a.Logo, err = gpu.NewLogoTexture(a.Device, a.Queue, staged)
	if err != nil {
		return err
	}
	builder, err := gpu.NewProbabilityMapPass(a.Device, a.Queue)
	if err != nil {
		return err
	}
	err = builder.Build(a.Logo)
	builder.Release()
	if err != nil {
		return err
	}

	a.Particles, err = gpu.NewParticleSystem(a.Device, a.Queue, a.Settings.Effect.NumParticles, a.Logo, format)
	if err != nil {
		return err
	}
	a.Profiler.SetCount("particles", a.Particles.NumParticles)

	a.Depth, err = gpu.NewDepthTarget(a.Device, uint32(max(width, 1)), uint32(max(height, 1)))
	if err != nil {
		return err
	}

	a.setupPanel(format)

	a.Panel = host.NewPanel(a.Tuning, a.Profiler, a.Settings.Tuning.ShowPanel, a.applyToneMapping)
	a.Panel.SetDisplayHDR(SupportsHDR(a.formats))

	scale, _ := a.Window.GetContentScale()
	a.resizer = &host.Resizer{
		Tuning:    a.Tuning,
		Camera:    a.Camera,
		Depth:     a.Depth,
		Configure: a.configureSurface,
	}
	a.resizer.SetContentScale(scale)
	a.resizer.Viewport.Width, a.resizer.Viewport.Height = width, height
	a.Camera.Update(a.resizer.Viewport.Aspect())
	a.Tuning.SetAspect(a.resizer.Viewport.Aspect())

	a.Logger.Infof("particle effect ready: %d particles, %dx%d, format %v", a.Particles.NumParticles, width, height, format)
	return nil
}

// setupPanel is best effort: the effect runs without the overlay if the font or
// the text pipeline cannot be created.
func (a *App) setupPanel(format wgpu.TextureFormat) {
	tr, err := core.NewTextRenderer(panelFontSize)
	if err != nil {
		a.Logger.Warnf("Failed to initialize text renderer: %v", err)
		return
	}
	a.TextRenderer = tr
	a.PanelPass, err = gpu.NewPanelPass(a.Device, a.Queue, tr, format)
	if err != nil {
		a.Logger.Warnf("Failed to initialize panel overlay: %v", err)
		a.PanelPass = nil
	}
}

func (a *App) configureSurface(width, height int) {
	a.Config.Width = uint32(width)
	a.Config.Height = uint32(height)
	a.Surface.Configure(a.Adapter, a.Device, a.Config)
}

// applyToneMapping reconfigures the surface for mode and rebuilds the pipelines
// that target it. It reports whether the display can show HDR.
func (a *App) applyToneMapping(mode core.ToneMappingMode) bool {
	format, hdr := SurfaceFormatFor(mode, a.formats)
	a.Config.Format = format
	if a.Config.Width > 0 && a.Config.Height > 0 {
		a.Surface.Configure(a.Adapter, a.Device, a.Config)
	}
	if err := a.Particles.RebuildRenderPipeline(format); err != nil {
		a.Logger.Errorf("tone mapping %s: %v", mode, err)
		a.Loop.Stop()
	}
	if a.PanelPass != nil {
		if err := a.PanelPass.RebuildPipeline(format); err != nil {
			a.Logger.Warnf("panel overlay disabled: %v", err)
			a.PanelPass.Release()
			a.PanelPass = nil
		}
	}
	a.Logger.Debugf("tone mapping %s, surface format %v, hdr %v", mode, format, hdr)
	return hdr
}

// Resize follows the framebuffer. Sizes are physical pixels.
func (a *App) Resize(width, height int) {
	if err := a.resizer.Resize(width, height); err != nil {
		a.Logger.Errorf("%v", err)
		a.Loop.Stop()
	}
}

// refreshDisplayCapability re-queries the surface after a monitor or content
// scale change.
func (a *App) refreshDisplayCapability() {
	caps := a.Surface.GetCapabilities(a.Adapter)
	a.formats = caps.Formats
	a.Panel.SetDisplayHDR(SupportsHDR(a.formats))
}

// Frame encodes simulate, particles and panel into one submission and presents.
// It never waits for the GPU.
func (a *App) Frame() error {
	if !a.resizer.Viewport.Valid() {
		return nil
	}
	a.Profiler.BeginScope("encode")

	params := a.Tuning.Snapshot()
	a.Particles.Update(core.SimUniform{
		DeltaTime:          params.FrameDeltaTime(),
		Brightness:         params.Brightness,
		Aspect:             a.resizer.Viewport.Aspect(),
		LogoScale:          params.LogoScale,
		Seed:               core.NewSeeds(a.rng),
		RespawnWhilePaused: params.RespawnWhilePaused,
	}, a.Camera)

	if a.PanelPass != nil {
		items := a.Panel.TextItems(a.TextRenderer.LineHeight(1))
		if err := a.PanelPass.Update(items, a.resizer.Viewport.Width, a.resizer.Viewport.Height); err != nil {
			a.Logger.Warnf("%v", err)
		}
	}

	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("GetCurrentTexture failed: %w", err)
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("CreateView failed: %w", err)
	}
	defer view.Release()

	encoder, err := a.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("CreateCommandEncoder failed: %w", err)
	}

	if err := a.Particles.EncodeSimulate(encoder); err != nil {
		return err
	}

	rPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
		DepthStencilAttachment: a.Depth.Attachment(),
	})
	a.Particles.EncodeRender(rPass)
	if err := rPass.End(); err != nil {
		return fmt.Errorf("render pass End failed: %w", err)
	}

	if a.PanelPass != nil {
		if err := a.PanelPass.Encode(encoder, view); err != nil {
			return err
		}
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("encoder Finish failed: %w", err)
	}
	a.Queue.Submit(cmd)
	a.Surface.Present()

	a.Profiler.EndScope("encode")
	a.Profiler.FrameDone()
	return nil
}

// Run installs the window callbacks and drives the frame loop until the window
// closes, ctx ends or a frame fails.
func (a *App) Run(ctx context.Context) error {
	a.Window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		a.Resize(width, height)
	})
	a.Window.SetContentScaleCallback(func(w *glfw.Window, x, y float32) {
		a.resizer.SetContentScale(x)
		a.refreshDisplayCapability()
	})
	glfw.SetMonitorCallback(func(m *glfw.Monitor, event glfw.PeripheralEvent) {
		a.refreshDisplayCapability()
	})
	defer glfw.SetMonitorCallback(nil)

	a.Window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
			return
		}
		if action == glfw.Press || action == glfw.Repeat {
			a.Panel.HandleKey(PanelKey(key))
		}
	})

	return a.Loop.Run(ctx, func() error {
		glfw.PollEvents()
		if a.Window.ShouldClose() {
			a.Loop.Stop()
			return nil
		}
		return a.Frame()
	})
}

func (a *App) Release() {
	if a.Panel != nil {
		a.Panel.Close()
	}
	if a.PanelPass != nil {
		a.PanelPass.Release()
		a.PanelPass = nil
	}
	if a.Particles != nil {
		a.Particles.Release()
		a.Particles = nil
	}
	if a.Depth != nil {
		a.Depth.Release()
		a.Depth = nil
	}
	if a.Logo != nil {
		a.Logo.Release()
		a.Logo = nil
	}
	if a.Queue != nil {
		a.Queue.Release()
		a.Queue = nil
	}
	if a.Device != nil {
		a.Device.Release()
		a.Device = nil
	}
	if a.Surface != nil {
		a.Surface.Release()
		a.Surface = nil
	}
	if a.Adapter != nil {
		a.Adapter.Release()
		a.Adapter = nil
	}
	if a.Instance != nil {
		a.Instance.Release()
		a.Instance = nil
	}
}
