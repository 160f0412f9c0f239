// Package preview renders the particle logo on the CPU, without a GPU device,
// using the host-side reference of the simulate and render stages.
package preview

import (
	"fmt"
	"image"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gg"

	"github.com/alleriumlabs/particlelogo/logort/rt/asset"
	"github.com/alleriumlabs/particlelogo/logort/rt/core"
)

type Options struct {
	Width        int
	Height       int
	Frames       int
	NumParticles int
	DeltaTime    float32
	Brightness   float32
	Seed         uint64
}

func DefaultOptions() Options {
	return Options{
		Width:        1280,
		Height:       720,
		Frames:       120,
		NumParticles: core.DefaultParticleCount,
		DeltaTime:    0.04,
		Brightness:   1,
		Seed:         1,
	}
}

// Simulate runs opts.Frames simulation steps from an empty particle buffer.
func Simulate(m *core.ProbabilityMap, opts Options) []core.Particle {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x5deece66d))
	aspect := float32(opts.Width) / float32(opts.Height)
	particles := make([]core.Particle, opts.NumParticles)
	for frame := 0; frame < opts.Frames; frame++ {
		core.Step(particles, core.SimUniform{
			DeltaTime:  opts.DeltaTime,
			Brightness: opts.Brightness,
			Aspect:     aspect,
			LogoScale:  core.CalculateLogoScale(aspect),
			Seed:       core.NewSeeds(rng),
		}, m)
	}
	return particles
}

// Rasterize splats the particles the way the billboard pipeline draws them:
// round quads, colour blended src*srcAlpha + dst over a black clear.
func Rasterize(particles []core.Particle, cam *core.CameraState, width, height int) *image.RGBA {
	accum := make([]float32, width*height*3)
	for i := range particles {
		p := &particles[i]
		if p.Color[3] <= 0 {
			continue
		}
		pos := mgl32.Vec3(p.Position)
		cx, cy, ok := project(cam.MVP, pos, width, height)
		if !ok {
			continue
		}
		ex, ey, _ := project(cam.MVP, pos.Add(cam.Right.Mul(0.01)), width, height)
		radius := math.Hypot(ex-cx, ey-cy)
		if radius < 0.5 {
			radius = 0.5
		}
		splat(accum, width, height, cx, cy, radius, p.Color)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		img.Pix[i*4+0] = toByte(accum[i*3+0])
		img.Pix[i*4+1] = toByte(accum[i*3+1])
		img.Pix[i*4+2] = toByte(accum[i*3+2])
		img.Pix[i*4+3] = 255
	}
	return img
}

func project(mvp mgl32.Mat4, pos mgl32.Vec3, width, height int) (x, y float64, ok bool) {
	clip := mvp.Mul4x1(pos.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, false
	}
	ndcX := float64(clip.X() / clip.W())
	ndcY := float64(clip.Y() / clip.W())
	return (ndcX*0.5 + 0.5) * float64(width), (0.5 - ndcY*0.5) * float64(height), true
}

func splat(accum []float32, width, height int, cx, cy, radius float64, c [4]float32) {
	x0 := max(int(math.Floor(cx-radius)), 0)
	x1 := min(int(math.Ceil(cx+radius)), width-1)
	y0 := max(int(math.Floor(cy-radius)), 0)
	y1 := min(int(math.Ceil(cy+radius)), height-1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy) / radius
			a := c[3] * float32(math.Max(1-d, 0))
			if a <= 0 {
				continue
			}
			o := (x + y*width) * 3
			accum[o+0] += c[0] * a
			accum[o+1] += c[1] * a
			accum[o+2] += c[2] * a
		}
	}
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Render stages the logo at path, simulates and rasterises it onto a gg canvas.
// The caller owns the returned context.
func Render(path string, opts Options) (*gg.Context, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("preview size must be positive, got %dx%d", opts.Width, opts.Height)
	}
	staged, err := asset.PrepareLogo(path)
	if err != nil {
		return nil, err
	}
	m, err := staged.ProbabilityMap()
	if err != nil {
		return nil, err
	}

	particles := Simulate(m, opts)
	cam := core.NewCameraState()
	cam.Update(float32(opts.Width) / float32(opts.Height))

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.ClearWithColor(gg.Black)
	dc.DrawImage(gg.ImageBufFromImage(Rasterize(particles, cam, opts.Width, opts.Height)), 0, 0)
	return dc, nil
}

// WritePNG renders and saves the preview.
func WritePNG(logoPath, outPath string, opts Options) error {
	dc, err := Render(logoPath, opts)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.SavePNG(outPath); err != nil {
		return fmt.Errorf("failed to write preview %s: %w", outPath, err)
	}
	return nil
}
