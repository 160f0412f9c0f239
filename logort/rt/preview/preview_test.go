package preview

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alleriumlabs/particlelogo/logort/rt/core"
)

func writeRedLogo(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "logo.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestSimulateSpawnsInsideLogo(t *testing.T) {
	rgba := make([]byte, 4*4*4)
	for i := 0; i < len(rgba); i += 4 {
		rgba[i], rgba[i+3] = 255, 255
	}
	m, err := core.BuildProbabilityMap(4, rgba)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.NumParticles = 500
	opts.Frames = 1
	particles := Simulate(m, opts)

	half := core.CalculateLogoScale(float32(opts.Width)/float32(opts.Height)) / 2
	for i, p := range particles {
		assert.LessOrEqual(t, p.Position[0], half, "particle %d", i)
		assert.GreaterOrEqual(t, p.Position[0], -half, "particle %d", i)
		assert.Equal(t, float32(0), p.Position[2])
		assert.GreaterOrEqual(t, p.Lifetime, float32(0.5))
		assert.Equal(t, float32(1), p.Color[0])
		assert.Equal(t, float32(0), p.Color[1])
	}
}

func TestSimulateIsDeterministicForSeed(t *testing.T) {
	rgba := make([]byte, 2*2*4)
	for i := 0; i < len(rgba); i++ {
		rgba[i] = 255
	}
	m, err := core.BuildProbabilityMap(2, rgba)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.NumParticles = 64
	opts.Frames = 5
	assert.Equal(t, Simulate(m, opts), Simulate(m, opts))
}

func TestRenderRedLogo(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height = 160, 90
	opts.NumParticles = 2000
	opts.Frames = 10

	dc, err := Render(writeRedLogo(t), opts)
	require.NoError(t, err)
	defer dc.Close()

	img := dc.Image().(*image.RGBA)
	lit := 0
	for y := 0; y < opts.Height; y++ {
		for x := 0; x < opts.Width; x++ {
			c := img.RGBAAt(x, y)
			require.Zero(t, c.G, "(%d,%d)", x, y)
			require.Zero(t, c.B, "(%d,%d)", x, y)
			if c.R > 0 {
				lit++
			}
		}
	}
	assert.Greater(t, lit, 0)
}

func TestRenderRejectsBadInput(t *testing.T) {
	_, err := Render(writeRedLogo(t), Options{Width: 0, Height: 10})
	assert.Error(t, err)

	_, err = Render(filepath.Join(t.TempDir(), "missing.png"), DefaultOptions())
	assert.Error(t, err)
}

func TestWritePNG(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height = 64, 64
	opts.NumParticles = 100
	opts.Frames = 2
	out := filepath.Join(t.TempDir(), "preview.png")

	require.NoError(t, WritePNG(writeRedLogo(t), out, opts))
	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
}
