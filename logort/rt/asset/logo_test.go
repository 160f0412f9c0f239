package asset

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	particlelogo "github.com/alleriumlabs/particlelogo"
)

func writeTestPNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
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

func TestPrepareLogoPadsToPowerOfTwo(t *testing.T) {
	staged, err := PrepareLogo(writeTestPNG(t, 100, 50))
	require.NoError(t, err)

	assert.Equal(t, 128, staged.Size)
	assert.Equal(t, 14.0, staged.Padding.OffsetX)
	assert.Equal(t, 39.0, staged.Padding.OffsetY)
	require.Len(t, staged.Pixels, 128*128*4)

	px := func(x, y int) []byte {
		i := (x + y*staged.Size) * 4
		return staged.Pixels[i : i+4]
	}
	assert.Equal(t, []byte{255, 0, 0, 255}, px(64, 64), "centre of the logo")
	assert.Equal(t, byte(0), px(0, 0)[3], "corner padding stays transparent")
	assert.Equal(t, byte(0), px(127, 127)[3])
	assert.Equal(t, byte(0), px(64, 10)[3], "top margin stays transparent")
}

func TestStagedProbabilityMap(t *testing.T) {
	staged, err := PrepareLogo(writeTestPNG(t, 16, 16))
	require.NoError(t, err)
	assert.Equal(t, 16, staged.Size)

	m, err := staged.ProbabilityMap()
	require.NoError(t, err)
	assert.Equal(t, 5, m.Levels())
	assert.InDelta(t, 256, m.TotalMass(), 8, "edge texels may be filtered")
}

func TestStageWithoutContext(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	_, err := Stage(nil, img)
	assert.ErrorIs(t, err, particlelogo.ErrStagingContext)
}

func TestStageRejectsWrongCanvas(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 50))
	dc := gg.NewContext(64, 64)
	defer dc.Close()
	_, err := Stage(dc, img)
	assert.Error(t, err)
}

func TestLoadLogoErrors(t *testing.T) {
	_, err := LoadLogo(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	garbage := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))
	_, err = LoadLogo(garbage)
	assert.Error(t, err)
}
