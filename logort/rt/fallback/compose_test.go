package fallback

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whiteNode(w, h int) *Node {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	return &Node{ID: NodeID, Image: img, Width: w, Height: h}
}

func TestComposeCentresLogo(t *testing.T) {
	dc := gg.NewContext(400, 300)
	defer dc.Close()

	require.NoError(t, Compose(dc, whiteNode(200, 100), FrameAt(FloatPeriod)))
	img := dc.Image().(*image.RGBA)

	centre := img.RGBAAt(200, 150)
	assert.Equal(t, uint8(255), centre.A)
	assert.Equal(t, uint8(255), centre.R)

	assert.Equal(t, uint8(0), img.RGBAAt(0, 0).A, "corners stay clear of logo and glow")
	assert.Equal(t, uint8(0), img.RGBAAt(399, 299).A)
}

func TestComposeGlowIsTinted(t *testing.T) {
	dc := gg.NewContext(400, 300)
	defer dc.Close()

	require.NoError(t, Compose(dc, whiteNode(200, 100), FrameAt(FloatPeriod)))
	img := dc.Image().(*image.RGBA)

	// Just below the logo, inside the glow.
	glow := img.RGBAAt(200, 150+50+8)
	assert.Greater(t, glow.A, uint8(0))
	assert.Greater(t, glow.B, glow.R, "glow is blue tinted")
}

func TestComposeWithoutImageClears(t *testing.T) {
	dc := gg.NewContext(64, 64)
	defer dc.Close()

	require.NoError(t, Compose(dc, &Node{ID: NodeID}, FrameAt(0)))
	img := dc.Image().(*image.RGBA)
	assert.Equal(t, uint8(0), img.RGBAAt(32, 32).A)
}
