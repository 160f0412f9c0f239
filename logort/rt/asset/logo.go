// Package asset prepares the logo bitmap for the probability-map build: decode,
// centre on a square power-of-two canvas, and hand back straight-alpha RGBA8.
package asset

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/gogpu/gg"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	particlelogo "github.com/alleriumlabs/particlelogo"
	"github.com/alleriumlabs/particlelogo/logort/rt/core"
)

var ErrEmptyImage = errors.New("logo image has no pixels")

// Staged is the padded logo ready for upload. Pixels are non-premultiplied RGBA8,
// row major, Size*Size*4 bytes.
type Staged struct {
	Size    int
	Padding core.Padding
	Pixels  []byte
	Source  image.Rectangle
}

// LoadLogo decodes a PNG, JPEG, WebP or BMP file.
func LoadLogo(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open logo: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode logo %s: %w", path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%s (%s): %w", path, format, ErrEmptyImage)
	}
	return img, nil
}

// NewStagingContext allocates the square canvas an image of w x h pads into.
func NewStagingContext(w, h int) (*gg.Context, core.Padding, error) {
	pad, err := core.ComputePadding(w, h)
	if err != nil {
		return nil, core.Padding{}, err
	}
	return gg.NewContext(pad.TargetSize, pad.TargetSize), pad, nil
}

// Stage draws img centred onto dc, which must be the square canvas for img's
// padding. A nil dc reports ErrStagingContext.
func Stage(dc *gg.Context, img image.Image) (*Staged, error) {
	if dc == nil {
		return nil, particlelogo.ErrStagingContext
	}
	b := img.Bounds()
	pad, err := core.ComputePadding(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	if dc.Width() != pad.TargetSize || dc.Height() != pad.TargetSize {
		return nil, fmt.Errorf("staging canvas is %dx%d, need %dx%d",
			dc.Width(), dc.Height(), pad.TargetSize, pad.TargetSize)
	}

	dc.Clear()
	dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:             pad.OffsetX,
		Y:             pad.OffsetY,
		DstWidth:      float64(b.Dx()),
		DstHeight:     float64(b.Dy()),
		Interpolation: gg.InterpBilinear,
		Opacity:       1,
		BlendMode:     gg.BlendNormal,
	})

	// The canvas is premultiplied; the shaders expect straight alpha.
	straight := image.NewNRGBA(image.Rect(0, 0, pad.TargetSize, pad.TargetSize))
	draw.Draw(straight, straight.Bounds(), dc.Image(), image.Point{}, draw.Src)

	return &Staged{
		Size:    pad.TargetSize,
		Padding: pad,
		Pixels:  straight.Pix,
		Source:  b,
	}, nil
}

// PrepareLogo loads path and stages it on a fresh canvas.
func PrepareLogo(path string) (*Staged, error) {
	img, err := LoadLogo(path)
	if err != nil {
		return nil, err
	}
	dc, _, err := NewStagingContext(img.Bounds().Dx(), img.Bounds().Dy())
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	return Stage(dc, img)
}

// ProbabilityMap builds the host-side reference map for the staged pixels.
func (s *Staged) ProbabilityMap() (*core.ProbabilityMap, error) {
	return core.BuildProbabilityMap(s.Size, s.Pixels)
}
