package core

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// TextVertex matches the vertex layout of text.wgsl (pos @0, uv @8, color @16).
type TextVertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]float32
}

const TextVertexByteSize = 32

type TextItem struct {
	Text     string
	Position [2]float32 // pixels from the top-left corner
	Scale    float32
	Color    [4]float32
}

type GlyphInfo struct {
	UVMin [2]float32
	UVMax [2]float32
	Size  [2]float32
	Off   [2]float32
	Adv   float32
}

// TextRenderer bakes printable ASCII into a single alpha atlas and lays out quads
// for the tuning panel.
type TextRenderer struct {
	AtlasImage *image.Alpha
	Glyphs     map[rune]GlyphInfo
	Face       font.Face
}

const textAtlasSize = 512

// NewTextRenderer uses the bundled Go Regular face.
func NewTextRenderer(fontSize float64) (*TextRenderer, error) {
	return NewTextRendererFromTTF(goregular.TTF, fontSize)
}

func NewTextRendererFromTTF(ttf []byte, fontSize float64) (*TextRenderer, error) {
	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}

	atlas, glyphs := bakeGlyphAtlas(face, textAtlasSize)
	return &TextRenderer{AtlasImage: atlas, Glyphs: glyphs, Face: face}, nil
}

const (
	atlasMargin  = 2
	atlasSpacing = 4
)

// bakeGlyphAtlas packs printable ASCII into shelves, left to right and top to
// bottom. Glyphs that do not fit are left out.
func bakeGlyphAtlas(face font.Face, size int) (*image.Alpha, map[rune]GlyphInfo) {
	atlas := image.NewAlpha(image.Rect(0, 0, size, size))
	glyphs := make(map[rune]GlyphInfo)
	inv := 1 / float32(size)

	penX, shelfY, shelfH := atlasMargin, atlasMargin, 0
	for r := rune(' '); r <= '~'; r++ {
		bounds, mask, maskPt, advance, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}
		gw, gh := bounds.Dx(), bounds.Dy()

		if penX+gw >= size {
			penX = atlasMargin
			shelfY += shelfH + atlasSpacing
			shelfH = 0
		}
		if shelfY+gh >= size {
			break
		}

		dst := image.Rect(penX, shelfY, penX+gw, shelfY+gh)
		draw.Draw(atlas, dst, mask, maskPt, draw.Src)

		glyphs[r] = GlyphInfo{
			UVMin: [2]float32{float32(dst.Min.X) * inv, float32(dst.Min.Y) * inv},
			UVMax: [2]float32{float32(dst.Max.X) * inv, float32(dst.Max.Y) * inv},
			Size:  [2]float32{float32(gw), float32(gh)},
			Off:   [2]float32{float32(bounds.Min.X), float32(bounds.Min.Y)},
			Adv:   float32(advance) / 64,
		}

		penX += gw + atlasSpacing
		shelfH = max(shelfH, gh)
	}
	return atlas, glyphs
}

// glyphQuad appends two triangles covering the pixel rectangle (x0,y0)-(x1,y1),
// converted to clip space.
func glyphQuad(dst []TextVertex, x0, y0, x1, y1, sw, sh float32, g GlyphInfo, color [4]float32) []TextVertex {
	toClip := func(x, y float32) [2]float32 {
		return [2]float32{x/sw*2 - 1, 1 - y/sh*2}
	}
	tl := TextVertex{Pos: toClip(x0, y0), UV: g.UVMin, Color: color}
	tr := TextVertex{Pos: toClip(x1, y0), UV: [2]float32{g.UVMax[0], g.UVMin[1]}, Color: color}
	bl := TextVertex{Pos: toClip(x0, y1), UV: [2]float32{g.UVMin[0], g.UVMax[1]}, Color: color}
	br := TextVertex{Pos: toClip(x1, y1), UV: g.UVMax, Color: color}
	return append(dst, tl, tr, bl, tr, br, bl)
}

// BuildVertices emits six vertices per visible glyph in clip space.
func (tr *TextRenderer) BuildVertices(items []TextItem, screenW, screenH int) []TextVertex {
	if tr == nil || screenW <= 0 || screenH <= 0 {
		return nil
	}
	sw, sh := float32(screenW), float32(screenH)
	metrics := tr.Face.Metrics()
	ascent := float32(metrics.Ascent.Ceil())
	lineHeight := float32(metrics.Height.Ceil())

	vertices := make([]TextVertex, 0, len(items)*6)
	for _, item := range items {
		s := item.Scale
		penX := item.Position[0]
		baseline := item.Position[1] + ascent*s

		for _, r := range item.Text {
			if r == '\n' {
				penX = item.Position[0]
				baseline += lineHeight * s
				continue
			}
			g, ok := tr.Glyphs[r]
			if !ok {
				continue
			}
			if g.Size[0] > 0 && g.Size[1] > 0 {
				x0 := penX + g.Off[0]*s
				y0 := baseline + g.Off[1]*s
				vertices = glyphQuad(vertices, x0, y0, x0+g.Size[0]*s, y0+g.Size[1]*s, sw, sh, g, item.Color)
			}
			penX += g.Adv * s
		}
	}
	return vertices
}

func (tr *TextRenderer) MeasureText(text string, scale float32) (float32, float32) {
	if tr == nil {
		return 0, 0
	}

	lineHeight := tr.LineHeight(scale)
	maxW := float32(0)
	currentW := float32(0)
	lines := 1

	for _, r := range text {
		if r == '\n' {
			maxW = max(maxW, currentW)
			currentW = 0
			lines++
			continue
		}
		if g, ok := tr.Glyphs[r]; ok {
			currentW += g.Adv * scale
		}
	}

	return max(maxW, currentW), lineHeight * float32(lines)
}

func (tr *TextRenderer) LineHeight(scale float32) float32 {
	if tr == nil {
		return 0
	}
	return float32(tr.Face.Metrics().Height.Ceil()) * scale
}
