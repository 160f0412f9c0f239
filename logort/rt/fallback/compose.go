package fallback

import (
	"github.com/gogpu/gg"
)

// Compose rasterises node centred on dc with the given frame. The glow is a
// radial falloff behind the image, tinted with GlowColor.
func Compose(dc *gg.Context, node *Node, frame Frame) error {
	dc.Clear()
	if node == nil || node.Image == nil || node.Width == 0 || node.Height == 0 {
		return nil
	}

	w := float64(node.Width) * frame.Scale
	h := float64(node.Height) * frame.Scale
	cx := float64(dc.Width()) / 2
	cy := float64(dc.Height())/2 + frame.OffsetY

	if frame.GlowAlpha > 0 && frame.GlowRadius > 0 {
		inner := min(w, h) / 2
		outer := max(w, h)/2 + frame.GlowRadius
		glow := gg.NewRadialGradientBrush(cx, cy, inner*0.5, outer).
			AddColorStop(0, gg.RGBA2(GlowColor[0], GlowColor[1], GlowColor[2], frame.GlowAlpha*frame.Opacity)).
			AddColorStop(1, gg.RGBA2(GlowColor[0], GlowColor[1], GlowColor[2], 0))
		dc.SetFillBrush(glow)
		dc.DrawCircle(cx, cy, outer)
		if err := dc.Fill(); err != nil {
			return err
		}
	}

	if frame.Opacity <= 0 {
		return nil
	}
	dc.DrawImageEx(gg.ImageBufFromImage(node.Image), gg.DrawImageOptions{
		X:             cx - w/2,
		Y:             cy - h/2,
		DstWidth:      w,
		DstHeight:     h,
		Interpolation: gg.InterpBilinear,
		Opacity:       frame.Opacity,
		BlendMode:     gg.BlendNormal,
	})
	return nil
}
