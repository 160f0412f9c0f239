package fallback

import (
	"math"
	"time"
)

const (
	MaxImageWidth  = 400
	MaxImageHeight = 300

	FloatPeriod    = 3 * time.Second
	FadeInDuration = 1 * time.Second

	floatRise      = 10.0
	floatScalePeak = 1.02
	fadeStartScale = 0.8
	glowRadiusRest = 20.0
	glowRadiusPeak = 30.0
	glowAlphaRest  = 0.6
	glowAlphaPeak  = 0.8
)

// GlowColor is the drop-shadow tint, rgb(70, 179, 230).
var GlowColor = [3]float64{70.0 / 255, 179.0 / 255, 230.0 / 255}

// Frame is the presentation state of the fallback logo at one instant.
type Frame struct {
	OffsetY    float64 // pixels, negative is up
	Scale      float64
	Opacity    float64
	GlowRadius float64
	GlowAlpha  float64
}

// FloatFrame evaluates the infinite logoFloat animation: rest at 0% and 100%,
// peak at 50%, ease-in-out between keyframes.
func FloatFrame(elapsed time.Duration) Frame {
	if elapsed < 0 {
		elapsed = 0
	}
	half := float64(FloatPeriod) / 2
	u := float64(elapsed%FloatPeriod) / half

	var k float64
	if u <= 1 {
		k = easeInOut.at(u)
	} else {
		k = 1 - easeInOut.at(u-1)
	}
	return Frame{
		OffsetY:    -floatRise * k,
		Scale:      lerp(1, floatScalePeak, k),
		Opacity:    1,
		GlowRadius: lerp(glowRadiusRest, glowRadiusPeak, k),
		GlowAlpha:  lerp(glowAlphaRest, glowAlphaPeak, k),
	}
}

// FadeIn evaluates the one-shot fadeIn animation on the container. Past its
// duration it holds the final values.
func FadeIn(elapsed time.Duration) (opacity, scale float64) {
	if elapsed >= FadeInDuration {
		return 1, 1
	}
	if elapsed < 0 {
		elapsed = 0
	}
	k := easeOut.at(float64(elapsed) / float64(FadeInDuration))
	return k, lerp(fadeStartScale, 1, k)
}

// FrameAt combines the container fade with the image float. Transforms compose
// because they sit on nested nodes.
func FrameAt(elapsed time.Duration) Frame {
	f := FloatFrame(elapsed)
	opacity, scale := FadeIn(elapsed)
	f.Opacity = opacity
	f.Scale *= scale
	f.OffsetY *= scale
	return f
}

// FitSize scales w x h down (never up) to fit MaxImageWidth x MaxImageHeight.
func FitSize(w, h int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	s := math.Min(1, math.Min(float64(MaxImageWidth)/float64(w), float64(MaxImageHeight)/float64(h)))
	return int(math.Round(float64(w) * s)), int(math.Round(float64(h) * s))
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// cubicBezier is a CSS timing function with end points (0,0) and (1,1).
type cubicBezier struct {
	x1, y1, x2, y2 float64
}

var (
	easeInOut = cubicBezier{0.42, 0, 0.58, 1}
	easeOut   = cubicBezier{0, 0, 0.58, 1}
)

func bezierSample(a1, a2, t float64) float64 {
	return ((1-3*a2+3*a1)*t+(3*a2-6*a1))*t*t + 3*a1*t
}

func bezierSlope(a1, a2, t float64) float64 {
	return 3*(1-3*a2+3*a1)*t*t + 2*(3*a2-6*a1)*t + 3*a1
}

func (c cubicBezier) at(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	t := x
	for i := 0; i < 8; i++ {
		dx := bezierSample(c.x1, c.x2, t) - x
		if math.Abs(dx) < 1e-7 {
			return bezierSample(c.y1, c.y2, t)
		}
		d := bezierSlope(c.x1, c.x2, t)
		if math.Abs(d) < 1e-6 {
			break
		}
		t = math.Min(1, math.Max(0, t-dx/d))
	}

	lo, hi := 0.0, 1.0
	t = x
	for i := 0; i < 64; i++ {
		v := bezierSample(c.x1, c.x2, t)
		if math.Abs(v-x) < 1e-7 {
			break
		}
		if v < x {
			lo = t
		} else {
			hi = t
		}
		t = (lo + hi) / 2
	}
	return bezierSample(c.y1, c.y2, t)
}
