package core

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Calibration anchors for the logo footprint. A square viewport shows the logo at
// 2.3 world units, a 1.547:1 viewport (and anything wider) at 3.6.
const (
	aspectNarrow    = 1.0
	aspectWide      = 1.547
	logoScaleNarrow = 2.3
	logoScaleWide   = 3.6

	baseCameraTilt = -0.2 * math.Pi
	tiltPerAspect  = 0.15

	CameraFovY     = 2 * math.Pi / 5
	CameraNear     = 1.0
	CameraFar      = 100.0
	CameraDistance = 3.0

	RenderUniformByteSize = 96
)

func CalculateLogoScale(aspect float32) float32 {
	if aspect <= aspectNarrow {
		return logoScaleNarrow
	}
	if aspect >= aspectWide {
		return logoScaleWide
	}
	t := (aspect - aspectNarrow) / (aspectWide - aspectNarrow)
	return logoScaleNarrow + t*(logoScaleWide-logoScaleNarrow)
}

// CalculateCameraTilt returns the rotation about X in radians. Wider screens tilt
// further back.
func CalculateCameraTilt(aspect float32) float32 {
	return float32(baseCameraTilt) - (aspect-1.0)*tiltPerAspect
}

// clipDepthRemap maps OpenGL clip depth [-1,1] from mgl32.Perspective onto the
// [0,1] range WebGPU expects.
var clipDepthRemap = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

type CameraState struct {
	Aspect     float32
	Tilt       float32
	Projection mgl32.Mat4
	View       mgl32.Mat4
	MVP        mgl32.Mat4
	Right      mgl32.Vec3
	Up         mgl32.Vec3
}

func NewCameraState() *CameraState {
	c := &CameraState{}
	c.Update(1)
	return c
}

// Update recomputes every matrix from the aspect ratio. Nothing carries over from
// the previous frame.
func (c *CameraState) Update(aspect float32) {
	if aspect <= 0 {
		aspect = 1
	}
	c.Aspect = aspect
	c.Tilt = CalculateCameraTilt(aspect)
	c.Projection = clipDepthRemap.Mul4(mgl32.Perspective(CameraFovY, aspect, CameraNear, CameraFar))
	c.View = mgl32.Translate3D(0, 0, -CameraDistance).Mul4(mgl32.HomogRotate3DX(c.Tilt))
	c.MVP = c.Projection.Mul4(c.View)
	c.Right = c.View.Row(0).Vec3()
	c.Up = c.View.Row(1).Vec3()
}

// UniformBytes packs the render uniform:
//
//	struct RenderParams {
//	  mvp   : mat4x4f, -- 64
//	  right : vec3f,   -- 80 (padded)
//	  up    : vec3f,   -- 96 (padded)
//	}
func (c *CameraState) UniformBytes() []byte {
	buf := make([]byte, RenderUniformByteSize)
	for i, v := range c.MVP {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(c.Right[i]))
		binary.LittleEndian.PutUint32(buf[80+i*4:], math.Float32bits(c.Up[i]))
	}
	return buf
}
