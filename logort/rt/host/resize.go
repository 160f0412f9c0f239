package host

import (
	"fmt"

	"github.com/alleriumlabs/particlelogo/logort/rt/core"
)

// DepthResizer is satisfied by gpu.DepthTarget.
type DepthResizer interface {
	Resize(width, height uint32) (replaced bool, err error)
}

// Resizer keeps the viewport, surface, camera, logo scale and depth target in
// step with the framebuffer.
type Resizer struct {
	Viewport  core.Viewport
	Tuning    *core.Tuning
	Camera    *core.CameraState
	Depth     DepthResizer
	Configure func(width, height int)
}

// Resize handles a framebuffer size change in physical pixels. A zero size is
// remembered but leaves every GPU target untouched.
func (r *Resizer) Resize(width, height int) error {
	if !r.Viewport.Resize(width, height) {
		return nil
	}
	if r.Configure != nil {
		r.Configure(width, height)
	}
	aspect := r.Viewport.Aspect()
	if r.Camera != nil {
		r.Camera.Update(aspect)
	}
	if r.Tuning != nil {
		r.Tuning.SetAspect(aspect)
	}
	if r.Depth != nil {
		if _, err := r.Depth.Resize(uint32(width), uint32(height)); err != nil {
			return fmt.Errorf("failed to resize depth texture: %w", err)
		}
	}
	return nil
}

// SetContentScale records a new content scale. The framebuffer size callback
// follows with the new backing size.
func (r *Resizer) SetContentScale(scale float32) {
	r.Viewport.ContentScale = scale
}
