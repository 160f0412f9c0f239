package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

const DepthFormat = wgpu.TextureFormatDepth24Plus

// DepthTarget is the depth attachment for the particle pass. It is never resized
// in place: a size change releases the old texture and allocates a new one.
type DepthTarget struct {
	Device  *wgpu.Device
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	Width   uint32
	Height  uint32
}

func NewDepthTarget(device *wgpu.Device, width, height uint32) (*DepthTarget, error) {
	d := &DepthTarget{Device: device}
	if err := d.allocate(width, height); err != nil {
		return nil, err
	}
	return d, nil
}

// Resize reports whether the texture was replaced.
func (d *DepthTarget) Resize(width, height uint32) (bool, error) {
	if width == 0 || height == 0 || (width == d.Width && height == d.Height) {
		return false, nil
	}
	d.Release()
	if err := d.allocate(width, height); err != nil {
		return false, err
	}
	return true, nil
}

func (d *DepthTarget) allocate(width, height uint32) error {
	tex, err := d.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Particle Depth",
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("failed to create depth texture %dx%d: %w", width, height, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("failed to create depth view: %w", err)
	}
	d.Texture, d.View = tex, view
	d.Width, d.Height = width, height
	return nil
}

func (d *DepthTarget) Attachment() *wgpu.RenderPassDepthStencilAttachment {
	return &wgpu.RenderPassDepthStencilAttachment{
		View:            d.View,
		DepthLoadOp:     wgpu.LoadOpClear,
		DepthStoreOp:    wgpu.StoreOpStore,
		DepthClearValue: 1.0,
	}
}

func (d *DepthTarget) Release() {
	if d.View != nil {
		d.View.Release()
		d.View = nil
	}
	if d.Texture != nil {
		d.Texture.Release()
		d.Texture = nil
	}
	d.Width, d.Height = 0, 0
}
