package app

import (
	"context"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/alleriumlabs/particlelogo/logort/rt/host"
)

// Probe checks that an instance, an adapter and a device can be acquired, then
// releases all three. Panics from the native layer are reported as unavailable.
func Probe(ctx context.Context) (verdict host.Verdict) {
	defer func() {
		if r := recover(); r != nil {
			verdict = host.Unavailable(fmt.Sprintf("WebGPU error: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return host.Unavailable(err.Error())
	}

	instance := wgpu.CreateInstance(nil)
	if instance == nil {
		return host.Unavailable("WebGPU API not available")
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return host.Unavailable(fmt.Sprintf("adapter request failed: %v", err))
	}
	if adapter == nil {
		return host.Unavailable("no suitable adapter")
	}
	defer adapter.Release()

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		return host.Unavailable(fmt.Sprintf("device request failed: %v", err))
	}
	if device == nil {
		return host.Unavailable("no device")
	}
	device.Release()

	return host.Available()
}
