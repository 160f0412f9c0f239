package app

import (
	"slices"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/alleriumlabs/particlelogo/logort/rt/core"
)

// HDRFormat is the surface format used for extended tone mapping.
const HDRFormat = wgpu.TextureFormatRGBA16Float

// SurfaceFormatFor picks the surface format for mode. Standard mode uses the
// preferred (first) format; extended mode needs HDRFormat and otherwise stays on
// the preferred format with hdr false.
func SurfaceFormatFor(mode core.ToneMappingMode, formats []wgpu.TextureFormat) (format wgpu.TextureFormat, hdr bool) {
	if len(formats) == 0 {
		return wgpu.TextureFormatBGRA8Unorm, false
	}
	supported := SupportsHDR(formats)
	if mode == core.ToneMappingExtended && supported {
		return HDRFormat, true
	}
	return formats[0], supported
}

func SupportsHDR(formats []wgpu.TextureFormat) bool {
	return slices.Contains(formats, HDRFormat)
}
