package gpu

import (
	"encoding/binary"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/alleriumlabs/particlelogo/logort/rt/asset"
	"github.com/alleriumlabs/particlelogo/logort/rt/core"
	"github.com/alleriumlabs/particlelogo/logort/rt/shaders"
)

const probabilityUniformSize = 16

// LogoTexture is the padded logo with its full mip chain. After the probability
// pass has run it is only ever bound for reading.
type LogoTexture struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	Size    int
	Levels  int
}

func NewLogoTexture(device *wgpu.Device, queue *wgpu.Queue, staged *asset.Staged) (*LogoTexture, error) {
	size := uint32(staged.Size)
	levels := core.MipLevelCount(staged.Size)

	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Logo Probability Map",
		Size:          wgpu.Extent3D{Width: size, Height: size, DepthOrArrayLayers: 1},
		MipLevelCount: uint32(levels),
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage: wgpu.TextureUsageTextureBinding | wgpu.TextureUsageStorageBinding |
			wgpu.TextureUsageCopyDst | wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logo texture: %w", err)
	}

	queue.WriteTexture(tex.AsImageCopy(), staged.Pixels, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  size * 4,
		RowsPerImage: size,
	}, &wgpu.Extent3D{Width: size, Height: size, DepthOrArrayLayers: 1})

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create logo texture view: %w", err)
	}

	return &LogoTexture{
		Texture: tex,
		View:    view,
		Size:    staged.Size,
		Levels:  levels,
	}, nil
}

func (t *LogoTexture) Release() {
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Texture != nil {
		t.Texture.Release()
		t.Texture = nil
	}
}

// ProbabilityMapPass owns the import/export pipelines. It runs once at start-up.
type ProbabilityMapPass struct {
	Device         *wgpu.Device
	Queue          *wgpu.Queue
	ImportPipeline *wgpu.ComputePipeline
	ExportPipeline *wgpu.ComputePipeline
}

func NewProbabilityMapPass(device *wgpu.Device, queue *wgpu.Queue) (*ProbabilityMapPass, error) {
	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Probability Map CS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.ProbabilityMapWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create probability map shader: %w", err)
	}
	defer module.Release()

	p := &ProbabilityMapPass{Device: device, Queue: queue}
	p.ImportPipeline, err = device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: "Probability Map Import",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: core.EntryImportLevel,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create import pipeline: %w", err)
	}
	p.ExportPipeline, err = device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: "Probability Map Export",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: core.EntryExportLevel,
		},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("failed to create export pipeline: %w", err)
	}
	return p, nil
}

// Build fills mip levels 1..L of logo. Level 0 must already hold the padded
// logo. The scratch buffers and per-level views are released once the work is
// submitted.
func (p *ProbabilityMapPass) Build(logo *LogoTexture) error {
	size := uint32(logo.Size)
	plan := core.ProbabilityPlan(logo.Size)

	ubo := make([]byte, probabilityUniformSize)
	binary.LittleEndian.PutUint32(ubo, size)
	uniform, err := p.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Probability Map UBO",
		Contents: ubo,
		Usage:    wgpu.BufferUsageUniform,
	})
	if err != nil {
		return fmt.Errorf("failed to create probability uniform: %w", err)
	}
	defer uniform.Release()

	// Two-slot arena; PingPongSlots picks the read and write slot per level.
	var slots [2]*wgpu.Buffer
	for i := range slots {
		slots[i], err = p.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("Probability Map Buffer %d", i),
			Size:  uint64(size) * uint64(size) * 4,
			Usage: wgpu.BufferUsageStorage,
		})
		if err != nil {
			return fmt.Errorf("failed to create probability buffer %d: %w", i, err)
		}
		defer slots[i].Release()
	}

	views := make([]*wgpu.TextureView, len(plan))
	for i := range plan {
		views[i], err = logo.Texture.CreateView(&wgpu.TextureViewDescriptor{
			Label:           fmt.Sprintf("Probability Map Mip %d", i),
			Format:          wgpu.TextureFormatRGBA8Unorm,
			Dimension:       wgpu.TextureViewDimension2D,
			BaseMipLevel:    uint32(i),
			MipLevelCount:   1,
			BaseArrayLayer:  0,
			ArrayLayerCount: 1,
		})
		if err != nil {
			return fmt.Errorf("failed to create mip view %d: %w", i, err)
		}
		defer views[i].Release()
	}

	encoder, err := p.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("failed to create encoder: %w", err)
	}

	pass := encoder.BeginComputePass(nil)
	for _, d := range plan {
		pipeline := p.ExportPipeline
		if d.Entry == core.EntryImportLevel {
			pipeline = p.ImportPipeline
		}
		bg, err := p.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  fmt.Sprintf("Probability Map Level %d", d.Level),
			Layout: pipeline.GetBindGroupLayout(0),
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: uniform, Size: wgpu.WholeSize},
				{Binding: 1, Buffer: slots[d.ReadSlot], Size: wgpu.WholeSize},
				{Binding: 2, Buffer: slots[d.WriteSlot], Size: wgpu.WholeSize},
				{Binding: 3, TextureView: views[d.Level]},
			},
		})
		if err != nil {
			pass.End()
			return fmt.Errorf("failed to create bind group for level %d: %w", d.Level, err)
		}
		defer bg.Release()

		pass.SetPipeline(pipeline)
		pass.SetBindGroup(0, bg, nil)
		pass.DispatchWorkgroups(d.GroupsX, d.GroupsY, 1)
	}
	if err := pass.End(); err != nil {
		return fmt.Errorf("probability map pass End failed: %w", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("probability map encoder Finish failed: %w", err)
	}
	p.Queue.Submit(cmd)
	return nil
}

func (p *ProbabilityMapPass) Release() {
	if p.ImportPipeline != nil {
		p.ImportPipeline.Release()
		p.ImportPipeline = nil
	}
	if p.ExportPipeline != nil {
		p.ExportPipeline.Release()
		p.ExportPipeline = nil
	}
}
