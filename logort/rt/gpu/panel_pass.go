package gpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/alleriumlabs/particlelogo/logort/rt/core"
	"github.com/alleriumlabs/particlelogo/logort/rt/shaders"
)

// PanelPass draws the tuning panel text on top of the particles in its own render
// pass, loading the colour target the particle pass left behind.
type PanelPass struct {
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Renderer *core.TextRenderer

	Pipeline     *wgpu.RenderPipeline
	BindGroup    *wgpu.BindGroup
	AtlasTexture *wgpu.Texture
	AtlasView    *wgpu.TextureView
	Sampler      *wgpu.Sampler
	VertexBuffer *wgpu.Buffer
	VertexCount  uint32

	module *wgpu.ShaderModule
	format wgpu.TextureFormat
}

func NewPanelPass(device *wgpu.Device, queue *wgpu.Queue, renderer *core.TextRenderer, format wgpu.TextureFormat) (*PanelPass, error) {
	p := &PanelPass{Device: device, Queue: queue, Renderer: renderer}

	w, h := renderer.AtlasImage.Bounds().Dx(), renderer.AtlasImage.Bounds().Dy()
	var err error
	p.AtlasTexture, err = device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Text Atlas",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create text atlas: %w", err)
	}
	queue.WriteTexture(p.AtlasTexture.AsImageCopy(), renderer.AtlasImage.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(w),
		RowsPerImage: uint32(h),
	}, &wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})

	p.AtlasView, err = p.AtlasTexture.CreateView(nil)
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("failed to create text atlas view: %w", err)
	}

	p.Sampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("failed to create text sampler: %w", err)
	}

	p.module, err = device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Text Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.TextWGSL},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("failed to create text shader module: %w", err)
	}

	if err := p.RebuildPipeline(format); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// RebuildPipeline is a no-op when the format is unchanged.
func (p *PanelPass) RebuildPipeline(format wgpu.TextureFormat) error {
	if p.Pipeline != nil && p.format == format {
		return nil
	}

	pipeline, err := p.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Text Pipeline",
		Vertex: wgpu.VertexState{
			Module:     p.module,
			EntryPoint: entryVertex,
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(core.TextVertex{})),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.module,
			EntryPoint: entryFragment,
			Targets: []wgpu.ColorTargetState{{
				Format: format,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create text render pipeline: %w", err)
	}

	bg, err := p.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: p.AtlasView},
			{Binding: 1, Sampler: p.Sampler},
		},
	})
	if err != nil {
		pipeline.Release()
		return fmt.Errorf("failed to create text bind group: %w", err)
	}

	if p.BindGroup != nil {
		p.BindGroup.Release()
	}
	if p.Pipeline != nil {
		p.Pipeline.Release()
	}
	p.Pipeline, p.BindGroup, p.format = pipeline, bg, format
	return nil
}

// Update lays out items and grows the vertex buffer when needed.
func (p *PanelPass) Update(items []core.TextItem, screenW, screenH int) error {
	vertices := p.Renderer.BuildVertices(items, screenW, screenH)
	if len(vertices) == 0 {
		p.VertexCount = 0
		return nil
	}

	vSize := uint64(len(vertices) * core.TextVertexByteSize)
	if p.VertexBuffer == nil || p.VertexBuffer.GetSize() < vSize {
		if p.VertexBuffer != nil {
			p.VertexBuffer.Release()
		}
		var err error
		p.VertexBuffer, err = p.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Text VB",
			Size:  vSize,
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			p.VertexCount = 0
			return fmt.Errorf("failed to create text vertex buffer: %w", err)
		}
	}
	p.Queue.WriteBuffer(p.VertexBuffer, 0, wgpu.ToBytes(vertices))
	p.VertexCount = uint32(len(vertices))
	return nil
}

func (p *PanelPass) Encode(encoder *wgpu.CommandEncoder, target *wgpu.TextureView) error {
	if p.VertexCount == 0 || p.VertexBuffer == nil {
		return nil
	}
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    target,
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}},
	})
	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, p.BindGroup, nil)
	pass.SetVertexBuffer(0, p.VertexBuffer, 0, p.VertexBuffer.GetSize())
	pass.Draw(p.VertexCount, 1, 0, 0)
	if err := pass.End(); err != nil {
		return fmt.Errorf("panel pass End failed: %w", err)
	}
	return nil
}

func (p *PanelPass) Release() {
	if p.VertexBuffer != nil {
		p.VertexBuffer.Release()
		p.VertexBuffer = nil
	}
	if p.BindGroup != nil {
		p.BindGroup.Release()
		p.BindGroup = nil
	}
	if p.Pipeline != nil {
		p.Pipeline.Release()
		p.Pipeline = nil
	}
	if p.module != nil {
		p.module.Release()
		p.module = nil
	}
	if p.Sampler != nil {
		p.Sampler.Release()
		p.Sampler = nil
	}
	if p.AtlasView != nil {
		p.AtlasView.Release()
		p.AtlasView = nil
	}
	if p.AtlasTexture != nil {
		p.AtlasTexture.Release()
		p.AtlasTexture = nil
	}
}
