package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/alleriumlabs/particlelogo/logort/rt/core"
	"github.com/alleriumlabs/particlelogo/logort/rt/shaders"
)

const (
	entrySimulate = "simulate"
	entryVertex   = "vs_main"
	entryFragment = "fs_main"
)

// ParticleSystem owns the particle buffer and both stages that touch it: the
// simulate compute pipeline (sole writer) and the instanced billboard pipeline
// (sole reader). The buffer is sized once and never resized.
type ParticleSystem struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue

	NumParticles int

	ParticleBuffer      *wgpu.Buffer
	QuadBuffer          *wgpu.Buffer
	SimUniformBuffer    *wgpu.Buffer
	RenderUniformBuffer *wgpu.Buffer

	SimulatePipeline *wgpu.ComputePipeline
	RenderPipeline   *wgpu.RenderPipeline

	SimBindGroup    *wgpu.BindGroup
	RenderBindGroup *wgpu.BindGroup

	module *wgpu.ShaderModule
	format wgpu.TextureFormat
}

func NewParticleSystem(device *wgpu.Device, queue *wgpu.Queue, numParticles int, logo *LogoTexture, format wgpu.TextureFormat) (*ParticleSystem, error) {
	if numParticles <= 0 {
		return nil, fmt.Errorf("particle count must be positive, got %d", numParticles)
	}
	s := &ParticleSystem{
		Device:       device,
		Queue:        queue,
		NumParticles: numParticles,
	}

	var err error
	s.module, err = device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Particle Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.ParticleWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create particle shader: %w", err)
	}

	s.ParticleBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Particles",
		Size:  core.ParticleBufferSize(numParticles),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageStorage,
	})
	if err != nil {
		s.Release()
		return nil, fmt.Errorf("failed to create particle buffer: %w", err)
	}

	s.QuadBuffer, err = device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Particle Quad",
		Contents: wgpu.ToBytes(core.QuadVertices[:]),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		s.Release()
		return nil, fmt.Errorf("failed to create quad buffer: %w", err)
	}

	s.SimUniformBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Simulation Params",
		Size:  core.SimUniformByteSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		s.Release()
		return nil, fmt.Errorf("failed to create simulation uniform: %w", err)
	}

	s.RenderUniformBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Render Params",
		Size:  core.RenderUniformByteSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		s.Release()
		return nil, fmt.Errorf("failed to create render uniform: %w", err)
	}

	s.SimulatePipeline, err = device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: "Simulate Pipeline",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     s.module,
			EntryPoint: entrySimulate,
		},
	})
	if err != nil {
		s.Release()
		return nil, fmt.Errorf("failed to create simulate pipeline: %w", err)
	}

	s.SimBindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Simulate BG",
		Layout: s.SimulatePipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: s.SimUniformBuffer, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: s.ParticleBuffer, Size: wgpu.WholeSize},
			{Binding: 2, TextureView: logo.View},
		},
	})
	if err != nil {
		s.Release()
		return nil, fmt.Errorf("failed to create simulate bind group: %w", err)
	}

	if err := s.RebuildRenderPipeline(format); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

// RebuildRenderPipeline recreates the billboard pipeline for a new surface format,
// e.g. after the tone mapping mode switched the surface to a float format.
func (s *ParticleSystem) RebuildRenderPipeline(format wgpu.TextureFormat) error {
	if s.RenderPipeline != nil && s.format == format {
		return nil
	}

	pipeline, err := s.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Particle Render Pipeline",
		Vertex: wgpu.VertexState{
			Module:     s.module,
			EntryPoint: entryVertex,
			Buffers: []wgpu.VertexBufferLayout{
				{
					// instanced particles buffer
					ArrayStride: core.ParticleInstanceByteSize,
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: core.ParticlePositionOffset, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x4, Offset: core.ParticleColorOffset, ShaderLocation: 1},
					},
				},
				{
					// quad vertex buffer
					ArrayStride: 2 * 4,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 2},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     s.module,
			EntryPoint: entryFragment,
			Targets: []wgpu.ColorTargetState{{
				Format: format,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorZero,
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
		DepthStencil: &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: false,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create particle render pipeline: %w", err)
	}

	bg, err := s.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Particle Render BG",
		Layout: pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: s.RenderUniformBuffer, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		pipeline.Release()
		return fmt.Errorf("failed to create particle render bind group: %w", err)
	}

	if s.RenderBindGroup != nil {
		s.RenderBindGroup.Release()
	}
	if s.RenderPipeline != nil {
		s.RenderPipeline.Release()
	}
	s.RenderPipeline = pipeline
	s.RenderBindGroup = bg
	s.format = format
	return nil
}

// Update uploads this frame's uniforms. It never touches the particle buffer.
func (s *ParticleSystem) Update(sim core.SimUniform, cam *core.CameraState) {
	s.Queue.WriteBuffer(s.SimUniformBuffer, 0, sim.Bytes())
	s.Queue.WriteBuffer(s.RenderUniformBuffer, 0, cam.UniformBytes())
}

// EncodeSimulate records the compute pass. It must precede the render pass in the
// same encoder.
func (s *ParticleSystem) EncodeSimulate(encoder *wgpu.CommandEncoder) error {
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(s.SimulatePipeline)
	pass.SetBindGroup(0, s.SimBindGroup, nil)
	pass.DispatchWorkgroups(core.DispatchCount(s.NumParticles, core.WorkgroupSize), 1, 1)
	if err := pass.End(); err != nil {
		return fmt.Errorf("simulate pass End failed: %w", err)
	}
	return nil
}

func (s *ParticleSystem) EncodeRender(pass *wgpu.RenderPassEncoder) {
	pass.SetPipeline(s.RenderPipeline)
	pass.SetBindGroup(0, s.RenderBindGroup, nil)
	pass.SetVertexBuffer(0, s.ParticleBuffer, 0, s.ParticleBuffer.GetSize())
	pass.SetVertexBuffer(1, s.QuadBuffer, 0, s.QuadBuffer.GetSize())
	pass.Draw(core.QuadVertexCount, uint32(s.NumParticles), 0, 0)
}

func (s *ParticleSystem) Release() {
	if s.RenderBindGroup != nil {
		s.RenderBindGroup.Release()
		s.RenderBindGroup = nil
	}
	if s.SimBindGroup != nil {
		s.SimBindGroup.Release()
		s.SimBindGroup = nil
	}
	if s.RenderPipeline != nil {
		s.RenderPipeline.Release()
		s.RenderPipeline = nil
	}
	if s.SimulatePipeline != nil {
		s.SimulatePipeline.Release()
		s.SimulatePipeline = nil
	}
	for _, b := range []*wgpu.Buffer{s.ParticleBuffer, s.QuadBuffer, s.SimUniformBuffer, s.RenderUniformBuffer} {
		if b != nil {
			b.Release()
		}
	}
	s.ParticleBuffer, s.QuadBuffer, s.SimUniformBuffer, s.RenderUniformBuffer = nil, nil, nil, nil
	if s.module != nil {
		s.module.Release()
		s.module = nil
	}
}
