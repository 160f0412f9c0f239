package core

import (
	"encoding/binary"
	"math"
)

// Particle matches the WGSL layout in particle.wgsl:
//
//	struct Particle {
//	  position : vec3f, -- 0
//	  lifetime : f32,   -- 12
//	  color    : vec4f, -- 16
//	  velocity : vec3f, -- 32
//	}                   -- 48 (vec3 alignment)
type Particle struct {
	Position [3]float32
	Lifetime float32
	Color    [4]float32
	Velocity [3]float32
	_        float32
}

const (
	ParticleInstanceByteSize = 48
	ParticlePositionOffset   = 0
	ParticleColorOffset      = 16

	WorkgroupSize = 64

	DefaultParticleCount = 50000

	SimUniformByteSize = 48
)

// QuadVertices is the shared billboard: two triangles in -1..+1.
var QuadVertices = [12]float32{
	-1, -1, +1, -1, -1, +1,
	-1, +1, +1, -1, +1, +1,
}

const QuadVertexCount = 6

// ParticleBufferSize is fixed for the process lifetime.
func ParticleBufferSize(numParticles int) uint64 {
	return uint64(numParticles) * ParticleInstanceByteSize
}

// DispatchCount is ceil(n / groupSize).
func DispatchCount(n, groupSize int) uint32 {
	if n <= 0 {
		return 0
	}
	return uint32((n + groupSize - 1) / groupSize)
}

// SimUniform is the per-frame simulation record uploaded before the compute pass.
//
//	struct SimulationParams {
//	  delta_time      : f32,   -- 0
//	  brightness      : f32,   -- 4
//	  aspect          : f32,   -- 8
//	  logo_scale      : f32,   -- 12
//	  seed            : vec4f, -- 16
//	  respawn_paused  : u32,   -- 32
//	}                          -- 48
type SimUniform struct {
	DeltaTime          float32
	Brightness         float32
	Aspect             float32
	LogoScale          float32
	Seed               Seeds
	RespawnWhilePaused bool
}

func (u SimUniform) Bytes() []byte {
	buf := make([]byte, SimUniformByteSize)
	put := func(offset int, v float32) {
		binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(v))
	}
	put(0, u.DeltaTime)
	put(4, u.Brightness)
	put(8, u.Aspect)
	put(12, u.LogoScale)
	for i, s := range u.Seed {
		put(16+i*4, s)
	}
	if u.RespawnWhilePaused {
		binary.LittleEndian.PutUint32(buf[32:], 1)
	}
	return buf
}
