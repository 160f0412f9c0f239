package core

// Host-side reference of the simulate entry point in particle.wgsl. The preview
// renderer and the tests drive it; the GPU runs the WGSL version.

const (
	gravity          = 0.5
	fadeOutSeconds   = 0.5
	spawnSpreadXY    = 0.1
	spawnLiftZ       = 0.3
	minLifetime      = 0.5
	lifetimeVariance = 3.0
)

// ShouldRespawn decides whether a particle is replaced this frame. With a non-zero
// delta the particle respawns once its lifetime goes negative. With a zero delta
// (paused) only an already exhausted particle respawns, and only when
// respawnWhilePaused is set.
func ShouldRespawn(lifetime, deltaTime float32, respawnWhilePaused bool) bool {
	if deltaTime == 0 {
		return respawnWhilePaused && lifetime <= 0
	}
	return lifetime < 0
}

// SimulateLane advances one particle. It reads nothing but its own particle, the
// frame uniform and the read-only probability map.
func SimulateLane(p *Particle, lane uint32, u SimUniform, m *ProbabilityMap) {
	dt := u.DeltaTime
	if dt == 0 && !ShouldRespawn(p.Lifetime, 0, u.RespawnWhilePaused) {
		return
	}

	rng := NewLaneRand(lane, u.Seed)

	p.Velocity[2] -= dt * gravity
	for i := 0; i < 3; i++ {
		p.Position[i] += dt * p.Velocity[i]
	}
	p.Lifetime -= dt
	p.Color[3] = smoothstep(0, fadeOutSeconds, p.Lifetime)

	if !ShouldRespawn(p.Lifetime, dt, u.RespawnWhilePaused) {
		return
	}

	x, y := m.SampleSpawn(rng.Next)
	size := float32(m.Size)
	uvX := float32(x) / size
	uvY := float32(y) / size
	p.Position = [3]float32{
		(uvX - 0.5) * u.LogoScale,
		-(uvY - 0.5) * u.LogoScale,
		0,
	}
	texel := m.Texel(0, x, y)
	p.Color = [4]float32{
		texel[0] * u.Brightness,
		texel[1] * u.Brightness,
		texel[2] * u.Brightness,
		texel[3],
	}
	p.Velocity[0] = (rng.Next() - 0.5) * spawnSpreadXY
	p.Velocity[1] = (rng.Next() - 0.5) * spawnSpreadXY
	p.Velocity[2] = rng.Next() * spawnLiftZ
	p.Lifetime = minLifetime + rng.Next()*lifetimeVariance
}

// Step runs one dispatch over every particle.
func Step(particles []Particle, u SimUniform, m *ProbabilityMap) {
	for i := range particles {
		SimulateLane(&particles[i], uint32(i), u, m)
	}
}
