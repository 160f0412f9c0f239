package core

import (
	"math"
	"math/rand/v2"
)

// Seeds feed the per-lane generator. X and Y are uniform in [0,100), Z and W in [1,2).
type Seeds [4]float32

func NewSeeds(r *rand.Rand) Seeds {
	return Seeds{
		r.Float32() * 100,
		r.Float32() * 100,
		1 + r.Float32(),
		1 + r.Float32(),
	}
}

// LaneRand is the host-side twin of init_rand/rand in particle.wgsl. It depends only
// on the lane index and the frame seed, so lanes never observe each other.
type LaneRand struct {
	state [2]float32
}

func NewLaneRand(lane uint32, seed Seeds) *LaneRand {
	id := float32(lane)
	s := [2]float32{seed[0], seed[2]}
	s[0] = fract(s[0] * cos32(35.456+id*seed[1]))
	s[1] = fract(s[1] * cos32(35.456+id*seed[3]))
	s[0] = fract(s[0] * cos32(41.235+id*seed[0]))
	s[1] = fract(s[1] * cos32(41.235+id*seed[3]))
	return &LaneRand{state: s}
}

// Next returns a value in [0,1).
func (r *LaneRand) Next() float32 {
	r.state[0] = fract(cos32(r.state[0]*23.14077926+r.state[1]*232.61690225) * 136.8168)
	r.state[1] = fract(cos32(r.state[0]*54.47856553+r.state[1]*345.84153136) * 534.7645)
	return r.state[1]
}

func fract(v float32) float32 {
	f := v - float32(math.Floor(float64(v)))
	if f >= 1 {
		return 0
	}
	return f
}

func cos32(v float32) float32 {
	return float32(math.Cos(float64(v)))
}

func smoothstep(edge0, edge1, x float32) float32 {
	t := (x - edge0) / (edge1 - edge0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}
