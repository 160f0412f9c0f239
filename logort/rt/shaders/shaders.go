package shaders

import (
	_ "embed"
)

//go:embed particle.wgsl
var ParticleWGSL string

//go:embed probability_map.wgsl
var ProbabilityMapWGSL string

//go:embed text.wgsl
var TextWGSL string
