package core

import (
	"fmt"
	"math"
	"math/bits"
)

// Probability-map entry points in probability_map.wgsl.
const (
	EntryImportLevel = "import_level"
	EntryExportLevel = "export_level"
)

// NextPowerOfTwo returns the smallest power of two >= n (n >= 1).
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// MipLevelCount is floor(log2(size)) + 1, so the last level is always 1x1.
func MipLevelCount(size int) int {
	if size < 1 {
		return 0
	}
	return bits.Len(uint(size))
}

// MipExtent is the edge length of level for a square texture of size.
func MipExtent(size, level int) int {
	e := size >> level
	if e < 1 {
		e = 1
	}
	return e
}

// Padding centres a w x h image inside a square power-of-two canvas. Offsets are
// kept fractional for odd margins.
type Padding struct {
	TargetSize int
	OffsetX    float64
	OffsetY    float64
}

func ComputePadding(width, height int) (Padding, error) {
	if width <= 0 || height <= 0 {
		return Padding{}, fmt.Errorf("logo image must be non-empty, got %dx%d", width, height)
	}
	size := NextPowerOfTwo(max(width, height))
	return Padding{
		TargetSize: size,
		OffsetX:    float64(size-width) / 2,
		OffsetY:    float64(size-height) / 2,
	}, nil
}

// PingPongSlots picks the storage buffer slots for a reduction level. The two slots
// alternate with level parity so a level never reads the buffer it writes:
// even levels read slot 1 and write slot 0, odd levels read slot 0 and write slot 1.
func PingPongSlots(level int) (read, write int) {
	if level&1 == 1 {
		return 0, 1
	}
	return 1, 0
}

// LevelDispatch describes one compute dispatch of the probability-map build.
type LevelDispatch struct {
	Level     int
	Entry     string
	Width     int
	Height    int
	GroupsX   uint32
	GroupsY   uint32
	ReadSlot  int
	WriteSlot int
}

// ProbabilityPlan lists the dispatches for a square texture of size: level 0 imports
// the alpha channel, every following level reduces the previous one.
func ProbabilityPlan(size int) []LevelDispatch {
	levels := MipLevelCount(size)
	plan := make([]LevelDispatch, levels)
	for level := 0; level < levels; level++ {
		w := MipExtent(size, level)
		read, write := PingPongSlots(level)
		entry := EntryExportLevel
		if level == 0 {
			entry = EntryImportLevel
		}
		plan[level] = LevelDispatch{
			Level:     level,
			Entry:     entry,
			Width:     w,
			Height:    w,
			GroupsX:   DispatchCount(w, WorkgroupSize),
			GroupsY:   uint32(w),
			ReadSlot:  read,
			WriteSlot: write,
		}
	}
	return plan
}

// ProbabilityMap is the host-side model of the mip chain the GPU builds. Level 0
// holds the logo colour; every coarser texel holds the cumulative probabilities of
// its four children (top-left, +top-right, +bottom-left, +bottom-right) normalised
// by their sum. Weights keeps the per-level mean alpha the reduction carries along;
// the top weight times size^2 is the total alpha mass of the image.
type ProbabilityMap struct {
	Size    int
	Texels  [][][4]float32
	Weights [][]float32
}

const minProbabilitySum = 0.0001

// BuildProbabilityMap reduces a size x size RGBA8 image (non-premultiplied, row major)
// the same way import_level/export_level do, including the unorm8 quantisation of
// texture writes.
func BuildProbabilityMap(size int, rgba []byte) (*ProbabilityMap, error) {
	if size < 1 || size&(size-1) != 0 {
		return nil, fmt.Errorf("probability map size must be a power of two, got %d", size)
	}
	if len(rgba) != size*size*4 {
		return nil, fmt.Errorf("expected %d bytes of RGBA, got %d", size*size*4, len(rgba))
	}

	levels := MipLevelCount(size)
	m := &ProbabilityMap{
		Size:    size,
		Texels:  make([][][4]float32, levels),
		Weights: make([][]float32, levels),
	}

	// Two-slot arena with the row stride of level 0, like the storage buffers.
	var arena [2][]float32
	arena[0] = make([]float32, size*size)
	arena[1] = make([]float32, size*size)

	base := make([][4]float32, size*size)
	for i := range base {
		for c := 0; c < 4; c++ {
			base[i][c] = float32(rgba[i*4+c]) / 255
		}
	}
	m.Texels[0] = base
	_, write := PingPongSlots(0)
	for i := range base {
		arena[write][i] = base[i][3]
	}
	m.Weights[0] = append([]float32(nil), arena[write]...)

	for level := 1; level < levels; level++ {
		w := MipExtent(size, level)
		read, write := PingPongSlots(level)
		in, out := arena[read], arena[write]
		texels := make([][4]float32, w*w)
		weights := make([]float32, w*w)
		for y := 0; y < w; y++ {
			for x := 0; x < w; x++ {
				src := 2*x + 2*y*size
				a := in[src]
				b := in[src+1]
				c := in[src+size]
				d := in[src+1+size]
				sum := a + b + c + d
				out[x+y*size] = sum / 4
				weights[x+y*w] = sum / 4

				norm := float32(math.Max(float64(sum), minProbabilitySum))
				texels[x+y*w] = [4]float32{
					quantizeUnorm8(a / norm),
					quantizeUnorm8((a + b) / norm),
					quantizeUnorm8((a + b + c) / norm),
					quantizeUnorm8(sum / norm),
				}
			}
		}
		m.Texels[level] = texels
		m.Weights[level] = weights
	}
	return m, nil
}

func quantizeUnorm8(v float32) float32 {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return float32(math.Round(float64(v)*255)) / 255
}

func (m *ProbabilityMap) Levels() int { return len(m.Texels) }

func (m *ProbabilityMap) Extent(level int) int { return MipExtent(m.Size, level) }

func (m *ProbabilityMap) Texel(level, x, y int) [4]float32 {
	return m.Texels[level][x+y*m.Extent(level)]
}

// TotalMass is the integrated alpha of the whole image.
func (m *ProbabilityMap) TotalMass() float32 {
	top := m.Weights[m.Levels()-1]
	return top[0] * float32(m.Size*m.Size)
}

// SampleSpawn descends from the 1x1 level to level 0, at each step choosing one of
// four children with the probabilities stored in the parent texel.
func (m *ProbabilityMap) SampleSpawn(next func() float32) (x, y int) {
	for level := m.Levels() - 1; level > 0; level-- {
		p := m.Texel(level, x, y)
		v := next()
		lower := [4]float32{0, p[0], p[1], p[2]}
		var mask [4]bool
		for i := 0; i < 4; i++ {
			mask[i] = v >= lower[i] && v < p[i]
		}
		x *= 2
		y *= 2
		if mask[1] || mask[3] {
			x++
		}
		if mask[2] || mask[3] {
			y++
		}
	}
	return x, y
}
