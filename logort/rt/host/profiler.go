package host

import (
	"fmt"
	"sort"
	"time"
)

// Profiler keeps the last duration of each named CPU scope plus a frame rate
// averaged over one-second windows.
type Profiler struct {
	Scopes     map[string]time.Duration
	StartTimes map[string]time.Time
	Counts     map[string]int
	Order      []string
	Now        func() time.Time

	FPS        float64
	frameCount int
	fpsWindow  time.Duration
	lastFrame  time.Time
}

func NewProfiler() *Profiler {
	return &Profiler{
		Scopes:     make(map[string]time.Duration),
		StartTimes: make(map[string]time.Time),
		Counts:     make(map[string]int),
		Now:        time.Now,
	}
}

func (p *Profiler) BeginScope(name string) {
	p.StartTimes[name] = p.Now()
	if _, seen := p.Scopes[name]; !seen {
		p.Order = append(p.Order, name)
		p.Scopes[name] = 0
	}
}

func (p *Profiler) EndScope(name string) {
	if start, ok := p.StartTimes[name]; ok {
		p.Scopes[name] = p.Now().Sub(start)
		delete(p.StartTimes, name)
	}
}

func (p *Profiler) SetCount(name string, count int) {
	p.Counts[name] = count
}

// FrameDone marks the end of a presented frame.
func (p *Profiler) FrameDone() {
	now := p.Now()
	if !p.lastFrame.IsZero() {
		p.frameCount++
		p.fpsWindow += now.Sub(p.lastFrame)
		if p.fpsWindow >= time.Second {
			p.FPS = float64(p.frameCount) / p.fpsWindow.Seconds()
			p.frameCount = 0
			p.fpsWindow = 0
		}
	}
	p.lastFrame = now
}

// Lines renders timings in first-seen order, then counters sorted by name.
func (p *Profiler) Lines() []string {
	lines := []string{fmt.Sprintf("FPS: %.1f", p.FPS)}
	for _, name := range p.Order {
		ms := float64(p.Scopes[name].Microseconds()) / 1000.0
		lines = append(lines, fmt.Sprintf("  %-10s %.2f ms", name, ms))
	}

	keys := make([]string, 0, len(p.Counts))
	for k := range p.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("  %-10s %d", k, p.Counts[k]))
	}
	return lines
}
