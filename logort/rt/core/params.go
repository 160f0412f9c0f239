package core

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type ToneMappingMode int

const (
	ToneMappingStandard ToneMappingMode = iota
	ToneMappingExtended
)

func (m ToneMappingMode) String() string {
	switch m {
	case ToneMappingStandard:
		return "standard"
	case ToneMappingExtended:
		return "extended"
	default:
		return fmt.Sprintf("ToneMappingMode(%d)", int(m))
	}
}

func ParseToneMappingMode(s string) (ToneMappingMode, error) {
	switch s {
	case "standard", "":
		return ToneMappingStandard, nil
	case "extended":
		return ToneMappingExtended, nil
	}
	return ToneMappingStandard, fmt.Errorf("unknown tone mapping mode %q", s)
}

const (
	MaxBrightness         = 4.0
	HDRUnsupportedMessage = "HDR not supported on this display"
)

// HDRMessage is the panel line shown next to the tone mapping control.
func HDRMessage(mode ToneMappingMode, displayHDR bool) string {
	if mode == ToneMappingExtended && !displayHDR {
		return HDRUnsupportedMessage
	}
	return ""
}

// SimulationParameters is a plain snapshot; it is copied, never shared.
type SimulationParameters struct {
	Simulate    bool
	DeltaTime   float32
	ToneMapping ToneMappingMode
	Brightness  float32
	// LogoScale is derived from the viewport aspect and cannot be set directly.
	LogoScale float32
	// RespawnWhilePaused lets particles whose lifetime is already exhausted respawn on
	// a frame with zero delta time. Off by default: a paused frame changes nothing.
	RespawnWhilePaused bool
}

// FrameDeltaTime is the delta handed to the simulator: zero while paused.
func (p SimulationParameters) FrameDeltaTime() float32 {
	if !p.Simulate {
		return 0
	}
	return p.DeltaTime
}

type Field int

const (
	FieldSimulate Field = iota
	FieldDeltaTime
	FieldToneMapping
	FieldBrightness
	FieldLogoScale
	FieldRespawnWhilePaused
)

func (f Field) String() string {
	switch f {
	case FieldSimulate:
		return "simulate"
	case FieldDeltaTime:
		return "deltaTime"
	case FieldToneMapping:
		return "toneMappingMode"
	case FieldBrightness:
		return "brightnessFactor"
	case FieldLogoScale:
		return "logoScale"
	case FieldRespawnWhilePaused:
		return "respawnWhilePaused"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

type Change struct {
	Field  Field
	Params SimulationParameters
}

type Listener interface {
	ParametersChanged(c Change)
}

type ListenerFunc func(c Change)

func (f ListenerFunc) ParametersChanged(c Change) { f(c) }

type ListenerID string

// Tuning owns the live simulation parameters. The frame loop reads a Snapshot once
// per frame; the panel mutates through the setters. Listeners are called after the
// lock is released, only when a value actually changed.
type Tuning struct {
	mu        sync.Mutex
	params    SimulationParameters
	listeners map[ListenerID]Listener
	order     []ListenerID
}

func NewTuning(initial SimulationParameters) *Tuning {
	if initial.Brightness < 0 {
		initial.Brightness = 0
	}
	if initial.DeltaTime < 0 {
		initial.DeltaTime = 0
	}
	if initial.LogoScale == 0 {
		initial.LogoScale = CalculateLogoScale(1)
	}
	return &Tuning{
		params:    initial,
		listeners: make(map[ListenerID]Listener),
	}
}

func (t *Tuning) Snapshot() SimulationParameters {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.params
}

func (t *Tuning) Subscribe(l Listener) ListenerID {
	id := ListenerID(uuid.NewString())
	t.mu.Lock()
	t.listeners[id] = l
	t.order = append(t.order, id)
	t.mu.Unlock()
	return id
}

func (t *Tuning) Unsubscribe(id ListenerID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.listeners[id]; !ok {
		return false
	}
	delete(t.listeners, id)
	for i, o := range t.order {
		if o == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *Tuning) SetSimulate(on bool) {
	t.update(FieldSimulate, func(p *SimulationParameters) bool {
		if p.Simulate == on {
			return false
		}
		p.Simulate = on
		return true
	})
}

func (t *Tuning) ToggleSimulate() {
	t.SetSimulate(!t.Snapshot().Simulate)
}

// SetDeltaTime clamps negative values to zero.
func (t *Tuning) SetDeltaTime(dt float32) {
	if dt < 0 {
		dt = 0
	}
	t.update(FieldDeltaTime, func(p *SimulationParameters) bool {
		if p.DeltaTime == dt {
			return false
		}
		p.DeltaTime = dt
		return true
	})
}

// SetBrightness clamps to [0, MaxBrightness].
func (t *Tuning) SetBrightness(b float32) {
	if b < 0 {
		b = 0
	} else if b > MaxBrightness {
		b = MaxBrightness
	}
	t.update(FieldBrightness, func(p *SimulationParameters) bool {
		if p.Brightness == b {
			return false
		}
		p.Brightness = b
		return true
	})
}

func (t *Tuning) SetToneMapping(mode ToneMappingMode) {
	t.update(FieldToneMapping, func(p *SimulationParameters) bool {
		if p.ToneMapping == mode {
			return false
		}
		p.ToneMapping = mode
		return true
	})
}

func (t *Tuning) ToggleToneMapping() {
	if t.Snapshot().ToneMapping == ToneMappingStandard {
		t.SetToneMapping(ToneMappingExtended)
	} else {
		t.SetToneMapping(ToneMappingStandard)
	}
}

func (t *Tuning) SetRespawnWhilePaused(on bool) {
	t.update(FieldRespawnWhilePaused, func(p *SimulationParameters) bool {
		if p.RespawnWhilePaused == on {
			return false
		}
		p.RespawnWhilePaused = on
		return true
	})
}

// SetAspect recomputes the derived logo scale.
func (t *Tuning) SetAspect(aspect float32) {
	scale := CalculateLogoScale(aspect)
	t.update(FieldLogoScale, func(p *SimulationParameters) bool {
		if p.LogoScale == scale {
			return false
		}
		p.LogoScale = scale
		return true
	})
}

func (t *Tuning) update(field Field, mutate func(p *SimulationParameters) bool) {
	t.mu.Lock()
	if !mutate(&t.params) {
		t.mu.Unlock()
		return
	}
	change := Change{Field: field, Params: t.params}
	listeners := make([]Listener, 0, len(t.order))
	for _, id := range t.order {
		listeners = append(listeners, t.listeners[id])
	}
	t.mu.Unlock()

	for _, l := range listeners {
		l.ParametersChanged(change)
	}
}
