package host

import (
	"fmt"
	"sync"

	"github.com/alleriumlabs/particlelogo/logort/rt/core"
)

// Key is a panel key, independent of the windowing library.
type Key int

const (
	KeyUnknown Key = iota
	KeySpace
	KeyLeftBracket
	KeyRightBracket
	KeyMinus
	KeyEqual
	KeyT
	KeyR
	KeyH
)

const (
	DeltaTimeStep  = 0.005
	BrightnessStep = 0.1
)

var (
	panelColor   = [4]float32{1, 1, 1, 1}
	warningColor = [4]float32{1, 0.8, 0.2, 1}
)

// ToneMappingFunc applies a tone mapping mode to the surface and reports whether
// the display can show it.
type ToneMappingFunc func(mode core.ToneMappingMode) (displayHDR bool)

// Panel is the tuning overlay: key bindings that drive core.Tuning and the text
// lines drawn on top of the particles.
type Panel struct {
	Tuning   *core.Tuning
	Profiler *Profiler

	mu         sync.Mutex
	visible    bool
	displayHDR bool
	hdrMessage string
	applyTone  ToneMappingFunc
	listener   core.ListenerID
}

// NewPanel subscribes to tone mapping changes. apply may be nil.
func NewPanel(tuning *core.Tuning, profiler *Profiler, visible bool, apply ToneMappingFunc) *Panel {
	p := &Panel{
		Tuning:     tuning,
		Profiler:   profiler,
		visible:    visible,
		displayHDR: true,
		applyTone:  apply,
	}
	p.listener = tuning.Subscribe(core.ListenerFunc(p.parametersChanged))
	p.refreshHDRMessage(tuning.Snapshot().ToneMapping)
	return p
}

// Close detaches the panel from the tuning record.
func (p *Panel) Close() {
	p.Tuning.Unsubscribe(p.listener)
}

func (p *Panel) parametersChanged(c core.Change) {
	if c.Field != core.FieldToneMapping {
		return
	}
	p.mu.Lock()
	apply := p.applyTone
	p.mu.Unlock()

	hdr := true
	if apply != nil {
		hdr = apply(c.Params.ToneMapping)
	}
	p.mu.Lock()
	p.displayHDR = hdr
	p.mu.Unlock()
	p.refreshHDRMessage(c.Params.ToneMapping)
}

// SetDisplayHDR is called when the window moves to another monitor or its
// content scale changes.
func (p *Panel) SetDisplayHDR(hdr bool) {
	p.mu.Lock()
	p.displayHDR = hdr
	p.mu.Unlock()
	p.refreshHDRMessage(p.Tuning.Snapshot().ToneMapping)
}

func (p *Panel) refreshHDRMessage(mode core.ToneMappingMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hdrMessage = core.HDRMessage(mode, p.displayHDR)
}

func (p *Panel) HDRMessage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hdrMessage
}

func (p *Panel) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// HandleKey applies a key press. It reports whether the key is bound.
func (p *Panel) HandleKey(k Key) bool {
	params := p.Tuning.Snapshot()
	switch k {
	case KeySpace:
		p.Tuning.ToggleSimulate()
	case KeyLeftBracket:
		p.Tuning.SetDeltaTime(params.DeltaTime - DeltaTimeStep)
	case KeyRightBracket:
		p.Tuning.SetDeltaTime(params.DeltaTime + DeltaTimeStep)
	case KeyMinus:
		p.Tuning.SetBrightness(params.Brightness - BrightnessStep)
	case KeyEqual:
		p.Tuning.SetBrightness(params.Brightness + BrightnessStep)
	case KeyT:
		p.Tuning.ToggleToneMapping()
	case KeyR:
		p.Tuning.SetRespawnWhilePaused(!params.RespawnWhilePaused)
	case KeyH:
		p.mu.Lock()
		p.visible = !p.visible
		p.mu.Unlock()
	default:
		return false
	}
	return true
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// Lines lists the parameters, the HDR message when there is one, then timings.
func (p *Panel) Lines() []string {
	params := p.Tuning.Snapshot()
	lines := []string{
		fmt.Sprintf("[Space] simulate: %s", onOff(params.Simulate)),
		fmt.Sprintf("[ ] deltaTime: %.3f", params.DeltaTime),
		fmt.Sprintf("- = brightness: %.1f", params.Brightness),
		fmt.Sprintf("[T] tone mapping: %s", params.ToneMapping),
		fmt.Sprintf("[R] respawn while paused: %s", onOff(params.RespawnWhilePaused)),
		fmt.Sprintf("logo scale: %.2f", params.LogoScale),
	}
	if msg := p.HDRMessage(); msg != "" {
		lines = append(lines, msg)
	}
	if p.Profiler != nil {
		lines = append(lines, p.Profiler.Lines()...)
	}
	return lines
}

// TextItems lays the lines out from the top-left corner. Hidden panels draw nothing.
func (p *Panel) TextItems(lineHeight float32) []core.TextItem {
	if !p.Visible() {
		return nil
	}
	msg := p.HDRMessage()
	lines := p.Lines()
	items := make([]core.TextItem, 0, len(lines))
	for i, line := range lines {
		color := panelColor
		if msg != "" && line == msg {
			color = warningColor
		}
		items = append(items, core.TextItem{
			Text:     line,
			Position: [2]float32{10, 10 + float32(i)*lineHeight},
			Scale:    1,
			Color:    color,
		})
	}
	return items
}
