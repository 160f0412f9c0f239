package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alleriumlabs/particlelogo/logort/rt/core"
)

func newTestTuning() *core.Tuning {
	return core.NewTuning(core.SimulationParameters{
		Simulate:   true,
		DeltaTime:  0.04,
		Brightness: 1,
	})
}

func TestPanelKeyBindings(t *testing.T) {
	tuning := newTestTuning()
	p := NewPanel(tuning, nil, true, nil)
	defer p.Close()

	tests := []struct {
		key   Key
		check func(t *testing.T, s core.SimulationParameters)
	}{
		{KeySpace, func(t *testing.T, s core.SimulationParameters) { assert.False(t, s.Simulate) }},
		{KeySpace, func(t *testing.T, s core.SimulationParameters) { assert.True(t, s.Simulate) }},
		{KeyRightBracket, func(t *testing.T, s core.SimulationParameters) { assert.InDelta(t, 0.045, s.DeltaTime, 1e-6) }},
		{KeyLeftBracket, func(t *testing.T, s core.SimulationParameters) { assert.InDelta(t, 0.04, s.DeltaTime, 1e-6) }},
		{KeyEqual, func(t *testing.T, s core.SimulationParameters) { assert.InDelta(t, 1.1, s.Brightness, 1e-6) }},
		{KeyMinus, func(t *testing.T, s core.SimulationParameters) { assert.InDelta(t, 1.0, s.Brightness, 1e-6) }},
		{KeyT, func(t *testing.T, s core.SimulationParameters) { assert.Equal(t, core.ToneMappingExtended, s.ToneMapping) }},
		{KeyR, func(t *testing.T, s core.SimulationParameters) { assert.True(t, s.RespawnWhilePaused) }},
	}
	for _, tt := range tests {
		require.True(t, p.HandleKey(tt.key))
		tt.check(t, tuning.Snapshot())
	}

	assert.False(t, p.HandleKey(KeyUnknown))
}

func TestPanelHideToggle(t *testing.T) {
	p := NewPanel(newTestTuning(), nil, true, nil)
	defer p.Close()

	assert.NotEmpty(t, p.TextItems(16))
	p.HandleKey(KeyH)
	assert.False(t, p.Visible())
	assert.Nil(t, p.TextItems(16))
}

func TestPanelToneToggleReconfiguresOnce(t *testing.T) {
	tuning := newTestTuning()
	var applied []core.ToneMappingMode
	p := NewPanel(tuning, nil, true, func(mode core.ToneMappingMode) bool {
		applied = append(applied, mode)
		return false
	})
	defer p.Close()

	p.HandleKey(KeyT)
	require.Equal(t, []core.ToneMappingMode{core.ToneMappingExtended}, applied)
	assert.Equal(t, core.HDRUnsupportedMessage, p.HDRMessage())

	// Setting the same mode again is not a change.
	tuning.SetToneMapping(core.ToneMappingExtended)
	assert.Len(t, applied, 1)

	p.HandleKey(KeyT)
	assert.Equal(t, []core.ToneMappingMode{core.ToneMappingExtended, core.ToneMappingStandard}, applied)
	assert.Empty(t, p.HDRMessage())
}

func TestPanelDisplayCapabilityChange(t *testing.T) {
	tuning := newTestTuning()
	tuning.SetToneMapping(core.ToneMappingExtended)
	p := NewPanel(tuning, nil, true, nil)
	defer p.Close()

	assert.Empty(t, p.HDRMessage())
	p.SetDisplayHDR(false)
	assert.Equal(t, core.HDRUnsupportedMessage, p.HDRMessage())
	p.SetDisplayHDR(true)
	assert.Empty(t, p.HDRMessage())
}

func TestPanelLinesIncludeWarningAndProfiler(t *testing.T) {
	tuning := newTestTuning()
	prof := NewProfiler()
	prof.SetCount("particles", 50000)
	p := NewPanel(tuning, prof, true, func(core.ToneMappingMode) bool { return false })
	defer p.Close()

	p.HandleKey(KeyT)
	items := p.TextItems(20)
	var warning *core.TextItem
	for i := range items {
		if items[i].Text == core.HDRUnsupportedMessage {
			warning = &items[i]
		}
	}
	require.NotNil(t, warning)
	assert.Equal(t, warningColor, warning.Color)
	assert.Contains(t, p.Lines(), "  particles  50000")
	assert.Equal(t, float32(30), items[1].Position[1])
}

func TestPanelCloseUnsubscribes(t *testing.T) {
	tuning := newTestTuning()
	calls := 0
	p := NewPanel(tuning, nil, true, func(core.ToneMappingMode) bool {
		calls++
		return true
	})
	p.Close()
	tuning.ToggleToneMapping()
	assert.Zero(t, calls)
}
