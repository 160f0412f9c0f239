package particlelogo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_MissingFileUsesDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
	assert.Equal(t, 50000, s.Effect.NumParticles)
}

func TestLoadSettings_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	body := `{"effect":{"numParticles":1024,"forceFallback":true},"tuning":{"toneMapping":"extended","brightness":2}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 1024, s.Effect.NumParticles)
	assert.True(t, s.Effect.ForceFallback)
	assert.Equal(t, "extended", s.Tuning.ToneMapping)
	assert.Equal(t, float32(2), s.Tuning.Brightness)
	// untouched fields keep defaults
	assert.Equal(t, "assets/logo.png", s.Effect.LogoPath)
	assert.Equal(t, float32(0.04), s.Tuning.DeltaTime)
}

func TestLoadSettings_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"effect":`), 0o644))
	_, err := LoadSettings(bad)
	assert.Error(t, err)

	tone := filepath.Join(dir, "tone.json")
	require.NoError(t, os.WriteFile(tone, []byte(`{"tuning":{"toneMapping":"filmic"}}`), 0o644))
	_, err = LoadSettings(tone)
	assert.ErrorContains(t, err, "toneMapping")

	count := filepath.Join(dir, "count.json")
	require.NoError(t, os.WriteFile(count, []byte(`{"effect":{"numParticles":0}}`), 0o644))
	_, err = LoadSettings(count)
	assert.ErrorContains(t, err, "numParticles")
}
