package particlelogo

import (
	"encoding/json"
	"fmt"
	"os"
)

// Settings configure the logo effect. Values not present in the settings file keep
// their defaults.
type Settings struct {
	Window   WindowSettings   `json:"window"`
	Effect   EffectSettings   `json:"effect"`
	Tuning   TuningSettings   `json:"tuning"`
	Fallback FallbackSettings `json:"fallback"`
	Debug    bool             `json:"debug"`
}

type WindowSettings struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Title  string `json:"title"`
}

type EffectSettings struct {
	LogoPath      string `json:"logoPath"`
	NumParticles  int    `json:"numParticles"`
	ForceFallback bool   `json:"forceFallback"`
}

type TuningSettings struct {
	Simulate           bool    `json:"simulate"`
	DeltaTime          float32 `json:"deltaTime"`
	Brightness         float32 `json:"brightness"`
	ToneMapping        string  `json:"toneMapping"`
	RespawnWhilePaused bool    `json:"respawnWhilePaused"`
	ShowPanel          bool    `json:"showPanel"`
}

type FallbackSettings struct {
	ImagePath string `json:"imagePath"`
	AltText   string `json:"altText"`
}

const DefaultNumParticles = 50000

func DefaultSettings() Settings {
	return Settings{
		Window: WindowSettings{
			Width:  1280,
			Height: 720,
			Title:  "Allerium Labs",
		},
		Effect: EffectSettings{
			LogoPath:     "assets/logo.png",
			NumParticles: DefaultNumParticles,
		},
		Tuning: TuningSettings{
			Simulate:    true,
			DeltaTime:   0.04,
			Brightness:  1.0,
			ToneMapping: "standard",
		},
		Fallback: FallbackSettings{
			ImagePath: "assets/Logo_High_White_text.png",
			AltText:   "Allerium Labs Logo",
		},
	}
}

// LoadSettings reads path over the defaults. A missing file is not an error.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&s); err != nil {
		return s, fmt.Errorf("error parsing %s: %w", path, err)
	}
	return s, s.Validate()
}

func (s Settings) Validate() error {
	if s.Effect.NumParticles <= 0 {
		return fmt.Errorf("effect.numParticles must be positive, got %d", s.Effect.NumParticles)
	}
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", s.Window.Width, s.Window.Height)
	}
	switch s.Tuning.ToneMapping {
	case "standard", "extended":
	default:
		return fmt.Errorf("tuning.toneMapping must be standard or extended, got %q", s.Tuning.ToneMapping)
	}
	return nil
}
