package app

import (
	"context"
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"

	particlelogo "github.com/alleriumlabs/particlelogo"
	"github.com/alleriumlabs/particlelogo/logort/rt/core"
	"github.com/alleriumlabs/particlelogo/logort/rt/host"
)

// effect owns the window it created for the App.
type effect struct {
	*App
}

func (e effect) Release() {
	e.App.Release()
	if e.Window != nil {
		e.Window.Destroy()
	}
}

// NewEffectFactory returns the host.EffectFactory that opens the effect window
// and initialises the App in it. glfw must already be initialised on the calling
// (main) thread.
func NewEffectFactory(settings particlelogo.Settings, tuning *core.Tuning, logger particlelogo.Logger) host.EffectFactory {
	return func(ctx context.Context) (host.Effect, error) {
		glfw.DefaultWindowHints()
		glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
		window, err := glfw.CreateWindow(settings.Window.Width, settings.Window.Height, settings.Window.Title, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", particlelogo.ErrMissingTarget, err)
		}

		e := effect{NewApp(window, settings, tuning, logger)}
		if err := e.Init(ctx); err != nil {
			e.Release()
			return nil, err
		}
		return e, nil
	}
}
