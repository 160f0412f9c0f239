package host

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	particlelogo "github.com/alleriumlabs/particlelogo"
	"github.com/alleriumlabs/particlelogo/logort/rt/fallback"
)

type fakeEffect struct {
	runs     int
	released int
	err      error
}

func (e *fakeEffect) Run(ctx context.Context) error {
	e.runs++
	return e.err
}

func (e *fakeEffect) Release() { e.released++ }

type fakeFallback struct {
	reasons []error
	err     error
}

func (f *fakeFallback) Render(reason error) (*fallback.Node, error) {
	f.reasons = append(f.reasons, reason)
	if f.err != nil {
		return nil, f.err
	}
	return &fallback.Node{ID: fallback.NodeID}, nil
}

func TestBootstrapUnavailableNeverBuildsEffect(t *testing.T) {
	fb := &fakeFallback{}
	factoryCalls := 0
	b := &Bootstrap{
		Probe: func(ctx context.Context) Verdict { return Unavailable("no adapter") },
		NewEffect: func(ctx context.Context) (Effect, error) {
			factoryCalls++
			return &fakeEffect{}, nil
		},
		Fallback: fb,
	}

	assert.Equal(t, OutcomeFallback, b.Run(context.Background()))
	assert.Zero(t, factoryCalls)
	require.Len(t, fb.reasons, 1)
	assert.ErrorIs(t, fb.reasons[0], particlelogo.ErrCapabilityUnavailable)
}

func TestBootstrapRunsEffect(t *testing.T) {
	effect := &fakeEffect{}
	fb := &fakeFallback{}
	b := &Bootstrap{
		Probe:     func(ctx context.Context) Verdict { return Available() },
		NewEffect: func(ctx context.Context) (Effect, error) { return effect, nil },
		Fallback:  fb,
	}

	assert.Equal(t, OutcomeEffect, b.Run(context.Background()))
	assert.Equal(t, 1, effect.runs)
	assert.Equal(t, 1, effect.released)
	assert.Empty(t, fb.reasons)
}

func TestBootstrapFrameErrorStillReleases(t *testing.T) {
	effect := &fakeEffect{err: errors.New("device lost")}
	b := &Bootstrap{
		Probe:     func(ctx context.Context) Verdict { return Available() },
		NewEffect: func(ctx context.Context) (Effect, error) { return effect, nil },
	}
	assert.Equal(t, OutcomeEffect, b.Run(context.Background()))
	assert.Equal(t, 1, effect.released)
}

func TestBootstrapMissingTargetFallsBack(t *testing.T) {
	fb := &fakeFallback{}
	b := &Bootstrap{
		Probe: func(ctx context.Context) Verdict { return Available() },
		NewEffect: func(ctx context.Context) (Effect, error) {
			return nil, particlelogo.ErrMissingTarget
		},
		Fallback: fb,
	}
	assert.Equal(t, OutcomeFallback, b.Run(context.Background()))
	require.Len(t, fb.reasons, 1)
	assert.ErrorIs(t, fb.reasons[0], particlelogo.ErrMissingTarget)
}

func TestBootstrapResourceFailureIsContained(t *testing.T) {
	fb := &fakeFallback{}
	b := &Bootstrap{
		Probe: func(ctx context.Context) Verdict { return Available() },
		NewEffect: func(ctx context.Context) (Effect, error) {
			return nil, errors.New("failed to create particle buffer")
		},
		Fallback: fb,
	}
	assert.Equal(t, OutcomeNone, b.Run(context.Background()))
	assert.Empty(t, fb.reasons, "resource failures do not fall back")
}

func TestBootstrapRecoversPanics(t *testing.T) {
	b := &Bootstrap{
		Probe: func(ctx context.Context) Verdict { panic("cgo blew up") },
		NewEffect: func(ctx context.Context) (Effect, error) {
			return &fakeEffect{}, nil
		},
		Fallback: &fakeFallback{},
	}
	assert.NotPanics(t, func() {
		assert.Equal(t, OutcomeNone, b.Run(context.Background()))
	})
}

func TestBootstrapForceFallback(t *testing.T) {
	fb := &fakeFallback{}
	probed := false
	b := &Bootstrap{
		ForceFallback: true,
		Probe: func(ctx context.Context) Verdict {
			probed = true
			return Available()
		},
		NewEffect: func(ctx context.Context) (Effect, error) { return &fakeEffect{}, nil },
		Fallback:  fb,
	}
	assert.Equal(t, OutcomeFallback, b.Run(context.Background()))
	assert.False(t, probed)
	assert.Len(t, fb.reasons, 1)
}

func TestBootstrapFallbackFailure(t *testing.T) {
	b := &Bootstrap{
		Probe:    func(ctx context.Context) Verdict { return Unavailable("no instance") },
		Fallback: &fakeFallback{err: particlelogo.ErrMissingTarget},
	}
	assert.Equal(t, OutcomeNone, b.Run(context.Background()))
}

func TestBootstrapFallbackMountedOnceAcrossRuns(t *testing.T) {
	host := &countingHost{}
	r := fallback.NewRenderer(host, particlelogo.FallbackSettings{AltText: "Allerium Labs Logo"}, nil)
	b := &Bootstrap{
		Probe:    func(ctx context.Context) Verdict { return Unavailable("no adapter") },
		Fallback: r,
	}
	b.Run(context.Background())
	b.Run(context.Background())
	assert.Equal(t, 1, host.mounts)
}

type countingHost struct{ mounts int }

func (h *countingHost) Mount(node *fallback.Node) error {
	h.mounts++
	return nil
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "effect", OutcomeEffect.String())
	assert.Equal(t, "fallback", OutcomeFallback.String())
	assert.Equal(t, "none", OutcomeNone.String())
}
