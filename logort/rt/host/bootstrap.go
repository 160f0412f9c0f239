// Package host decides between the particle effect and the fallback logo and
// drives the frame loop. Nothing here touches the GPU directly, so every path is
// testable with fakes.
package host

import (
	"context"
	"errors"
	"fmt"

	particlelogo "github.com/alleriumlabs/particlelogo"
	"github.com/alleriumlabs/particlelogo/logort/rt/fallback"
)

// Verdict is the result of a capability probe.
type Verdict struct {
	Available bool
	Reason    error
}

func Available() Verdict { return Verdict{Available: true} }

// Unavailable wraps reason so it matches ErrCapabilityUnavailable.
func Unavailable(reason string) Verdict {
	return Verdict{Reason: fmt.Errorf("%w: %s", particlelogo.ErrCapabilityUnavailable, reason)}
}

// Effect is a fully initialised particle effect.
type Effect interface {
	Run(ctx context.Context) error
	Release()
}

type (
	ProbeFunc         func(ctx context.Context) Verdict
	EffectFactory     func(ctx context.Context) (Effect, error)
	FallbackPresenter interface {
		Render(reason error) (*fallback.Node, error)
	}
)

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeEffect
	OutcomeFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEffect:
		return "effect"
	case OutcomeFallback:
		return "fallback"
	}
	return "none"
}

// Bootstrap gates the effect behind the probe. It never panics: every start-up
// failure is logged and reported through the returned Outcome.
type Bootstrap struct {
	Logger        particlelogo.Logger
	ForceFallback bool
	Probe         ProbeFunc
	NewEffect     EffectFactory
	Fallback      FallbackPresenter
}

func (b *Bootstrap) Run(ctx context.Context) (out Outcome) {
	log := particlelogo.OrNop(b.Logger)
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("particle effect initialisation panicked: %v", r)
			out = OutcomeNone
		}
	}()

	if b.ForceFallback {
		return b.fallback(fmt.Errorf("%w: forced by configuration", particlelogo.ErrCapabilityUnavailable))
	}

	if b.Probe == nil || b.NewEffect == nil {
		return b.fallback(fmt.Errorf("%w: no probe configured", particlelogo.ErrCapabilityUnavailable))
	}
	if v := b.Probe(ctx); !v.Available {
		reason := v.Reason
		if reason == nil {
			reason = particlelogo.ErrCapabilityUnavailable
		}
		log.Warnf("WebGPU not supported, falling back to static logo: %v", reason)
		return b.fallback(reason)
	}

	effect, err := b.NewEffect(ctx)
	switch {
	case errors.Is(err, particlelogo.ErrMissingTarget):
		log.Errorf("particle effect target missing: %v", err)
		return b.fallback(err)
	case errors.Is(err, particlelogo.ErrCapabilityUnavailable):
		log.Warnf("WebGPU not supported, falling back to static logo: %v", err)
		return b.fallback(err)
	case err != nil:
		log.Errorf("failed to initialise particle effect: %v", err)
		return OutcomeNone
	}
	defer effect.Release()

	if err := effect.Run(ctx); err != nil {
		log.Errorf("particle effect stopped: %v", err)
	}
	return OutcomeEffect
}

func (b *Bootstrap) fallback(reason error) Outcome {
	if b.Fallback == nil {
		particlelogo.OrNop(b.Logger).Errorf("no fallback presenter for: %v", reason)
		return OutcomeNone
	}
	if _, err := b.Fallback.Render(reason); err != nil {
		particlelogo.OrNop(b.Logger).Errorf("fallback logo unavailable: %v", err)
		return OutcomeNone
	}
	return OutcomeFallback
}
