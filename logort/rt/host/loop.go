package host

import (
	"context"
	"sync/atomic"

	particlelogo "github.com/alleriumlabs/particlelogo"
)

// TickFunc renders one frame. Returning an error stops the loop for good.
type TickFunc func() error

// Loop calls a tick until stopped. Each tick is expected to block on the display
// refresh (FIFO present), so the loop does no pacing of its own.
type Loop struct {
	Logger particlelogo.Logger

	stopped atomic.Bool
	frames  atomic.Uint64
}

func NewLoop(logger particlelogo.Logger) *Loop {
	return &Loop{Logger: particlelogo.OrNop(logger)}
}

// Stop is safe to call from any goroutine. The current tick finishes.
func (l *Loop) Stop() { l.stopped.Store(true) }

func (l *Loop) Stopped() bool { return l.stopped.Load() }

func (l *Loop) Frames() uint64 { return l.frames.Load() }

// Run returns nil when stopped or when ctx is done, and the tick error otherwise.
func (l *Loop) Run(ctx context.Context, tick TickFunc) error {
	for {
		if l.stopped.Load() {
			return nil
		}
		select {
		case <-ctx.Done():
			l.Stop()
			return nil
		default:
		}

		if err := tick(); err != nil {
			l.Stop()
			particlelogo.OrNop(l.Logger).Errorf("frame %d failed, animation stopped: %v", l.frames.Load(), err)
			return err
		}
		l.frames.Add(1)
	}
}
