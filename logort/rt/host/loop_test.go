package host

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoopStopsOnFlag(t *testing.T) {
	l := NewLoop(nil)
	ticks := 0
	err := l.Run(context.Background(), func() error {
		ticks++
		if ticks == 3 {
			l.Stop()
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, ticks)
	assert.Equal(t, uint64(3), l.Frames())
	assert.True(t, l.Stopped())
}

func TestLoopStopsOnTickError(t *testing.T) {
	l := NewLoop(nil)
	boom := errors.New("encoder finish failed")
	ticks := 0
	err := l.Run(context.Background(), func() error {
		ticks++
		if ticks == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, ticks)
	assert.True(t, l.Stopped())

	// No restart.
	err = l.Run(context.Background(), func() error {
		ticks++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, ticks)
}

func TestLoopStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := NewLoop(nil)
	ticks := 0
	err := l.Run(ctx, func() error {
		ticks++
		cancel()
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, ticks)
}

func TestLoopStoppedBeforeStart(t *testing.T) {
	l := NewLoop(nil)
	l.Stop()
	called := false
	assert.NoError(t, l.Run(context.Background(), func() error {
		called = true
		return nil
	}))
	assert.False(t, called)
}
