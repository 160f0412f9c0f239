package fallback

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	particlelogo "github.com/alleriumlabs/particlelogo"
)

type recordingHost struct {
	mounted []*Node
	err     error
}

func (h *recordingHost) Mount(node *Node) error {
	if h.err != nil {
		return h.err
	}
	h.mounted = append(h.mounted, node)
	return nil
}

func writeLogo(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "Logo_High_White_text.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func newTestRenderer(host Host, path string) *Renderer {
	r := NewRenderer(host, particlelogo.FallbackSettings{ImagePath: path, AltText: "Allerium Labs Logo"}, nil)
	r.Now = func() time.Time { return time.Unix(100, 0) }
	return r
}

func TestRenderMountsExactlyOnce(t *testing.T) {
	host := &recordingHost{}
	r := newTestRenderer(host, writeLogo(t, 800, 400))

	first, err := r.Render(particlelogo.ErrCapabilityUnavailable)
	require.NoError(t, err)
	second, err := r.Render(particlelogo.ErrMissingTarget)
	require.NoError(t, err)
	_, _ = r.Render(nil)

	require.Len(t, host.mounted, 1)
	assert.Same(t, first, second)
	assert.True(t, r.Mounted())

	node := host.mounted[0]
	assert.Equal(t, NodeID, node.ID)
	assert.Equal(t, "Allerium Labs Logo", node.AltText)
	assert.Equal(t, 400, node.Width)
	assert.Equal(t, 200, node.Height)
	assert.NotNil(t, node.Image)
}

func TestRenderConcurrentTriggers(t *testing.T) {
	host := &recordingHost{}
	r := newTestRenderer(host, writeLogo(t, 10, 10))

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			_, _ = r.Render(particlelogo.ErrCapabilityUnavailable)
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	assert.Len(t, host.mounted, 1)
}

func TestRenderWithoutHost(t *testing.T) {
	r := newTestRenderer(nil, "")
	_, err := r.Render(particlelogo.ErrCapabilityUnavailable)
	assert.ErrorIs(t, err, particlelogo.ErrMissingTarget)
	assert.False(t, r.Mounted())

	_, err = r.Render(nil)
	assert.ErrorIs(t, err, particlelogo.ErrMissingTarget, "result is sticky")
}

func TestRenderMissingImageKeepsAltText(t *testing.T) {
	host := &recordingHost{}
	r := newTestRenderer(host, filepath.Join(t.TempDir(), "missing.png"))

	node, err := r.Render(nil)
	require.NoError(t, err)
	assert.Nil(t, node.Image)
	assert.Equal(t, "Allerium Labs Logo", node.AltText)
	assert.Len(t, host.mounted, 1)
}

func TestRenderHostFailure(t *testing.T) {
	host := &recordingHost{err: errors.New("no window")}
	r := newTestRenderer(host, "")
	_, err := r.Render(nil)
	assert.EqualError(t, err, "no window")
	assert.False(t, r.Mounted())
}

func TestNodeFrame(t *testing.T) {
	node := &Node{MountedAt: time.Unix(100, 0)}
	f := node.Frame(time.Unix(100, 0).Add(FloatPeriod / 2))
	assert.Equal(t, 1.0, f.Opacity)
	assert.InDelta(t, -10, f.OffsetY, 1e-6)
}
