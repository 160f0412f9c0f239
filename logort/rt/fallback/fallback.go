// Package fallback presents a static, gently animated logo when the particle
// effect cannot run.
package fallback

import (
	"image"
	"sync"
	"time"

	particlelogo "github.com/alleriumlabs/particlelogo"
	"github.com/alleriumlabs/particlelogo/logort/rt/asset"
)

const NodeID = "fallback-logo"

// Node is the mounted fallback logo. Image is nil when the file could not be
// decoded; hosts then show AltText.
type Node struct {
	ID        string
	AltText   string
	Image     image.Image
	Width     int
	Height    int
	MountedAt time.Time
}

// Frame is the presentation state elapsed after mounting.
func (n *Node) Frame(now time.Time) Frame {
	return FrameAt(now.Sub(n.MountedAt))
}

// Host is where the node is mounted. It must not touch the GPU device the
// particle effect would have used.
type Host interface {
	Mount(node *Node) error
}

// Renderer mounts the fallback logo at most once, whatever the number of
// triggers.
type Renderer struct {
	Host      Host
	Logger    particlelogo.Logger
	ImagePath string
	AltText   string
	Now       func() time.Time

	once sync.Once
	node *Node
	err  error
}

func NewRenderer(host Host, settings particlelogo.FallbackSettings, logger particlelogo.Logger) *Renderer {
	return &Renderer{
		Host:      host,
		Logger:    particlelogo.OrNop(logger),
		ImagePath: settings.ImagePath,
		AltText:   settings.AltText,
		Now:       time.Now,
	}
}

// Render mounts the node on the first call. Later calls return the first result.
func (r *Renderer) Render(reason error) (*Node, error) {
	r.once.Do(func() {
		r.node, r.err = r.mount(reason)
	})
	return r.node, r.err
}

// Mounted reports whether a node is on the host.
func (r *Renderer) Mounted() bool {
	return r.node != nil && r.err == nil
}

func (r *Renderer) mount(reason error) (*Node, error) {
	log := particlelogo.OrNop(r.Logger)
	if reason != nil {
		log.Infof("Using fallback logo: %v", reason)
	} else {
		log.Infof("Using fallback logo")
	}

	if r.Host == nil {
		log.Errorf("fallback host not available")
		return nil, particlelogo.ErrMissingTarget
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	node := &Node{
		ID:        NodeID,
		AltText:   r.AltText,
		MountedAt: now(),
	}

	img, err := asset.LoadLogo(r.ImagePath)
	if err != nil {
		log.Warnf("fallback image unavailable, showing alt text: %v", err)
	} else {
		node.Image = img
		node.Width, node.Height = FitSize(img.Bounds().Dx(), img.Bounds().Dy())
	}

	if err := r.Host.Mount(node); err != nil {
		log.Errorf("failed to mount fallback logo: %v", err)
		return nil, err
	}
	return node, nil
}
