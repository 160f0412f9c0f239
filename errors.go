package particlelogo

import "errors"

var (
	// ErrCapabilityUnavailable means WebGPU, an adapter or a device could not be acquired.
	ErrCapabilityUnavailable = errors.New("webgpu capability unavailable")

	// ErrMissingTarget means the window/surface the effect draws into is absent.
	ErrMissingTarget = errors.New("render target missing")

	// ErrStagingContext means the CPU staging canvas for the logo could not be created.
	ErrStagingContext = errors.New("staging canvas context unavailable")
)
