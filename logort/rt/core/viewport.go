package core

// Viewport tracks the framebuffer backing the effect. Width and Height are in
// physical pixels (window size times ContentScale).
type Viewport struct {
	Width        int
	Height       int
	ContentScale float32
}

func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

func (v Viewport) Aspect() float32 {
	if !v.Valid() {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

// Resize reports whether the backing size changed. A zero size (minimised window)
// is recorded but reported as unchanged so no target gets reallocated.
func (v *Viewport) Resize(width, height int) bool {
	if width == v.Width && height == v.Height {
		return false
	}
	v.Width, v.Height = width, height
	return v.Valid()
}

// BackingSize scales a logical window size by the content scale.
func BackingSize(logicalW, logicalH int, contentScale float32) (int, int) {
	if contentScale <= 0 {
		contentScale = 1
	}
	return int(float32(logicalW) * contentScale), int(float32(logicalH) * contentScale)
}
