package core

import (
	"testing"
	"unsafe"
)

func TestTextRendererLayout(t *testing.T) {
	tr, err := NewTextRenderer(16)
	if err != nil {
		t.Fatalf("NewTextRenderer: %v", err)
	}
	if _, ok := tr.Glyphs['A']; !ok {
		t.Fatal("glyph 'A' missing from atlas")
	}

	verts := tr.BuildVertices([]TextItem{{Text: "AB", Position: [2]float32{10, 10}, Scale: 1, Color: [4]float32{1, 1, 1, 1}}}, 800, 600)
	if len(verts) != 12 {
		t.Errorf("vertex count = %d, want 12", len(verts))
	}
	for _, v := range verts {
		if v.Pos[0] < -1 || v.Pos[0] > 1 || v.Pos[1] < -1 || v.Pos[1] > 1 {
			t.Errorf("vertex outside clip space: %v", v.Pos)
		}
	}

	w1, h1 := tr.MeasureText("AB", 1)
	_, h2 := tr.MeasureText("AB\nCD", 1)
	if w1 <= 0 || h1 <= 0 {
		t.Errorf("MeasureText = %v x %v", w1, h1)
	}
	if !approx(h2, 2*h1, 1e-4) {
		t.Errorf("two lines measure %v, want %v", h2, 2*h1)
	}
}

func TestTextRendererNilSafe(t *testing.T) {
	var tr *TextRenderer
	if w, h := tr.MeasureText("x", 1); w != 0 || h != 0 {
		t.Errorf("nil renderer measured %v x %v", w, h)
	}
	if tr.BuildVertices([]TextItem{{Text: "x"}}, 10, 10) != nil {
		t.Error("nil renderer produced vertices")
	}
}

func TestViewport(t *testing.T) {
	var v Viewport
	if v.Resize(0, 0) {
		t.Error("zero size reported as change")
	}
	if !v.Resize(800, 600) {
		t.Error("first real size not reported")
	}
	if v.Resize(800, 600) {
		t.Error("same size reported as change")
	}
	if !approx(v.Aspect(), 800.0/600.0, 1e-6) {
		t.Errorf("aspect = %v", v.Aspect())
	}
	if w, h := BackingSize(640, 360, 2); w != 1280 || h != 720 {
		t.Errorf("backing size = %dx%d", w, h)
	}
}

func TestTextVertexLayout(t *testing.T) {
	if got := unsafe.Sizeof(TextVertex{}); got != TextVertexByteSize {
		t.Errorf("TextVertex size = %d, want %d", got, TextVertexByteSize)
	}
	if got := unsafe.Offsetof(TextVertex{}.Color); got != 16 {
		t.Errorf("color offset = %d, want 16", got)
	}
}
