package render

import (
	"image"
	"testing"

	"github.com/prismled/prism-core/internal/layout"
	"github.com/prismled/prism-core/internal/scope"
)

func intPtr(v int) *int { return &v }

func rgbAt(img image.Image, x, y int) (uint32, uint32, uint32, uint32) {
	r, g, b, a := img.At(x, y).RGBA()
	return r >> 8, g >> 8, b >> 8, a >> 8
}

func near(got, want uint32) bool {
	d := int(got) - int(want)
	return d >= -12 && d <= 12
}

func singleBlockLayout() layout.Multi {
	return layout.Multi{
		Size: 10,
		Gap:  2,
		Blocks: []layout.Block{
			{
				ZoneID: "out-a", OutputID: "out-a",
				X: 0, Y: 0, Width: 22, Height: 22,
				Cols: 2, Rows: 2, LedStart: 0, LedCount: 3,
			},
		},
	}
}

func TestPaint_CellColorsRowMajor(t *testing.T) {
	frame := Frame{Colors: []scope.Color{
		{R: 255}, {G: 255}, {B: 255},
	}}
	img := Paint(singleBlockLayout(), frame, 40, 40, 1)

	// Cell centers: size 10, gap 2.
	r, _, _, a := rgbAt(img, 5, 5)
	if !near(r, 255) || !near(a, 255) {
		t.Errorf("cell (0,0) = r%d a%d, want red", r, a)
	}
	_, g, _, _ := rgbAt(img, 17, 5)
	if !near(g, 255) {
		t.Errorf("cell (0,1) green = %d, want 255", g)
	}
	_, _, b, _ := rgbAt(img, 5, 17)
	if !near(b, 255) {
		t.Errorf("cell (1,0) blue = %d, want 255", b)
	}
}

func TestPaint_SkipsCellsBeyondLedCount(t *testing.T) {
	frame := Frame{Colors: []scope.Color{{R: 255}, {R: 255}, {R: 255}}}
	img := Paint(singleBlockLayout(), frame, 40, 40, 1)

	// Fourth cell has no LED behind it and stays untouched.
	_, _, _, a := rgbAt(img, 17, 17)
	if a != 0 {
		t.Errorf("cell beyond led count painted with alpha %d", a)
	}
}

func TestPaint_ShortFrameFallsBackToBlack(t *testing.T) {
	frame := Frame{Colors: []scope.Color{{R: 255}}}
	img := Paint(singleBlockLayout(), frame, 40, 40, 1)

	r, g, b, a := rgbAt(img, 17, 5)
	if !near(a, 255) || !near(r, 0) || !near(g, 0) || !near(b, 0) {
		t.Errorf("missing led cell = %d,%d,%d,%d, want opaque black", r, g, b, a)
	}
}

func TestPaint_PlaceholderFrameIsNeutralGray(t *testing.T) {
	frame := Frame{Colors: []scope.Color{{R: 255}, {G: 255}, {B: 255}}, IsPlaceholder: true}
	img := Paint(singleBlockLayout(), frame, 40, 40, 1)

	r, g, b, _ := rgbAt(img, 5, 5)
	if !near(r, 115) || !near(g, 115) || !near(b, 115) {
		t.Errorf("placeholder cell = %d,%d,%d, want neutral gray", r, g, b)
	}
}

func TestPaint_MatrixAbsentCellIsFaint(t *testing.T) {
	l := layout.Multi{
		Size: 10,
		Gap:  2,
		Blocks: []layout.Block{
			{
				ZoneID: "panel", OutputID: "panel",
				X: 0, Y: 0, Width: 22, Height: 10,
				Cols: 2, Rows: 1, LedStart: 0, LedCount: 1,
				Matrix: &scope.MatrixMap{
					Width: 2, Height: 1,
					Map: []*int{nil, intPtr(0)},
				},
			},
		},
	}
	frame := Frame{Colors: []scope.Color{{R: 255}}}
	img := Paint(l, frame, 30, 15, 1)

	_, _, _, a := rgbAt(img, 5, 5)
	if a == 0 || a > 80 {
		t.Errorf("absent matrix cell alpha = %d, want faint but visible", a)
	}
	r, _, _, _ := rgbAt(img, 17, 5)
	if !near(r, 255) {
		t.Errorf("mapped matrix cell red = %d, want 255", r)
	}
}

func TestPaint_PixelRatioScalesSurface(t *testing.T) {
	frame := Frame{Colors: []scope.Color{{R: 255}, {G: 255}, {B: 255}}}
	img := Paint(singleBlockLayout(), frame, 40, 40, 2)

	bounds := img.Bounds()
	if bounds.Dx() != 80 || bounds.Dy() != 80 {
		t.Fatalf("surface = %dx%d, want 80x80", bounds.Dx(), bounds.Dy())
	}
	r, _, _, _ := rgbAt(img, 10, 10)
	if !near(r, 255) {
		t.Errorf("scaled cell red = %d, want 255", r)
	}

	// Second column starts at CSS x=12, so its center sits at device
	// x=34. If only the surface doubled, green would still be at x=17.
	_, g, _, _ := rgbAt(img, 34, 10)
	if !near(g, 255) {
		t.Errorf("scaled cell (0,1) green = %d, want 255", g)
	}
	r, g2, _, _ := rgbAt(img, 17, 10)
	if !near(r, 255) || near(g2, 255) {
		t.Errorf("device px (17,10) = r%d g%d, want inside the red cell", r, g2)
	}
}

func TestCornerRadius(t *testing.T) {
	tests := []struct {
		size     float64
		isMatrix bool
		want     float64
	}{
		{8, false, 2},
		{8, true, 2},
		{40, false, 4},
		{40, true, 2.5},
	}
	for _, tt := range tests {
		if got := cornerRadius(tt.size, tt.isMatrix); got != tt.want {
			t.Errorf("cornerRadius(%g, %v) = %g, want %g", tt.size, tt.isMatrix, got, tt.want)
		}
	}
}
