package layout

import (
	"math"
	"reflect"
	"testing"

	"github.com/prismled/prism-core/internal/scope"
	"github.com/prismled/prism-core/internal/zones"
)

func sampleZones() []zones.Zone {
	return []zones.Zone{
		{
			ID: "out-a", OutputID: "out-a", Name: "Channel A",
			Type: scope.SegmentLinear, LedStart: 0, LedCount: 10, Cols: 4, Rows: 3,
		},
		{
			ID: "out-b", OutputID: "out-b", Name: "Channel B",
			Type: scope.SegmentLinear, LedStart: 10, LedCount: 16, Cols: 4, Rows: 4,
		},
	}
}

func assertBlocksInViewport(t *testing.T, m Multi, w, h float64) {
	t.Helper()
	const eps = 1e-6
	for _, b := range m.Blocks {
		if b.X < -eps || b.Y < -eps || b.X+b.Width > w+eps || b.Y+b.Height > h+eps {
			t.Errorf("block %s at (%.2f,%.2f) %.2fx%.2f escapes %gx%g viewport",
				b.ZoneID, b.X, b.Y, b.Width, b.Height, w, h)
		}
	}
}

func TestCompute_TwoZonesSingleRow(t *testing.T) {
	m := Compute(200, 80, sampleZones(), scope.Ref{Port: "COM3"})

	if len(m.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(m.Blocks))
	}
	if m.Size <= 0 {
		t.Fatalf("expected positive cell size, got %g", m.Size)
	}
	a, b := m.Blocks[0], m.Blocks[1]
	if a.Y != b.Y {
		t.Errorf("expected a single row, got y=%g and y=%g", a.Y, b.Y)
	}
	if a.X+a.Width >= b.X {
		t.Errorf("blocks overlap: a ends %g, b starts %g", a.X+a.Width, b.X)
	}

	// Rows are right-aligned inside the padded content box.
	rightEdge := 200.0 - padRight
	if math.Abs(b.X+b.Width-rightEdge) > 1e-6 {
		t.Errorf("row right edge = %g, want %g", b.X+b.Width, rightEdge)
	}
	assertBlocksInViewport(t, m, 200, 80)
}

func TestCompute_SizeIsHalfPixelQuantized(t *testing.T) {
	m := Compute(200, 80, sampleZones(), scope.Ref{Port: "COM3"})
	if r := math.Mod(m.Size*2, 1); r != 0 {
		t.Errorf("size %g is not a multiple of 0.5", m.Size)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	a := Compute(317, 143, sampleZones(), scope.Ref{Port: "COM3"})
	b := Compute(317, 143, sampleZones(), scope.Ref{Port: "COM3"})
	if !reflect.DeepEqual(a, b) {
		t.Error("same inputs produced different layouts")
	}
}

func TestCompute_SizeMonotoneInViewport(t *testing.T) {
	zs := sampleZones()
	sel := scope.Ref{Port: "COM3"}
	prev := 0.0
	for _, dim := range []float64{60, 120, 240, 480, 960} {
		m := Compute(dim, dim, zs, sel)
		if m.Size < prev {
			t.Errorf("size shrank from %g to %g at viewport %g", prev, m.Size, dim)
		}
		prev = m.Size
		assertBlocksInViewport(t, m, dim, dim)
	}
}

func TestCompute_SingleZoneHasNoPadding(t *testing.T) {
	zs := sampleZones()[1:]
	m := Compute(100, 100, zs, scope.Ref{Port: "COM3", OutputID: "out-b"})

	if len(m.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(m.Blocks))
	}
	b := m.Blocks[0]
	if b.Y != 0 {
		t.Errorf("single zone should start at the top, got y=%g", b.Y)
	}
	if math.Abs(b.X+b.Width-100) > 1e-6 {
		t.Errorf("single zone should reach the right edge, got %g", b.X+b.Width)
	}
}

func TestCompute_DetailModeReflowsLinearZones(t *testing.T) {
	zs := []zones.Zone{
		{
			ID: "out-a", OutputID: "out-a",
			Type: scope.SegmentLinear, LedCount: 30, Cols: 6, Rows: 5,
		},
	}

	wide := Compute(400, 100, zs, scope.Ref{Port: "COM3", OutputID: "out-a"})
	if len(wide.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(wide.Blocks))
	}
	if wide.Blocks[0].Cols <= wide.Blocks[0].Rows {
		t.Errorf("wide viewport should reflow wide: %dx%d",
			wide.Blocks[0].Cols, wide.Blocks[0].Rows)
	}

	// Device-level selection keeps the projected near-square grid.
	overview := Compute(400, 100, zs, scope.Ref{Port: "COM3"})
	if overview.Blocks[0].Cols != 6 || overview.Blocks[0].Rows != 5 {
		t.Errorf("overview grid = %dx%d, want projected 6x5",
			overview.Blocks[0].Cols, overview.Blocks[0].Rows)
	}
}

func TestCompute_DetailModeKeepsMatrixShape(t *testing.T) {
	zs := []zones.Zone{
		{
			ID: "panel", OutputID: "panel",
			Type: scope.SegmentMatrix, LedCount: 8, Cols: 4, Rows: 2,
			Matrix: &scope.MatrixMap{Width: 4, Height: 2, Map: make([]*int, 8)},
		},
	}
	m := Compute(400, 100, zs, scope.Ref{Port: "COM3", OutputID: "panel"})
	if m.Blocks[0].Cols != 4 || m.Blocks[0].Rows != 2 {
		t.Errorf("matrix grid = %dx%d, want declared 4x2", m.Blocks[0].Cols, m.Blocks[0].Rows)
	}
}

func TestCompute_ActiveFlags(t *testing.T) {
	zs := []zones.Zone{
		{ID: "out-a:seg-1", OutputID: "out-a", SegmentID: "seg-1",
			Type: scope.SegmentLinear, LedCount: 6, Cols: 3, Rows: 2},
		{ID: "out-a:seg-2", OutputID: "out-a", SegmentID: "seg-2",
			Type: scope.SegmentLinear, LedCount: 4, Cols: 2, Rows: 2},
		{ID: "out-b", OutputID: "out-b",
			Type: scope.SegmentLinear, LedCount: 16, Cols: 4, Rows: 4},
	}

	active := func(m Multi) []string {
		var ids []string
		for _, b := range m.Blocks {
			if b.IsActive {
				ids = append(ids, b.ZoneID)
			}
		}
		return ids
	}

	seg := Compute(300, 300, zs, scope.Ref{Port: "COM3", OutputID: "out-a", SegmentID: "seg-2"})
	if got := active(seg); !reflect.DeepEqual(got, []string{"out-a:seg-2"}) {
		t.Errorf("segment selection actives = %v", got)
	}

	out := Compute(300, 300, zs, scope.Ref{Port: "COM3", OutputID: "out-a"})
	if got := active(out); !reflect.DeepEqual(got, []string{"out-a:seg-1", "out-a:seg-2"}) {
		t.Errorf("output selection actives = %v", got)
	}

	dev := Compute(300, 300, zs, scope.Ref{Port: "COM3"})
	if got := active(dev); got != nil {
		t.Errorf("device selection actives = %v, want none", got)
	}

	// With a single output visible there is nothing to distinguish.
	solo := Compute(300, 300, zs[:2], scope.Ref{Port: "COM3", OutputID: "out-a"})
	if got := active(solo); got != nil {
		t.Errorf("solo output actives = %v, want none", got)
	}
}

func TestCompute_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		w, h float64
		zs   []zones.Zone
	}{
		{"no zones", 200, 200, nil},
		{"zero width", 0, 200, sampleZones()},
		{"negative height", 200, -5, sampleZones()},
		{"viewport smaller than padding", 10, 10, sampleZones()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Compute(tt.w, tt.h, tt.zs, scope.Ref{Port: "COM3"})
			if m.Size != 0 || len(m.Blocks) != 0 {
				t.Errorf("expected empty layout, got size=%g blocks=%d", m.Size, len(m.Blocks))
			}
		})
	}
}

func TestReflowCols(t *testing.T) {
	tests := []struct {
		count  int
		aspect float64
		want   int
	}{
		{30, 4.0, 11},
		{30, 0.05, 3},
		{1, 1.0, 1},
		{4, 100.0, 4},
	}
	for _, tt := range tests {
		if got := reflowCols(tt.count, tt.aspect); got != tt.want {
			t.Errorf("reflowCols(%d, %g) = %d, want %d", tt.count, tt.aspect, got, tt.want)
		}
	}
}
