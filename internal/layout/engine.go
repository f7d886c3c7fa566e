package layout

import (
	"math"

	"github.com/prismled/prism-core/internal/scope"
	"github.com/prismled/prism-core/internal/zones"
)

// Geometry constants, in CSS pixels.
const (
	cellGap  = 2.0
	blockGap = 16.0
	rowGap   = 16.0

	padTop    = 16.0
	padRight  = 12.0
	padBottom = 12.0
	padLeft   = 12.0

	maxCellSize   = 64.0
	fitIterations = 18
	minReflowRate = 0.15
)

// Block is one zone placed in the viewport.
type Block struct {
	ZoneID    string `json:"zone_id"`
	OutputID  string `json:"output_id"`
	SegmentID string `json:"segment_id,omitempty"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Cols     int              `json:"cols"`
	Rows     int              `json:"rows"`
	LedStart int              `json:"led_start"`
	LedCount int              `json:"led_count"`
	Matrix   *scope.MatrixMap `json:"matrix,omitempty"`

	// IsActive marks the block the current selection addresses.
	IsActive bool `json:"is_active"`
}

// Multi is a computed layout: one shared cell size and placed blocks.
// A zero Size with no blocks means nothing could be laid out.
type Multi struct {
	Size   float64 `json:"size"`
	Gap    float64 `json:"gap"`
	Blocks []Block `json:"blocks"`
}

type shape struct {
	zone       *zones.Zone
	cols, rows int
}

// Compute lays out the visible zones inside a viewport. The selection
// controls two things: linear zones reflow to the viewport's aspect
// ratio when a single output is in focus, and matching blocks are
// flagged active. The selection must already be normalized.
func Compute(viewportW, viewportH float64, visible []zones.Zone, sel scope.Ref) Multi {
	if len(visible) == 0 || viewportW <= 0 || viewportH <= 0 {
		return Multi{Gap: cellGap}
	}

	pt, pr, pb, pl := padTop, padRight, padBottom, padLeft
	if len(visible) == 1 {
		pt, pr, pb, pl = 0, 0, 0, 0
	}
	contentW := viewportW - pl - pr
	contentH := viewportH - pt - pb
	if contentW <= 0 || contentH <= 0 {
		return Multi{Gap: cellGap}
	}

	shapes := buildShapes(visible, sel, contentW/contentH)

	// Largest uniform cell size whose packing fits, by bisection.
	lo, hi := 0.0, math.Min(maxCellSize, math.Min(contentW, contentH))
	for i := 0; i < fitIterations; i++ {
		mid := (lo + hi) / 2
		if _, ok := packRows(shapes, mid, contentW, contentH); ok {
			lo = mid
		} else {
			hi = mid
		}
	}
	size := math.Floor(lo*2) / 2
	if size <= 0 {
		return Multi{Gap: cellGap}
	}

	rows, ok := packRows(shapes, size, contentW, contentH)
	if !ok {
		return Multi{Gap: cellGap}
	}

	multipleOutputs := countOutputs(visible) > 1
	m := Multi{Size: size, Gap: cellGap}
	y := pt
	for _, row := range rows {
		rowW, rowH := 0.0, 0.0
		for i, s := range row {
			if i > 0 {
				rowW += blockGap
			}
			rowW += blockWidth(s, size)
			rowH = math.Max(rowH, blockHeight(s, size))
		}
		// Rows hug the right edge of the content box.
		x := pl + contentW - rowW
		for _, s := range row {
			z := s.zone
			m.Blocks = append(m.Blocks, Block{
				ZoneID:    z.ID,
				OutputID:  z.OutputID,
				SegmentID: z.SegmentID,
				X:         x,
				Y:         y,
				Width:     blockWidth(s, size),
				Height:    blockHeight(s, size),
				Cols:      s.cols,
				Rows:      s.rows,
				LedStart:  z.LedStart,
				LedCount:  z.LedCount,
				Matrix:    z.Matrix,
				IsActive:  isActive(z, sel, multipleOutputs),
			})
			x += blockWidth(s, size) + blockGap
		}
		y += rowH + rowGap
	}
	return m
}

// buildShapes fixes each zone's grid before sizing. Matrix zones keep
// their declared dimensions; linear zones reflow toward the viewport
// aspect once the user has drilled into an output.
func buildShapes(visible []zones.Zone, sel scope.Ref, aspect float64) []shape {
	detail := sel.OutputID != ""
	shapes := make([]shape, len(visible))
	for i := range visible {
		z := &visible[i]
		cols, rows := z.Cols, z.Rows
		if detail && z.Type == scope.SegmentLinear && z.LedCount > 1 {
			cols = reflowCols(z.LedCount, aspect)
			rows = (z.LedCount + cols - 1) / cols
		}
		shapes[i] = shape{zone: z, cols: cols, rows: rows}
	}
	return shapes
}

func reflowCols(count int, aspect float64) int {
	rate := math.Max(minReflowRate, aspect)
	cols := int(math.Ceil(math.Sqrt(float64(count) * rate)))
	if cols < 1 {
		cols = 1
	}
	if cols > count {
		cols = count
	}
	return cols
}

// packRows greedily fills rows left to right at the given cell size.
// It fails when any single zone is wider than the content box, or when
// the stacked rows overflow its height.
func packRows(shapes []shape, size, contentW, contentH float64) ([][]shape, bool) {
	var rows [][]shape
	var row []shape
	rowW := 0.0
	for _, s := range shapes {
		w := blockWidth(s, size)
		if w > contentW {
			return nil, false
		}
		needed := w
		if len(row) > 0 {
			needed += blockGap
		}
		if len(row) > 0 && rowW+needed > contentW {
			rows = append(rows, row)
			row = nil
			rowW = 0
			needed = w
		}
		row = append(row, s)
		rowW += needed
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	totalH := 0.0
	for i, r := range rows {
		if i > 0 {
			totalH += rowGap
		}
		rowH := 0.0
		for _, s := range r {
			rowH = math.Max(rowH, blockHeight(s, size))
		}
		totalH += rowH
	}
	if totalH > contentH {
		return nil, false
	}
	return rows, true
}

func blockWidth(s shape, size float64) float64 {
	return float64(s.cols)*size + float64(s.cols-1)*cellGap
}

func blockHeight(s shape, size float64) float64 {
	return float64(s.rows)*size + float64(s.rows-1)*cellGap
}

func countOutputs(visible []zones.Zone) int {
	seen := make(map[string]struct{}, len(visible))
	for i := range visible {
		seen[visible[i].OutputID] = struct{}{}
	}
	return len(seen)
}

// isActive decides whether a block should be highlighted. Segment
// selections match their exact zone. Output selections only highlight
// when several outputs are on screen, since a lone output's zones are
// the whole view anyway.
func isActive(z *zones.Zone, sel scope.Ref, multipleOutputs bool) bool {
	if sel.OutputID == "" {
		return false
	}
	if sel.SegmentID != "" {
		return z.OutputID == sel.OutputID && z.SegmentID == sel.SegmentID
	}
	return multipleOutputs && z.OutputID == sel.OutputID
}
