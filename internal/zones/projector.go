package zones

import (
	"math"

	"github.com/prismled/prism-core/internal/scope"
)

// Zone is one renderable grid of LEDs with its slice of the device frame.
type Zone struct {
	// ID is "<outputId>" for whole-output zones and
	// "<outputId>:<segmentId>" for segment zones.
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	OutputID   string            `json:"output_id"`
	OutputName string            `json:"output_name"`
	SegmentID  string            `json:"segment_id,omitempty"`
	Type       scope.SegmentType `json:"type"`

	// LedStart and LedCount locate the zone in the device frame.
	LedStart int `json:"led_start"`
	LedCount int `json:"led_count"`

	// Cols and Rows give the grid shape. For matrix zones they are the
	// declared dimensions and Matrix carries the presence map; for the
	// rest they are a near-square auto grid.
	Cols   int              `json:"cols"`
	Rows   int              `json:"rows"`
	Matrix *scope.MatrixMap `json:"matrix,omitempty"`
}

// IsMatrix reports whether the zone has a physical presence map.
func (z *Zone) IsMatrix() bool { return z.Matrix != nil }

// Projection is the full zone list for one device.
type Projection struct {
	Zones []Zone `json:"zones"`
	// TotalLeds is the device frame length, never below 1.
	TotalLeds int `json:"total_leds"`
}

// Project flattens a device into zones. Outputs are walked in order and
// each zone receives the running LED offset, so zone ranges tile the
// combined frame exactly.
func Project(dev *scope.Device) Projection {
	var p Projection
	offset := 0
	for i := range dev.Outputs {
		out := &dev.Outputs[i]
		if out.OutputType == scope.SegmentLinear && len(out.Segments) > 0 {
			for j := range out.Segments {
				seg := &out.Segments[j]
				z := Zone{
					ID:         out.ID + ":" + seg.ID,
					Name:       seg.Name,
					OutputID:   out.ID,
					OutputName: out.Name,
					SegmentID:  seg.ID,
					Type:       seg.SegmentType,
					LedStart:   offset,
					LedCount:   seg.LedsCount,
				}
				shapeZone(&z, seg.SegmentType, seg.LedsCount, seg.Matrix)
				p.Zones = append(p.Zones, z)
				offset += seg.LedsCount
			}
			continue
		}

		z := Zone{
			ID:         out.ID,
			Name:       out.Name,
			OutputID:   out.ID,
			OutputName: out.Name,
			Type:       out.OutputType,
			LedStart:   offset,
			LedCount:   out.LedsCount,
		}
		shapeZone(&z, out.OutputType, out.LedsCount, out.Matrix)
		p.Zones = append(p.Zones, z)
		offset += out.LedsCount
	}
	p.TotalLeds = offset
	if p.TotalLeds < 1 {
		p.TotalLeds = 1
	}
	return p
}

func shapeZone(z *Zone, typ scope.SegmentType, count int, matrix *scope.MatrixMap) {
	switch {
	case typ == scope.SegmentMatrix && matrix.Valid():
		z.Cols = matrix.Width
		z.Rows = matrix.Height
		z.Matrix = matrix.Clone()
	case typ == scope.SegmentSingle:
		z.Cols = 1
		z.Rows = 1
	default:
		z.Cols, z.Rows = autoGrid(count)
	}
}

// autoGrid picks a near-square grid for a strip of n LEDs.
func autoGrid(n int) (cols, rows int) {
	if n < 1 {
		return 1, 1
	}
	cols = int(math.Ceil(math.Sqrt(float64(n))))
	rows = (n + cols - 1) / cols
	return cols, rows
}

// FilterVisible trims the zone list to the current selection level.
// A device-level ref shows everything, an output-level ref shows that
// output's zones, and a segment-level ref isolates the one zone. The
// ref must already be normalized; refs that match nothing yield nil.
func FilterVisible(zs []Zone, sel scope.Ref) []Zone {
	if sel.OutputID == "" {
		return zs
	}
	var visible []Zone
	for _, z := range zs {
		if z.OutputID != sel.OutputID {
			continue
		}
		if sel.SegmentID != "" && z.SegmentID != sel.SegmentID {
			continue
		}
		visible = append(visible, z)
	}
	return visible
}
