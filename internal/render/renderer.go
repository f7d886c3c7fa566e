package render

import (
	"image"

	"github.com/gogpu/gg"

	"github.com/prismled/prism-core/internal/layout"
	"github.com/prismled/prism-core/internal/scope"
)

// Corner radius caps in CSS pixels. Matrix grids pack tighter, so their
// cells round less before they start reading as circles.
const (
	radiusRate      = 0.25
	radiusCapMatrix = 2.5
	radiusCapLinear = 4.0
)

// Placeholder shades, in 0..1 channel values.
var (
	placeholderCell = gg.RGB(0.45, 0.45, 0.45)
	absentCell      = gg.RGBA2(0.5, 0.5, 0.5, 0.12)
	background      = gg.RGBA2(0, 0, 0, 0)
)

// Frame is one input to the renderer: device colors plus whether they
// are real or a default placeholder pattern.
type Frame struct {
	Colors        []scope.Color
	IsPlaceholder bool
}

// Paint draws every block of a layout onto a fresh surface of the given
// CSS pixel dimensions. pixelRatio scales the backing store for high
// density displays; values at or below zero fall back to 1.
//
// Cells walk each block's grid row-major. Indices beyond the zone's LED
// range are skipped. Matrix cells with no physical LED get a faint
// placeholder so the grid's shape stays readable. Frames shorter than
// the device render missing LEDs black rather than failing.
func Paint(l layout.Multi, frame Frame, width, height int, pixelRatio float64) image.Image {
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	dc := gg.NewContext(
		int(float64(width)*pixelRatio),
		int(float64(height)*pixelRatio),
	)
	dc.ClearWithColor(background)

	for i := range l.Blocks {
		paintBlock(dc, &l.Blocks[i], l.Size, l.Gap, pixelRatio, frame)
	}
	return dc.Image()
}

// paintBlock scales CSS coordinates to device pixels itself: gg's
// rounded rectangle appends raw coordinates to the path without
// applying the context matrix, so Scale on the context would leave the
// cells unscaled.
func paintBlock(dc *gg.Context, b *layout.Block, size, gap, pr float64, frame Frame) {
	radius := cornerRadius(size, b.Matrix != nil) * pr
	side := size * pr
	for row := 0; row < b.Rows; row++ {
		for col := 0; col < b.Cols; col++ {
			cell := row*b.Cols + col
			x := (b.X + float64(col)*(size+gap)) * pr
			y := (b.Y + float64(row)*(size+gap)) * pr

			var led int
			if b.Matrix != nil {
				if cell >= len(b.Matrix.Map) {
					continue
				}
				phys := b.Matrix.Map[cell]
				if phys == nil {
					setColor(dc, absentCell)
					dc.DrawRoundedRectangle(x, y, side, side, radius)
					dc.Fill()
					continue
				}
				led = b.LedStart + *phys
			} else {
				if cell >= b.LedCount {
					continue
				}
				led = b.LedStart + cell
			}

			setColor(dc, cellColor(frame, led))
			dc.DrawRoundedRectangle(x, y, side, side, radius)
			dc.Fill()
		}
	}
}

func setColor(dc *gg.Context, c gg.RGBA) {
	dc.SetRGBA(c.R, c.G, c.B, c.A)
}

func cellColor(frame Frame, led int) gg.RGBA {
	if frame.IsPlaceholder {
		return placeholderCell
	}
	if led < 0 || led >= len(frame.Colors) {
		return gg.Black
	}
	c := frame.Colors[led]
	return gg.RGB(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
}

func cornerRadius(size float64, isMatrix bool) float64 {
	r := size * radiusRate
	limit := radiusCapLinear
	if isMatrix {
		limit = radiusCapMatrix
	}
	if r > limit {
		r = limit
	}
	return r
}
