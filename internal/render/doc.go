// Package render rasterizes computed layouts and color frames into RGBA
// preview images. Painting runs inside an actor goroutine that owns the
// drawing surface; callers post typed messages and receive finished
// frames through a callback, so no lock ever guards the canvas.
package render
