package api

import (
	"image/png"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/prismled/prism-core/internal/layout"
	"github.com/prismled/prism-core/internal/render"
	"github.com/prismled/prism-core/internal/scope"
	"github.com/prismled/prism-core/internal/zones"
)

// handleGetZones returns the zone projection for one device, filtered to
// the selection given by output_id/segment_id query parameters.
func (s *Server) handleGetZones(w http.ResponseWriter, r *http.Request) {
	port := chi.URLParam(r, "port")
	dev, err := s.registry.Device(port)
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}

	sel := s.queryScope(r, port)
	projection := zones.Project(&dev)
	visible := zones.FilterVisible(projection.Zones, sel)

	writeJSON(w, http.StatusOK, map[string]any{
		"zones":      visible,
		"total_leds": projection.TotalLeds,
	})
}

// handleGetLayout computes block placement for one device in a viewport.
//
// Query parameters: width and height (CSS pixels, required), plus the
// optional output_id/segment_id selection.
func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	port := chi.URLParam(r, "port")
	dev, err := s.registry.Device(port)
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}

	width := queryFloat(r, "width", 0)
	height := queryFloat(r, "height", 0)
	if width <= 0 || height <= 0 {
		writeBadRequest(w, "width and height must be positive")
		return
	}

	sel := s.queryScope(r, port)
	visible := zones.FilterVisible(zones.Project(&dev).Zones, sel)

	writeJSON(w, http.StatusOK, layout.Compute(width, height, visible, sel))
}

// handleGetPreview renders one device's current frame to a PNG.
//
// Query parameters: width and height (CSS pixels, required), optional
// output_id/segment_id selection, optional pixel_ratio.
func (s *Server) handleGetPreview(w http.ResponseWriter, r *http.Request) {
	port := chi.URLParam(r, "port")
	dev, err := s.registry.Device(port)
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}

	width := int(queryFloat(r, "width", 0))
	height := int(queryFloat(r, "height", 0))
	if width <= 0 || height <= 0 {
		writeBadRequest(w, "width and height must be positive")
		return
	}
	pixelRatio := queryFloat(r, "pixel_ratio", s.pixelRatio)

	sel := s.queryScope(r, port)
	projection := zones.Project(&dev)
	visible := zones.FilterVisible(projection.Zones, sel)
	l := layout.Compute(float64(width), float64(height), visible, sel)

	frame := s.deviceFrame(&dev, projection)

	img := render.Paint(l, frame, width, height, pixelRatio)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := png.Encode(w, img); err != nil {
		s.logger.Debug("preview encode failed", "port", port, "error", err)
	}
}

// deviceFrame returns the latest cached colours for a device, scaled by
// each zone's effective brightness, or a placeholder frame when no frame
// has arrived yet.
func (s *Server) deviceFrame(dev *scope.Device, projection zones.Projection) render.Frame {
	if s.stream == nil {
		return render.Frame{IsPlaceholder: true}
	}
	colors, ok := s.stream.GetLatest(dev.Port)
	if !ok {
		return render.Frame{IsPlaceholder: true}
	}

	scaled := make([]scope.Color, len(colors))
	copy(scaled, colors)
	for i := range projection.Zones {
		z := &projection.Zones[i]
		scaleRange(scaled, z.LedStart, z.LedCount, zoneBrightness(dev, z))
	}
	return render.Frame{Colors: scaled}
}

// zoneBrightness resolves the effective brightness for a zone's scope.
func zoneBrightness(dev *scope.Device, z *zones.Zone) int {
	out, ok := dev.Output(z.OutputID)
	if !ok {
		return dev.Brightness.EffectiveValue
	}
	if z.SegmentID != "" {
		if seg, ok := out.Segment(z.SegmentID); ok {
			return seg.Brightness.EffectiveValue
		}
	}
	return out.Brightness.EffectiveValue
}

// scaleRange multiplies a slice of the frame by a 0-100 brightness.
func scaleRange(colors []scope.Color, start, count, brightness int) {
	if brightness >= 100 {
		return
	}
	if brightness < 0 {
		brightness = 0
	}
	end := start + count
	if start < 0 {
		start = 0
	}
	if end > len(colors) {
		end = len(colors)
	}
	for i := start; i < end; i++ {
		c := &colors[i]
		c.R = uint8(int(c.R) * brightness / 100)
		c.G = uint8(int(c.G) * brightness / 100)
		c.B = uint8(int(c.B) * brightness / 100)
	}
}

// queryScope builds a normalized selection from query parameters.
func (s *Server) queryScope(r *http.Request, port string) scope.Ref {
	return s.resolveScope(port, scopeRequest{
		OutputID:  r.URL.Query().Get("output_id"),
		SegmentID: r.URL.Query().Get("segment_id"),
	})
}

// queryFloat parses a float query parameter, falling back to a default.
func queryFloat(r *http.Request, key string, def float64) float64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}
