// Package layout computes pixel geometry for rendering a device's zones
// inside an arbitrary viewport. All zones share a single cell size, found
// by binary search over the largest size whose row packing still fits the
// viewport, so previews stay visually uniform no matter how lopsided the
// zone list is.
package layout
