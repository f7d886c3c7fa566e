// Package zones flattens a device's outputs and segments into renderable
// zones: contiguous LED ranges with a 2D grid shape attached. The
// projection assigns each zone its start offset in the device's combined
// color frame, so a renderer can slice one flat frame across every grid
// on screen.
package zones
