// Package stream fans live color frames out to preview consumers.
//
// A single Distributor owns the backend subscription: the first consumer
// triggers EnsureListening, frames are cached per port, and late joiners
// replay the latest frame immediately on subscribe. Consumers that paint
// at display rate wrap their callback in a Throttler, which coalesces
// bursts down to roughly 30 fps while always delivering the newest frame.
package stream
