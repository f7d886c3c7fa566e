// Package scope defines the addressing model for lighting devices:
// device, output and segment refs, the selection tree projected from a
// device snapshot, and the normalization rules that keep a selection
// valid as hardware comes and goes.
//
// A Ref names a control point at one of three levels. Normalize repairs
// arbitrary refs against the current device list and is the single
// canonicalization step all consumers share: the tree, zone projection,
// layout and command handling all operate on normalized refs only.
//
// BuildTree flattens the hierarchy into an arena of nodes keyed by
// stable string ids, so snapshots can be diffed cheaply and clients can
// retain selection state across rescans.
package scope
