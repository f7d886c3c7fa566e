package scope

// Normalize repairs a ref against the current device list so that every
// consumer sees the same canonical selection.
//
// Rules, applied in order:
//
//  1. Unknown port: the ref is returned unchanged. The device may still
//     be connecting; callers keep the selection until the next snapshot.
//  2. Single-output device: a bare device ref is compressed to that
//     output, matching the merged node the tree presents.
//  3. Stale output id: falls back to the sole output when the device has
//     exactly one, otherwise to the bare device.
//  4. Stale segment id: dropped, leaving the output ref.
//
// Normalize is total and idempotent: it never fails, and applying it to
// its own result is a no-op.
func Normalize(ref Ref, devices []Device) Ref {
	dev, ok := findDevice(devices, ref.Port)
	if !ok {
		return ref
	}

	if ref.OutputID == "" {
		if len(dev.Outputs) == 1 {
			return Ref{Port: ref.Port, OutputID: dev.Outputs[0].ID}
		}
		return Ref{Port: ref.Port}
	}

	out, ok := dev.Output(ref.OutputID)
	if !ok {
		if len(dev.Outputs) == 1 {
			return Ref{Port: ref.Port, OutputID: dev.Outputs[0].ID}
		}
		return Ref{Port: ref.Port}
	}

	if ref.SegmentID == "" {
		return Ref{Port: ref.Port, OutputID: out.ID}
	}
	if _, ok := out.Segment(ref.SegmentID); !ok {
		return Ref{Port: ref.Port, OutputID: out.ID}
	}
	return Ref{Port: ref.Port, OutputID: out.ID, SegmentID: ref.SegmentID}
}
