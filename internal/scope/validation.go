package scope

import (
	"fmt"
	"slices"
)

// ValidateSegments checks a replacement segment list against an output's
// capabilities. It returns nil when the list may be applied.
//
// Only Linear outputs carry segments, and only when the hardware marks
// the output editable. Segment totals must account for every LED on the
// output exactly once.
func ValidateSegments(out *OutputPort, segments []SegmentDefinition) error {
	if out.OutputType != SegmentLinear {
		return fmt.Errorf("%w: output %q is %s", ErrOutputNotLinear, out.ID, out.OutputType)
	}
	if !out.Capabilities.Editable {
		return fmt.Errorf("%w: output %q", ErrOutputNotEditable, out.ID)
	}

	for i := range segments {
		seg := &segments[i]
		if !slices.Contains(out.Capabilities.AllowedSegmentTypes, seg.SegmentType) {
			return fmt.Errorf("%w: %s on output %q", ErrSegmentTypeDenied, seg.SegmentType, out.ID)
		}
		switch seg.SegmentType {
		case SegmentSingle:
			if seg.LedsCount != 1 {
				return fmt.Errorf("%w: single segment %q has leds_count %d",
					ErrSegmentLedMismatch, seg.Name, seg.LedsCount)
			}
		case SegmentMatrix:
			if !seg.Matrix.Valid() {
				return fmt.Errorf("%w: matrix segment %q has no valid matrix map",
					ErrSegmentLedMismatch, seg.Name)
			}
			if physical := seg.Matrix.LedCount(); physical != seg.LedsCount {
				return fmt.Errorf("%w: matrix segment %q declares %d leds, map has %d",
					ErrSegmentLedMismatch, seg.Name, seg.LedsCount, physical)
			}
		}
	}

	total := 0
	for i := range segments {
		total += segments[i].LedsCount
	}
	if total != out.LedsCount {
		return fmt.Errorf("%w: segments total %d, output has %d leds",
			ErrTotalLedMismatch, total, out.LedsCount)
	}
	caps := out.Capabilities
	if total < caps.MinTotalLeds || total > caps.MaxTotalLeds {
		return fmt.Errorf("%w: total %d outside %d..%d",
			ErrTotalLedRange, total, caps.MinTotalLeds, caps.MaxTotalLeds)
	}
	if len(caps.AllowedTotalLeds) > 0 && !slices.Contains(caps.AllowedTotalLeds, total) {
		return fmt.Errorf("%w: total %d not in allowed list %v",
			ErrTotalLedRange, total, caps.AllowedTotalLeds)
	}
	return nil
}
