package scope

import "errors"

// Sentinel errors for scope lookups and segment validation. Callers match
// with errors.Is; wrapped messages carry the offending ids and counts.
var (
	ErrDeviceNotFound  = errors.New("scope: device not found")
	ErrOutputNotFound  = errors.New("scope: output not found")
	ErrSegmentNotFound = errors.New("scope: segment not found")

	ErrOutputNotLinear    = errors.New("scope: output is not linear")
	ErrOutputNotEditable  = errors.New("scope: output is not editable")
	ErrSegmentTypeDenied  = errors.New("scope: segment type not allowed")
	ErrSegmentLedMismatch = errors.New("scope: segment led count mismatch")
	ErrTotalLedMismatch   = errors.New("scope: segment total does not match output")
	ErrTotalLedRange      = errors.New("scope: segment total outside allowed range")
)
