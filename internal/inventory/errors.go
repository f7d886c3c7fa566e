package inventory

import "errors"

// Sentinel errors for registry operations.
var (
	ErrInvalidScope      = errors.New("inventory: segment scope requires an output id")
	ErrNoActiveEffect    = errors.New("inventory: no active effect in scope hierarchy")
	ErrInvalidBrightness = errors.New("inventory: brightness must be between 0 and 100")
	ErrConfigNotFound    = errors.New("inventory: no persisted config for device")
)
