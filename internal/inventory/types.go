package inventory

import "github.com/prismled/prism-core/internal/scope"

// Definition is one device as announced on the retained snapshot topic.
type Definition struct {
	Port        string             `json:"port"`
	Model       string             `json:"model"`
	Description string             `json:"description"`
	ID          string             `json:"id"`
	DeviceType  scope.DeviceType   `json:"device_type"`
	Outputs     []OutputDefinition `json:"outputs"`
}

// OutputDefinition is one hardware output inside a device announcement.
type OutputDefinition struct {
	ID           string                   `json:"id"`
	Name         string                   `json:"name"`
	OutputType   scope.SegmentType        `json:"output_type"`
	LedsCount    int                      `json:"leds_count"`
	Matrix       *scope.MatrixMap         `json:"matrix,omitempty"`
	Capabilities scope.OutputCapabilities `json:"capabilities"`
}

// Snapshot is the full payload of the retained devices topic.
type Snapshot struct {
	Devices []Definition `json:"devices"`
}
