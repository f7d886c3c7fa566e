package scope

// Ref identifies a control point in the device/output/segment hierarchy.
// An empty OutputID or SegmentID means "not addressed at that level".
//
// Invariant: SegmentID is only meaningful when OutputID is set and names a
// Linear output containing that segment. Normalize enforces this.
type Ref struct {
	Port      string `json:"port"`
	OutputID  string `json:"output_id,omitempty"`
	SegmentID string `json:"segment_id,omitempty"`
}

// IsDevice reports whether the ref addresses the device level.
func (r Ref) IsDevice() bool { return r.OutputID == "" }

// IsSegment reports whether the ref addresses a segment.
func (r Ref) IsSegment() bool { return r.OutputID != "" && r.SegmentID != "" }

// Color is a single LED colour value.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// SegmentType describes the physical layout of a region of LEDs.
type SegmentType string

// SegmentType constants.
const (
	SegmentSingle SegmentType = "single"
	SegmentLinear SegmentType = "linear"
	SegmentMatrix SegmentType = "matrix"
)

// DeviceType is a high-level device classification used for UI grouping.
type DeviceType string

// DeviceType constants.
const (
	DeviceTypeMotherboard DeviceType = "motherboard"
	DeviceTypeDram        DeviceType = "dram"
	DeviceTypeGpu         DeviceType = "gpu"
	DeviceTypeCooler      DeviceType = "cooler"
	DeviceTypeLedStrip    DeviceType = "led_strip"
	DeviceTypeKeyboard    DeviceType = "keyboard"
	DeviceTypeMouse       DeviceType = "mouse"
	DeviceTypeMouseMat    DeviceType = "mouse_mat"
	DeviceTypeHeadset     DeviceType = "headset"
	DeviceTypeGamepad     DeviceType = "gamepad"
	DeviceTypeLight       DeviceType = "light"
	DeviceTypeSpeaker     DeviceType = "speaker"
	DeviceTypeVirtual     DeviceType = "virtual"
	DeviceTypeStorage     DeviceType = "storage"
	DeviceTypeCase        DeviceType = "case"
	DeviceTypeMicrophone  DeviceType = "microphone"
	DeviceTypeAccessory   DeviceType = "accessory"
	DeviceTypeKeypad      DeviceType = "keypad"
	DeviceTypeLaptop      DeviceType = "laptop"
	DeviceTypeMonitor     DeviceType = "monitor"
	DeviceTypeUnknown     DeviceType = "unknown"
)

// MatrixMap maps a virtual 2D grid onto physical LED indices.
// Map is row-major with length Width*Height; nil entries are cells with
// no physical LED behind them.
type MatrixMap struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Map    []*int `json:"map"`
}

// Valid reports whether the map's declared dimensions match its cell count.
func (m *MatrixMap) Valid() bool {
	return m != nil && m.Width > 0 && m.Height > 0 && len(m.Map) == m.Width*m.Height
}

// LedCount returns the number of cells backed by a physical LED.
func (m *MatrixMap) LedCount() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, cell := range m.Map {
		if cell != nil {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the matrix map.
func (m *MatrixMap) Clone() *MatrixMap {
	if m == nil {
		return nil
	}
	cpy := &MatrixMap{Width: m.Width, Height: m.Height, Map: make([]*int, len(m.Map))}
	for i, cell := range m.Map {
		if cell != nil {
			v := *cell
			cpy.Map[i] = &v
		}
	}
	return cpy
}

// OutputCapabilities describes what segment editing an output allows.
type OutputCapabilities struct {
	// Editable is whether the user may replace this output's segment list.
	Editable bool `json:"editable"`
	// MinTotalLeds is the minimum total LED count across segments.
	MinTotalLeds int `json:"min_total_leds"`
	// MaxTotalLeds is the maximum total LED count across segments.
	MaxTotalLeds int `json:"max_total_leds"`
	// AllowedTotalLeds optionally restricts totals to a discrete list.
	AllowedTotalLeds []int `json:"allowed_total_leds,omitempty"`
	// AllowedSegmentTypes are the segment types accepted when editing.
	AllowedSegmentTypes []SegmentType `json:"allowed_segment_types"`
}

// ModeState is the resolved effect state at one scope.
type ModeState struct {
	// SelectedEffectID is the explicit choice at this scope. Empty means
	// "inherit from parent".
	SelectedEffectID string `json:"selected_effect_id,omitempty"`
	// EffectiveEffectID is the effect after inheritance. Empty means off.
	EffectiveEffectID string `json:"effective_effect_id,omitempty"`
	// EffectiveParams are the parameters from the origin scope.
	EffectiveParams map[string]any `json:"effective_params,omitempty"`
	// EffectiveFrom is the scope that supplied the effective effect.
	EffectiveFrom *Ref `json:"effective_from,omitempty"`
}

// BrightnessState is the resolved brightness at one scope.
type BrightnessState struct {
	// Value is the brightness stored at this scope (0-100). Nil means
	// this scope follows its parent.
	Value *int `json:"value,omitempty"`
	// EffectiveValue is the brightness after inheritance.
	EffectiveValue int `json:"effective_value"`
	// EffectiveFrom is the scope that supplied the effective value.
	EffectiveFrom *Ref `json:"effective_from,omitempty"`
	// IsFollowing is true when this scope inherits rather than overrides.
	IsFollowing bool `json:"is_following"`
}

// ControlState is the UI-facing classification of a scope's mode.
type ControlState string

// ControlState constants.
const (
	// ControlNone means no effect is active at or above this scope.
	ControlNone ControlState = "none"
	// ControlExplicit means this scope selected its own effect.
	ControlExplicit ControlState = "explicit"
	// ControlInherited means the effective effect comes from an ancestor.
	ControlInherited ControlState = "inherited"
)

// ControlStateFromMode classifies a mode state for UI presentation.
func ControlStateFromMode(m ModeState) ControlState {
	switch {
	case m.EffectiveEffectID == "":
		return ControlNone
	case m.SelectedEffectID != "":
		return ControlExplicit
	default:
		return ControlInherited
	}
}

// Segment is a user-defined region of a Linear output.
type Segment struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	SegmentType SegmentType     `json:"segment_type"`
	LedsCount   int             `json:"leds_count"`
	Matrix      *MatrixMap      `json:"matrix,omitempty"`
	Mode        ModeState       `json:"mode"`
	Brightness  BrightnessState `json:"brightness"`
}

// OutputPort is one physical output of a device.
type OutputPort struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	OutputType   SegmentType        `json:"output_type"`
	LedsCount    int                `json:"leds_count"`
	Matrix       *MatrixMap         `json:"matrix,omitempty"`
	Capabilities OutputCapabilities `json:"capabilities"`
	Mode         ModeState          `json:"mode"`
	Brightness   BrightnessState    `json:"brightness"`
	Segments     []Segment          `json:"segments"`
}

// Segment returns the segment with the given id, if present.
func (o *OutputPort) Segment(id string) (*Segment, bool) {
	for i := range o.Segments {
		if o.Segments[i].ID == id {
			return &o.Segments[i], true
		}
	}
	return nil, false
}

// Device is one addressable lighting device in the current snapshot.
// Snapshots are replaced wholesale on each rescan; Device values are
// never partially mutated.
type Device struct {
	Port        string          `json:"port"`
	Model       string          `json:"model"`
	Description string          `json:"description"`
	ID          string          `json:"id"`
	DeviceType  DeviceType      `json:"device_type"`
	Brightness  BrightnessState `json:"brightness"`
	Mode        ModeState       `json:"mode"`
	Outputs     []OutputPort    `json:"outputs"`
}

// Output returns the output with the given id, if present.
func (d *Device) Output(id string) (*OutputPort, bool) {
	for i := range d.Outputs {
		if d.Outputs[i].ID == id {
			return &d.Outputs[i], true
		}
	}
	return nil, false
}

// TotalLeds returns the sum of LED counts across outputs.
func (d *Device) TotalLeds() int {
	n := 0
	for i := range d.Outputs {
		n += d.Outputs[i].LedsCount
	}
	return n
}

// SegmentDefinition is the payload for replacing an output's segments.
type SegmentDefinition struct {
	// ID is a stable id for the segment. Empty ids are assigned by the
	// registry when the definition is applied.
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	SegmentType SegmentType `json:"segment_type"`
	LedsCount   int         `json:"leds_count"`
	Matrix      *MatrixMap  `json:"matrix,omitempty"`
}

// findDevice returns the device with the given port, if present.
func findDevice(devices []Device, port string) (*Device, bool) {
	for i := range devices {
		if devices[i].Port == port {
			return &devices[i], true
		}
	}
	return nil, false
}
