package inventory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prismled/prism-core/internal/infrastructure/logging"
	"github.com/prismled/prism-core/internal/scope"
)

type managedDevice struct {
	def Definition
	cfg deviceConfig
}

// Registry is the in-memory device inventory. All access is serialized
// by one RWMutex; reads hand out freshly built DTOs so callers can
// never observe a half-applied mutation.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*managedDevice
	logger  *logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *logging.Logger) *Registry {
	return &Registry{
		devices: make(map[string]*managedDevice),
		logger:  logger.With("component", "inventory"),
	}
}

// ApplySnapshot replaces the device set with the hardware service's
// announcement. Known ports keep their configuration, re-synced against
// the possibly changed output definitions; vanished ports are dropped.
func (r *Registry) ApplySnapshot(defs []Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]*managedDevice, len(defs))
	for i := range defs {
		def := defs[i]
		if md, ok := r.devices[def.Port]; ok {
			md.def = def
			md.cfg.syncWithOutputDefs(def.Outputs)
			next[def.Port] = md
			continue
		}
		next[def.Port] = &managedDevice{def: def, cfg: newDeviceConfig(&def)}
	}
	for port := range r.devices {
		if _, ok := next[port]; !ok {
			r.logger.Info("device removed", "port", port)
		}
	}
	r.devices = next
}

// Ports returns the known ports in sorted order.
func (r *Registry) Ports() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ports := make([]string, 0, len(r.devices))
	for port := range r.devices {
		ports = append(ports, port)
	}
	sort.Strings(ports)
	return ports
}

// Devices builds DTOs for every known device, sorted by port.
func (r *Registry) Devices() []scope.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ports := make([]string, 0, len(r.devices))
	for port := range r.devices {
		ports = append(ports, port)
	}
	sort.Strings(ports)

	out := make([]scope.Device, 0, len(ports))
	for _, port := range ports {
		out = append(out, buildDeviceDTO(r.devices[port]))
	}
	return out
}

// Device builds the DTO for one port.
func (r *Registry) Device(port string) (scope.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	md, ok := r.devices[port]
	if !ok {
		return scope.Device{}, fmt.Errorf("%w: %s", scope.ErrDeviceNotFound, port)
	}
	return buildDeviceDTO(md), nil
}

// SetScopeEffect selects an effect at a scope, or clears the selection
// when effectID is empty. Selecting at a device or output forces every
// scope below it back to inheriting, so the new effect visibly covers
// its whole subtree. Continuity is preserved: re-selecting the effect
// already in force keeps its original start time, so the animation does
// not restart.
func (r *Registry) SetScopeEffect(port, outputID, segmentID, effectID string) error {
	if outputID == "" && segmentID != "" {
		return ErrInvalidScope
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	md, ok := r.devices[port]
	if !ok {
		return fmt.Errorf("%w: %s", scope.ErrDeviceNotFound, port)
	}
	cfg := &md.cfg
	current := resolveEffect(cfg, port, outputID, segmentID)

	startedAt := func() time.Time {
		if current != nil && current.effectID == effectID {
			return current.startedAt
		}
		return time.Now()
	}

	switch {
	case outputID == "":
		if effectID == "" {
			cfg.mode.setInherit()
			return nil
		}
		cfg.mode.setEffect(effectID, startedAt())
		for i := range cfg.outputs {
			out := &cfg.outputs[i]
			out.mode.setInherit()
			for j := range out.segments {
				out.segments[j].mode.setInherit()
			}
		}
	case segmentID == "":
		out := cfg.output(outputID)
		if out == nil {
			return fmt.Errorf("%w: %s", scope.ErrOutputNotFound, outputID)
		}
		if effectID == "" {
			out.mode.setInherit()
			return nil
		}
		out.mode.setEffect(effectID, startedAt())
		for j := range out.segments {
			out.segments[j].mode.setInherit()
		}
	default:
		out := cfg.output(outputID)
		if out == nil {
			return fmt.Errorf("%w: %s", scope.ErrOutputNotFound, outputID)
		}
		seg := out.segment(segmentID)
		if seg == nil {
			return fmt.Errorf("%w: %s", scope.ErrSegmentNotFound, segmentID)
		}
		if effectID == "" {
			seg.mode.setInherit()
			return nil
		}
		seg.mode.setEffect(effectID, startedAt())
	}
	return nil
}

// UpdateScopeEffectParams merges parameters into the scope's store for
// the effect currently in force there. A scope that was inheriting is
// promoted to an explicit selection of that same effect first, keeping
// the inherited start time, so tweaking a knob pins the effect to the
// scope without restarting it.
func (r *Registry) UpdateScopeEffectParams(port, outputID, segmentID string, params map[string]any) error {
	if outputID == "" && segmentID != "" {
		return ErrInvalidScope
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	md, ok := r.devices[port]
	if !ok {
		return fmt.Errorf("%w: %s", scope.ErrDeviceNotFound, port)
	}
	cfg := &md.cfg
	resolved := resolveEffect(cfg, port, outputID, segmentID)
	if resolved == nil {
		return ErrNoActiveEffect
	}

	ensureExplicit := func(mode *modeConfig) string {
		if mode.active != nil {
			return mode.active.effectID
		}
		mode.setEffect(resolved.effectID, resolved.startedAt)
		return resolved.effectID
	}

	var mode *modeConfig
	switch {
	case outputID == "":
		mode = &cfg.mode
	case segmentID == "":
		out := cfg.output(outputID)
		if out == nil {
			return fmt.Errorf("%w: %s", scope.ErrOutputNotFound, outputID)
		}
		mode = &out.mode
	default:
		out := cfg.output(outputID)
		if out == nil {
			return fmt.Errorf("%w: %s", scope.ErrOutputNotFound, outputID)
		}
		seg := out.segment(segmentID)
		if seg == nil {
			return fmt.Errorf("%w: %s", scope.ErrSegmentNotFound, segmentID)
		}
		mode = &seg.mode
	}

	mode.mergeParams(ensureExplicit(mode), params)
	return nil
}

// SetScopeBrightness stores brightness at a scope. Like effects, an
// explicit value at device or output level resets the overrides below
// it. A negative value clears an output or segment override so the
// scope follows its parent again; the device level always has a value
// and rejects negatives.
func (r *Registry) SetScopeBrightness(port, outputID, segmentID string, value int) error {
	if outputID == "" && segmentID != "" {
		return ErrInvalidScope
	}
	if value > 100 || (value < 0 && outputID == "") {
		return fmt.Errorf("%w: %d", ErrInvalidBrightness, value)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	md, ok := r.devices[port]
	if !ok {
		return fmt.Errorf("%w: %s", scope.ErrDeviceNotFound, port)
	}
	cfg := &md.cfg

	switch {
	case outputID == "":
		cfg.brightness = value
		for i := range cfg.outputs {
			out := &cfg.outputs[i]
			out.brightness = nil
			for j := range out.segments {
				out.segments[j].brightness = nil
			}
		}
	case segmentID == "":
		out := cfg.output(outputID)
		if out == nil {
			return fmt.Errorf("%w: %s", scope.ErrOutputNotFound, outputID)
		}
		if value < 0 {
			out.brightness = nil
			return nil
		}
		v := value
		out.brightness = &v
		for j := range out.segments {
			out.segments[j].brightness = nil
		}
	default:
		out := cfg.output(outputID)
		if out == nil {
			return fmt.Errorf("%w: %s", scope.ErrOutputNotFound, outputID)
		}
		seg := out.segment(segmentID)
		if seg == nil {
			return fmt.Errorf("%w: %s", scope.ErrSegmentNotFound, segmentID)
		}
		if value < 0 {
			seg.brightness = nil
			return nil
		}
		v := value
		seg.brightness = &v
	}
	return nil
}

// SetOutputSegments replaces an output's user segment list after
// validating it against the output's capabilities. Segments keep their
// effect state when their id survives the edit; definitions without an
// id are assigned one.
func (r *Registry) SetOutputSegments(port, outputID string, segments []scope.SegmentDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	md, ok := r.devices[port]
	if !ok {
		return fmt.Errorf("%w: %s", scope.ErrDeviceNotFound, port)
	}
	out := md.cfg.output(outputID)
	if out == nil {
		return fmt.Errorf("%w: %s", scope.ErrOutputNotFound, outputID)
	}

	dto := buildOutputDTO(&md.cfg, port, out)
	if err := scope.ValidateSegments(&dto, segments); err != nil {
		return err
	}

	oldByID := make(map[string]segmentConfig, len(out.segments))
	for _, s := range out.segments {
		oldByID[s.id] = s
	}

	next := make([]segmentConfig, 0, len(segments))
	for _, def := range segments {
		id := def.ID
		if id == "" {
			id = uuid.NewString()
		}
		sc := segmentConfig{
			id:          id,
			name:        def.Name,
			segmentType: def.SegmentType,
			ledsCount:   def.LedsCount,
			matrix:      def.Matrix.Clone(),
		}
		if old, ok := oldByID[id]; ok {
			sc.mode = old.mode
			sc.brightness = old.brightness
		}
		next = append(next, sc)
	}
	out.segments = next
	return nil
}

// resolveEffect walks from the addressed scope up toward the device and
// returns the nearest explicit selection, or nil when the whole chain
// is off. An unknown output or segment resolves to nil rather than
// erroring; mutation paths validate ids before resolving.
func resolveEffect(cfg *deviceConfig, port, outputID, segmentID string) *resolvedEffect {
	switch {
	case outputID == "":
		if cfg.mode.active == nil {
			return nil
		}
		return &resolvedEffect{
			effectID:  cfg.mode.active.effectID,
			from:      scope.Ref{Port: port},
			startedAt: cfg.mode.active.startedAt,
			params:    cfg.mode.paramsForEffect(cfg.mode.active.effectID),
		}
	case segmentID == "":
		out := cfg.output(outputID)
		if out == nil {
			return nil
		}
		if out.mode.active == nil {
			return resolveEffect(cfg, port, "", "")
		}
		return &resolvedEffect{
			effectID:  out.mode.active.effectID,
			from:      scope.Ref{Port: port, OutputID: out.id},
			startedAt: out.mode.active.startedAt,
			params:    out.mode.paramsForEffect(out.mode.active.effectID),
		}
	default:
		out := cfg.output(outputID)
		if out == nil {
			return nil
		}
		seg := out.segment(segmentID)
		if seg == nil {
			return nil
		}
		if seg.mode.active == nil {
			return resolveEffect(cfg, port, outputID, "")
		}
		return &resolvedEffect{
			effectID:  seg.mode.active.effectID,
			from:      scope.Ref{Port: port, OutputID: out.id, SegmentID: seg.id},
			startedAt: seg.mode.active.startedAt,
			params:    seg.mode.paramsForEffect(seg.mode.active.effectID),
		}
	}
}

// resolveBrightness returns the effective brightness for a scope along
// with the scope that supplied it. The device level always resolves.
func resolveBrightness(cfg *deviceConfig, port, outputID, segmentID string) (int, scope.Ref) {
	if outputID != "" {
		if out := cfg.output(outputID); out != nil {
			if segmentID != "" {
				if seg := out.segment(segmentID); seg != nil && seg.brightness != nil {
					return *seg.brightness, scope.Ref{Port: port, OutputID: outputID, SegmentID: segmentID}
				}
			}
			if out.brightness != nil {
				return *out.brightness, scope.Ref{Port: port, OutputID: outputID}
			}
		}
	}
	return cfg.brightness, scope.Ref{Port: port}
}

func buildModeState(cfg *deviceConfig, port, outputID, segmentID string, own *modeConfig) scope.ModeState {
	state := scope.ModeState{SelectedEffectID: own.selectedEffectID()}
	if resolved := resolveEffect(cfg, port, outputID, segmentID); resolved != nil {
		from := resolved.from
		state.EffectiveEffectID = resolved.effectID
		state.EffectiveParams = resolved.params
		state.EffectiveFrom = &from
	}
	return state
}

func buildBrightnessState(cfg *deviceConfig, port, outputID, segmentID string, own *int) scope.BrightnessState {
	value, from := resolveBrightness(cfg, port, outputID, segmentID)
	state := scope.BrightnessState{
		EffectiveValue: value,
		EffectiveFrom:  &from,
		IsFollowing:    own == nil,
	}
	if own != nil {
		v := *own
		state.Value = &v
	}
	return state
}

func buildDeviceDTO(md *managedDevice) scope.Device {
	cfg := &md.cfg
	port := md.def.Port
	own := cfg.brightness

	dev := scope.Device{
		Port:        port,
		Model:       md.def.Model,
		Description: md.def.Description,
		ID:          md.def.ID,
		DeviceType:  md.def.DeviceType,
		Mode:        buildModeState(cfg, port, "", "", &cfg.mode),
		Brightness:  buildBrightnessState(cfg, port, "", "", &own),
	}
	for i := range cfg.outputs {
		dev.Outputs = append(dev.Outputs, buildOutputDTO(cfg, port, &cfg.outputs[i]))
	}
	return dev
}

func buildOutputDTO(cfg *deviceConfig, port string, out *outputConfig) scope.OutputPort {
	dto := scope.OutputPort{
		ID:           out.id,
		Name:         out.name,
		OutputType:   out.outputType,
		LedsCount:    out.ledsCount,
		Matrix:       out.matrix.Clone(),
		Capabilities: out.capabilities,
		Mode:         buildModeState(cfg, port, out.id, "", &out.mode),
		Brightness:   buildBrightnessState(cfg, port, out.id, "", out.brightness),
	}
	for i := range out.segments {
		seg := &out.segments[i]
		dto.Segments = append(dto.Segments, scope.Segment{
			ID:          seg.id,
			Name:        seg.name,
			SegmentType: seg.segmentType,
			LedsCount:   seg.ledsCount,
			Matrix:      seg.matrix.Clone(),
			Mode:        buildModeState(cfg, port, out.id, seg.id, &seg.mode),
			Brightness:  buildBrightnessState(cfg, port, out.id, seg.id, seg.brightness),
		})
	}
	return dto
}
