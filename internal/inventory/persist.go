package inventory

import (
	"fmt"
	"time"

	"github.com/prismled/prism-core/internal/scope"
)

// PersistedMode is the durable form of one scope's effect state. Start
// times are not persisted; a restored effect starts fresh.
type PersistedMode struct {
	SelectedEffectID string                    `json:"selected_effect_id,omitempty"`
	ParamsByEffect   map[string]map[string]any `json:"params_by_effect,omitempty"`
}

// PersistedSegment is a durable user segment with its scope state.
type PersistedSegment struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	SegmentType scope.SegmentType `json:"segment_type"`
	LedsCount   int               `json:"leds_count"`
	Matrix      *scope.MatrixMap  `json:"matrix,omitempty"`
	Mode        PersistedMode     `json:"mode"`
	Brightness  *int              `json:"brightness,omitempty"`
}

// PersistedOutput is keyed by the hardware output id.
type PersistedOutput struct {
	ID         string             `json:"id"`
	Mode       PersistedMode      `json:"mode"`
	Brightness *int               `json:"brightness,omitempty"`
	Segments   []PersistedSegment `json:"segments,omitempty"`
}

// PersistedDevice is everything worth keeping for a device across
// restarts, keyed in storage by the device's serial id so config
// follows the hardware between ports.
type PersistedDevice struct {
	Brightness int               `json:"brightness"`
	Mode       PersistedMode     `json:"mode"`
	Outputs    []PersistedOutput `json:"outputs,omitempty"`
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func persistMode(m *modeConfig) PersistedMode {
	p := PersistedMode{SelectedEffectID: m.selectedEffectID()}
	if len(m.paramsByEffect) > 0 {
		p.ParamsByEffect = make(map[string]map[string]any, len(m.paramsByEffect))
		for id, params := range m.paramsByEffect {
			cpy := make(map[string]any, len(params))
			for k, v := range params {
				cpy[k] = v
			}
			p.ParamsByEffect[id] = cpy
		}
	}
	return p
}

func restoreMode(p PersistedMode, now time.Time) modeConfig {
	m := modeConfig{}
	for id, params := range p.ParamsByEffect {
		m.ensureParamsEntry(id)
		m.mergeParams(id, params)
	}
	if p.SelectedEffectID != "" {
		m.setEffect(p.SelectedEffectID, now)
	}
	return m
}

// Export snapshots one device's configuration for storage. It returns
// the device's serial id as the storage key.
func (r *Registry) Export(port string) (string, PersistedDevice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	md, ok := r.devices[port]
	if !ok {
		return "", PersistedDevice{}, fmt.Errorf("%w: %s", scope.ErrDeviceNotFound, port)
	}

	cfg := &md.cfg
	p := PersistedDevice{
		Brightness: cfg.brightness,
		Mode:       persistMode(&cfg.mode),
	}
	for i := range cfg.outputs {
		out := &cfg.outputs[i]
		po := PersistedOutput{
			ID:         out.id,
			Mode:       persistMode(&out.mode),
			Brightness: out.brightness,
		}
		for j := range out.segments {
			seg := &out.segments[j]
			po.Segments = append(po.Segments, PersistedSegment{
				ID:          seg.id,
				Name:        seg.name,
				SegmentType: seg.segmentType,
				LedsCount:   seg.ledsCount,
				Matrix:      seg.matrix.Clone(),
				Mode:        persistMode(&seg.mode),
				Brightness:  seg.brightness,
			})
		}
		p.Outputs = append(p.Outputs, po)
	}
	return md.def.ID, p, nil
}

// Restore layers a persisted configuration onto a known device. Outputs
// are matched by id; persisted outputs the hardware no longer reports
// are ignored. Restored segments are validated against the output's
// current capabilities and dropped wholesale when they no longer fit.
func (r *Registry) Restore(port string, p PersistedDevice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	md, ok := r.devices[port]
	if !ok {
		return fmt.Errorf("%w: %s", scope.ErrDeviceNotFound, port)
	}

	now := time.Now()
	cfg := &md.cfg
	if p.Brightness >= 0 && p.Brightness <= 100 {
		cfg.brightness = p.Brightness
	}
	cfg.mode = restoreMode(p.Mode, now)

	for _, po := range p.Outputs {
		out := cfg.output(po.ID)
		if out == nil {
			continue
		}
		out.mode = restoreMode(po.Mode, now)
		out.brightness = copyIntPtr(po.Brightness)

		if len(po.Segments) == 0 {
			continue
		}
		defs := make([]scope.SegmentDefinition, 0, len(po.Segments))
		for _, ps := range po.Segments {
			defs = append(defs, scope.SegmentDefinition{
				ID:          ps.ID,
				Name:        ps.Name,
				SegmentType: ps.SegmentType,
				LedsCount:   ps.LedsCount,
				Matrix:      ps.Matrix,
			})
		}
		dto := buildOutputDTO(cfg, port, out)
		if err := scope.ValidateSegments(&dto, defs); err != nil {
			r.logger.Warn("dropping persisted segments",
				"port", port, "output", po.ID, "error", err)
			continue
		}
		segments := make([]segmentConfig, 0, len(po.Segments))
		for _, ps := range po.Segments {
			segments = append(segments, segmentConfig{
				id:          ps.ID,
				name:        ps.Name,
				segmentType: ps.SegmentType,
				ledsCount:   ps.LedsCount,
				matrix:      ps.Matrix.Clone(),
				mode:        restoreMode(ps.Mode, now),
				brightness:  copyIntPtr(ps.Brightness),
			})
		}
		out.segments = segments
	}
	return nil
}
