package inventory

import (
	"maps"
	"time"

	"github.com/prismled/prism-core/internal/scope"
)

// activeEffect is an explicit effect selection at one scope.
type activeEffect struct {
	effectID  string
	startedAt time.Time
}

// modeConfig is the stored effect state of a single scope. Parameters
// are remembered per effect id, so switching effects back and forth
// does not lose tuning.
type modeConfig struct {
	active         *activeEffect
	paramsByEffect map[string]map[string]any
	rev            uint64
}

func (m *modeConfig) selectedEffectID() string {
	if m.active == nil {
		return ""
	}
	return m.active.effectID
}

// setInherit clears the explicit selection so the scope follows its
// parent again.
func (m *modeConfig) setInherit() {
	if m.active != nil {
		m.rev++
	}
	m.active = nil
}

func (m *modeConfig) ensureParamsEntry(effectID string) {
	if m.paramsByEffect == nil {
		m.paramsByEffect = make(map[string]map[string]any)
	}
	if _, ok := m.paramsByEffect[effectID]; !ok {
		m.paramsByEffect[effectID] = make(map[string]any)
	}
}

func (m *modeConfig) paramsForEffect(effectID string) map[string]any {
	if stored, ok := m.paramsByEffect[effectID]; ok {
		return maps.Clone(stored)
	}
	return map[string]any{}
}

func (m *modeConfig) setEffect(effectID string, startedAt time.Time) {
	m.ensureParamsEntry(effectID)
	m.active = &activeEffect{effectID: effectID, startedAt: startedAt}
	m.rev++
}

func (m *modeConfig) mergeParams(effectID string, params map[string]any) {
	m.ensureParamsEntry(effectID)
	maps.Copy(m.paramsByEffect[effectID], params)
	m.rev++
}

func (m *modeConfig) clone() modeConfig {
	cpy := modeConfig{rev: m.rev}
	if m.active != nil {
		a := *m.active
		cpy.active = &a
	}
	if m.paramsByEffect != nil {
		cpy.paramsByEffect = make(map[string]map[string]any, len(m.paramsByEffect))
		for id, params := range m.paramsByEffect {
			cpy.paramsByEffect[id] = maps.Clone(params)
		}
	}
	return cpy
}

// resolvedEffect is the outcome of walking the inheritance chain.
type resolvedEffect struct {
	effectID  string
	from      scope.Ref
	startedAt time.Time
	params    map[string]any
}
