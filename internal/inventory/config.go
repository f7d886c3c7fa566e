package inventory

import "github.com/prismled/prism-core/internal/scope"

// defaultBrightness applies to devices with no stored configuration.
const defaultBrightness = 100

type segmentConfig struct {
	id          string
	name        string
	segmentType scope.SegmentType
	ledsCount   int
	matrix      *scope.MatrixMap
	mode        modeConfig
	brightness  *int
}

type outputConfig struct {
	id           string
	name         string
	outputType   scope.SegmentType
	ledsCount    int
	matrix       *scope.MatrixMap
	capabilities scope.OutputCapabilities
	mode         modeConfig
	brightness   *int
	segments     []segmentConfig
}

func (o *outputConfig) segment(id string) *segmentConfig {
	for i := range o.segments {
		if o.segments[i].id == id {
			return &o.segments[i]
		}
	}
	return nil
}

func (o *outputConfig) segmentTotal() int {
	total := 0
	for i := range o.segments {
		total += o.segments[i].ledsCount
	}
	return total
}

type deviceConfig struct {
	brightness int
	mode       modeConfig
	outputs    []outputConfig
}

func (c *deviceConfig) output(id string) *outputConfig {
	for i := range c.outputs {
		if c.outputs[i].id == id {
			return &c.outputs[i]
		}
	}
	return nil
}

func newDeviceConfig(def *Definition) deviceConfig {
	cfg := deviceConfig{brightness: defaultBrightness}
	for i := range def.Outputs {
		cfg.outputs = append(cfg.outputs, newOutputConfig(&def.Outputs[i]))
	}
	return cfg
}

func newOutputConfig(def *OutputDefinition) outputConfig {
	return outputConfig{
		id:           def.ID,
		name:         def.Name,
		outputType:   def.OutputType,
		ledsCount:    max(def.LedsCount, 1),
		matrix:       def.Matrix.Clone(),
		capabilities: def.Capabilities,
	}
}

// syncWithOutputDefs re-keys the config by the driver's current output
// list. Outputs are matched by id; state for vanished outputs is
// dropped. User segments survive only while the output stays linear and
// its LED count still matches the segment total.
func (c *deviceConfig) syncWithOutputDefs(defs []OutputDefinition) {
	oldByID := make(map[string]outputConfig, len(c.outputs))
	for _, o := range c.outputs {
		oldByID[o.id] = o
	}

	outputs := make([]outputConfig, 0, len(defs))
	for i := range defs {
		def := &defs[i]
		out, ok := oldByID[def.ID]
		if ok {
			out.name = def.Name
			out.outputType = def.OutputType
			out.ledsCount = max(def.LedsCount, 1)
			out.matrix = def.Matrix.Clone()
			out.capabilities = def.Capabilities
			if out.outputType != scope.SegmentLinear {
				out.segments = nil
			}
			if len(out.segments) > 0 && out.segmentTotal() != out.ledsCount {
				out.segments = nil
			}
		} else {
			out = newOutputConfig(def)
		}
		outputs = append(outputs, out)
	}
	c.outputs = outputs
}
