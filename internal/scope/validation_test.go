package scope

import (
	"errors"
	"testing"
)

func editableOutput() *OutputPort {
	return &OutputPort{
		ID:         "out-a",
		OutputType: SegmentLinear,
		LedsCount:  10,
		Capabilities: OutputCapabilities{
			Editable:            true,
			MinTotalLeds:        1,
			MaxTotalLeds:        64,
			AllowedSegmentTypes: []SegmentType{SegmentSingle, SegmentLinear, SegmentMatrix},
		},
	}
}

func intPtr(v int) *int { return &v }

func TestValidateSegments(t *testing.T) {
	validMatrix := &MatrixMap{
		Width:  2,
		Height: 2,
		Map:    []*int{intPtr(0), intPtr(1), nil, intPtr(2)},
	}

	tests := []struct {
		name     string
		mutate   func(out *OutputPort)
		segments []SegmentDefinition
		wantErr  error
	}{
		{
			name: "valid linear split",
			segments: []SegmentDefinition{
				{Name: "Left", SegmentType: SegmentLinear, LedsCount: 6},
				{Name: "Right", SegmentType: SegmentLinear, LedsCount: 4},
			},
		},
		{
			name: "valid mixed with matrix",
			segments: []SegmentDefinition{
				{Name: "Panel", SegmentType: SegmentMatrix, LedsCount: 3, Matrix: validMatrix},
				{Name: "Dot", SegmentType: SegmentSingle, LedsCount: 1},
				{Name: "Rest", SegmentType: SegmentLinear, LedsCount: 6},
			},
		},
		{
			name:   "non-linear output rejected",
			mutate: func(out *OutputPort) { out.OutputType = SegmentMatrix },
			segments: []SegmentDefinition{
				{Name: "All", SegmentType: SegmentLinear, LedsCount: 10},
			},
			wantErr: ErrOutputNotLinear,
		},
		{
			name:   "non-editable output rejected",
			mutate: func(out *OutputPort) { out.Capabilities.Editable = false },
			segments: []SegmentDefinition{
				{Name: "All", SegmentType: SegmentLinear, LedsCount: 10},
			},
			wantErr: ErrOutputNotEditable,
		},
		{
			name: "disallowed segment type",
			mutate: func(out *OutputPort) {
				out.Capabilities.AllowedSegmentTypes = []SegmentType{SegmentLinear}
			},
			segments: []SegmentDefinition{
				{Name: "Dot", SegmentType: SegmentSingle, LedsCount: 1},
				{Name: "Rest", SegmentType: SegmentLinear, LedsCount: 9},
			},
			wantErr: ErrSegmentTypeDenied,
		},
		{
			name: "single segment with wrong count",
			segments: []SegmentDefinition{
				{Name: "Dot", SegmentType: SegmentSingle, LedsCount: 2},
				{Name: "Rest", SegmentType: SegmentLinear, LedsCount: 8},
			},
			wantErr: ErrSegmentLedMismatch,
		},
		{
			name: "matrix without map",
			segments: []SegmentDefinition{
				{Name: "Panel", SegmentType: SegmentMatrix, LedsCount: 4},
				{Name: "Rest", SegmentType: SegmentLinear, LedsCount: 6},
			},
			wantErr: ErrSegmentLedMismatch,
		},
		{
			name: "matrix presence count mismatch",
			segments: []SegmentDefinition{
				{Name: "Panel", SegmentType: SegmentMatrix, LedsCount: 4, Matrix: validMatrix},
				{Name: "Rest", SegmentType: SegmentLinear, LedsCount: 6},
			},
			wantErr: ErrSegmentLedMismatch,
		},
		{
			name: "total below output count",
			segments: []SegmentDefinition{
				{Name: "Short", SegmentType: SegmentLinear, LedsCount: 9},
			},
			wantErr: ErrTotalLedMismatch,
		},
		{
			name: "total outside capability range",
			mutate: func(out *OutputPort) {
				out.Capabilities.MinTotalLeds = 16
				out.Capabilities.MaxTotalLeds = 64
			},
			segments: []SegmentDefinition{
				{Name: "All", SegmentType: SegmentLinear, LedsCount: 10},
			},
			wantErr: ErrTotalLedRange,
		},
		{
			name: "total not in discrete allowed list",
			mutate: func(out *OutputPort) {
				out.Capabilities.AllowedTotalLeds = []int{8, 16, 32}
			},
			segments: []SegmentDefinition{
				{Name: "All", SegmentType: SegmentLinear, LedsCount: 10},
			},
			wantErr: ErrTotalLedRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := editableOutput()
			if tt.mutate != nil {
				tt.mutate(out)
			}
			err := ValidateSegments(out, tt.segments)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMatrixMap(t *testing.T) {
	m := &MatrixMap{Width: 2, Height: 2, Map: []*int{intPtr(0), nil, intPtr(1), nil}}
	if !m.Valid() {
		t.Error("expected valid map")
	}
	if got := m.LedCount(); got != 2 {
		t.Errorf("LedCount() = %d, want 2", got)
	}

	clone := m.Clone()
	*clone.Map[0] = 9
	if *m.Map[0] != 0 {
		t.Error("Clone must not share cells with the original")
	}

	bad := &MatrixMap{Width: 3, Height: 2, Map: make([]*int, 5)}
	if bad.Valid() {
		t.Error("dimension mismatch must be invalid")
	}
	var nilMap *MatrixMap
	if nilMap.Valid() {
		t.Error("nil map must be invalid")
	}
	if nilMap.LedCount() != 0 {
		t.Error("nil map has no leds")
	}
}
