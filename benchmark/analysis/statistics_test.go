package analysis

import (
	"strings"
	"testing"
)

func TestMannWhitneyU(t *testing.T) {
	tests := []struct {
		name       string
		sample1    []float64
		sample2    []float64
		wantSignif bool
	}{
		{
			name:       "identical samples",
			sample1:    []float64{1, 2, 3, 4, 5},
			sample2:    []float64{1, 2, 3, 4, 5},
			wantSignif: false,
		},
		{
			name:       "clearly different samples",
			sample1:    []float64{1, 2, 3, 4, 5},
			sample2:    []float64{10, 11, 12, 13, 14},
			wantSignif: true,
		},
		{
			name:       "highly overlapping samples",
			sample1:    []float64{3, 4, 5, 6, 7},
			sample2:    []float64{4, 5, 6, 7, 8},
			wantSignif: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MannWhitneyU(tt.sample1, tt.sample2)
			if result.Significant != tt.wantSignif {
				t.Errorf("Significant = %v, want %v (p=%f)", result.Significant, tt.wantSignif, result.PValue)
			}
		})
	}
}

func TestMannWhitneyU_Empty(t *testing.T) {
	result := MannWhitneyU([]float64{}, []float64{1, 2, 3})
	if result.U != 0 {
		t.Errorf("U = %f, want 0 for empty sample", result.U)
	}
}

func TestEffectSize(t *testing.T) {
	tests := []struct {
		name       string
		sample1    []float64
		sample2    []float64
		wantInterp string
	}{
		{
			name:       "large effect",
			sample1:    []float64{1, 2, 3, 4, 5},
			sample2:    []float64{10, 11, 12, 13, 14},
			wantInterp: "large",
		},
		{
			name:       "negligible effect",
			sample1:    []float64{5, 5, 5, 5.1, 5},
			sample2:    []float64{5.1, 5, 4.9, 5, 5},
			wantInterp: "negligible",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeEffectSize(tt.sample1, tt.sample2)
			if result.Interpretation != tt.wantInterp {
				t.Errorf("Interpretation = %s, want %s (d=%f)", result.Interpretation, tt.wantInterp, result.CohensD)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	sample := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	stats := Describe(sample)

	if stats.N != 10 {
		t.Errorf("N = %d, want 10", stats.N)
	}
	if stats.Mean != 5.5 {
		t.Errorf("Mean = %f, want 5.5", stats.Mean)
	}
	if stats.Min != 1 {
		t.Errorf("Min = %f, want 1", stats.Min)
	}
	if stats.Max != 10 {
		t.Errorf("Max = %f, want 10", stats.Max)
	}
}

func TestDescribe_Empty(t *testing.T) {
	stats := Describe([]float64{})
	if stats.N != 0 {
		t.Errorf("N = %d, want 0", stats.N)
	}
}

func TestCompareLevels(t *testing.T) {
	fast := &RunResult{
		Name:         "lz4-fast",
		Ratio:        0.62,
		CompressMBps: []float64{410, 415, 408, 412, 420},
	}
	high := &RunResult{
		Name:         "lz4-hc9",
		Ratio:        0.51,
		CompressMBps: []float64{52, 55, 50, 53, 54},
	}

	cmp := CompareLevels(fast, high)
	if cmp.Faster != "lz4-fast" {
		t.Errorf("Faster = %q, want lz4-fast", cmp.Faster)
	}
	if !cmp.FasterConfident {
		t.Error("expected the throughput difference to be significant")
	}
	if !strings.Contains(cmp.Summary(), "lz4-fast vs lz4-hc9") {
		t.Errorf("Summary missing header: %s", cmp.Summary())
	}
}

func TestCompareAll(t *testing.T) {
	results := map[string]*RunResult{
		"fast": {Name: "fast", CompressMBps: []float64{400, 410, 405}},
		"hc3":  {Name: "hc3", CompressMBps: []float64{120, 118, 122}},
		"hc9":  {Name: "hc9", CompressMBps: []float64{50, 52, 51}},
	}

	multi := CompareAll(results, "fast")
	if multi == nil {
		t.Fatal("CompareAll returned nil for valid baseline")
	}
	if len(multi.Comparisons) != 2 {
		t.Fatalf("Comparisons = %d, want 2", len(multi.Comparisons))
	}
	if multi.Comparisons[0].Name2 != "hc3" || multi.Comparisons[1].Name2 != "hc9" {
		t.Errorf("comparisons not ordered by name: %s, %s",
			multi.Comparisons[0].Name2, multi.Comparisons[1].Name2)
	}

	if CompareAll(results, "missing") != nil {
		t.Error("CompareAll should return nil for unknown baseline")
	}
}
