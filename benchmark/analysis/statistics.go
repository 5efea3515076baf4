// Package analysis provides statistical analysis for compression
// benchmark results.
package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DescriptiveStats contains basic descriptive statistics for a sample.
type DescriptiveStats struct {
	N      int
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
	P25    float64
	P75    float64
}

// Describe computes descriptive statistics for a sample.
func Describe(sample []float64) *DescriptiveStats {
	if len(sample) == 0 {
		return &DescriptiveStats{}
	}

	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	return &DescriptiveStats{
		N:      len(sample),
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		StdDev: stat.StdDev(sorted, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		P25:    stat.Quantile(0.25, stat.Empirical, sorted, nil),
		P75:    stat.Quantile(0.75, stat.Empirical, sorted, nil),
	}
}

// MannWhitneyResult contains the result of a Mann-Whitney U test.
type MannWhitneyResult struct {
	U           float64 // U statistic.
	Z           float64 // Z score (normal approximation).
	PValue      float64 // Two-tailed p-value.
	Significant bool    // True if p < 0.05.
}

// MannWhitneyU performs the Mann-Whitney U test on two samples. It is a
// non-parametric test for whether the samples come from different
// distributions, which suits throughput measurements where normality
// cannot be assumed.
func MannWhitneyU(sample1, sample2 []float64) *MannWhitneyResult {
	n1 := float64(len(sample1))
	n2 := float64(len(sample2))

	if n1 == 0 || n2 == 0 {
		return &MannWhitneyResult{}
	}

	type rankedValue struct {
		value  float64
		sample int
	}

	combined := make([]rankedValue, 0, int(n1+n2))
	for _, v := range sample1 {
		combined = append(combined, rankedValue{value: v, sample: 1})
	}
	for _, v := range sample2 {
		combined = append(combined, rankedValue{value: v, sample: 2})
	}

	sort.Slice(combined, func(i, j int) bool {
		return combined[i].value < combined[j].value
	})

	// Assign ranks, averaging over ties.
	ranks := make([]float64, len(combined))
	i := 0
	for i < len(combined) {
		j := i
		for j < len(combined) && combined[j].value == combined[i].value {
			j++
		}
		avgRank := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[k] = avgRank
		}
		i = j
	}

	var r1 float64
	for i, rv := range combined {
		if rv.sample == 1 {
			r1 += ranks[i]
		}
	}

	u1 := r1 - n1*(n1+1)/2
	u2 := n1*n2 - u1
	u := math.Min(u1, u2)

	// Normal approximation for large samples.
	mu := n1 * n2 / 2
	sigma := math.Sqrt(n1 * n2 * (n1 + n2 + 1) / 12)

	z := 0.0
	if sigma > 0 {
		z = (u - mu) / sigma
	}

	normal := distuv.Normal{Mu: 0, Sigma: 1}
	pValue := 2 * normal.CDF(-math.Abs(z))

	return &MannWhitneyResult{
		U:           u,
		Z:           z,
		PValue:      pValue,
		Significant: pValue < 0.05,
	}
}

// EffectSize contains effect size metrics for a two-sample comparison.
type EffectSize struct {
	CohensD        float64 // (mean1 - mean2) / pooled standard deviation.
	Interpretation string  // "negligible", "small", "medium", "large".
}

// ComputeEffectSize computes Cohen's d effect size between two samples.
func ComputeEffectSize(sample1, sample2 []float64) *EffectSize {
	if len(sample1) < 2 || len(sample2) < 2 {
		return &EffectSize{Interpretation: "undefined"}
	}

	mean1 := stat.Mean(sample1, nil)
	mean2 := stat.Mean(sample2, nil)
	var1 := stat.Variance(sample1, nil)
	var2 := stat.Variance(sample2, nil)

	n1 := float64(len(sample1))
	n2 := float64(len(sample2))
	pooledVar := ((n1-1)*var1 + (n2-1)*var2) / (n1 + n2 - 2)
	pooledStd := math.Sqrt(pooledVar)

	var d float64
	if pooledStd > 0 {
		d = (mean1 - mean2) / pooledStd
	}

	return &EffectSize{
		CohensD:        d,
		Interpretation: interpretCohensD(math.Abs(d)),
	}
}

func interpretCohensD(d float64) string {
	switch {
	case d < 0.2:
		return "negligible"
	case d < 0.5:
		return "small"
	case d < 0.8:
		return "medium"
	default:
		return "large"
	}
}
