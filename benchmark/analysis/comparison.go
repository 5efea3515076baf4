package analysis

import (
	"fmt"
	"sort"
)

// RunResult holds the measurements collected for one compression level
// over repeated runs of the same corpus.
type RunResult struct {
	Name           string    // Level or codec name, e.g. "lz4-fast".
	Ratio          float64   // Compressed size / uncompressed size.
	CompressMBps   []float64 // Compression throughput per run.
	DecompressMBps []float64 // Decompression throughput per run.
}

// LevelComparison contains a full statistical comparison between two
// compression levels over the same corpus.
type LevelComparison struct {
	Name1           string
	Name2           string
	Compress1       *DescriptiveStats
	Compress2       *DescriptiveStats
	Ratio1          float64
	Ratio2          float64
	MannWhitney     *MannWhitneyResult
	EffectSize      *EffectSize
	Faster          string // Name of the level with higher mean throughput, or "tie".
	FasterConfident bool   // True if statistically significant.
}

// CompareLevels compares the compression throughput of two levels.
func CompareLevels(result1, result2 *RunResult) *LevelComparison {
	mw := MannWhitneyU(result1.CompressMBps, result2.CompressMBps)
	es := ComputeEffectSize(result1.CompressMBps, result2.CompressMBps)

	stats1 := Describe(result1.CompressMBps)
	stats2 := Describe(result2.CompressMBps)

	var faster string
	var confident bool
	switch {
	case stats1.Mean > stats2.Mean:
		faster = result1.Name
		confident = mw.Significant
	case stats2.Mean > stats1.Mean:
		faster = result2.Name
		confident = mw.Significant
	default:
		faster = "tie"
	}

	return &LevelComparison{
		Name1:           result1.Name,
		Name2:           result2.Name,
		Compress1:       stats1,
		Compress2:       stats2,
		Ratio1:          result1.Ratio,
		Ratio2:          result2.Ratio,
		MannWhitney:     mw,
		EffectSize:      es,
		Faster:          faster,
		FasterConfident: confident,
	}
}

// Summary returns a human-readable summary of the comparison.
func (c *LevelComparison) Summary() string {
	sig := "not statistically significant"
	if c.MannWhitney.Significant {
		sig = fmt.Sprintf("statistically significant (p=%.4f)", c.MannWhitney.PValue)
	}

	return fmt.Sprintf(
		"%s vs %s:\n"+
			"  %s: %.1f MB/s (median %.1f, std %.1f), ratio %.3f\n"+
			"  %s: %.1f MB/s (median %.1f, std %.1f), ratio %.3f\n"+
			"  Speedup: %.1f%%\n"+
			"  Effect size: %.2f (%s)\n"+
			"  Result: %s faster, %s",
		c.Name1, c.Name2,
		c.Name1, c.Compress1.Mean, c.Compress1.Median, c.Compress1.StdDev, c.Ratio1,
		c.Name2, c.Compress2.Mean, c.Compress2.Median, c.Compress2.StdDev, c.Ratio2,
		safePctDiff(c.Compress1.Mean, c.Compress2.Mean),
		c.EffectSize.CohensD, c.EffectSize.Interpretation,
		c.Faster, sig,
	)
}

func safePctDiff(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return (a - b) / b * 100
}

// MultiLevelComparison compares multiple levels against a baseline.
type MultiLevelComparison struct {
	Baseline    string
	Comparisons []*LevelComparison
}

// CompareAll compares every level against the named baseline.
func CompareAll(results map[string]*RunResult, baseline string) *MultiLevelComparison {
	baseResult, ok := results[baseline]
	if !ok {
		return nil
	}

	names := make([]string, 0, len(results))
	for name := range results {
		if name != baseline {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	multi := &MultiLevelComparison{Baseline: baseline}
	for _, name := range names {
		multi.Comparisons = append(multi.Comparisons, CompareLevels(baseResult, results[name]))
	}
	return multi
}
