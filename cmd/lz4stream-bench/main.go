// Package main provides the lz4stream-bench CLI tool for comparing
// compression levels on real data.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"

	"github.com/84codes/lz4stream"
	"github.com/84codes/lz4stream/benchmark/analysis"
)

var (
	corpusFile string
	levels     []int
	iterations int
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "lz4stream-bench",
	Short: "Benchmark LZ4 compression levels",
	Long: `lz4stream-bench compares compression levels on a corpus file.

It compresses and decompresses the corpus repeatedly at each level,
then reports throughput and ratio with a statistical comparison
against the fastest level.

Examples:
  # Sweep the default levels
  lz4stream-bench run --corpus silesia.tar

  # Compare specific levels over more iterations
  lz4stream-bench run --corpus logs.txt --levels 0,3,9 --iterations 20`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the level sweep",
	RunE:  runSweep,
}

func init() {
	runCmd.Flags().StringVarP(&corpusFile, "corpus", "c", "", "corpus file to compress (supports .zst)")
	runCmd.Flags().IntSliceVarP(&levels, "levels", "l", []int{0, 3, 9}, "compression levels to compare")
	runCmd.Flags().IntVarP(&iterations, "iterations", "n", 10, "runs per level")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	runCmd.MarkFlagRequired("corpus")

	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSweep(cmd *cobra.Command, args []string) error {
	corpus, err := readCorpus(corpusFile)
	if err != nil {
		return err
	}
	if len(corpus) == 0 {
		return fmt.Errorf("corpus %s is empty", corpusFile)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Corpus: %d bytes, %d iterations per level\n", len(corpus), iterations)
	}

	results := make(map[string]*analysis.RunResult, len(levels))
	var baseline string
	for i, level := range levels {
		name := levelName(level)
		if i == 0 {
			baseline = name
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Benchmarking %s...\n", name)
		}
		result, err := benchmarkLevel(name, lz4stream.CompressionLevel(level), corpus)
		if err != nil {
			return fmt.Errorf("benchmarking %s: %w", name, err)
		}
		results[name] = result
	}

	for _, result := range results {
		stats := analysis.Describe(result.CompressMBps)
		dstats := analysis.Describe(result.DecompressMBps)
		fmt.Printf("%-10s compress %7.1f MB/s  decompress %7.1f MB/s  ratio %.3f\n",
			result.Name, stats.Mean, dstats.Mean, result.Ratio)
	}

	multi := analysis.CompareAll(results, baseline)
	if multi == nil {
		return nil
	}
	for _, cmp := range multi.Comparisons {
		fmt.Println()
		fmt.Println(cmp.Summary())
	}
	return nil
}

// benchmarkLevel compresses and decompresses the corpus repeatedly at
// one level, collecting per-run throughput samples.
func benchmarkLevel(name string, level lz4stream.CompressionLevel, corpus []byte) (*analysis.RunResult, error) {
	prefs := lz4stream.DefaultPreferences()
	prefs.Level = level

	result := &analysis.RunResult{Name: name}
	mb := float64(len(corpus)) / (1 << 20)

	var compressed bytes.Buffer
	for i := 0; i < iterations; i++ {
		compressed.Reset()
		w, err := lz4stream.NewWriter(&compressed, lz4stream.WithPreferences(prefs))
		if err != nil {
			return nil, err
		}

		start := time.Now()
		if _, err := w.Write(corpus); err != nil {
			w.Close()
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		result.CompressMBps = append(result.CompressMBps, mb/time.Since(start).Seconds())

		r, err := lz4stream.NewReader(bytes.NewReader(compressed.Bytes()))
		if err != nil {
			return nil, err
		}
		start = time.Now()
		if _, err := io.Copy(io.Discard, r); err != nil {
			r.Close()
			return nil, err
		}
		if err := r.Close(); err != nil {
			return nil, err
		}
		result.DecompressMBps = append(result.DecompressMBps, mb/time.Since(start).Seconds())
	}

	result.Ratio = float64(compressed.Len()) / float64(len(corpus))
	return result, nil
}

func readCorpus(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus file: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(path, ".zst") {
		decoder, err := zstd.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("creating zstd decoder: %w", err)
		}
		defer decoder.Close()
		reader = decoder
	}
	return io.ReadAll(reader)
}

func levelName(level int) string {
	if level <= 0 {
		return "fast"
	}
	return fmt.Sprintf("hc%d", level)
}
