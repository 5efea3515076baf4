package micro

import (
	"bytes"
	"io"
	"math/rand"
	"os"
	"strings"
	"testing"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"

	"github.com/84codes/lz4stream"
)

// corpus returns benchmark input: the file named by CORPUS if set,
// otherwise synthetic text with a realistic mix of repetition and noise.
func corpus(tb testing.TB) []byte {
	if path := os.Getenv("CORPUS"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			tb.Fatalf("reading corpus: %v", err)
		}
		return data
	}

	rng := rand.New(rand.NewSource(42))
	var buf bytes.Buffer
	words := []string{"request", "latency", "shard", "compress", "frame", "block", "stream"}
	for buf.Len() < 4<<20 {
		buf.WriteString(words[rng.Intn(len(words))])
		buf.WriteByte(' ')
		if rng.Intn(10) == 0 {
			var noise [16]byte
			rng.Read(noise[:])
			buf.Write(noise[:])
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

func benchmarkCompress(b *testing.B, level lz4stream.CompressionLevel) {
	data := corpus(b)
	prefs := lz4stream.DefaultPreferences()
	prefs.Level = level

	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		w, err := lz4stream.NewWriter(io.Discard, lz4stream.WithPreferences(prefs))
		if err != nil {
			b.Fatalf("creating writer: %v", err)
		}
		if _, err := w.Write(data); err != nil {
			b.Fatalf("write error: %v", err)
		}
		if err := w.Close(); err != nil {
			b.Fatalf("close error: %v", err)
		}
	}
}

func BenchmarkCompress_Fast(b *testing.B) { benchmarkCompress(b, lz4stream.LevelFast) }

func BenchmarkCompress_HC3(b *testing.B) { benchmarkCompress(b, lz4stream.LevelMin) }

func BenchmarkCompress_HC9(b *testing.B) { benchmarkCompress(b, lz4stream.LevelDefault) }

func BenchmarkDecompress(b *testing.B) {
	data := corpus(b)

	var frame bytes.Buffer
	w, err := lz4stream.NewWriter(&frame)
	if err != nil {
		b.Fatalf("creating writer: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		b.Fatalf("write error: %v", err)
	}
	if err := w.Close(); err != nil {
		b.Fatalf("close error: %v", err)
	}

	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		r, err := lz4stream.NewReader(bytes.NewReader(frame.Bytes()))
		if err != nil {
			b.Fatalf("creating reader: %v", err)
		}
		if _, err := io.Copy(io.Discard, r); err != nil {
			b.Fatalf("read error: %v", err)
		}
		if err := r.Close(); err != nil {
			b.Fatalf("close error: %v", err)
		}
	}
}

// BenchmarkCompress_Zstd measures zstd on the same corpus, as a point of
// comparison for the ratio/speed trade-off.
func BenchmarkCompress_Zstd(b *testing.B) {
	data := corpus(b)

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		b.Fatalf("creating encoder: %v", err)
	}
	defer encoder.Close()

	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = encoder.EncodeAll(data, nil)
	}
}

// BenchmarkCompress_S2 measures s2 (Snappy-compatible) on the same corpus.
func BenchmarkCompress_S2(b *testing.B) {
	data := corpus(b)

	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = s2.Encode(nil, data)
	}
}

// TestRoundTripCorpus checks the synthetic corpus survives a round trip,
// so the benchmarks above measure correct code.
func TestRoundTripCorpus(t *testing.T) {
	data := corpus(t)

	var frame bytes.Buffer
	w, err := lz4stream.NewWriter(&frame)
	if err != nil {
		t.Fatalf("creating writer: %v", err)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close error: %v", err)
	}

	r, err := lz4stream.NewReader(bytes.NewReader(frame.Bytes()))
	if err != nil {
		t.Fatalf("creating reader: %v", err)
	}
	defer r.Close()

	var out strings.Builder
	if _, err := io.Copy(&out, r); err != nil {
		t.Fatalf("read error: %v", err)
	}
	if out.String() != string(data) {
		t.Fatal("round trip mismatch")
	}
}
