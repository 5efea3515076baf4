package lz4stream

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/84codes/lz4stream/internal/engine/lz4f"
)

func encode(t *testing.T, data []byte, opts ...Option) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, opts...)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func TestReader_RoundTrip(t *testing.T) {
	data := []byte(strings.Repeat("streamed content ", 20_000))
	frame := encode(t, data)

	r, err := NewReader(bytes.NewReader(frame))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("round trip mismatch: got %d bytes, want %d", len(got), len(data))
	}
}

func TestReader_SmallDestination(t *testing.T) {
	data := []byte(strings.Repeat("x\n", 100_000))
	frame := encode(t, data)

	r, err := NewReader(bytes.NewReader(frame))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	var out bytes.Buffer
	p := make([]byte, 7)
	for {
		n, err := r.Read(p)
		out.Write(p[:n])
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Errorf("round trip mismatch: got %d bytes, want %d", out.Len(), len(data))
	}
}

func TestReader_EmptySource(t *testing.T) {
	r, err := NewReader(bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	n, err := r.Read(make([]byte, 16))
	if n != 0 || err != io.EOF {
		t.Errorf("Read = (%d, %v), want (0, io.EOF)", n, err)
	}
}

func TestReader_TruncatedFrame(t *testing.T) {
	data := []byte(strings.Repeat("truncate me ", 1000))
	frame := encode(t, data)

	r, err := NewReader(bytes.NewReader(frame[:len(frame)-6]))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	_, err = io.ReadAll(r)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadAll error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestReader_CorruptedChecksum(t *testing.T) {
	frame := encode(t, []byte("verify me"))
	frame[len(frame)-1] ^= 0xFF

	r, err := NewReader(bytes.NewReader(frame))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	_, err = io.ReadAll(r)
	if !errors.Is(err, lz4f.ErrContentChecksum) {
		t.Errorf("ReadAll error = %v, want ErrContentChecksum", err)
	}
}

func TestReader_CountsBytesDeliveredWithError(t *testing.T) {
	frame := encode(t, []byte("delivered before the failure"))
	frame[len(frame)-1] ^= 0xFF // corrupt the content checksum

	r, err := NewReader(bytes.NewReader(frame))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	// The corrupt checksum surfaces in the same call that delivers the
	// decoded bytes; those bytes must still be counted.
	n, err := r.Read(make([]byte, 256))
	if err == nil {
		t.Fatal("Read on corrupt frame succeeded")
	}
	if n == 0 {
		t.Fatal("no bytes delivered before the checksum failure")
	}
	if got := r.UncompressedBytesIn(); got != uint64(n) {
		t.Errorf("UncompressedBytesIn = %d, want %d", got, n)
	}
}

func TestReader_GarbageInput(t *testing.T) {
	r, err := NewReader(strings.NewReader("this is not an lz4 frame"))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	_, err = io.ReadAll(r)
	if !errors.Is(err, lz4f.ErrInvalidFrame) {
		t.Errorf("ReadAll error = %v, want ErrInvalidFrame", err)
	}
}

func TestReader_Counters(t *testing.T) {
	data := []byte(strings.Repeat("measured ", 10_000))
	frame := encode(t, data)

	r, err := NewReader(bytes.NewReader(frame))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	if r.Ratio() != 0.0 {
		t.Errorf("Ratio before any read = %f, want 0.0", r.Ratio())
	}

	if _, err := io.ReadAll(r); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if got := r.CompressedBytesIn(); got != uint64(len(frame)) {
		t.Errorf("CompressedBytesIn = %d, want %d", got, len(frame))
	}
	if got := r.UncompressedBytesIn(); got != uint64(len(data)) {
		t.Errorf("UncompressedBytesIn = %d, want %d", got, len(data))
	}
	if r.Ratio() <= 1.0 {
		t.Errorf("Ratio = %f, want > 1 for compressible input", r.Ratio())
	}
}

func TestReader_Rewind(t *testing.T) {
	data := []byte("read me twice")
	frame := encode(t, data)

	r, err := NewReader(bytes.NewReader(frame))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	first, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("first ReadAll: %v", err)
	}
	if err := r.Rewind(); err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	if r.CompressedBytesIn() != 0 || r.UncompressedBytesIn() != 0 {
		t.Errorf("counters after Rewind = %d/%d, want 0/0",
			r.CompressedBytesIn(), r.UncompressedBytesIn())
	}
	second, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("second ReadAll: %v", err)
	}
	if !bytes.Equal(first, second) || !bytes.Equal(first, data) {
		t.Errorf("reads differ: %q vs %q", first, second)
	}
}

func TestReader_RewindNotSeekable(t *testing.T) {
	frame := encode(t, []byte("x"))

	r, err := NewReader(iotestOneByte{bytes.NewReader(frame)})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	if err := r.Rewind(); !errors.Is(err, ErrNotSeekable) {
		t.Errorf("Rewind error = %v, want ErrNotSeekable", err)
	}
}

// iotestOneByte hides the Seeker and returns one byte per Read.
type iotestOneByte struct {
	r io.Reader
}

func (o iotestOneByte) Read(p []byte) (int, error) {
	if len(p) > 1 {
		p = p[:1]
	}
	return o.r.Read(p)
}

func TestReader_DribbledSource(t *testing.T) {
	data := []byte(strings.Repeat("drip ", 40_000))
	frame := encode(t, data)

	r, err := NewReader(iotestOneByte{bytes.NewReader(frame)})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("round trip mismatch: got %d bytes, want %d", len(got), len(data))
	}
}

type closeRecorderReader struct {
	io.Reader
	closed bool
}

func (c *closeRecorderReader) Close() error {
	c.closed = true
	return nil
}

func TestReader_OwnedClose(t *testing.T) {
	src := &closeRecorderReader{Reader: bytes.NewReader(encode(t, []byte("owned")))}
	r, err := NewReader(src, WithOwnedStream())
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !src.closed {
		t.Error("owned source was not closed")
	}
	if err := r.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close error = %v, want ErrClosed", err)
	}
	if _, err := r.Read(make([]byte, 1)); !errors.Is(err, ErrClosed) {
		t.Errorf("Read after Close error = %v, want ErrClosed", err)
	}
}

func TestReader_WriteTo(t *testing.T) {
	data := make([]byte, 300_000)
	rand.New(rand.NewSource(7)).Read(data)
	frame := encode(t, data)

	r, err := NewReader(bytes.NewReader(frame))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	var out bytes.Buffer
	n, err := r.WriteTo(&out)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != int64(len(data)) {
		t.Errorf("WriteTo = %d, want %d", n, len(data))
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Error("round trip mismatch")
	}
}
