package lz4stream

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// halfDuplexBuffer is a test transport: reads come from the in buffer,
// writes go to the out buffer.
type halfDuplexBuffer struct {
	in     *bytes.Reader
	out    bytes.Buffer
	closed bool
}

func (h *halfDuplexBuffer) Read(p []byte) (int, error)  { return h.in.Read(p) }
func (h *halfDuplexBuffer) Write(p []byte) (int, error) { return h.out.Write(p) }
func (h *halfDuplexBuffer) Close() error                { h.closed = true; return nil }

func TestDuplex_BothDirections(t *testing.T) {
	incoming := encode(t, []byte("ping"))
	transport := &halfDuplexBuffer{in: bytes.NewReader(incoming)}

	d, err := NewDuplex(transport)
	if err != nil {
		t.Fatalf("NewDuplex: %v", err)
	}

	got, err := io.ReadAll(d)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "ping" {
		t.Errorf("incoming = %q, want %q", got, "ping")
	}

	if _, err := d.Write([]byte("pong")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reply := decode(t, transport.out.Bytes())
	if string(reply) != "pong" {
		t.Errorf("outgoing decodes to %q, want %q", reply, "pong")
	}
}

func TestDuplex_IndependentCounters(t *testing.T) {
	incoming := encode(t, []byte("inbound payload"))
	transport := &halfDuplexBuffer{in: bytes.NewReader(incoming)}

	d, err := NewDuplex(transport)
	if err != nil {
		t.Fatalf("NewDuplex: %v", err)
	}

	if _, err := io.ReadAll(d); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if _, err := d.Write([]byte("out")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := d.UncompressedBytesIn(); got != uint64(len("inbound payload")) {
		t.Errorf("UncompressedBytesIn = %d, want %d", got, len("inbound payload"))
	}
	if got := d.CompressedBytesIn(); got != uint64(len(incoming)) {
		t.Errorf("CompressedBytesIn = %d, want %d", got, len(incoming))
	}
	if got := d.UncompressedBytesOut(); got != 3 {
		t.Errorf("UncompressedBytesOut = %d, want 3", got)
	}
	if got := d.CompressedBytesOut(); got != uint64(transport.out.Len()) {
		t.Errorf("CompressedBytesOut = %d, want %d", got, transport.out.Len())
	}
	if d.ReadRatio() == d.WriteRatio() && d.ReadRatio() != 0 {
		t.Error("directions share a ratio; counters are not independent")
	}
}

func TestDuplex_Closed(t *testing.T) {
	transport := &halfDuplexBuffer{in: bytes.NewReader(nil)}
	d, err := NewDuplex(transport)
	if err != nil {
		t.Fatalf("NewDuplex: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if transport.closed {
		t.Error("transport closed without stream ownership")
	}

	if err := d.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close error = %v, want ErrClosed", err)
	}
	if _, err := d.Read(make([]byte, 1)); !errors.Is(err, ErrClosed) {
		t.Errorf("Read after Close error = %v, want ErrClosed", err)
	}
	if _, err := d.Write([]byte("x")); !errors.Is(err, ErrClosed) {
		t.Errorf("Write after Close error = %v, want ErrClosed", err)
	}
	if err := d.Flush(); !errors.Is(err, ErrClosed) {
		t.Errorf("Flush after Close error = %v, want ErrClosed", err)
	}
}

func TestDuplex_OwnedClose(t *testing.T) {
	transport := &halfDuplexBuffer{in: bytes.NewReader(nil)}
	d, err := NewDuplex(transport, WithOwnedStream())
	if err != nil {
		t.Fatalf("NewDuplex: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !transport.closed {
		t.Error("owned transport was not closed")
	}
}

func TestDuplex_CloseEndsOutgoingFrame(t *testing.T) {
	transport := &halfDuplexBuffer{in: bytes.NewReader(nil)}
	d, err := NewDuplex(transport)
	if err != nil {
		t.Fatalf("NewDuplex: %v", err)
	}
	if _, err := d.Write([]byte("terminated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// The outgoing frame must be complete: header, data and end mark.
	if got := decode(t, transport.out.Bytes()); string(got) != "terminated" {
		t.Errorf("outgoing decodes to %q, want %q", got, "terminated")
	}
}

func TestDuplex_RewindNotSeekable(t *testing.T) {
	transport := &halfDuplexBuffer{in: bytes.NewReader(nil)}
	d, err := NewDuplex(transport)
	if err != nil {
		t.Fatalf("NewDuplex: %v", err)
	}
	defer d.Close()

	if err := d.Rewind(); !errors.Is(err, ErrNotSeekable) {
		t.Errorf("Rewind error = %v, want ErrNotSeekable", err)
	}
}
