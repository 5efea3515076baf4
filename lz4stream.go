// Package lz4stream provides streaming adapters for the LZ4 frame format:
// a Reader that decompresses from any io.Reader, a Writer that compresses
// to any io.Writer, and a Duplex that does both over one bidirectional
// transport.
//
// Example usage:
//
//	w, err := lz4stream.NewWriter(dst,
//	    lz4stream.WithPreferences(lz4stream.Preferences{
//	        BlockSize:       lz4stream.BlockSize256KB,
//	        ContentChecksum: true,
//	    }),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := io.Copy(w, src); err != nil {
//	    log.Fatal(err)
//	}
//	if err := w.Close(); err != nil {
//	    log.Fatal(err)
//	}
//
// Adapters are not safe for concurrent use: each one exclusively owns its
// codec context, buffers and counters.
package lz4stream

import (
	"errors"
	"io"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrClosed indicates the adapter has been closed.
	ErrClosed = errors.New("lz4stream: adapter closed")

	// ErrNotSeekable indicates Rewind was called but the underlying
	// stream does not implement io.Seeker.
	ErrNotSeekable = errors.New("lz4stream: underlying stream is not seekable")
)

// flusher is the optional flush hook of buffered sinks (e.g. bufio.Writer).
type flusher interface {
	Flush() error
}

// Codec bundles a fixed set of options into a reusable factory, mirroring
// the shape compression codecs usually take when injected into a larger
// system.
type Codec struct {
	opts []Option
}

// NewCodec creates a codec that applies the given options to every adapter
// it produces.
func NewCodec(opts ...Option) *Codec {
	return &Codec{opts: opts}
}

// Reader wraps r to decompress LZ4 frame data read from it.
func (c *Codec) Reader(r io.Reader) (*Reader, error) {
	return NewReader(r, c.opts...)
}

// Writer wraps w to compress data written to it into an LZ4 frame.
func (c *Codec) Writer(w io.Writer) (*Writer, error) {
	return NewWriter(w, c.opts...)
}

// Extension returns the conventional file extension without dot.
func (c *Codec) Extension() string {
	return "lz4"
}
