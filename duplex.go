package lz4stream

import (
	"io"
)

// Compile-time check for the duplex stream contract.
var _ io.ReadWriteCloser = (*Duplex)(nil)

// Duplex compresses outgoing data and decompresses incoming data over one
// bidirectional transport (e.g. a socket). The two directions are composed
// from independent Reader and Writer state bundles: each has its own codec
// context, buffer, byte counters and frame lifecycle.
// Not safe for concurrent use.
type Duplex struct {
	transport io.ReadWriter
	r         *Reader
	w         *Writer
	owned     bool
	closed    bool
}

// NewDuplex creates a Duplex over rw.
// The caller keeps ownership of rw unless WithOwnedStream is given.
func NewDuplex(rw io.ReadWriter, opts ...Option) (*Duplex, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	// The transport is shared, so neither direction owns it; Close below
	// handles it once for both.
	inner := []Option{
		WithPreferences(cfg.prefs),
		WithLogger(cfg.logger),
		WithStats(cfg.stats),
	}
	r, err := NewReader(rw, inner...)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(rw, inner...)
	if err != nil {
		r.dec.Close()
		return nil, err
	}

	return &Duplex{
		transport: rw,
		r:         r,
		w:         w,
		owned:     cfg.owned,
	}, nil
}

// Read decompresses incoming data, as Reader.Read does.
func (d *Duplex) Read(p []byte) (int, error) {
	if d.closed {
		return 0, ErrClosed
	}
	return d.r.Read(p)
}

// Write compresses p into the outgoing frame, as Writer.Write does.
func (d *Duplex) Write(p []byte) (int, error) {
	if d.closed {
		return 0, ErrClosed
	}
	return d.w.Write(p)
}

// Flush forces buffered outgoing compressed data onto the transport.
func (d *Duplex) Flush() error {
	if d.closed {
		return ErrClosed
	}
	return d.w.Flush()
}

// Close ends the outgoing frame and releases both codec contexts; incoming
// decompression has no terminator to emit. If the Duplex owns the
// transport, the transport is closed, which terminates both directions.
func (d *Duplex) Close() error {
	if d.closed {
		return ErrClosed
	}
	d.closed = true

	err := d.w.endFrame()

	d.w.closed = true
	if cerr := d.w.comp.Close(); err == nil {
		err = cerr
	}
	d.r.closed = true
	if cerr := d.r.dec.Close(); err == nil {
		err = cerr
	}

	if d.owned {
		if c, ok := d.transport.(io.Closer); ok {
			if cerr := c.Close(); err == nil {
				err = cerr
			}
		}
	}
	return err
}

// Rewind rewinds both directions together: the two frame lifecycles share
// the one transport's position. The transport must be an io.Seeker.
func (d *Duplex) Rewind() error {
	if d.closed {
		return ErrClosed
	}
	if _, ok := d.transport.(io.Seeker); !ok {
		return ErrNotSeekable
	}
	if err := d.w.Rewind(); err != nil {
		return err
	}
	return d.r.Rewind()
}

// CompressedBytesIn returns compressed bytes read from the transport.
func (d *Duplex) CompressedBytesIn() uint64 { return d.r.CompressedBytesIn() }

// UncompressedBytesIn returns decompressed bytes handed out by Read.
func (d *Duplex) UncompressedBytesIn() uint64 { return d.r.UncompressedBytesIn() }

// CompressedBytesOut returns compressed bytes written to the transport.
func (d *Duplex) CompressedBytesOut() uint64 { return d.w.CompressedBytesOut() }

// UncompressedBytesOut returns bytes accepted by Write.
func (d *Duplex) UncompressedBytesOut() uint64 { return d.w.UncompressedBytesOut() }

// ReadRatio returns the incoming direction's compression ratio.
func (d *Duplex) ReadRatio() float64 { return d.r.Ratio() }

// WriteRatio returns the outgoing direction's compression ratio.
func (d *Duplex) WriteRatio() float64 { return d.w.Ratio() }
