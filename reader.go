package lz4stream

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/84codes/lz4stream/internal/engine"
	"github.com/84codes/lz4stream/internal/engine/lz4f"
	"github.com/84codes/lz4stream/internal/stats"
)

// pendingSize is the capacity of the pending-input buffer: bytes read from
// the underlying source but not yet consumed by the engine. It is also the
// chunk size the Writer feeds the engine per call.
const pendingSize = 64 << 10

// Compile-time checks for the implemented stream contracts.
var (
	_ io.Reader   = (*Reader)(nil)
	_ io.WriterTo = (*Reader)(nil)
	_ io.Closer   = (*Reader)(nil)
)

// Reader decompresses an LZ4 frame read from an underlying byte source.
// Not safe for concurrent use.
type Reader struct {
	src    io.Reader
	dec    engine.Decompressor
	logger *zap.Logger
	stats  stats.Collector
	owned  bool
	closed bool

	// Pending-input buffer: buf[off:end] holds bytes read from src but
	// not yet consumed by the engine. It is refilled only when empty, so
	// partially consumed input is never overwritten.
	buf      []byte
	off, end int

	compressedIn   uint64
	uncompressedIn uint64
}

// NewReader creates a Reader decompressing from r.
// The caller keeps ownership of r unless WithOwnedStream is given.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	rd := &Reader{
		src:    r,
		dec:    lz4f.NewDecompressor(),
		logger: cfg.logger,
		stats:  cfg.stats,
		owned:  cfg.owned,
		buf:    make([]byte, pendingSize),
	}

	rd.logger.Debug("reader initialized", zap.Bool("ownedStream", rd.owned))
	return rd, nil
}

// Read decompresses into p and returns the number of bytes written to it.
// It returns io.EOF once the frame is complete, and io.ErrUnexpectedEOF if
// the source runs dry in the middle of a frame.
func (r *Reader) Read(p []byte) (n int, err error) {
	if r.closed {
		return 0, ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	// Every byte handed to the caller counts, including those delivered
	// alongside a mid-frame error.
	defer func() {
		r.uncompressedIn += uint64(n)
		r.stats.IncCounter(stats.MetricUncompressedBytesIn, int64(n))
	}()

	total := 0
	hint := 0
	for {
		// Never feed the engine more than it asked for: extra input
		// would be buffered inside the engine and desynchronize the
		// pending-input accounting.
		src := r.buf[r.off:r.end]
		if hint > 0 && len(src) > hint {
			src = src[:hint]
		}

		consumed, produced, h, err := r.dec.Process(src, p[total:])
		if err != nil {
			return total, fmt.Errorf("lz4stream: decode: %w", err)
		}
		r.off += consumed
		total += produced
		hint = h

		if total == len(p) {
			break
		}
		if hint == 0 {
			// Frame complete.
			break
		}
		if r.off == r.end {
			n, rerr := r.src.Read(r.buf)
			r.off, r.end = 0, n
			r.compressedIn += uint64(n)
			r.stats.IncCounter(stats.MetricCompressedBytesIn, int64(n))
			if n == 0 {
				if rerr != nil && rerr != io.EOF {
					return total, rerr
				}
				// Source exhausted.
				if total > 0 {
					break
				}
				if r.compressedIn == 0 {
					return 0, io.EOF
				}
				return 0, io.ErrUnexpectedEOF
			}
		}
	}

	if total == 0 {
		return 0, io.EOF
	}
	return total, nil
}

// WriteTo decompresses the whole frame into w.
func (r *Reader) WriteTo(w io.Writer) (int64, error) {
	var written int64
	chunk := make([]byte, pendingSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			wn, werr := w.Write(chunk[:n])
			written += int64(wn)
			if werr != nil {
				return written, werr
			}
		}
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}

// Rewind resets the underlying source to its start, discards all buffered
// input, zeroes the byte counters and resets the decompression context so
// a fresh frame can be read from the top. The source must be an io.Seeker.
func (r *Reader) Rewind() error {
	if r.closed {
		return ErrClosed
	}
	seeker, ok := r.src.(io.Seeker)
	if !ok {
		return ErrNotSeekable
	}
	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		return err
	}
	r.off, r.end = 0, 0
	r.compressedIn = 0
	r.uncompressedIn = 0
	r.dec.Reset()
	return nil
}

// Close releases the decompression context and, if the Reader owns the
// underlying source, closes it too. A second Close returns ErrClosed.
func (r *Reader) Close() error {
	if r.closed {
		return ErrClosed
	}
	r.closed = true

	err := r.dec.Close()
	if r.owned {
		if c, ok := r.src.(io.Closer); ok {
			if cerr := c.Close(); err == nil {
				err = cerr
			}
		}
	}

	r.logger.Debug("reader closed",
		zap.Uint64("compressedBytesIn", r.compressedIn),
		zap.Uint64("uncompressedBytesIn", r.uncompressedIn),
	)
	return err
}

// CompressedBytesIn returns the number of compressed bytes read from the
// underlying source.
func (r *Reader) CompressedBytesIn() uint64 { return r.compressedIn }

// UncompressedBytesIn returns the number of decompressed bytes handed out.
func (r *Reader) UncompressedBytesIn() uint64 { return r.uncompressedIn }

// Ratio returns uncompressed/compressed for this direction, or 0.0 when
// nothing has been read yet.
func (r *Reader) Ratio() float64 {
	return ratio(r.uncompressedIn, r.compressedIn)
}

// ratio computes uncompressed/compressed, guarding the zero denominator.
func ratio(uncompressed, compressed uint64) float64 {
	if compressed == 0 {
		return 0.0
	}
	return float64(uncompressed) / float64(compressed)
}
