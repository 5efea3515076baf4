package lz4stream

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/84codes/lz4stream/internal/engine"
	"github.com/84codes/lz4stream/internal/engine/lz4f"
	"github.com/84codes/lz4stream/internal/stats"
)

// Compile-time checks for the implemented stream contracts.
var (
	_ io.Writer     = (*Writer)(nil)
	_ io.ReaderFrom = (*Writer)(nil)
	_ io.Closer     = (*Writer)(nil)
)

// Writer compresses data written to it into an LZ4 frame on an underlying
// byte sink. Close ends the frame; unless the Writer owns the sink, it may
// then be written to again, starting a new frame with a fresh header.
// Not safe for concurrent use.
type Writer struct {
	dst    io.Writer
	comp   engine.Compressor
	logger *zap.Logger
	stats  stats.Collector
	owned  bool
	closed bool

	// scratch always fits the worst-case engine output for one chunk,
	// sized once via CompressBound. Reused across calls; never grows.
	scratch []byte

	headerWritten bool

	compressedOut   uint64
	uncompressedOut uint64
}

// NewWriter creates a Writer compressing into w.
// The caller keeps ownership of w unless WithOwnedStream is given.
func NewWriter(w io.Writer, opts ...Option) (*Writer, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	comp, err := lz4f.NewCompressor(cfg.prefs.engine())
	if err != nil {
		return nil, err
	}

	wr := &Writer{
		dst:     w,
		comp:    comp,
		logger:  cfg.logger,
		stats:   cfg.stats,
		owned:   cfg.owned,
		scratch: make([]byte, lz4f.CompressBound(pendingSize, cfg.prefs.engine())),
	}

	wr.logger.Debug("writer initialized",
		zap.String("blockSize", cfg.prefs.BlockSize.String()),
		zap.Int("level", int(cfg.prefs.Level)),
		zap.Bool("contentChecksum", cfg.prefs.ContentChecksum),
		zap.Bool("ownedStream", wr.owned),
	)
	return wr, nil
}

// Write compresses p into the frame. Either all of p is accepted or an
// error is returned.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	if err := w.ensureHeader(); err != nil {
		return 0, err
	}

	// Input no larger than one chunk stays valid for the whole call, so
	// the engine may compress straight out of it.
	stable := len(p) <= pendingSize

	for off := 0; off < len(p); off += pendingSize {
		chunk := p[off:min(off+pendingSize, len(p))]
		n, err := w.comp.Update(w.scratch, chunk, stable)
		if err != nil {
			return off, fmt.Errorf("lz4stream: encode: %w", err)
		}
		if err := w.emit(w.scratch[:n]); err != nil {
			return off, err
		}
	}

	w.uncompressedOut += uint64(len(p))
	w.stats.IncCounter(stats.MetricUncompressedBytesOut, int64(len(p)))
	return len(p), nil
}

// ReadFrom compresses everything read from r into the frame.
func (w *Writer) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	chunk := make([]byte, pendingSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			total += int64(n)
			if _, werr := w.Write(chunk[:n]); werr != nil {
				return total, werr
			}
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Flush forces any internally buffered compressed data out to the sink
// without ending the frame, then flushes the sink itself if it supports it.
func (w *Writer) Flush() error {
	if w.closed {
		return ErrClosed
	}
	if err := w.ensureHeader(); err != nil {
		return err
	}

	n, err := w.comp.Flush(w.scratch)
	if err != nil {
		return fmt.Errorf("lz4stream: encode: %w", err)
	}
	if err := w.emit(w.scratch[:n]); err != nil {
		return err
	}
	return w.flushSink()
}

// Close ends the current frame: it writes the end mark (emitting the header
// first if nothing was ever written, so even an empty frame is valid) and
// flushes the sink. If the Writer owns the sink, the sink is closed and the
// Writer becomes permanently unusable; otherwise it stays writable and the
// next Write starts a new frame.
func (w *Writer) Close() error {
	if w.closed {
		return ErrClosed
	}

	err := w.endFrame()

	if w.owned {
		w.closed = true
		if cerr := w.comp.Close(); err == nil {
			err = cerr
		}
		if c, ok := w.dst.(io.Closer); ok {
			if cerr := c.Close(); err == nil {
				err = cerr
			}
		}
	}

	w.logger.Debug("writer closed",
		zap.Uint64("compressedBytesOut", w.compressedOut),
		zap.Uint64("uncompressedBytesOut", w.uncompressedOut),
	)
	return err
}

// Rewind ends any open frame, zeroes the byte counters, resets the
// compression context and seeks the sink back to its start. The sink must
// be an io.Seeker.
func (w *Writer) Rewind() error {
	if w.closed {
		return ErrClosed
	}
	seeker, ok := w.dst.(io.Seeker)
	if !ok {
		return ErrNotSeekable
	}

	if w.headerWritten {
		if err := w.endFrame(); err != nil {
			return err
		}
	}
	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		return err
	}
	w.compressedOut = 0
	w.uncompressedOut = 0
	w.comp.Reset()
	return nil
}

// CompressedBytesOut returns the number of compressed bytes written to the
// underlying sink, headers and checksums included.
func (w *Writer) CompressedBytesOut() uint64 { return w.compressedOut }

// UncompressedBytesOut returns the number of bytes accepted by Write.
func (w *Writer) UncompressedBytesOut() uint64 { return w.uncompressedOut }

// Ratio returns uncompressed/compressed for this direction, or 0.0 when
// nothing has been compressed yet.
func (w *Writer) Ratio() float64 {
	return ratio(w.uncompressedOut, w.compressedOut)
}

// ensureHeader emits the frame header exactly once per frame, before any
// block, flush or end mark.
func (w *Writer) ensureHeader() error {
	if w.headerWritten {
		return nil
	}
	n, err := w.comp.Begin(w.scratch)
	if err != nil {
		return fmt.Errorf("lz4stream: encode: %w", err)
	}
	if err := w.emit(w.scratch[:n]); err != nil {
		return err
	}
	w.headerWritten = true
	w.stats.IncCounter(stats.MetricFramesStarted, 1)
	return nil
}

// endFrame terminates the current frame and flushes the sink, leaving the
// header flag clear so a subsequent write starts a new frame.
func (w *Writer) endFrame() error {
	if err := w.ensureHeader(); err != nil {
		return err
	}
	n, err := w.comp.End(w.scratch)
	if err != nil {
		return fmt.Errorf("lz4stream: encode: %w", err)
	}
	if err := w.emit(w.scratch[:n]); err != nil {
		return err
	}
	w.headerWritten = false
	w.stats.IncCounter(stats.MetricFramesEnded, 1)
	w.stats.ObserveHistogram(stats.MetricFrameRatio, w.Ratio())
	return w.flushSink()
}

// emit writes compressed bytes through to the sink, advancing the counter
// by what actually reached it. Sink errors are propagated unchanged.
func (w *Writer) emit(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	n, err := w.dst.Write(b)
	w.compressedOut += uint64(n)
	w.stats.IncCounter(stats.MetricCompressedBytesOut, int64(n))
	return err
}

func (w *Writer) flushSink() error {
	if f, ok := w.dst.(flusher); ok {
		return f.Flush()
	}
	return nil
}
