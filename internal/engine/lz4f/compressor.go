package lz4f

import (
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/pierrec/lz4/v4"
	"github.com/pierrec/xxHash/xxHash32"

	"github.com/84codes/lz4stream/internal/engine"
)

// Compile-time check that Compressor implements engine.Compressor.
var _ engine.Compressor = (*Compressor)(nil)

// Compressor is a compression context producing one LZ4 frame at a time.
// It buffers input up to the frame's block maximum before emitting a block,
// unless AutoFlush is set. Not safe for concurrent use.
type Compressor struct {
	prefs    engine.Preferences
	pending  []byte      // buffered input, cap = block maximum
	block    []byte      // scratch for one compressed block
	hasher   hash.Hash32 // content checksum, nil when disabled
	released bool
}

// NewCompressor creates a compression context for the given preferences.
// A zero BlockMaxSize selects the 64 KiB class.
func NewCompressor(prefs engine.Preferences) (*Compressor, error) {
	prefs.BlockMaxSize = normalizeBlockMax(prefs.BlockMaxSize)
	if _, err := blockSizeID(prefs.BlockMaxSize); err != nil {
		return nil, err
	}

	c := &Compressor{
		prefs:   prefs,
		pending: make([]byte, 0, prefs.BlockMaxSize),
		block:   make([]byte, lz4.CompressBlockBound(prefs.BlockMaxSize)),
	}
	if prefs.ContentChecksum {
		c.hasher = xxHash32.New(0)
	}
	return c, nil
}

// Begin writes the frame header into dst and arms a fresh frame.
func (c *Compressor) Begin(dst []byte) (int, error) {
	if c.released {
		return 0, ErrContextReleased
	}
	c.Reset()

	binary.LittleEndian.PutUint32(dst, frameMagic)

	flg := flagVersion
	if !c.prefs.BlockLinked {
		flg |= flagBlockIndep
	}
	if c.prefs.BlockChecksum {
		flg |= flagBlockChecksum
	}
	if c.prefs.ContentChecksum {
		flg |= flagContentCheck
	}
	id, err := blockSizeID(c.prefs.BlockMaxSize)
	if err != nil {
		return 0, err
	}

	dst[4] = flg
	dst[5] = id << bdSizeShift
	// Header checksum byte: second byte of the XXH32 of the descriptor.
	dst[6] = byte(xxHash32.Checksum(dst[4:6], 0) >> 8)
	return 7, nil
}

// Update consumes src, appending completed blocks to dst. With stableInput
// set and no carried-over input, full blocks are compressed straight out of
// src without the staging copy.
func (c *Compressor) Update(dst, src []byte, stableInput bool) (int, error) {
	if c.released {
		return 0, ErrContextReleased
	}
	if c.hasher != nil {
		c.hasher.Write(src)
	}

	blockMax := c.prefs.BlockMaxSize
	written := 0
	for len(src) > 0 {
		if stableInput && len(c.pending) == 0 && len(src) >= blockMax {
			n, err := c.emitBlock(dst[written:], src[:blockMax])
			if err != nil {
				return written, err
			}
			written += n
			src = src[blockMax:]
			continue
		}

		take := min(blockMax-len(c.pending), len(src))
		c.pending = append(c.pending, src[:take]...)
		src = src[take:]

		if len(c.pending) == blockMax {
			n, err := c.emitBlock(dst[written:], c.pending)
			if err != nil {
				return written, err
			}
			written += n
			c.pending = c.pending[:0]
		}
	}

	if c.prefs.AutoFlush && len(c.pending) > 0 {
		n, err := c.emitBlock(dst[written:], c.pending)
		if err != nil {
			return written, err
		}
		written += n
		c.pending = c.pending[:0]
	}
	return written, nil
}

// Flush emits any buffered input as a (possibly short) block.
func (c *Compressor) Flush(dst []byte) (int, error) {
	if c.released {
		return 0, ErrContextReleased
	}
	if len(c.pending) == 0 {
		return 0, nil
	}
	n, err := c.emitBlock(dst, c.pending)
	if err != nil {
		return 0, err
	}
	c.pending = c.pending[:0]
	return n, nil
}

// End flushes, writes the end mark and the optional content checksum, and
// leaves the context ready for the next Begin.
func (c *Compressor) End(dst []byte) (int, error) {
	written, err := c.Flush(dst)
	if err != nil {
		return written, err
	}

	binary.LittleEndian.PutUint32(dst[written:], 0)
	written += endMarkSize

	if c.hasher != nil {
		binary.LittleEndian.PutUint32(dst[written:], c.hasher.Sum32())
		written += checksumSize
	}

	c.Reset()
	return written, nil
}

// Reset discards all per-frame state.
func (c *Compressor) Reset() {
	c.pending = c.pending[:0]
	if c.hasher != nil {
		c.hasher.Reset()
	}
}

// Close releases the context. Idempotent.
func (c *Compressor) Close() error {
	c.released = true
	c.pending = nil
	c.block = nil
	return nil
}

// emitBlock writes one data block for src into dst: 4-byte size header,
// payload, optional XXH32 block checksum. Incompressible input is stored
// raw with the high bit of the size header set, the same convention the
// reference implementation uses.
func (c *Compressor) emitBlock(dst, src []byte) (int, error) {
	var (
		n   int
		err error
	)
	if c.prefs.Level <= 0 {
		n, err = lz4.CompressBlock(src, c.block, nil)
	} else {
		n, err = lz4.CompressBlockHC(src, c.block, hcLevel(c.prefs.Level), nil, nil)
	}
	if err != nil {
		return 0, fmt.Errorf("lz4f: compress block: %w", err)
	}

	if n == 0 || n >= len(src) {
		// Incompressible: store as-is.
		binary.LittleEndian.PutUint32(dst, uint32(len(src))|uncompressedFlag)
		n = copy(dst[blockHeaderSize:], src)
	} else {
		binary.LittleEndian.PutUint32(dst, uint32(n))
		copy(dst[blockHeaderSize:], c.block[:n])
	}

	written := blockHeaderSize + n
	if c.prefs.BlockChecksum {
		sum := xxHash32.Checksum(dst[blockHeaderSize:written], 0)
		binary.LittleEndian.PutUint32(dst[written:], sum)
		written += checksumSize
	}
	return written, nil
}

// hcLevel maps a numeric compression level onto the high-compression
// depths. Levels beyond 9 (the "optimal" range of the reference
// implementation) clamp to the deepest search.
func hcLevel(level int) lz4.CompressionLevel {
	switch {
	case level <= 1:
		return lz4.Level1
	case level == 2:
		return lz4.Level2
	case level == 3:
		return lz4.Level3
	case level == 4:
		return lz4.Level4
	case level == 5:
		return lz4.Level5
	case level == 6:
		return lz4.Level6
	case level == 7:
		return lz4.Level7
	case level == 8:
		return lz4.Level8
	default:
		return lz4.Level9
	}
}
