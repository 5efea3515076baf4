package lz4f

import (
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/pierrec/lz4/v4"
	"github.com/pierrec/xxHash/xxHash32"

	"github.com/84codes/lz4stream/internal/engine"
)

// Compile-time check that Decompressor implements engine.Decompressor.
var _ engine.Decompressor = (*Decompressor)(nil)

// parse stages of the frame state machine.
type stage int

const (
	stageMagic stage = iota
	stageSkipSize
	stageSkipBody
	stageDescriptor
	stageBlockHeader
	stageBlockBody
	stageContentChecksum
	stageDone
)

// Decompressor is a decompression context for one LZ4 frame. It accepts
// input in arbitrarily small pieces, stages partial headers and blocks
// internally, and holds decoded output back until the caller has room for
// it. Not safe for concurrent use.
type Decompressor struct {
	stage   stage
	hold    [maxHeaderSize]byte // staging for magic, descriptor, block headers, checksums
	holdLen int

	// Frame descriptor, valid from stageBlockHeader on.
	linked          bool
	blockChecksum   bool
	contentChecksum bool
	blockMax        int
	contentSize     uint64
	hasContentSize  bool

	// Current block.
	blockLen   int
	blockTotal int // blockLen plus its checksum, when present
	rawBlock   bool
	stash      []byte // staged stored-block bytes

	// Decoded output not yet handed to the caller.
	decBuf  []byte
	decoded []byte
	decOff  int

	window   []byte      // trailing decoded history for linked frames
	hasher   hash.Hash32 // content checksum accumulator
	skipLeft int         // remaining bytes of a skippable frame

	hdrParsed bool
	released  bool
}

// NewDecompressor creates a decompression context. The frame descriptor is
// read from the stream itself, so no preferences are required.
func NewDecompressor() *Decompressor {
	return &Decompressor{}
}

// Finished reports whether the frame is fully decoded and delivered.
func (d *Decompressor) Finished() bool {
	return d.stage == stageDone && d.decOff == len(d.decoded)
}

// Reset discards all per-frame state so a new frame can be decoded.
func (d *Decompressor) Reset() {
	d.stage = stageMagic
	d.holdLen = 0
	d.stash = d.stash[:0]
	d.decoded = nil
	d.decOff = 0
	d.window = d.window[:0]
	d.hasher = nil
	d.skipLeft = 0
	d.blockLen = 0
	d.blockTotal = 0
	d.rawBlock = false
	d.hdrParsed = false
}

// Close releases the context. Idempotent.
func (d *Decompressor) Close() error {
	d.released = true
	d.stash = nil
	d.decBuf = nil
	d.decoded = nil
	d.window = nil
	return nil
}

// Process consumes bytes from src and writes decoded bytes into dst,
// returning the counts and a hint of how many further input bytes are
// needed before more progress is possible. A hint of 0 means the frame is
// complete.
func (d *Decompressor) Process(src, dst []byte) (consumed, produced, hint int, err error) {
	if d.released {
		return 0, 0, 0, ErrContextReleased
	}

	for {
		// Deliver already-decoded output first.
		if d.decOff < len(d.decoded) {
			n := copy(dst[produced:], d.decoded[d.decOff:])
			produced += n
			d.decOff += n
			if d.decOff < len(d.decoded) {
				// Destination is full; more output is waiting.
				return consumed, produced, d.pendingHint(), nil
			}
			d.decoded = nil
			d.decOff = 0
		}

		switch d.stage {
		case stageDone:
			return consumed, produced, 0, nil

		case stageMagic:
			if !d.fill(&src, &consumed, 4) {
				return consumed, produced, 4 - d.holdLen, nil
			}
			magic := binary.LittleEndian.Uint32(d.hold[:4])
			d.holdLen = 0
			switch {
			case magic == frameMagic:
				d.stage = stageDescriptor
			case magic&skipFrameMask == skipFrameMagic:
				d.stage = stageSkipSize
			default:
				return consumed, produced, 0, fmt.Errorf("%w: %#08x", ErrInvalidFrame, magic)
			}

		case stageSkipSize:
			if !d.fill(&src, &consumed, 4) {
				return consumed, produced, 4 - d.holdLen, nil
			}
			d.skipLeft = int(binary.LittleEndian.Uint32(d.hold[:4]))
			d.holdLen = 0
			d.stage = stageSkipBody

		case stageSkipBody:
			n := min(d.skipLeft, len(src))
			src = src[n:]
			consumed += n
			d.skipLeft -= n
			if d.skipLeft > 0 {
				return consumed, produced, d.skipLeft, nil
			}
			d.stage = stageMagic

		case stageDescriptor:
			if err := d.readDescriptor(&src, &consumed); err != nil {
				return consumed, produced, 0, err
			}
			if d.stage == stageDescriptor {
				return consumed, produced, d.descriptorNeed() - d.holdLen, nil
			}

		case stageBlockHeader:
			if !d.fill(&src, &consumed, blockHeaderSize) {
				return consumed, produced, blockHeaderSize - d.holdLen, nil
			}
			v := binary.LittleEndian.Uint32(d.hold[:4])
			d.holdLen = 0
			if v == 0 {
				// End mark.
				if d.contentChecksum {
					d.stage = stageContentChecksum
					break
				}
				d.stage = stageDone
				return consumed, produced, 0, nil
			}
			d.rawBlock = v&uncompressedFlag != 0
			d.blockLen = int(v &^ uncompressedFlag)
			if d.blockLen > d.blockMax {
				return consumed, produced, 0, fmt.Errorf("%w: %d > %d", ErrBlockTooLarge, d.blockLen, d.blockMax)
			}
			d.blockTotal = d.blockLen
			if d.blockChecksum {
				d.blockTotal += checksumSize
			}
			d.stash = d.stash[:0]
			d.stage = stageBlockBody

		case stageBlockBody:
			take := min(d.blockTotal-len(d.stash), len(src))
			d.stash = append(d.stash, src[:take]...)
			src = src[take:]
			consumed += take
			if len(d.stash) < d.blockTotal {
				return consumed, produced, d.blockTotal - len(d.stash), nil
			}
			if err := d.decodeBlock(); err != nil {
				return consumed, produced, 0, err
			}
			d.stage = stageBlockHeader

		case stageContentChecksum:
			if !d.fill(&src, &consumed, checksumSize) {
				return consumed, produced, checksumSize - d.holdLen, nil
			}
			want := binary.LittleEndian.Uint32(d.hold[:4])
			d.holdLen = 0
			if got := d.hasher.Sum32(); got != want {
				return consumed, produced, 0, fmt.Errorf("%w: %#08x != %#08x", ErrContentChecksum, got, want)
			}
			d.stage = stageDone
			return consumed, produced, 0, nil
		}
	}
}

// fill moves bytes from *src into the hold buffer until it has n of them,
// reporting whether it does.
func (d *Decompressor) fill(src *[]byte, consumed *int, n int) bool {
	take := min(n-d.holdLen, len(*src))
	copy(d.hold[d.holdLen:], (*src)[:take])
	d.holdLen += take
	*src = (*src)[take:]
	*consumed += take
	return d.holdLen == n
}

// descriptorNeed returns the total descriptor length implied by the FLG
// byte, or the 2 bytes needed to learn it.
func (d *Decompressor) descriptorNeed() int {
	if d.holdLen < 2 {
		return 2
	}
	flg := d.hold[0]
	need := 3 // FLG, BD, header checksum
	if flg&flagContentSize != 0 {
		need += 8
	}
	if flg&flagDictID != 0 {
		need += 4
	}
	return need
}

// readDescriptor stages and validates the frame descriptor. On success the
// stage advances to stageBlockHeader; if input ran out the stage is left
// unchanged for the next call.
func (d *Decompressor) readDescriptor(src *[]byte, consumed *int) error {
	if !d.fill(src, consumed, 2) {
		return nil
	}
	flg, bd := d.hold[0], d.hold[1]
	if flg&flagVersionMask != flagVersion {
		return fmt.Errorf("%w: %d", ErrVersionUnsupported, flg>>6)
	}
	if flg&flagReserved != 0 || bd&bdReservedMask != 0 {
		return ErrReservedBitSet
	}
	if flg&flagDictID != 0 {
		return ErrDictionaryID
	}

	need := d.descriptorNeed()
	if !d.fill(src, consumed, need) {
		return nil
	}

	// Header checksum byte covers everything after the magic.
	want := d.hold[need-1]
	if got := byte(xxHash32.Checksum(d.hold[:need-1], 0) >> 8); got != want {
		return fmt.Errorf("%w: %#02x != %#02x", ErrHeaderChecksum, got, want)
	}

	blockMax, err := blockSizeFromID(bd >> bdSizeShift)
	if err != nil {
		return err
	}
	d.blockMax = blockMax
	d.linked = flg&flagBlockIndep == 0
	d.blockChecksum = flg&flagBlockChecksum != 0
	d.contentChecksum = flg&flagContentCheck != 0
	if d.hasContentSize = flg&flagContentSize != 0; d.hasContentSize {
		d.contentSize = binary.LittleEndian.Uint64(d.hold[2:10])
	}
	if d.contentChecksum {
		d.hasher = xxHash32.New(0)
	}
	if cap(d.stash) < blockMax {
		d.stash = make([]byte, 0, blockMax)
	}
	if cap(d.decBuf) < blockMax {
		d.decBuf = make([]byte, blockMax)
	}

	d.holdLen = 0
	d.hdrParsed = true
	d.stage = stageBlockHeader
	return nil
}

// decodeBlock verifies and decodes the staged block into the decoded
// buffer, updating the history window and content hash.
func (d *Decompressor) decodeBlock() error {
	data := d.stash[:d.blockLen]
	if d.blockChecksum {
		want := binary.LittleEndian.Uint32(d.stash[d.blockLen:d.blockTotal])
		if got := xxHash32.Checksum(data, 0); got != want {
			return fmt.Errorf("%w: %#08x != %#08x", ErrBlockChecksum, got, want)
		}
	}

	if d.rawBlock {
		d.decoded = d.decBuf[:copy(d.decBuf, data)]
	} else {
		var (
			n   int
			err error
		)
		if d.linked && len(d.window) > 0 {
			n, err = lz4.UncompressBlockWithDict(data, d.decBuf[:d.blockMax], d.window)
		} else {
			n, err = lz4.UncompressBlock(data, d.decBuf[:d.blockMax])
		}
		if err != nil {
			return fmt.Errorf("lz4f: decompress block: %w", err)
		}
		d.decoded = d.decBuf[:n]
	}
	d.decOff = 0

	if d.hasher != nil {
		d.hasher.Write(d.decoded)
	}
	if d.linked {
		d.updateWindow(d.decoded)
	}
	return nil
}

// updateWindow keeps the trailing 64 KiB of decoded output for linked
// frames.
func (d *Decompressor) updateWindow(out []byte) {
	if len(out) >= windowSize {
		d.window = append(d.window[:0], out[len(out)-windowSize:]...)
		return
	}
	if drop := len(d.window) + len(out) - windowSize; drop > 0 {
		d.window = append(d.window[:0], d.window[drop:]...)
	}
	d.window = append(d.window, out...)
}

// pendingHint is the hint returned while decoded output is still waiting
// for destination space: the input needed for whatever comes next.
func (d *Decompressor) pendingHint() int {
	switch d.stage {
	case stageDone:
		return 0
	case stageBlockBody:
		return d.blockTotal - len(d.stash)
	default:
		return blockHeaderSize
	}
}

// Header describes a parsed frame descriptor.
type Header struct {
	BlockMaxSize    int
	BlockLinked     bool
	BlockChecksum   bool
	ContentChecksum bool
	ContentSize     uint64
	HasContentSize  bool
}

// Header returns the frame descriptor once it has been read from the
// stream; ok is false before that point.
func (d *Decompressor) Header() (hdr Header, ok bool) {
	if !d.hdrParsed {
		return Header{}, false
	}
	return Header{
		BlockMaxSize:    d.blockMax,
		BlockLinked:     d.linked,
		BlockChecksum:   d.blockChecksum,
		ContentChecksum: d.contentChecksum,
		ContentSize:     d.contentSize,
		HasContentSize:  d.hasContentSize,
	}, true
}
