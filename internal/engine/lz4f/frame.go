// Package lz4f implements the engine side of the LZ4 frame format
// (magic, frame descriptor, data blocks, end mark, XXH32 checksums), as
// specified in https://github.com/lz4/lz4/blob/dev/doc/lz4_Frame_format.md.
//
// Block compression and decompression arithmetic is delegated to
// github.com/pierrec/lz4/v4; this package only owns the container layout
// and the incremental push/pull state machines around it.
package lz4f

import (
	"errors"
	"fmt"

	"github.com/84codes/lz4stream/internal/engine"
)

const (
	frameMagic     uint32 = 0x184D2204
	skipFrameMagic uint32 = 0x184D2A50
	skipFrameMask  uint32 = 0xFFFFFFF0

	// FLG byte layout.
	flagVersion       byte = 1 << 6
	flagVersionMask   byte = 0xC0
	flagBlockIndep    byte = 1 << 5
	flagBlockChecksum byte = 1 << 4
	flagContentSize   byte = 1 << 3
	flagContentCheck  byte = 1 << 2
	flagReserved      byte = 1 << 1
	flagDictID        byte = 1 << 0

	// BD byte: block maximum size id lives in bits 6-4, the rest must be 0.
	bdSizeShift    = 4
	bdReservedMask = 0x8F

	// Stored block sizes with the high bit set are uncompressed.
	uncompressedFlag uint32 = 1 << 31

	// Largest possible frame header: magic, FLG, BD, content size,
	// dictionary id and the header checksum byte.
	maxHeaderSize = 4 + 1 + 1 + 8 + 4 + 1

	blockHeaderSize = 4
	checksumSize    = 4
	endMarkSize     = 4

	// Linked blocks may reference the previous 64 KiB of decoded data.
	windowSize = 64 << 10
)

// Engine error values. The adapters wrap these with %w, so callers can
// match them with errors.Is.
var (
	ErrInvalidFrame       = errors.New("lz4f: invalid frame magic")
	ErrVersionUnsupported = errors.New("lz4f: unsupported frame version")
	ErrReservedBitSet     = errors.New("lz4f: reserved bit set in frame descriptor")
	ErrInvalidBlockSize   = errors.New("lz4f: invalid block maximum size id")
	ErrBlockTooLarge      = errors.New("lz4f: stored block exceeds frame block maximum")
	ErrHeaderChecksum     = errors.New("lz4f: header checksum mismatch")
	ErrBlockChecksum      = errors.New("lz4f: block checksum mismatch")
	ErrContentChecksum    = errors.New("lz4f: content checksum mismatch")
	ErrDictionaryID       = errors.New("lz4f: frames with a dictionary id are not supported")
	ErrContextReleased    = errors.New("lz4f: context released")
)

// blockSizeID maps a block maximum size in bytes to its descriptor id
// (ids 4 through 7, per the frame format).
func blockSizeID(size int) (byte, error) {
	switch size {
	case engine.Block64KB:
		return 4, nil
	case engine.Block256KB:
		return 5, nil
	case engine.Block1MB:
		return 6, nil
	case engine.Block4MB:
		return 7, nil
	}
	return 0, fmt.Errorf("%w: %d bytes", ErrInvalidBlockSize, size)
}

// blockSizeFromID is the reverse mapping, used when reading frames.
func blockSizeFromID(id byte) (int, error) {
	switch id {
	case 4:
		return engine.Block64KB, nil
	case 5:
		return engine.Block256KB, nil
	case 6:
		return engine.Block1MB, nil
	case 7:
		return engine.Block4MB, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidBlockSize, id)
}

// normalizeBlockMax applies the "default" block size class.
func normalizeBlockMax(size int) int {
	if size == 0 {
		return engine.Block64KB
	}
	return size
}

// CompressBound returns the worst-case number of bytes one Update call with
// srcSize input bytes can emit, including a possible carried-over partial
// block, a trailing Flush and the frame prologue/epilogue. Buffers sized
// with it never overflow, whatever the preferences.
func CompressBound(srcSize int, prefs engine.Preferences) int {
	blockMax := normalizeBlockMax(prefs.BlockMaxSize)
	// One extra block for input buffered from earlier calls, one for the
	// final partial block.
	blocks := srcSize/blockMax + 2
	perBlock := blockMax + blockHeaderSize + checksumSize
	return maxHeaderSize + blocks*perBlock + endMarkSize + checksumSize
}
