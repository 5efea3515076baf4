// Package engine defines the boundary between the stream adapters and the
// codec engine that performs the actual block compression arithmetic.
// The adapters above this package never touch the frame format directly;
// they feed bytes through these interfaces and obey the returned counts.
package engine

// BlockMaxSize values accepted by Preferences, in bytes.
const (
	Block64KB  = 64 << 10
	Block256KB = 256 << 10
	Block1MB   = 1 << 20
	Block4MB   = 4 << 20
)

// Preferences is the engine-side view of the frame configuration. It is a
// plain value: engines must not mutate it after construction.
type Preferences struct {
	// BlockMaxSize is the maximum uncompressed size of one data block.
	// Must be one of Block64KB, Block256KB, Block1MB or Block4MB.
	BlockMaxSize int

	// BlockLinked records whether blocks may reference the previous 64 KiB
	// of uncompressed data. It controls the frame descriptor bit and the
	// decoder's history window.
	BlockLinked bool

	// BlockChecksum appends an XXH32 checksum after each data block.
	BlockChecksum bool

	// ContentChecksum appends an XXH32 checksum of the whole uncompressed
	// content after the end mark.
	ContentChecksum bool

	// Level selects the block compressor: 0 (or below) is the fast
	// compressor, positive values select high-compression depths.
	Level int

	// AutoFlush makes Update emit whatever input it holds as a block
	// immediately instead of buffering up to BlockMaxSize.
	AutoFlush bool

	// FavorDecSpeed is recorded for format compatibility; the block
	// compressors used here have no such tuning knob.
	FavorDecSpeed bool
}

// Compressor is one compression context: exclusive to a single adapter,
// not safe for concurrent use, released exactly once via Close.
type Compressor interface {
	// Begin writes the frame header into dst and arms a fresh frame.
	Begin(dst []byte) (int, error)

	// Update consumes src, appending any completed blocks to dst.
	// stableInput tells the engine src will not be reused or moved before
	// the next call, allowing it to compress directly from src instead of
	// copying; it never affects the produced byte stream's validity.
	Update(dst, src []byte, stableInput bool) (int, error)

	// Flush compresses any internally buffered input into dst as a block
	// without ending the frame.
	Flush(dst []byte) (int, error)

	// End flushes, writes the end mark and the optional content checksum
	// into dst, and leaves the context ready for a new Begin.
	End(dst []byte) (int, error)

	// Reset discards all per-frame state, as after construction.
	Reset()

	// Close releases the context. Further calls fail; Close itself is
	// idempotent so error paths can call it unconditionally.
	Close() error
}

// Decompressor is one decompression context with the same ownership rules
// as Compressor.
type Decompressor interface {
	// Process consumes bytes from src and writes decoded bytes to dst.
	// It returns how much of src it consumed, how much of dst it filled,
	// and a hint of how many further input bytes it needs before it can
	// make progress. A hint of 0 means the frame is complete.
	//
	// Process never requires src or dst to be any particular size: it
	// stages partial headers and blocks internally, and holds decoded
	// output back until dst has room.
	Process(src, dst []byte) (consumed, produced, hint int, err error)

	// Finished reports whether the frame has been fully decoded and
	// every decoded byte handed out.
	Finished() bool

	// Reset discards all per-frame state so a new frame can be decoded.
	Reset()

	// Close releases the context; idempotent.
	Close() error
}
