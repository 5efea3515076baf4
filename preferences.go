package lz4stream

import (
	"github.com/84codes/lz4stream/internal/engine"
)

// BlockSize selects the maximum uncompressed size of one frame data block.
type BlockSize int

// Block size classes defined by the LZ4 frame format. BlockSizeDefault
// currently maps to 64 KiB.
const (
	BlockSizeDefault BlockSize = iota
	BlockSize64KB
	BlockSize256KB
	BlockSize1MB
	BlockSize4MB
)

// Bytes returns the block size in bytes.
func (b BlockSize) Bytes() int {
	switch b {
	case BlockSize256KB:
		return engine.Block256KB
	case BlockSize1MB:
		return engine.Block1MB
	case BlockSize4MB:
		return engine.Block4MB
	default:
		return engine.Block64KB
	}
}

// String returns the block size class name.
func (b BlockSize) String() string {
	switch b {
	case BlockSize256KB:
		return "256KB"
	case BlockSize1MB:
		return "1MB"
	case BlockSize4MB:
		return "4MB"
	default:
		return "64KB"
	}
}

// CompressionLevel trades compression ratio against speed. Any integer is
// accepted; the named levels match the reference implementation's scale,
// where 0 is the fast compressor and higher values search harder.
type CompressionLevel int

const (
	LevelFast    CompressionLevel = 0
	LevelMin     CompressionLevel = 3
	LevelDefault CompressionLevel = 9
	LevelOptMin  CompressionLevel = 10
	LevelMax     CompressionLevel = 12
)

// Preferences configure the frames an adapter produces. The value is fixed
// at construction; decoding reads the equivalent settings from the frame
// header instead.
type Preferences struct {
	// BlockSize is the block size class for frame data blocks.
	BlockSize BlockSize

	// BlockLinked lets blocks reference the previous 64 KiB of content.
	// Recorded in the frame descriptor; blocks written by this library
	// are always independently compressed, which is valid in both modes,
	// while decoding honors whichever mode the header declares.
	BlockLinked bool

	// BlockChecksum appends an XXH32 checksum to every data block.
	BlockChecksum bool

	// ContentChecksum appends an XXH32 checksum of the whole content
	// after the end mark, letting decoders detect corruption.
	ContentChecksum bool

	// Level selects the compression effort.
	Level CompressionLevel

	// AutoFlush emits every Write's data as blocks immediately instead
	// of buffering input up to BlockSize.
	AutoFlush bool

	// FavorDecSpeed requests decompression-speed-favoring compression.
	// Accepted for compatibility with the reference preference set; the
	// block compressors used here have no such tuning knob.
	FavorDecSpeed bool
}

// DefaultPreferences returns the preferences adapters use when none are
// given: 64 KiB independent blocks, content checksum on, fast compression.
func DefaultPreferences() Preferences {
	return Preferences{
		BlockSize:       BlockSizeDefault,
		ContentChecksum: true,
		Level:           LevelFast,
	}
}

// engine translates the user-facing knobs into the engine's preference
// representation. Pure function of its inputs.
func (p Preferences) engine() engine.Preferences {
	return engine.Preferences{
		BlockMaxSize:    p.BlockSize.Bytes(),
		BlockLinked:     p.BlockLinked,
		BlockChecksum:   p.BlockChecksum,
		ContentChecksum: p.ContentChecksum,
		Level:           int(p.Level),
		AutoFlush:       p.AutoFlush,
		FavorDecSpeed:   p.FavorDecSpeed,
	}
}
