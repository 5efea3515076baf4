package lz4stream

import (
	"fmt"
	"os"
)

// OpenFile opens the LZ4 frame file at path for decompression. The Reader
// owns the file: Close closes it.
func OpenFile(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lz4stream: open %s: %w", path, err)
	}
	r, err := NewReader(f, append(opts, WithOwnedStream())...)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// CreateFile creates (or truncates) an LZ4 frame file at path for
// compression. The Writer owns the file: Close ends the frame and closes
// it.
func CreateFile(path string, opts ...Option) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("lz4stream: create %s: %w", path, err)
	}
	w, err := NewWriter(f, append(opts, WithOwnedStream())...)
	if err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}
