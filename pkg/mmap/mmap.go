// Package mmap exposes read-only memory-mapped files as io.Readers.
package mmap

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// ErrUnsupported is returned by Open on platforms without mmap.
var ErrUnsupported = fmt.Errorf("mmap: unsupported platform")

// File is a read-only mapping of a whole file. It is not safe for
// concurrent Reads.
type File struct {
	data   []byte
	reader *bytes.Reader
}

var _ io.ReadCloser = (*File)(nil)

// Open maps path for sequential reading. Empty files are not mapped.
func Open(path string) (*File, error) {
	f, err := os.Open(path) //nolint:gosec // G304: caller-provided input file
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	// The mapping stays valid after the descriptor is closed.
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	size := stat.Size()
	if size == 0 {
		return &File{reader: bytes.NewReader(nil)}, nil
	}
	if int64(int(size)) != size {
		return nil, fmt.Errorf("file too large to map: %d bytes", size)
	}

	data, err := mmap(int(f.Fd()), 0, int(size), ProtRead, MapShared)
	if err != nil {
		return nil, fmt.Errorf("failed to mmap file: %w", err)
	}
	// Advice is a hint; a failure leaves a valid mapping.
	_ = madvise(data, MadvSequential)

	return &File{data: data, reader: bytes.NewReader(data)}, nil
}

// Len returns the mapped size in bytes.
func (f *File) Len() int { return len(f.data) }

// Bytes returns the mapped contents. The slice is invalid after Close.
func (f *File) Bytes() []byte { return f.data }

// Read implements io.Reader over the mapping.
func (f *File) Read(p []byte) (int, error) { return f.reader.Read(p) }

// Close unmaps the file. Calling it twice is a no-op.
func (f *File) Close() error {
	if f.data == nil {
		return nil
	}
	data := f.data
	f.data = nil
	f.reader = bytes.NewReader(nil)
	return munmap(data)
}
