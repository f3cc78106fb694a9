package source

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/ajitpratap0/docframe/pkg/compression"
	"github.com/ajitpratap0/docframe/pkg/errors"
	"github.com/ajitpratap0/docframe/pkg/mmap"
)

// maxLineSize bounds a single Extended JSON document in a file.
const maxLineSize = 16 * 1024 * 1024

// FileSource reads one Extended JSON document per line, as written by
// mongoexport. Compressed files are recognized by extension.
type FileSource struct {
	path   string
	alg    compression.Algorithm
	logger *zap.Logger
}

// OpenFile checks that path is readable and returns a source over it.
func OpenFile(path string, logger *zap.Logger) (*FileSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WrapCompute(err, "unable to open document file").WithDetail("path", path)
	}
	if info.IsDir() {
		return nil, errors.Compute("unable to open document file: is a directory").WithDetail("path", path)
	}
	return &FileSource{
		path:   path,
		alg:    compression.FromPath(path),
		logger: logger.With(zap.String("component", "file_source"), zap.String("path", path)),
	}, nil
}

// Name returns the file's base name.
func (s *FileSource) Name() string { return filepath.Base(s.path) }

// Sample returns the first n documents of the file.
func (s *FileSource) Sample(ctx context.Context, n int, projection Projection) ([]Document, error) {
	if n <= 0 {
		return nil, nil
	}
	cur, err := s.Stream(ctx, n, projection)
	if err != nil {
		return nil, err
	}
	return collectSample(ctx, cur, n)
}

// open maps uncompressed files and falls back to a plain file handle.
func (s *FileSource) open() (io.ReadCloser, error) {
	if s.alg == compression.None {
		m, err := mmap.Open(s.path)
		if err == nil {
			return m, nil
		}
		s.logger.Debug("mmap unavailable, reading file", zap.Error(err))
	}
	return os.Open(s.path)
}

// Stream opens the file and iterates over its documents.
func (s *FileSource) Stream(_ context.Context, limit int, projection Projection) (Cursor, error) {
	f, err := s.open()
	if err != nil {
		return nil, errors.WrapCompute(err, "unable to open document file").WithDetail("path", s.path)
	}
	r, err := compression.NewReader(f, s.alg)
	if err != nil {
		f.Close()
		return nil, errors.WrapCompute(err, "unable to open document file").WithDetail("path", s.path)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	s.logger.Debug("opened file cursor", zap.String("compression", string(s.alg)))

	return &fileCursor{
		file:       f,
		reader:     r,
		scanner:    scanner,
		limit:      limit,
		projection: projection,
	}, nil
}

// Close is a no-op; cursors own their file handles.
func (s *FileSource) Close(context.Context) error { return nil }

type fileCursor struct {
	file       io.Closer
	reader     io.Closer
	scanner    *bufio.Scanner
	limit      int
	read       int
	line       int
	projection Projection
	doc        Document
	err        error
}

func (c *fileCursor) Next(ctx context.Context) bool {
	if c.err != nil || (c.limit > 0 && c.read >= c.limit) {
		return false
	}
	if err := ctx.Err(); err != nil {
		c.err = err
		return false
	}

	for c.scanner.Scan() {
		c.line++
		line := bytes.TrimSpace(c.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var doc Document
		if err := bson.UnmarshalExtJSON(line, false, &doc); err != nil {
			c.err = errors.WrapCompute(err, "unable to decode document").WithDetail("line", c.line)
			return false
		}
		c.doc = c.projection.Apply(doc)
		c.read++
		return true
	}

	if err := c.scanner.Err(); err != nil {
		c.err = errors.WrapCompute(err, "unable to read document file")
	}
	return false
}

func (c *fileCursor) Document() Document { return c.doc }

func (c *fileCursor) Err() error { return c.err }

func (c *fileCursor) Close(context.Context) error {
	rerr := c.reader.Close()
	if err := c.file.Close(); err != nil {
		return err
	}
	return rerr
}
