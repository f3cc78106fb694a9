package mmap

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipUnsupported(t *testing.T) {
	t.Helper()
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("mmap not supported on " + runtime.GOOS)
	}
}

func TestOpenReadsWholeFile(t *testing.T) {
	skipUnsupported(t)
	path := filepath.Join(t.TempDir(), "docs.jsonl")
	content := []byte("{\"n\":1}\n{\"n\":2}\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	f, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, len(content), f.Len())
	assert.Equal(t, content, f.Bytes())

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	assert.Nil(t, f.Bytes())
}

func TestOpenEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	n, err := f.Read(make([]byte, 8))
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
