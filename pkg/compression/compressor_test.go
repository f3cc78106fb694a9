package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripAllAlgorithms(t *testing.T) {
	original := bytes.Repeat([]byte(`{"n":1,"s":"hi"}`+"\n"), 200)

	for _, alg := range []Algorithm{None, Gzip, Snappy, LZ4, Zstd, S2} {
		for _, level := range []Level{Fastest, Default, Best} {
			compressed, err := Compress(original, alg, level)
			require.NoError(t, err, "%s/%d", alg, level)
			if alg != None {
				assert.Less(t, len(compressed), len(original), "%s/%d", alg, level)
			}

			out, err := Decompress(compressed, alg)
			require.NoError(t, err, alg)
			assert.Equal(t, original, out, alg)
		}
	}
}

func TestParseAlgorithm(t *testing.T) {
	a, err := ParseAlgorithm("ZSTD")
	require.NoError(t, err)
	assert.Equal(t, Zstd, a)

	a, err = ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, None, a)

	_, err = ParseAlgorithm("brotli")
	assert.Error(t, err)
}

func TestFromPath(t *testing.T) {
	assert.Equal(t, Gzip, FromPath("docs.jsonl.gz"))
	assert.Equal(t, Zstd, FromPath("/tmp/docs.ZST"))
	assert.Equal(t, LZ4, FromPath("a.lz4"))
	assert.Equal(t, None, FromPath("docs.jsonl"))

	for _, alg := range []Algorithm{Gzip, Snappy, LZ4, Zstd, S2} {
		assert.Equal(t, alg, FromPath("x"+alg.Extension()))
	}
}

func TestWriterDoesNotCloseUnderlying(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, None, Default)
	require.NoError(t, err)
	_, err = w.Write([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, "abc", buf.String())
}
