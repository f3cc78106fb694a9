// Package json provides JSON serialization on goccy/go-json with pooled
// buffers, used for option files and JSON table output.
package json

import (
	"bytes"
	"io"
	"sync"

	gojson "github.com/goccy/go-json"
)

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}

// GetBuffer gets a pooled bytes.Buffer
func GetBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns a buffer to the pool
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 1024*1024 { // Don't pool very large buffers
		return
	}
	bufferPool.Put(buf)
}

// Marshal is a drop-in replacement for json.Marshal
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// Unmarshal is a drop-in replacement for json.Unmarshal
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// UnmarshalStrict is Unmarshal rejecting unknown object keys.
func UnmarshalStrict(data []byte, v interface{}) error {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// MarshalIndent is a drop-in replacement for json.MarshalIndent
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(v, prefix, indent)
}

// StreamingEncoder writes values as a JSON array or as JSON lines.
type StreamingEncoder struct {
	writer      io.Writer
	buf         *bytes.Buffer
	encoder     *gojson.Encoder
	firstRecord bool
	isArray     bool
	pretty      bool
}

// NewStreamingEncoder creates a new streaming encoder. With isArray false
// the output is one value per line.
func NewStreamingEncoder(w io.Writer, isArray bool) *StreamingEncoder {
	buf := GetBuffer()
	enc := gojson.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	return &StreamingEncoder{
		writer:      w,
		buf:         buf,
		encoder:     enc,
		firstRecord: true,
		isArray:     isArray,
	}
}

// SetPretty enables pretty printing
func (se *StreamingEncoder) SetPretty(pretty bool, indent string) {
	se.pretty = pretty
	if pretty {
		se.encoder.SetIndent("", indent)
	}
}

// Encode encodes a single value
func (se *StreamingEncoder) Encode(v interface{}) error {
	se.buf.Reset()
	if se.isArray {
		if se.firstRecord {
			se.buf.WriteByte('[')
		} else {
			se.buf.WriteByte(',')
		}
	}
	se.firstRecord = false

	if err := se.encoder.Encode(v); err != nil {
		return err
	}

	// Encode terminates each value with a newline; arrays keep it only
	// when pretty printing.
	if se.isArray && !se.pretty {
		se.buf.Truncate(se.buf.Len() - 1)
	}

	_, err := se.writer.Write(se.buf.Bytes())
	return err
}

// Close finalizes the encoding
func (se *StreamingEncoder) Close() error {
	defer PutBuffer(se.buf)

	if !se.isArray {
		return nil
	}
	closing := "]"
	if se.firstRecord {
		closing = "[]"
	}
	if se.pretty {
		closing += "\n"
	}
	_, err := io.WriteString(se.writer, closing)
	return err
}
