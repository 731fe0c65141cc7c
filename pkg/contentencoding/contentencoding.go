// Package contentencoding classifies a Content-Encoding header value and
// decodes a response body accordingly. Grounded on
// _examples/shiroyk-ski-ext/fetch/utils.go's DecodeReader dispatch
// (gzip/deflate/br), adapted from a streaming io.Reader-returning style
// into spec.md §4.3's total, buffered function: decode never errors —
// failure yields an empty result, Unknown passes the input through
// unchanged.
package contentencoding

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
)

// Kind is the classified Content-Encoding of a response body.
type Kind uint8

const (
	Gzip Kind = iota
	Deflate
	Br
	Unknown
)

// Classify maps a (case-folded) Content-Encoding header value onto a Kind.
func Classify(headerValue string) Kind {
	switch strings.ToLower(strings.TrimSpace(headerValue)) {
	case "gzip":
		return Gzip
	case "deflate":
		return Deflate
	case "br":
		return Br
	default:
		return Unknown
	}
}

// Decode dispatches data to the matching decompressor, reading it to EOF in
// bufferSize-sized chunks. bufferSize is a hint only — the functional
// result never depends on it, per spec.md §4.3. On Unknown, data is
// returned unchanged; on any decompression failure, an empty slice is
// returned rather than propagating an error.
func Decode(kind Kind, data []byte, bufferSize int) []byte {
	if kind == Unknown {
		return data
	}
	if bufferSize <= 0 {
		bufferSize = 8192
	}

	var r io.Reader
	switch kind {
	case Gzip:
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return []byte{}
		}
		defer gz.Close()
		r = gz
	case Deflate:
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return []byte{}
		}
		defer zr.Close()
		r = zr
	case Br:
		r = brotli.NewReader(bytes.NewReader(data))
	}

	var out bytes.Buffer
	buf := make([]byte, bufferSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			out.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return []byte{}
		}
	}
	return out.Bytes()
}

// Encode compresses data using the matching algorithm — used by §8
// invariant 5's round-trip property (decode(encode(x)) == x) and by tests
// that need a conformant encoder for a given Kind. Unknown returns data
// unchanged.
func Encode(kind Kind, data []byte) []byte {
	var buf bytes.Buffer
	switch kind {
	case Gzip:
		w := gzip.NewWriter(&buf)
		w.Write(data)
		w.Close()
	case Deflate:
		w := zlib.NewWriter(&buf)
		w.Write(data)
		w.Close()
	case Br:
		w := brotli.NewWriter(&buf)
		w.Write(data)
		w.Close()
	default:
		return data
	}
	return buf.Bytes()
}
