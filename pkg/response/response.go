// Package response models a parsed HTTP reply: status line fields, header
// map, and body bytes, per spec.md §3/§8.
package response

import (
	"fmt"
	"strconv"

	"github.com/WhileEndless/rawhttp2/pkg/buffer"
	"github.com/WhileEndless/rawhttp2/pkg/constants"
	"github.com/WhileEndless/rawhttp2/pkg/request"
	"github.com/WhileEndless/rawhttp2/pkg/timing"
)

// Response is the parsed reply to a sent Request.
type Response struct {
	HTTPVersion string
	StatusCode  int
	StatusText  string
	Headers     *request.Headers
	Body        []byte
	Metrics     timing.Metrics
}

// Text returns Body decoded as UTF-8 text — the paired text view spec.md
// §3 describes; invalid UTF-8 is preserved byte-for-byte via Go's
// replacement-free string conversion semantics (a lossless round trip for
// any input, since Go strings are not required to be valid UTF-8).
func (r *Response) Text() string { return string(r.Body) }

// Binary returns Body unchanged — the paired binary view.
func (r *Response) Binary() []byte { return r.Body }

// ContentLength reads the declared Content-Length header, or -1 if absent
// or unparsable.
func (r *Response) ContentLength() int64 {
	v, ok := r.Headers.Get("Content-Length")
	if !ok {
		return -1
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return -1
	}
	return n
}

// IsRedirect reports whether the status code is in [300,399].
func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// ToBuffer copies Body into a buffer.Buffer using the shared
// DefaultBodyMemLimit threshold, spilling to a temp file once the body
// exceeds it. Useful for callers that want to stream a large response to
// disk rather than hold it all in a Go []byte — the body has already been
// fully read off the wire by the time a Response exists (spec.md's framer
// is not itself streaming past the socket read loop), so this is a
// post-hoc memory/disk tradeoff, not a network-level one.
func (r *Response) ToBuffer() (*buffer.Buffer, error) {
	b := buffer.New(constants.DefaultBodyMemLimit)
	if _, err := b.Write(r.Body); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Response) String() string {
	return fmt.Sprintf("%s %d %s (%d bytes)", r.HTTPVersion, r.StatusCode, r.StatusText, len(r.Body))
}
