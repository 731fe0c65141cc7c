// Package engine drives a prepared request end to end: connection setup,
// request serialization, the incremental response framer, content
// decoding, and the redirect state machine (spec.md §4.5–§4.9).
package engine

import (
	"bytes"
	"strconv"

	"github.com/WhileEndless/rawhttp2/pkg/errors"
	"github.com/WhileEndless/rawhttp2/pkg/request"
	"github.com/WhileEndless/rawhttp2/pkg/urlparts"
)

// Serialize produces the wire bytes for req against its currently bound
// URL components, per spec.md §4.5: request line, headers (caller's map
// supplemented with defaults for any case-insensitively absent key), a
// terminating CRLF, then the encoded body. Only GET and POST are
// supported; any other method yields a Request(detail) error.
func Serialize(req *request.Request, comps urlparts.Components) ([]byte, error) {
	if req.Method != urlparts.MethodGET && req.Method != urlparts.MethodPOST {
		return nil, errors.NewRequestError("do not support " + req.Method.String() + " method")
	}

	contentType := req.EffectiveContentType()
	bodyBytes := req.Body.Encode(contentType)

	headers := req.Header.Clone()
	headers.SetIfAbsent("Host", comps.Host)
	if req.Method == urlparts.MethodGET {
		headers.SetIfAbsent("Content-Length", "0")
	} else {
		headers.SetIfAbsent("Content-Length", strconv.Itoa(len(bodyBytes)))
	}
	headers.SetIfAbsent("Accept", "*/*")
	headers.SetIfAbsent("User-Agent", request.DefaultUserAgent)

	// Pre-size the buffer to avoid repeated growth, per spec.md §4.5.
	estimate := len(req.Method.String()) + len(comps.RequestTarget()) + len(req.Config.HTTPVersion.Token()) + 16
	headers.ForEach(func(name, value string) {
		estimate += len(name) + len(value) + 4
	})
	estimate += len(bodyBytes) + 2

	var buf bytes.Buffer
	buf.Grow(estimate)

	buf.WriteString(req.Method.String())
	buf.WriteByte(' ')
	buf.WriteString(comps.RequestTarget())
	buf.WriteByte(' ')
	buf.WriteString(req.Config.HTTPVersion.Token())
	buf.WriteString("\r\n")

	headers.ForEach(func(name, value string) {
		buf.WriteString(name)
		buf.WriteString(": ")
		buf.WriteString(value)
		buf.WriteString("\r\n")
	})
	buf.WriteString("\r\n")
	buf.Write(bodyBytes)

	return buf.Bytes(), nil
}
