// Package rawhttp2 is a client-side HTTP/1.1 and WebSocket engine built
// directly over raw stream sockets: it constructs requests by hand, drives
// a streaming byte-oriented response parser, transparently decodes common
// content encodings, follows redirects under a configured policy, and
// upgrades a connection to a WebSocket session.
package rawhttp2

import (
	"context"

	"github.com/WhileEndless/rawhttp2/pkg/buffer"
	"github.com/WhileEndless/rawhttp2/pkg/engine"
	"github.com/WhileEndless/rawhttp2/pkg/errors"
	"github.com/WhileEndless/rawhttp2/pkg/request"
	"github.com/WhileEndless/rawhttp2/pkg/response"
	"github.com/WhileEndless/rawhttp2/pkg/timing"
)

// Version is the current version of this library.
const Version = "1.0.0"

// GetVersion returns the current version of this library.
func GetVersion() string {
	return Version
}

// Re-export the package's core types at the root for callers who only
// need the common path: build a request, send it, read the response.
type (
	// Builder fluently assembles a Request.
	Builder = request.Builder

	// Request is a prepared, sendable HTTP call.
	Request = request.Request

	// Response is the parsed reply to a sent Request.
	Response = response.Response

	// Buffer provides memory-efficient storage with disk spilling.
	Buffer = buffer.Buffer

	// Metrics captures detailed timing information for a request.
	Metrics = timing.Metrics

	// Error is a structured error with context information.
	Error = errors.Error
)

// Error type constants re-exported for convenience.
const (
	ErrorTypeDNS        = errors.ErrorTypeDNS
	ErrorTypeConnection = errors.ErrorTypeConnection
	ErrorTypeTLS        = errors.ErrorTypeTLS
	ErrorTypeTimeout    = errors.ErrorTypeTimeout
	ErrorTypeProtocol   = errors.ErrorTypeProtocol
	ErrorTypeIO         = errors.ErrorTypeIO
	ErrorTypeValidation = errors.ErrorTypeValidation
	ErrorTypeProxy      = errors.ErrorTypeProxy
	ErrorTypeInternal   = errors.ErrorTypeInternal
)

// NewBuilder starts a new request builder.
func NewBuilder() *Builder {
	return request.NewBuilder()
}

// Send drives req to completion: connection setup, request serialization,
// the incremental response reader, content decoding, and the redirect
// state machine.
func Send(ctx context.Context, req *Request) (*Response, error) {
	return engine.Send(ctx, req)
}

// SendAsync is Send's cooperative twin: the same steps, but every write,
// flush, and read races ctx via stream.AsCooperative rather than relying
// only on the socket's own deadline, so cancellation at any suspension
// point returns promptly.
func SendAsync(ctx context.Context, req *Request) (*Response, error) {
	return engine.SendAsync(ctx, req)
}

// Get is a convenience helper equivalent to
// NewBuilder().Get(url).Build() followed by Send.
func Get(ctx context.Context, url string) (*Response, error) {
	return Send(ctx, NewBuilder().Get(url).Build())
}

// Post is a convenience helper that sends a POST request with a text body.
func Post(ctx context.Context, url string, body string) (*Response, error) {
	return Send(ctx, NewBuilder().Post(url).Text(body).Build())
}

// NewBuffer creates a new buffer with the specified memory limit.
func NewBuffer(limit int64) *Buffer {
	return buffer.New(limit)
}

// IsTimeoutError checks if an error is a timeout error.
func IsTimeoutError(err error) bool {
	return errors.IsTimeoutError(err)
}

// IsTemporaryError checks if an error is temporary.
func IsTemporaryError(err error) bool {
	return errors.IsTemporaryError(err)
}

// GetErrorType returns the error type if it's a structured error.
func GetErrorType(err error) string {
	return string(errors.GetErrorType(err))
}
