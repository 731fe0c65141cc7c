// Package stream provides the uniform duplex byte stream used by every
// higher layer: a plain TCP variant, a TLS-wrapped variant, and a tunnel
// adapter that can prepend pre-read bytes before delegating to an inner
// stream (needed when proxy setup over-reads past a CONNECT response).
//
// Two parallel surfaces exist, mirroring spec.md §4.4: Blocking (backed by
// net.Conn deadlines) and Cooperative (backed by context.Context, with
// every operation racing the caller's ctx.Done()). Both share the same
// underlying net.Conn plumbing; the cooperative surface is a thin
// goroutine+channel wrapper so the request serializer and response framer
// run identically under either model.
package stream

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"time"

	"github.com/WhileEndless/rawhttp2/pkg/errors"
)

// Blocking is the synchronous duplex stream contract.
type Blocking interface {
	io.Reader
	io.Writer
	Flush() error
	Close() error
}

// Cooperative is the suspending duplex stream contract: every operation
// accepts a context and returns once the operation completes or ctx is done.
type Cooperative interface {
	Read(ctx context.Context, p []byte) (int, error)
	Write(ctx context.Context, p []byte) (int, error)
	Flush(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// plainStream wraps a net.Conn as a Blocking stream. TCP and TLS streams
// share this type since *tls.Conn satisfies net.Conn.
type plainStream struct {
	conn net.Conn
}

// NewPlain wraps an already-connected net.Conn (TCP or TLS) as a Blocking
// stream.
func NewPlain(conn net.Conn) Blocking {
	return &plainStream{conn: conn}
}

func (s *plainStream) Read(p []byte) (int, error)  { return s.conn.Read(p) }
func (s *plainStream) Write(p []byte) (int, error) { return s.conn.Write(p) }
func (s *plainStream) Flush() error                { return nil } // net.Conn writes are unbuffered
func (s *plainStream) Close() error                { return s.conn.Close() }

// Tunnel decorates an inner Blocking stream with a buffer of bytes that
// must be delivered before any further read reaches the inner stream —
// the grounding for spec.md §4.4/§9's tunnel-adapter-with-pre-read-bytes
// note: proxy CONNECT handshakes are commonly read through a buffered
// reader that over-reads past the blank line terminating the CONNECT
// response, consuming the first bytes of the tunneled protocol in the
// process. Those bytes are recovered and replayed here.
type Tunnel struct {
	inner   Blocking
	preRead []byte
	pos     int
}

// NewTunnel wraps inner, first replaying preRead bytes on Read calls
// before delegating to inner.
func NewTunnel(inner Blocking, preRead []byte) *Tunnel {
	return &Tunnel{inner: inner, preRead: preRead}
}

func (t *Tunnel) Read(p []byte) (int, error) {
	if t.pos < len(t.preRead) {
		n := copy(p, t.preRead[t.pos:])
		t.pos += n
		return n, nil
	}
	return t.inner.Read(p)
}

func (t *Tunnel) Write(p []byte) (int, error) { return t.inner.Write(p) }
func (t *Tunnel) Flush() error                { return t.inner.Flush() }
func (t *Tunnel) Close() error                { return t.inner.Close() }

// Deadliner is implemented by streams that can apply read/write deadlines
// to an underlying socket: the plain stream, and a Tunnel, which forwards
// to its inner stream when that is a Deadliner and otherwise does nothing.
type Deadliner interface {
	SetReadDeadline(time.Time) error
	SetWriteDeadline(time.Time) error
}

func (s *plainStream) SetReadDeadline(t time.Time) error  { return s.conn.SetReadDeadline(t) }
func (s *plainStream) SetWriteDeadline(t time.Time) error { return s.conn.SetWriteDeadline(t) }

func (t *Tunnel) SetReadDeadline(tm time.Time) error {
	if d, ok := t.inner.(Deadliner); ok {
		return d.SetReadDeadline(tm)
	}
	return nil
}

func (t *Tunnel) SetWriteDeadline(tm time.Time) error {
	if d, ok := t.inner.(Deadliner); ok {
		return d.SetWriteDeadline(tm)
	}
	return nil
}

// ApplyTimeouts sets read/write deadlines on s if it implements Deadliner,
// translating socket option failures into spec.md's SetReadTimeout /
// SetWriteTimeout kinds.
func ApplyTimeouts(s Blocking, timeout time.Duration) error {
	d, ok := s.(Deadliner)
	if !ok {
		return nil
	}
	deadline := time.Now().Add(timeout)
	if err := d.SetReadDeadline(deadline); err != nil {
		return errors.NewSetTimeoutError("set-read-timeout", err)
	}
	if err := d.SetWriteDeadline(deadline); err != nil {
		return errors.NewSetTimeoutError("set-write-timeout", err)
	}
	return nil
}

// DialTCP opens a plain TCP connection to addr, mapping failures onto
// spec.md's TcpStreamConnect kind.
func DialTCP(ctx context.Context, addr string, timeout time.Duration) (net.Conn, error) {
	d := &net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.NewConnectionError(addr, 0, err)
	}
	return conn, nil
}

// WrapTLS performs a TLS client handshake over conn using cfg, mapping
// session-construction and handshake failures onto spec.md's
// TlsConnectorBuild / TlsStreamConnect kinds.
func WrapTLS(ctx context.Context, conn net.Conn, cfg *tls.Config) (*tls.Conn, error) {
	if cfg == nil {
		return nil, errors.NewTLSError(conn.RemoteAddr().String(), 0, errors.NewValidationError("nil tls.Config"))
	}
	tlsConn := tls.Client(conn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, errors.NewTLSError(cfg.ServerName, 0, err)
	}
	return tlsConn, nil
}
