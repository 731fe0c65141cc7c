package websocket

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	gorilla "github.com/gorilla/websocket"

	"github.com/WhileEndless/rawhttp2/pkg/constants"
	"github.com/WhileEndless/rawhttp2/pkg/errors"
)

// Session is an upgraded duplex WebSocket channel, per spec.md's
// WebSocketSession: its url/header/config are fixed at handshake time;
// connected and the underlying conn are the only mutable state, guarded by
// mu so concurrent sends from different goroutines cannot interleave a
// partial frame (gorilla's Conn itself is not write-concurrency-safe).
type Session struct {
	mu        sync.Mutex
	conn      *gorilla.Conn
	connected atomic.Bool

	url     string
	header  http.Header
	timeout time.Duration
	tlsCfg  *tls.Config
}

// rewriteScheme validates a websocket URL and returns it unchanged: only
// ws and wss are accepted. gorilla/websocket's Dialer maps ws/wss onto the
// HTTP/HTTPS transport itself, so no rewrite is done here; the check exists
// so a malformed or unsupported scheme fails fast as InvalidUrl rather than
// surfacing as an opaque dial error.
func rewriteScheme(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.NewValidationError("invalid websocket URL: " + err.Error())
	}
	switch strings.ToLower(u.Scheme) {
	case "ws", "wss":
		return rawURL, nil
	default:
		return "", errors.NewValidationError("unsupported websocket scheme: " + u.Scheme)
	}
}

// classifyConnectError implements spec.md §4.10's connect-error
// classification: substring match against {tls, TLS, ssl, SSL,
// certificate, handshake} for Tls, else Connection; a context deadline
// yields Timeout.
func classifyConnectError(err error) error {
	if errors.IsContextTimeout(err) || errors.IsTimeoutError(err) {
		return errors.NewTimeoutError("websocket-connect", 0)
	}
	msg := err.Error()
	for _, needle := range []string{"tls", "TLS", "ssl", "SSL", "certificate", "handshake"} {
		if strings.Contains(msg, needle) {
			return errors.NewTLSError("", 0, err)
		}
	}
	return errors.NewConnectionError("", 0, err)
}

// Connect performs the HTTP/1.1 Upgrade handshake against rawURL, driven
// through gorilla/websocket's Dialer (spec.md §4.10's "framed HTTP client
// library"), with timeoutMs bounding the handshake. headers are sent
// verbatim as additional request headers.
func Connect(ctx context.Context, rawURL string, headers map[string]string, timeoutMs int64, tlsCfg *tls.Config) (*Session, error) {
	target, err := rewriteScheme(rawURL)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(timeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := &gorilla.Dialer{
		HandshakeTimeout: timeout,
		TLSClientConfig:  tlsCfg,
	}

	reqHeader := http.Header{}
	for k, v := range headers {
		reqHeader.Set(k, v)
	}

	conn, _, err := dialer.DialContext(dialCtx, target, reqHeader)
	if err != nil {
		return nil, classifyConnectError(err)
	}

	s := &Session{
		conn:    conn,
		url:     rawURL,
		header:  reqHeader,
		timeout: timeout,
		tlsCfg:  tlsCfg,
	}
	s.connected.Store(true)
	return s, nil
}

// IsConnected reports whether the session has an open handshake and has
// not yet been closed (spec.md §4.10: "after close() completes,
// is_connected() is false").
func (s *Session) IsConnected() bool { return s.connected.Load() }

func (s *Session) deadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		return dl
	}
	return time.Now().Add(s.timeout)
}

// SendText writes a Text frame.
func (s *Session) SendText(ctx context.Context, text string) error {
	return s.send(ctx, gorilla.TextMessage, []byte(text))
}

// SendBinary writes a Binary frame.
func (s *Session) SendBinary(ctx context.Context, data []byte) error {
	return s.send(ctx, gorilla.BinaryMessage, data)
}

// SendPing writes a Ping frame.
func (s *Session) SendPing(ctx context.Context, data []byte) error {
	return s.send(ctx, gorilla.PingMessage, data)
}

// SendPong writes a Pong frame.
func (s *Session) SendPong(ctx context.Context, data []byte) error {
	return s.send(ctx, gorilla.PongMessage, data)
}

func (s *Session) send(ctx context.Context, messageType int, data []byte) error {
	if !s.connected.Load() {
		return errors.NewConnectionError("", 0, errors.NewValidationError("websocket session is not connected"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(s.deadline(ctx)); err != nil {
		return errors.NewSetTimeoutError("set-write-timeout", err)
	}
	if err := s.conn.WriteMessage(messageType, data); err != nil {
		return errors.NewProtocolError("websocket write failed", err)
	}
	return nil
}

// Receive blocks for the next frame, classifying it per spec.md §4.10's
// WebSocketMessage kinds and the three-way split ground-truthed on
// original_source's receive_message_async (websocket/impl.rs): a
// successfully-read Close frame — any close code, not just Normal/GoingAway
// — always maps to a Close message; the stream genuinely ending with no
// frame at all (EOF, a reset, or any other non-close read failure) maps to
// Connection("Connection closed"); a read that hits the deadline is a
// Timeout error; anything else is a Protocol error.
// gorilla/websocket surfaces a received close frame as a *gorilla.CloseError
// from ReadMessage rather than as a distinct callback result, so that type
// is the discriminator for the first case.
func (s *Session) Receive(ctx context.Context) (Message, error) {
	if !s.connected.Load() {
		return Message{}, errors.NewConnectionError("", 0, errors.NewValidationError("websocket session is not connected"))
	}
	s.mu.Lock()
	conn := s.conn
	if err := conn.SetReadDeadline(s.deadline(ctx)); err != nil {
		s.mu.Unlock()
		return Message{}, errors.NewSetTimeoutError("set-read-timeout", err)
	}
	s.mu.Unlock()

	messageType, payload, err := conn.ReadMessage()
	if err != nil {
		if _, ok := err.(*gorilla.CloseError); ok {
			s.connected.Store(false)
			return Message{Kind: Close}, nil
		}
		if errors.IsTimeoutError(err) {
			return Message{}, errors.NewTimeoutError("websocket-receive", s.timeout)
		}
		if isConnectionClosed(err) {
			s.connected.Store(false)
			return Message{}, connectionClosedError()
		}
		return Message{}, errors.NewProtocolError("websocket read failed", err)
	}

	switch messageType {
	case gorilla.TextMessage:
		return Message{Kind: Text, Payload: payload}, nil
	case gorilla.BinaryMessage:
		return Message{Kind: Binary, Payload: payload}, nil
	default:
		return Message{Kind: Binary, Payload: payload}, nil
	}
}

// isConnectionClosed reports whether err indicates the underlying stream
// ended or was torn down with no websocket frame at all (abrupt EOF,
// connection reset, or a read against an already-closed net.Conn) — the
// "missing frame" half of spec.md §4.10's Connection("Connection closed")
// case, as distinct from a properly-framed close the peer actually sent.
func isConnectionClosed(err error) bool {
	if err == io.EOF || err == io.ErrUnexpectedEOF || err == net.ErrClosed {
		return true
	}
	if _, ok := err.(*net.OpError); ok {
		return true
	}
	return false
}

// connectionClosedError builds spec.md §4.10's exact literal:
// Connection("Connection closed").
func connectionClosedError() *errors.Error {
	err := errors.NewConnectionError("", 0, nil)
	err.Message = "Connection closed"
	return err
}

// StartKeepalive launches a background goroutine that sends a Ping frame
// every constants.DefaultPingInterval until ctx is done or the session is
// closed — the keepalive pattern
// _examples/other_examples/260f3c06_poxiaoyun-common__httpclient-http-client.go.go
// runs alongside its read loop. Ping failures stop the goroutine silently;
// the next Receive/Send call will surface the broken connection.
func (s *Session) StartKeepalive(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(constants.DefaultPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !s.connected.Load() {
					return
				}
				if err := s.SendPing(ctx, nil); err != nil {
					return
				}
			}
		}
	}()
}

// Close implements spec.md §4.10's lifecycle: flip connected to false, send
// a Close frame, and close the underlying stream. The closed conn stays
// stored; any further send or Receive on this Session returns a
// not-connected Connection error, and a new handshake needs a fresh Connect.
func (s *Session) Close(ctx context.Context) error {
	if !s.connected.CompareAndSwap(true, false) {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := s.deadline(ctx)
	_ = s.conn.SetWriteDeadline(deadline)
	_ = s.conn.WriteMessage(gorilla.CloseMessage, gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, ""))
	return s.conn.Close()
}
