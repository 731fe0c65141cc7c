// Package websocket performs the HTTP Upgrade handshake described in
// spec.md §4.10 and exposes the resulting duplex session as a
// message-oriented send/receive loop. Grounded on the gorilla/websocket
// Dialer/Conn pattern seen in
// _examples/other_examples/260f3c06_poxiaoyun-common__httpclient-http-client.go.go
// (DialContext, ReadMessage/WriteMessage, a keepalive ping goroutine).
package websocket

// Kind classifies a WebSocketMessage frame, per spec.md's data model.
type Kind uint8

const (
	Text Kind = iota
	Binary
	Ping
	Pong
	Close
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Binary:
		return "binary"
	case Ping:
		return "ping"
	case Pong:
		return "pong"
	case Close:
		return "close"
	default:
		return "unknown"
	}
}

// Message is a single received frame: Kind plus its opaque payload (UTF-8
// text for Text frames, raw bytes otherwise).
type Message struct {
	Kind    Kind
	Payload []byte
}

// Text returns Payload interpreted as a string.
func (m Message) Text() string { return string(m.Payload) }
