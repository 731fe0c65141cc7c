package request

import (
	"crypto/tls"

	"github.com/WhileEndless/rawhttp2/pkg/urlparts"
)

// Builder fluently assembles a Request, per spec.md §6's builder surface.
// Build() produces an owned, sendable Request; the zero value is not
// usable — use NewBuilder.
type Builder struct {
	req *Request
}

// NewBuilder starts a builder for a GET request with no URL set yet;
// Get/Post set the method and URL.
func NewBuilder() *Builder {
	return &Builder{
		req: &Request{
			Method: urlparts.MethodGET,
			Header: NewHeaders(),
			Config: NewConfig(),
			Tmp:    NewTmp(),
		},
	}
}

// Get sets method GET and the target URL.
func (b *Builder) Get(url string) *Builder {
	b.req.Method = urlparts.MethodGET
	b.req.URL = url
	return b
}

// Post sets method POST and the target URL.
func (b *Builder) Post(url string) *Builder {
	b.req.Method = urlparts.MethodPOST
	b.req.URL = url
	return b
}

// Headers inserts-or-replaces headers from m, case-insensitive by name.
func (b *Builder) Headers(m map[string]string) *Builder {
	for k, v := range m {
		b.req.Header.Set(k, v)
	}
	return b
}

// Header inserts-or-replaces a single header.
func (b *Builder) Header(name, value string) *Builder {
	b.req.Header.Set(name, value)
	return b
}

// Text sets a Text body.
func (b *Builder) Text(s string) *Builder {
	b.req.Body = NewTextBody(s)
	return b
}

// JSON sets a Structured body encoded as JSON at send time.
func (b *Builder) JSON(m map[string]any) *Builder {
	b.req.Body = NewStructuredBody(m)
	b.req.Header.SetIfAbsent("Content-Type", "application/json")
	return b
}

// Form sets a Structured body encoded as application/x-www-form-urlencoded.
func (b *Builder) Form(m map[string]any) *Builder {
	b.req.Body = NewStructuredBody(m)
	b.req.Header.SetIfAbsent("Content-Type", "application/x-www-form-urlencoded")
	return b
}

// BodyBytes sets a Binary body.
func (b *Builder) BodyBytes(data []byte) *Builder {
	b.req.Body = NewBinaryBody(data)
	return b
}

// Timeout sets the socket read/write timeout and total-operation bound, in
// milliseconds.
func (b *Builder) Timeout(ms int64) *Builder {
	b.req.Config.TimeoutMs = ms
	return b
}

// Redirect enables redirect following.
func (b *Builder) Redirect() *Builder {
	b.req.Config.Redirect = true
	return b
}

// Unredirect disables redirect following.
func (b *Builder) Unredirect() *Builder {
	b.req.Config.Redirect = false
	return b
}

// MaxRedirectTimes sets the upper bound on redirects followed.
func (b *Builder) MaxRedirectTimes(n int) *Builder {
	b.req.Config.MaxRedirectTimes = n
	return b
}

// Buffer sets the read buffer size and decoder hint.
func (b *Builder) Buffer(n int) *Builder {
	b.req.Config.BufferSize = n
	return b
}

// Decode enables automatic body decompression.
func (b *Builder) Decode() *Builder {
	b.req.Config.Decode = true
	return b
}

// Undecode disables automatic body decompression.
func (b *Builder) Undecode() *Builder {
	b.req.Config.Decode = false
	return b
}

// HTTP1_1Only sets the HTTP/1.1 version token.
func (b *Builder) HTTP1_1Only() *Builder {
	b.req.Config.HTTPVersion = urlparts.DefaultHttpVersion
	return b
}

// HTTP2Only sets the label-only HTTP/2 version token — see spec.md §9 open
// question 1: this changes only the text on the request line, never the
// serialization strategy.
func (b *Builder) HTTP2Only() *Builder {
	b.req.Config.HTTPVersion = urlparts.NewHttpVersion2()
	return b
}

// InsecureSkipVerify disables TLS certificate verification.
func (b *Builder) InsecureSkipVerify() *Builder {
	b.req.Config.InsecureSkipVerify = true
	return b
}

// ServerName overrides the SNI name sent during the TLS handshake.
func (b *Builder) ServerName(name string) *Builder {
	b.req.Config.ServerName = name
	return b
}

// ClientCertificate configures a client certificate/key pair (PEM bytes)
// for mTLS.
func (b *Builder) ClientCertificate(certPEM, keyPEM []byte) *Builder {
	b.req.Config.ClientCertPEM = certPEM
	b.req.Config.ClientKeyPEM = keyPEM
	return b
}

// TLSConfig supplies a caller-built tls.Config as the base trust
// store/cipher policy; InsecureSkipVerify and ServerName (if set) still
// take priority per the teacher's documented TLS override precedence.
func (b *Builder) TLSConfig(cfg *tls.Config) *Builder {
	b.req.Config.RootCAs = cfg
	return b
}

// Build materializes the owned Request for the blocking and cooperative
// engines alike — both share this same type (spec.md §9's scheduling-
// duality note: the serializer/framer are model-agnostic).
func (b *Builder) Build() *Request {
	return b.req
}
