package request

import "github.com/WhileEndless/rawhttp2/pkg/contenttype"

// BodyKind distinguishes the three Body representations spec.md §3 names.
type BodyKind uint8

const (
	BodyNone BodyKind = iota
	BodyText
	BodyStructured
	BodyBinary
)

// Body is the payload variant attached to a Request. Per spec.md §9 open
// question 4, it uses owned Go values throughout: a string for Text, a
// map[string]any for Structured (so arbitrary JSON values are
// representable, not just strings), and a []byte for Binary.
type Body struct {
	Kind       BodyKind
	Text       string
	Structured map[string]any
	Binary     []byte
}

// NewTextBody builds a Text body.
func NewTextBody(s string) Body { return Body{Kind: BodyText, Text: s} }

// NewStructuredBody builds a Structured body from key/value pairs.
func NewStructuredBody(m map[string]any) Body { return Body{Kind: BodyStructured, Structured: m} }

// NewBinaryBody builds a Binary body.
func NewBinaryBody(b []byte) Body { return Body{Kind: BodyBinary, Binary: b} }

// Encode serializes the body according to kind, per spec.md §4.2. Total:
// never errors, falls back to a safe empty rendering on failure.
func (b Body) Encode(kind contenttype.Kind) []byte {
	switch b.Kind {
	case BodyNone:
		return nil
	case BodyText:
		return contenttype.Encode(kind, b.Text)
	case BodyStructured:
		return contenttype.Encode(kind, b.Structured)
	case BodyBinary:
		return b.Binary
	default:
		return nil
	}
}

// Len reports the byte length of the body once encoded under kind — the
// same length the serializer's default Content-Length header carries for
// a non-GET request.
func (b Body) Len(kind contenttype.Kind) int {
	if b.Kind == BodyNone {
		return 0
	}
	return len(b.Encode(kind))
}
