package engine

import (
	"strings"
	"testing"

	"github.com/WhileEndless/rawhttp2/pkg/request"
	"github.com/WhileEndless/rawhttp2/pkg/urlparts"
)

func mustParse(t *testing.T, raw string) urlparts.Components {
	t.Helper()
	c, err := urlparts.Parse(raw)
	if err != nil {
		t.Fatalf("Parse(%q): %v", raw, err)
	}
	return c
}

func TestSerializeGetWritesDefaultHeaders(t *testing.T) {
	req := request.NewBuilder().Get("http://example.com/a/b").Build()
	wire, err := Serialize(req, mustParse(t, req.URL))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	s := string(wire)

	if !strings.HasPrefix(s, "GET /a/b HTTP/1.1\r\n") {
		t.Fatalf("unexpected request line: %q", s)
	}
	if !strings.Contains(s, "Host: example.com\r\n") {
		t.Fatalf("expected default Host header, got %q", s)
	}
	if !strings.Contains(s, "Content-Length: 0\r\n") {
		t.Fatalf("expected Content-Length: 0 for GET, got %q", s)
	}
	if !strings.HasSuffix(s, "\r\n\r\n") {
		t.Fatalf("expected empty GET body after the blank line, got %q", s)
	}
}

func TestSerializePostIncludesEncodedBody(t *testing.T) {
	req := request.NewBuilder().Post("http://example.com/submit").Text("hi=there").Build()
	wire, err := Serialize(req, mustParse(t, req.URL))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	s := string(wire)

	if !strings.Contains(s, "Content-Length: 8\r\n") {
		t.Fatalf("expected Content-Length matching body size, got %q", s)
	}
	if !strings.HasSuffix(s, "hi=there") {
		t.Fatalf("expected body appended after headers, got %q", s)
	}
}

func TestSerializeCallerHeaderOverridesDefault(t *testing.T) {
	req := request.NewBuilder().Get("http://example.com/").Header("Host", "custom.example").Build()
	wire, err := Serialize(req, mustParse(t, req.URL))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(string(wire), "Host: custom.example\r\n") {
		t.Fatalf("expected caller-set Host to survive, got %q", wire)
	}
}

func TestSerializeRejectsUnsupportedMethod(t *testing.T) {
	req := request.NewBuilder().Get("http://example.com/").Build()
	req.Method = 99 // neither GET nor POST

	if _, err := Serialize(req, mustParse(t, req.URL)); err == nil {
		t.Fatalf("expected an error for an unsupported method")
	}
}
