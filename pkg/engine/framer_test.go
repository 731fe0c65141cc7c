package engine

import (
	"bytes"
	"strings"
	"testing"
)

func TestFrameResponseReadsContentLengthBoundedBody(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello"
	st, err := frameResponse(strings.NewReader(raw), 16, "HTTP/1.1", nil)
	if err != nil {
		t.Fatalf("frameResponse: %v", err)
	}
	resp := buildResponse(st)
	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if string(resp.Body) != "hello" {
		t.Fatalf("unexpected body %q", resp.Body)
	}
}

func TestFrameResponseReadsUntilEOFWhenContentLengthAbsent(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nConnection: close\r\n\r\nno length here"
	st, err := frameResponse(strings.NewReader(raw), 16, "HTTP/1.1", nil)
	if err != nil {
		t.Fatalf("frameResponse: %v", err)
	}
	resp := buildResponse(st)
	if string(resp.Body) != "no length here" {
		t.Fatalf("unexpected body %q", resp.Body)
	}
}

func TestFrameResponseCapturesRedirectLocation(t *testing.T) {
	raw := "HTTP/1.1 302 Found\r\nLocation: http://example.com/elsewhere\r\nContent-Length: 0\r\n\r\n"
	st, err := frameResponse(strings.NewReader(raw), 16, "HTTP/1.1", nil)
	if err != nil {
		t.Fatalf("frameResponse: %v", err)
	}
	if string(st.redirectURL) != "http://example.com/elsewhere" {
		t.Fatalf("unexpected redirect target %q", st.redirectURL)
	}
}

func TestFrameResponseParsesStatusLineAndHeaders(t *testing.T) {
	raw := "HTTP/1.1 404 Not Found\r\nX-Custom: value\r\nContent-Length: 0\r\n\r\n"
	st, err := frameResponse(strings.NewReader(raw), 16, "HTTP/1.1", nil)
	if err != nil {
		t.Fatalf("frameResponse: %v", err)
	}
	resp := buildResponse(st)
	if resp.HTTPVersion != "HTTP/1.1" || resp.StatusCode != 404 || resp.StatusText != "Not Found" {
		t.Fatalf("unexpected status line parse: %q %d %q", resp.HTTPVersion, resp.StatusCode, resp.StatusText)
	}
	if v, ok := resp.Headers.Get("X-Custom"); !ok || v != "value" {
		t.Fatalf("expected X-Custom header, got %q ok=%v", v, ok)
	}
}

func TestEnsureCapacityGrowsToFitNeededBytes(t *testing.T) {
	buf := make([]byte, 0, 4)
	buf = ensureCapacity(buf, 100)
	if cap(buf) < 100 {
		t.Fatalf("expected capacity >= 100, got %d", cap(buf))
	}

	grown := ensureCapacity(bytes.Repeat([]byte{0}, 0), minGrowthCapacity*20)
	if cap(grown) < minGrowthCapacity*20 {
		t.Fatalf("expected large growth to fit requested size, got cap %d", cap(grown))
	}
}
