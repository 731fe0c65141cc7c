package urlparts

import "testing"

func TestParseSplitsHostPortPathQuery(t *testing.T) {
	c, err := Parse("https://example.com:8443/a/b?x=1#frag")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !c.Protocol.IsHTTPS() {
		t.Fatalf("expected https protocol")
	}
	if c.Host != "example.com" {
		t.Fatalf("unexpected host %q", c.Host)
	}
	if !c.HasPort() || c.Port != 8443 {
		t.Fatalf("unexpected port %d hasPort=%v", c.Port, c.HasPort())
	}
	if c.Path != "/a/b" || c.Query != "x=1" || c.Fragment != "frag" {
		t.Fatalf("unexpected path/query/fragment: %q %q %q", c.Path, c.Query, c.Fragment)
	}
}

func TestParseRejectsEmptyAndMissingHost(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Fatalf("expected error for empty URL")
	}
	if _, err := Parse("http:///path"); err == nil {
		t.Fatalf("expected error for missing host")
	}
}

func TestEffectivePortFallsBackToProtocolDefault(t *testing.T) {
	c, err := Parse("http://example.com/")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.HasPort() {
		t.Fatalf("expected no explicit port")
	}
	if got := c.EffectivePort(); got != 80 {
		t.Fatalf("expected default port 80, got %d", got)
	}
}

func TestRequestTargetDefaultsToSlash(t *testing.T) {
	c, err := Parse("http://example.com")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := c.RequestTarget(); got != "/" {
		t.Fatalf("expected \"/\", got %q", got)
	}

	c2, err := Parse("http://example.com/search?q=go")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := c2.RequestTarget(); got != "/search?q=go" {
		t.Fatalf("unexpected request target %q", got)
	}
}

func TestStringRoundTripsExplicitPort(t *testing.T) {
	c, err := Parse("https://example.com:9443/p")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := c.String()
	reparsed, err := Parse(got)
	if err != nil {
		t.Fatalf("reparse %q: %v", got, err)
	}
	if reparsed.Host != c.Host || reparsed.Port != c.Port || reparsed.Path != c.Path {
		t.Fatalf("round trip mismatch: %+v vs %+v", reparsed, c)
	}
}

func TestHttpVersionTokens(t *testing.T) {
	if DefaultHttpVersion.Token() != "HTTP/1.1" {
		t.Fatalf("unexpected default version token %q", DefaultHttpVersion.Token())
	}
	if NewHttpVersion2().Token() != "HTTP/2" {
		t.Fatalf("unexpected HTTP/2 token")
	}
	if NewHttpVersionRaw("HTTP/0.9").Token() != "HTTP/0.9" {
		t.Fatalf("unexpected raw version token")
	}
}

func TestProtocolUnknownPreservesRawScheme(t *testing.T) {
	p := NewProtocol("ftp")
	if p.Kind() != ProtocolUnknown {
		t.Fatalf("expected unknown kind")
	}
	if p.String() != "ftp" {
		t.Fatalf("expected raw scheme preserved, got %q", p.String())
	}
	if p.DefaultPort() != 0 {
		t.Fatalf("expected zero default port for unknown protocol")
	}
}
