package request

import "testing"

func TestBuilderGetSetsMethodAndURL(t *testing.T) {
	req := NewBuilder().Get("http://example.com/").Build()
	if req.Method != 0 { // urlparts.MethodGET
		t.Fatalf("expected GET method")
	}
	if req.URL != "http://example.com/" {
		t.Fatalf("unexpected URL %q", req.URL)
	}
}

func TestBuilderJSONSetsContentTypeWhenAbsent(t *testing.T) {
	req := NewBuilder().Post("http://example.com/").JSON(map[string]any{"a": 1}).Build()
	v, ok := req.Header.Get("Content-Type")
	if !ok || v != "application/json" {
		t.Fatalf("expected default JSON content type, got %q ok=%v", v, ok)
	}
}

func TestBuilderHeaderOverridesDefaultContentType(t *testing.T) {
	req := NewBuilder().
		Post("http://example.com/").
		Header("Content-Type", "application/custom").
		JSON(map[string]any{"a": 1}).
		Build()

	v, _ := req.Header.Get("Content-Type")
	if v != "application/custom" {
		t.Fatalf("expected caller-set header to survive JSON(), got %q", v)
	}
}

func TestBuilderRedirectAndTimeoutWireIntoConfig(t *testing.T) {
	req := NewBuilder().
		Get("http://example.com/").
		Redirect().
		MaxRedirectTimes(3).
		Timeout(5000).
		Build()

	if !req.Config.Redirect {
		t.Fatalf("expected redirect enabled")
	}
	if req.Config.MaxRedirectTimes != 3 {
		t.Fatalf("unexpected max redirects %d", req.Config.MaxRedirectTimes)
	}
	if req.Config.TimeoutMs != 5000 {
		t.Fatalf("unexpected timeout %d", req.Config.TimeoutMs)
	}
}
