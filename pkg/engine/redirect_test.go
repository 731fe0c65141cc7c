package engine

import (
	"testing"

	"github.com/WhileEndless/rawhttp2/pkg/errors"
	"github.com/WhileEndless/rawhttp2/pkg/request"
)

func newRedirectReq(enabled bool, max int) *request.Request {
	req := request.NewBuilder().Get("http://example.com/").Build()
	req.Config.Redirect = enabled
	req.Config.MaxRedirectTimes = max
	return req
}

func TestDecideRedirectRejectsWhenPolicyDisabled(t *testing.T) {
	req := newRedirectReq(false, 10)
	err := decideRedirect(req, "http://example.com/next")
	if err == nil {
		t.Fatalf("expected an error when redirect following is disabled")
	}
	if errors.GetErrorType(err) != errors.ErrorTypeProtocol {
		t.Fatalf("expected a protocol-classified redirect error, got %v", errors.GetErrorType(err))
	}
}

func TestDecideRedirectAcceptsAndMarksVisited(t *testing.T) {
	req := newRedirectReq(true, 10)
	if err := decideRedirect(req, "http://example.com/next"); err != nil {
		t.Fatalf("decideRedirect: %v", err)
	}
	if !req.Tmp.Visited("http://example.com/next") {
		t.Fatalf("expected target marked visited")
	}
	times, _, _ := req.Config.RedirectState()
	if times != 1 {
		t.Fatalf("expected RedirectTimes incremented to 1, got %d", times)
	}
}

func TestDecideRedirectRejectsDeadLoop(t *testing.T) {
	req := newRedirectReq(true, 10)
	req.Tmp.MarkVisited("http://example.com/loop")

	err := decideRedirect(req, "http://example.com/loop")
	if err == nil {
		t.Fatalf("expected dead-loop rejection for an already-visited target")
	}
}

func TestDecideRedirectRejectsOverMaxTimes(t *testing.T) {
	req := newRedirectReq(true, 1)
	req.Config.RedirectTimes = 1

	err := decideRedirect(req, "http://example.com/next")
	if err == nil {
		t.Fatalf("expected max-redirect-times rejection")
	}
}
