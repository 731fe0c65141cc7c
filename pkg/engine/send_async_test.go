package engine

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/WhileEndless/rawhttp2/pkg/request"
)

func TestSendAsyncParsesSimpleResponse(t *testing.T) {
	ln := listenLocal(t)
	defer ln.Close()
	serveOnce(t, ln, "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok")

	addr := ln.Addr().(*net.TCPAddr)
	req := request.NewBuilder().
		Get(fmt.Sprintf("http://127.0.0.1:%d/", addr.Port)).
		Timeout(1000).
		Build()

	resp, err := SendAsync(context.Background(), req)
	if err != nil {
		t.Fatalf("SendAsync: %v", err)
	}
	if resp.StatusCode != 200 || resp.Text() != "ok" {
		t.Fatalf("unexpected response: %d %q", resp.StatusCode, resp.Text())
	}
}

func TestSendAsyncCancelsWhileAwaitingResponse(t *testing.T) {
	ln := listenLocal(t)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(5 * time.Second)
	}()
	addr := ln.Addr().(*net.TCPAddr)

	req := request.NewBuilder().
		Get(fmt.Sprintf("http://127.0.0.1:%d/", addr.Port)).
		Timeout(5000).
		Build()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := SendAsync(ctx, req); err == nil {
		t.Fatalf("expected an error when ctx is canceled while awaiting a response")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("expected ctx cancellation to return promptly, took %s", elapsed)
	}
}
