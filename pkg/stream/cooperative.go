package stream

import (
	"context"

	"github.com/WhileEndless/rawhttp2/pkg/errors"
)

// AsCooperative adapts any Blocking stream into the Cooperative contract by
// running each operation on its own goroutine and racing it against the
// caller's context, per spec.md §5's "suspend at read/write/flush/shutdown"
// model and SPEC_FULL.md's §5 cooperative-model mapping (context.Context +
// channel race stands in for a suspending coroutine).
func AsCooperative(b Blocking) Cooperative {
	return &cooperative{b: b}
}

type cooperative struct {
	b Blocking
}

type ioResult struct {
	n   int
	err error
}

func (c *cooperative) Read(ctx context.Context, p []byte) (int, error) {
	resCh := make(chan ioResult, 1)
	go func() {
		n, err := c.b.Read(p)
		resCh <- ioResult{n, err}
	}()
	select {
	case res := <-resCh:
		return res.n, res.err
	case <-ctx.Done():
		return 0, errors.NewTimeoutError("read", 0)
	}
}

func (c *cooperative) Write(ctx context.Context, p []byte) (int, error) {
	resCh := make(chan ioResult, 1)
	go func() {
		n, err := c.b.Write(p)
		resCh <- ioResult{n, err}
	}()
	select {
	case res := <-resCh:
		return res.n, res.err
	case <-ctx.Done():
		return 0, errors.NewTimeoutError("write", 0)
	}
}

func (c *cooperative) Flush(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- c.b.Flush() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return errors.NewTimeoutError("flush", 0)
	}
}

func (c *cooperative) Shutdown(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- c.b.Close() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return errors.NewTimeoutError("shutdown", 0)
	}
}
