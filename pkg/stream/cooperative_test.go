package stream

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WhileEndless/rawhttp2/pkg/errors"
)

func TestAsCooperativeReadWriteFlushShutdownDelegate(t *testing.T) {
	inner := &fakeConn{r: bytes.NewBufferString("payload")}
	c := AsCooperative(inner)

	buf := make([]byte, 7)
	n, err := c.Read(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(buf[:n]))

	_, err = c.Write(context.Background(), []byte("out"))
	require.NoError(t, err)
	assert.Equal(t, "out", inner.w.String())

	assert.NoError(t, c.Flush(context.Background()))
	assert.NoError(t, c.Shutdown(context.Background()))
}

// blockingConn never returns from an operation until release is closed,
// so in the tests below only the cooperative wrapper's ctx race can end
// the call in time.
type blockingConn struct {
	release chan struct{}
}

func (b *blockingConn) Read(p []byte) (int, error) {
	<-b.release
	return 0, nil
}

func (b *blockingConn) Write(p []byte) (int, error) {
	<-b.release
	return len(p), nil
}

func (b *blockingConn) Flush() error {
	<-b.release
	return nil
}

func (b *blockingConn) Close() error {
	<-b.release
	return nil
}

func TestAsCooperativeReadCancelsOnContextDone(t *testing.T) {
	inner := &blockingConn{release: make(chan struct{})}
	defer close(inner.release)
	c := AsCooperative(inner)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Read(ctx, make([]byte, 1))
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeTimeout, errors.GetErrorType(err))
}

func TestAsCooperativeWriteCancelsOnContextDone(t *testing.T) {
	inner := &blockingConn{release: make(chan struct{})}
	defer close(inner.release)
	c := AsCooperative(inner)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Write(ctx, []byte("x"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeTimeout, errors.GetErrorType(err))
}

func TestAsCooperativeFlushCancelsOnContextDone(t *testing.T) {
	inner := &blockingConn{release: make(chan struct{})}
	defer close(inner.release)
	c := AsCooperative(inner)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Flush(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeTimeout, errors.GetErrorType(err))
}

func TestAsCooperativeShutdownCancelsOnContextDone(t *testing.T) {
	inner := &blockingConn{release: make(chan struct{})}
	defer close(inner.release)
	c := AsCooperative(inner)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Shutdown(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeTimeout, errors.GetErrorType(err))
}
