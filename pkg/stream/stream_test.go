package stream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	r *bytes.Buffer
	w bytes.Buffer
}

func (f *fakeConn) Read(p []byte) (int, error)  { return f.r.Read(p) }
func (f *fakeConn) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *fakeConn) Flush() error                { return nil }
func (f *fakeConn) Close() error                { return nil }

func TestTunnelReplaysPreReadBeforeInner(t *testing.T) {
	inner := &fakeConn{r: bytes.NewBufferString("inner-bytes")}
	tun := NewTunnel(inner, []byte("pre-read-"))

	buf := make([]byte, 4)
	n, err := tun.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "pre-", string(buf[:n]))

	all, err := io.ReadAll(tun)
	require.NoError(t, err)
	assert.Equal(t, "read-inner-bytes", string(all))
}

func TestTunnelWriteFlushCloseDelegate(t *testing.T) {
	inner := &fakeConn{r: bytes.NewBufferString("")}
	tun := NewTunnel(inner, nil)

	_, err := tun.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", inner.w.String())
	assert.NoError(t, tun.Flush())
	assert.NoError(t, tun.Close())
}
