package proxydial

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDrainBufferedRecoversOverread(t *testing.T) {
	src := bytes.NewBufferString("leftover-bytes-after-header-block")
	r := bufio.NewReaderSize(src, 16)
	_, _ = r.Peek(1) // forces the bufio.Reader to pull a full chunk from src

	got := drainBuffered(r)
	assert.NotEmpty(t, got)
	assert.Equal(t, byte('l'), got[0])
}

func TestDrainBufferedEmptyWhenNothingBuffered(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader(nil))
	assert.Nil(t, drainBuffered(r))
}
