package contentencoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, Gzip, Classify("gzip"))
	assert.Equal(t, Deflate, Classify("deflate"))
	assert.Equal(t, Br, Classify("br"))
	assert.Equal(t, Unknown, Classify("identity"))
	assert.Equal(t, Unknown, Classify(""))
}

func TestRoundTrip(t *testing.T) {
	for _, kind := range []Kind{Gzip, Deflate, Br} {
		want := []byte("hello, world — round trip payload")
		encoded := Encode(kind, want)
		got := Decode(kind, encoded, 16)
		assert.Equal(t, want, got, "kind=%v", kind)
	}
}

func TestDecodeUnknownPassesThrough(t *testing.T) {
	data := []byte("raw bytes")
	assert.Equal(t, data, Decode(Unknown, data, 0))
}

func TestDecodeFailureYieldsEmpty(t *testing.T) {
	garbage := []byte{0x00, 0x01, 0x02, 0x03}
	assert.Equal(t, []byte{}, Decode(Gzip, garbage, 0))
	assert.Equal(t, []byte{}, Decode(Deflate, garbage, 0))
}
