// Package byteutil provides the small, stateless byte-level helpers the
// request serializer and response framer share: case-insensitive search,
// CRLF/double-CRLF scanning, and whitespace/delimiter splitting.
package byteutil

import "bytes"

// CRLF is the two-byte line terminator used throughout the wire format.
var CRLF = []byte("\r\n")

// DoubleCRLF separates the header block from the body.
var DoubleCRLF = []byte("\r\n\r\n")

// IndexFold returns the index of the first case-insensitive occurrence of
// needle in haystack starting at or after from, or -1 if absent.
func IndexFold(haystack, needle []byte, from int) int {
	if from < 0 {
		from = 0
	}
	if from > len(haystack) {
		return -1
	}
	n := len(needle)
	if n == 0 {
		return from
	}
	hay := haystack[from:]
	for i := 0; i+n <= len(hay); i++ {
		if bytes.EqualFold(hay[i:i+n], needle) {
			return from + i
		}
	}
	return -1
}

// ContainsFold reports whether haystack contains needle, ignoring case.
func ContainsFold(haystack, needle []byte) bool {
	return IndexFold(haystack, needle, 0) >= 0
}

// FindHeaderEnd returns the absolute offset just past the double-CRLF
// boundary, or -1 if the headers are not yet complete. oldLen is the buffer
// length before the most recent read was appended.
func FindHeaderEnd(buf []byte, oldLen int) int {
	start := oldLen - 3
	if start < 0 {
		start = 0
	}
	rel := bytes.Index(buf[start:], DoubleCRLF)
	if rel < 0 {
		return -1
	}
	return start + rel + len(DoubleCRLF)
}

// TrimASCIISpace trims leading/trailing spaces and tabs, the only
// whitespace the wire format's header grammar allows around a value.
func TrimASCIISpace(b []byte) []byte {
	return bytes.Trim(b, " \t")
}

// SplitFields splits on runs of ASCII space, discarding empty fields —
// used to pull "HTTP/1.1", "200", "OK" apart from a status line.
func SplitFields(b []byte) [][]byte {
	return bytes.Fields(b)
}

// SplitMulti splits data on every occurrence of sep, like bytes.Split but
// exported here so callers depend on one small surface for delimiter work.
func SplitMulti(data, sep []byte) [][]byte {
	return bytes.Split(data, sep)
}

// IndexCRLF finds the first line terminator at or after from.
func IndexCRLF(buf []byte, from int) int {
	return IndexFold(buf, CRLF, from)
}

// ParseASCIIDigits reads consecutive ASCII digits starting at from,
// returning the parsed integer and the offset one past the last digit
// consumed. It returns (0, from) if no digit is present at from.
func ParseASCIIDigits(buf []byte, from int) (int, int) {
	i := from
	val := 0
	for i < len(buf) && buf[i] >= '0' && buf[i] <= '9' {
		val = val*10 + int(buf[i]-'0')
		i++
	}
	return val, i
}
