package engine

import (
	"io"

	"github.com/WhileEndless/rawhttp2/pkg/byteutil"
	"github.com/WhileEndless/rawhttp2/pkg/errors"
	"github.com/WhileEndless/rawhttp2/pkg/request"
	"github.com/WhileEndless/rawhttp2/pkg/response"
	"github.com/WhileEndless/rawhttp2/pkg/timing"
)

// minGrowthCapacity is the growing response buffer's floor, per spec.md
// §4.6: max(buffer, 8192).
const minGrowthCapacity = 8192

// framerState carries the incremental parse across read iterations —
// exactly the state spec.md §4.6 names: the growing byte buffer, whether
// headers are fully framed yet, the offset just past the header/body
// boundary, the declared content length, and any redirect target found in
// a 3xx Location header.
type framerState struct {
	buf              []byte
	headersDone      bool
	headersEndPos    int
	contentLength    int
	hasContentLength bool // false means no declared length: read until EOF
	redirectURL      []byte
	versionToken     string
}

// frameResponse runs the single read-driven loop of spec.md §4.6 to
// completion, returning the framed bytes, header end offset, content
// length, and any redirect URL bytes found. timer, if non-nil, brackets
// the time-to-first-byte phase: started before the first Read, ended the
// moment any bytes arrive.
func frameResponse(r io.Reader, bufferSize int, versionToken string, timer *timing.Timer) (*framerState, error) {
	if bufferSize <= 0 {
		bufferSize = minGrowthCapacity
	}
	st := &framerState{versionToken: versionToken}
	initCap := bufferSize
	if initCap < minGrowthCapacity {
		initCap = minGrowthCapacity
	}
	st.buf = make([]byte, 0, initCap)

	if timer != nil {
		timer.StartTTFB()
	}
	firstByteSeen := false

	readBuf := make([]byte, bufferSize)
	for {
		n, err := r.Read(readBuf)
		if n > 0 {
			if timer != nil && !firstByteSeen {
				timer.EndTTFB()
				firstByteSeen = true
			}
			oldLen := len(st.buf)
			st.buf = ensureCapacity(st.buf, n)
			st.buf = append(st.buf, readBuf[:n]...)

			if !st.headersDone {
				if end := byteutil.FindHeaderEnd(st.buf, oldLen); end >= 0 {
					parseHeaderBlock(st, end)
				}
			}

			if st.headersDone && st.hasContentLength && len(st.buf) >= st.headersEndPos+st.contentLength {
				st.buf = st.buf[:st.headersEndPos+st.contentLength]
				return st, nil
			}
		}
		if err == io.EOF {
			return st, nil
		}
		if err != nil {
			return nil, errors.NewReadConnectionError(err)
		}
		if n == 0 {
			return st, nil
		}
	}
}

// ensureCapacity doubles capacity (or grows by 50% past the doubling
// threshold) as needed to fit n additional bytes, per spec.md §4.6's
// growth policy.
func ensureCapacity(buf []byte, n int) []byte {
	need := len(buf) + n
	if cap(buf) >= need {
		return buf
	}
	newCap := cap(buf)
	if newCap == 0 {
		newCap = minGrowthCapacity
	}
	for newCap < need {
		if newCap < minGrowthCapacity*16 {
			newCap *= 2
		} else {
			newCap += newCap / 2
		}
	}
	grown := make([]byte, len(buf), newCap)
	copy(grown, buf)
	return grown
}

// parseHeaderBlock implements spec.md §4.6 step 3: locate the status
// code via the configured HTTP-version token, the Location header for a
// 3xx redirect, and Content-Length.
func parseHeaderBlock(st *framerState, headerEnd int) {
	buf := st.buf[:headerEnd]

	status := parseStatusCode(buf, st.versionToken)

	if status >= 300 && status < 400 {
		if loc := findLocation(buf); loc != nil {
			st.redirectURL = loc
		}
	}

	st.contentLength, st.hasContentLength = findContentLength(buf)
	st.headersDone = true
	st.headersEndPos = headerEnd
}

// parseStatusCode locates versionToken case-insensitively and interprets
// the following three ASCII digits as the status code; non-digits yield 0.
func parseStatusCode(buf []byte, versionToken string) int {
	idx := byteutil.IndexFold(buf, []byte(versionToken), 0)
	if idx < 0 {
		return 0
	}
	pos := idx + len(versionToken)
	// Skip the space(s) separating the version token from the status code.
	for pos < len(buf) && buf[pos] == ' ' {
		pos++
	}
	if pos+3 > len(buf) {
		return 0
	}
	for i := 0; i < 3; i++ {
		c := buf[pos+i]
		if c < '0' || c > '9' {
			return 0
		}
	}
	val, _ := byteutil.ParseASCIIDigits(buf, pos)
	return val
}

// findLocation case-insensitively locates "location:" and captures bytes
// from after the key up to the next CRLF, trimmed.
func findLocation(buf []byte) []byte {
	idx := byteutil.IndexFold(buf, []byte("location:"), 0)
	if idx < 0 {
		return nil
	}
	start := idx + len("location:")
	end := byteutil.IndexCRLF(buf, start)
	if end < 0 {
		end = len(buf)
	}
	return byteutil.TrimASCIISpace(buf[start:end])
}

// findContentLength case-insensitively locates "content-length:", skips
// one optional space, and parses decimal digits until a non-digit or CRLF.
// An absent header is reported via the second return value so the caller
// can fall back to read-until-EOF rather than treating the body as
// zero-length (spec.md §4.6: "bodies without Content-Length are read
// until EOF and delivered as-is").
func findContentLength(buf []byte) (length int, present bool) {
	idx := byteutil.IndexFold(buf, []byte("content-length:"), 0)
	if idx < 0 {
		return 0, false
	}
	pos := idx + len("content-length:")
	if pos < len(buf) && buf[pos] == ' ' {
		pos++
	}
	val, _ := byteutil.ParseASCIIDigits(buf, pos)
	return val, true
}

// buildResponse constructs a response.Response from the framed state,
// parsing the status line's version/code/text and the header block into a
// request.Headers map (reused here for its case-insensitive lookup).
func buildResponse(st *framerState) *response.Response {
	headerBlock := st.buf[:st.headersEndPos]
	statusLineEnd := byteutil.IndexCRLF(headerBlock, 0)
	if statusLineEnd < 0 {
		statusLineEnd = len(headerBlock)
	}
	statusLine := headerBlock[:statusLineEnd]
	fields := byteutil.SplitFields(statusLine)

	resp := &response.Response{Headers: request.NewHeaders()}
	if len(fields) > 0 {
		resp.HTTPVersion = string(fields[0])
	}
	if len(fields) > 1 {
		val, _ := byteutil.ParseASCIIDigits(fields[1], 0)
		resp.StatusCode = val
	}
	if len(fields) > 2 {
		text := fields[2]
		for i := 3; i < len(fields); i++ {
			text = append(append(text, ' '), fields[i]...)
		}
		resp.StatusText = string(text)
	}

	parseHeaderLines(headerBlock[min(statusLineEnd+2, len(headerBlock)):], resp.Headers)

	bodyStart := st.headersEndPos
	if bodyStart > len(st.buf) {
		bodyStart = len(st.buf)
	}
	resp.Body = append([]byte(nil), st.buf[bodyStart:]...)
	return resp
}

func parseHeaderLines(block []byte, into *request.Headers) {
	lines := byteutil.SplitMulti(block, byteutil.CRLF)
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		sep := -1
		for i, c := range line {
			if c == ':' {
				sep = i
				break
			}
		}
		if sep < 0 {
			continue
		}
		name := string(byteutil.TrimASCIISpace(line[:sep]))
		value := string(byteutil.TrimASCIISpace(line[sep+1:]))
		into.Set(name, value)
	}
}
