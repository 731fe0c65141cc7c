package byteutil

import "testing"

func TestIndexFold(t *testing.T) {
	cases := []struct {
		haystack string
		needle   string
		from     int
		want     int
	}{
		{"Content-Length: 5", "content-length", 0, 0},
		{"X-Foo: 1\r\nContent-Length: 5", "content-length", 0, 10},
		{"nothing here", "missing", 0, -1},
		{"", "x", 0, -1},
	}
	for _, c := range cases {
		got := IndexFold([]byte(c.haystack), []byte(c.needle), c.from)
		if got != c.want {
			t.Errorf("IndexFold(%q, %q, %d) = %d, want %d", c.haystack, c.needle, c.from, got, c.want)
		}
	}
}

func TestFindHeaderEnd(t *testing.T) {
	full := []byte("HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nhi")
	got := FindHeaderEnd(full, 0)
	want := len("HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\n")
	if got != want {
		t.Fatalf("FindHeaderEnd = %d, want %d", got, want)
	}

	// Straddled boundary: the terminator is split across two appends.
	part1 := []byte("HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r")
	part2 := append(append([]byte{}, part1...), '\n')
	if FindHeaderEnd(part1, 0) != -1 {
		t.Fatalf("expected incomplete boundary before second read")
	}
	if got := FindHeaderEnd(part2, len(part1)); got == -1 {
		t.Fatalf("expected boundary to be found once re-scanned from oldLen-3")
	}
}

func TestParseASCIIDigits(t *testing.T) {
	val, next := ParseASCIIDigits([]byte("200 OK"), 0)
	if val != 200 || next != 3 {
		t.Fatalf("got (%d, %d), want (200, 3)", val, next)
	}
	val, next = ParseASCIIDigits([]byte("abc"), 0)
	if val != 0 || next != 0 {
		t.Fatalf("got (%d, %d), want (0, 0)", val, next)
	}
}
