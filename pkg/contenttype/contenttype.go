// Package contenttype classifies a Content-Type header value and encodes a
// request body accordingly. Per spec.md §4.2, encode is a total function:
// serialization failures degrade to a safe fallback rather than erroring.
package contenttype

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Kind is the classified content type of a request/response body.
type Kind uint8

const (
	ApplicationJSON Kind = iota
	ApplicationXML
	TextPlain
	TextHTML
	FormURLEncoded
	Unknown
)

// Classify maps a (case-folded) Content-Type header value onto a Kind.
func Classify(headerValue string) Kind {
	v := strings.ToLower(strings.TrimSpace(headerValue))
	// Strip a trailing ";charset=..." or similar parameter.
	if i := strings.IndexByte(v, ';'); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	switch v {
	case "application/json":
		return ApplicationJSON
	case "application/xml", "text/xml":
		return ApplicationXML
	case "text/plain":
		return TextPlain
	case "text/html":
		return TextHTML
	case "application/x-www-form-urlencoded":
		return FormURLEncoded
	default:
		return Unknown
	}
}

// xmlMap is the minimal wrapper needed to marshal a map[string]any as a
// flat <root>...</root> document; encoding/xml cannot marshal a bare map.
type xmlMap struct {
	XMLName xml.Name `xml:"root"`
	Entries []xmlEntry
}

type xmlEntry struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

func toXMLMap(m map[string]any) xmlMap {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := xmlMap{}
	for _, k := range keys {
		out.Entries = append(out.Entries, xmlEntry{XMLName: xml.Name{Local: sanitizeXMLName(k)}, Value: fmt.Sprintf("%v", m[k])})
	}
	return out
}

func sanitizeXMLName(k string) string {
	if k == "" {
		return "field"
	}
	return k
}

// Encode renders body as bytes per kind. It never returns an error: on any
// marshaling failure it falls back to an empty object/`<root/>`/empty
// string, matching spec.md §4.2's documented failure mode.
func Encode(kind Kind, body any) []byte {
	switch kind {
	case ApplicationJSON:
		b, err := json.Marshal(body)
		if err != nil {
			return []byte("{}")
		}
		return b
	case ApplicationXML:
		m, ok := body.(map[string]any)
		if !ok {
			return []byte("<root/>")
		}
		b, err := xml.Marshal(toXMLMap(m))
		if err != nil {
			return []byte("<root/>")
		}
		return b
	case TextPlain, TextHTML:
		return encodeDebugText(body)
	case FormURLEncoded:
		m, ok := body.(map[string]any)
		if !ok {
			return []byte("")
		}
		return encodeForm(m)
	default: // Unknown
		return []byte(hex.EncodeToString(encodeDebugText(body)))
	}
}

// encodeDebugText renders body as a debug-style textual representation —
// %v for scalars/strings, a stable key-sorted rendering for maps.
func encodeDebugText(body any) []byte {
	switch v := body.(type) {
	case string:
		return []byte(v)
	case []byte:
		return v
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var buf bytes.Buffer
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(' ')
			}
			fmt.Fprintf(&buf, "%s=%v", k, v[k])
		}
		return buf.Bytes()
	default:
		return []byte(fmt.Sprintf("%v", v))
	}
}

// encodeForm renders a map as "k=v&..." with keys in sorted order so the
// encoding is deterministic (spec.md §8 invariant b requires a
// "permutation-free" encoding).
func encodeForm(m map[string]any) []byte {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := url.Values{}
	for _, k := range keys {
		values.Set(k, fmt.Sprintf("%v", m[k]))
	}
	return []byte(values.Encode())
}
