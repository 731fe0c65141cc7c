package request

import "strings"

// Headers is a case-insensitive lookup over case-preserving keys, per
// spec.md §3/§9's header-map-semantics note: the map is keyed by the
// caller's original casing, but lookup, replace, and default-insertion all
// compare names case-insensitively. Emission order is unspecified.
type Headers struct {
	order []string // insertion order of canonical (lowercased) keys
	vals  map[string]headerEntry
}

type headerEntry struct {
	name  string // original casing
	value string
}

// NewHeaders returns an empty header map.
func NewHeaders() *Headers {
	return &Headers{vals: make(map[string]headerEntry)}
}

// HeadersFrom builds a Headers from a plain map, preserving the caller's
// key casing.
func HeadersFrom(m map[string]string) *Headers {
	h := NewHeaders()
	for k, v := range m {
		h.Set(k, v)
	}
	return h
}

func fold(name string) string { return strings.ToLower(name) }

// Set inserts or replaces a header, matching the existing entry
// case-insensitively if one is present (so the first-seen casing wins on
// replacement, per spec.md §6's "insert-or-replace... after the first
// occurrence").
func (h *Headers) Set(name, value string) {
	key := fold(name)
	entry, exists := h.vals[key]
	if !exists {
		h.order = append(h.order, key)
		entry.name = name
	}
	entry.value = value
	h.vals[key] = entry
}

// SetIfAbsent sets a header only if no case-insensitive match exists yet —
// the mechanism the serializer uses to supply Host/Content-Length/Accept/
// User-Agent defaults (spec.md §4.5).
func (h *Headers) SetIfAbsent(name, value string) {
	if _, ok := h.Get(name); ok {
		return
	}
	h.Set(name, value)
}

// Get performs a case-insensitive lookup, returning the stored value and
// whether it was present.
func (h *Headers) Get(name string) (string, bool) {
	entry, ok := h.vals[fold(name)]
	return entry.value, ok
}

// Names returns header names in insertion order, using each header's
// original casing.
func (h *Headers) Names() []string {
	out := make([]string, 0, len(h.order))
	for _, key := range h.order {
		out = append(out, h.vals[key].name)
	}
	return out
}

// Len returns the number of distinct (case-insensitively folded) headers.
func (h *Headers) Len() int { return len(h.order) }

// Clone returns an independent copy.
func (h *Headers) Clone() *Headers {
	c := NewHeaders()
	for _, key := range h.order {
		entry := h.vals[key]
		c.Set(entry.name, entry.value)
	}
	return c
}

// ForEach iterates headers in insertion order, original-cased name first.
func (h *Headers) ForEach(fn func(name, value string)) {
	for _, key := range h.order {
		entry := h.vals[key]
		fn(entry.name, entry.value)
	}
}
