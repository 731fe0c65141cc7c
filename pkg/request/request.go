// Package request models a prepared HTTP call: method, target URL,
// headers, body, and the mutable config/tmp scratch state the engine
// mutates across a send (and across any redirects within it).
package request

import (
	"sync"

	"github.com/WhileEndless/rawhttp2/pkg/contenttype"
	"github.com/WhileEndless/rawhttp2/pkg/urlparts"
)

// Request is a prepared, sendable call. Method/URL/Header/Body are
// share-observed (immutable from the builder's perspective once built);
// Config/Tmp are guarded mutable state; LastResponse is the most recent
// parsed response, overwritten atomically at the end of each send
// (spec.md §5).
type Request struct {
	Method      urlparts.Method
	URL         string
	Header      *Headers
	Body        Body
	ContentType contenttype.Kind

	Config *Config
	Tmp    *Tmp

	respMu       sync.RWMutex
	lastResponse any // *response.Response; any to avoid an import cycle
}

// SetLastResponse overwrites the response slot under a write lock.
func (r *Request) SetLastResponse(resp any) {
	r.respMu.Lock()
	defer r.respMu.Unlock()
	r.lastResponse = resp
}

// LastResponse returns the value stored in the slot under a read lock. No
// copy is made: the *response.Response it holds is the same pointer the
// send returned, so changes through either are visible to both.
func (r *Request) LastResponse() any {
	r.respMu.RLock()
	defer r.respMu.RUnlock()
	return r.lastResponse
}

// EffectiveContentType resolves the Content-Type header if the caller set
// one explicitly, else infers one from the Body's kind (Structured bodies
// default to JSON, Text defaults to text/plain, Binary is left Unknown —
// an unannotated binary body has no declared type; Body.Encode writes
// Binary bytes unchanged whatever the kind).
func (r *Request) EffectiveContentType() contenttype.Kind {
	if v, ok := r.Header.Get("Content-Type"); ok {
		return contenttype.Classify(v)
	}
	switch r.Body.Kind {
	case BodyStructured:
		return contenttype.ApplicationJSON
	case BodyText:
		return contenttype.TextPlain
	default:
		return contenttype.Unknown
	}
}
