package engine

import (
	"context"

	"github.com/WhileEndless/rawhttp2/pkg/contentencoding"
	"github.com/WhileEndless/rawhttp2/pkg/errors"
	"github.com/WhileEndless/rawhttp2/pkg/request"
	"github.com/WhileEndless/rawhttp2/pkg/response"
	"github.com/WhileEndless/rawhttp2/pkg/timing"
	"github.com/WhileEndless/rawhttp2/pkg/urlparts"
)

// Send drives req to completion per spec.md §4.9: parse the bound URL,
// open a transport stream, write the serialized request, frame the
// response, auto-decode its body if configured, and — for a 3xx reply —
// run the redirect state machine and recurse rather than returning. The
// returned Response is also recorded on req via SetLastResponse, matching
// spec.md §5's "most recent response" contract. Each call (including
// redirect recursions) gets its own timing.Timer, so Response.Metrics
// always reflects the final hop's own TCP/TLS/TTFB/Total phases rather
// than an accumulation across a redirect chain. DNSLookup stays zero: name
// resolution is counted in the TCP phase.
func Send(ctx context.Context, req *request.Request) (*response.Response, error) {
	timer := timing.NewTimer()

	comps, err := urlparts.Parse(req.URL)
	if err != nil {
		return nil, err
	}
	req.Config.SetURLObj(comps)

	wire, err := Serialize(req, comps)
	if err != nil {
		return nil, err
	}

	s, err := open(ctx, comps, req.Config, req.Tmp, timer)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	if _, err := s.Write(wire); err != nil {
		return nil, errors.NewRequestError("failed to write request: " + err.Error())
	}
	if err := s.Flush(); err != nil {
		return nil, errors.NewRequestError("failed to flush request: " + err.Error())
	}

	st, err := frameResponse(s, req.Config.BufferSize, req.Config.HTTPVersion.Token(), timer)
	if err != nil {
		return nil, err
	}

	resp := buildResponse(st)
	resp.Metrics = timer.GetMetrics()

	if req.Config.Decode {
		if enc, ok := resp.Headers.Get("Content-Encoding"); ok {
			kind := contentencoding.Classify(enc)
			resp.Body = contentencoding.Decode(kind, resp.Body, req.Config.BufferSize)
		}
	}

	req.SetLastResponse(resp)

	if resp.IsRedirect() && len(st.redirectURL) > 0 {
		target := string(st.redirectURL)
		if err := decideRedirect(req, target); err != nil {
			return resp, err
		}
		req.URL = target
		return Send(ctx, req)
	}

	return resp, nil
}
