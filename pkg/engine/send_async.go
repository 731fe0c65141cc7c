package engine

import (
	"context"

	"github.com/WhileEndless/rawhttp2/pkg/contentencoding"
	"github.com/WhileEndless/rawhttp2/pkg/errors"
	"github.com/WhileEndless/rawhttp2/pkg/request"
	"github.com/WhileEndless/rawhttp2/pkg/response"
	"github.com/WhileEndless/rawhttp2/pkg/stream"
	"github.com/WhileEndless/rawhttp2/pkg/timing"
	"github.com/WhileEndless/rawhttp2/pkg/urlparts"
)

// SendAsync is Send's cooperative twin, per spec.md §5: the same
// serialize/write/frame steps, but driven through stream.AsCooperative so
// every write, flush, and read races ctx instead of relying solely on the
// socket deadline open already applied. Cancellation at any suspension
// point returns promptly with the bytes already in flight possibly having
// reached the peer, matching §5's cancellation note.
func SendAsync(ctx context.Context, req *request.Request) (*response.Response, error) {
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
	cs := stream.AsCooperative(s)
	defer cs.Shutdown(context.Background())

	if _, err := cs.Write(ctx, wire); err != nil {
		return nil, errors.NewRequestError("failed to write request: " + err.Error())
	}
	if err := cs.Flush(ctx); err != nil {
		return nil, errors.NewRequestError("failed to flush request: " + err.Error())
	}

	st, err := frameResponse(&cooperativeReader{ctx: ctx, c: cs}, req.Config.BufferSize, req.Config.HTTPVersion.Token(), timer)
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
		return SendAsync(ctx, req)
	}

	return resp, nil
}

// cooperativeReader adapts a stream.Cooperative, bound to a fixed ctx,
// into an io.Reader so frameResponse's read loop runs unchanged under
// either scheduling model.
type cooperativeReader struct {
	ctx context.Context
	c   stream.Cooperative
}

func (r *cooperativeReader) Read(p []byte) (int, error) {
	return r.c.Read(r.ctx, p)
}
