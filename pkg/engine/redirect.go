package engine

import (
	"unicode/utf8"

	"github.com/WhileEndless/rawhttp2/pkg/errors"
	"github.com/WhileEndless/rawhttp2/pkg/rawhttplog"
	"github.com/WhileEndless/rawhttp2/pkg/request"
)

// decideRedirect implements spec.md §4.7's redirect state machine entry
// condition, grounded on original_source's handle_redirect: policy check,
// then a UTF-8 check of the Location (a validation error on failure), then
// loop-detection against the visited set, then the redirect-count
// bound, in that order (so a disabled policy is reported before a cycle,
// and a cycle before exhaustion — matching the original's check order).
// On success it has already recorded targetURL as visited and incremented
// the redirect counter; the caller rebinds req.URL and recurses into Send.
func decideRedirect(req *request.Request, targetURL string) error {
	times, max, enabled := req.Config.RedirectState()
	if !enabled {
		rawhttplog.RedirectRejected(targetURL, errors.OpNeedOpenRedirect)
		return errors.NewRedirectError(errors.OpNeedOpenRedirect, "redirect indicated but policy disabled")
	}
	if !utf8.ValidString(targetURL) {
		return errors.NewValidationError("redirect Location is not valid UTF-8")
	}
	if req.Tmp.Visited(targetURL) {
		rawhttplog.RedirectRejected(targetURL, errors.OpRedirectDeadLoop)
		return errors.NewRedirectError(errors.OpRedirectDeadLoop, "redirect target already visited: "+targetURL)
	}
	if times >= max {
		rawhttplog.RedirectRejected(targetURL, errors.OpMaxRedirectTimes)
		return errors.NewRedirectError(errors.OpMaxRedirectTimes, "redirect count exceeded")
	}
	req.Tmp.MarkVisited(targetURL)
	req.Config.IncrementRedirects()
	rawhttplog.RedirectFollowed(req.URL, targetURL, times+1)
	return nil
}
