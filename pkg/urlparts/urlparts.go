package urlparts

import (
	"net/url"
	"strconv"

	"github.com/WhileEndless/rawhttp2/pkg/errors"
)

// Components is the parsed structural view of a URL: protocol, host, port,
// path, query, and fragment, each optional except Protocol.
type Components struct {
	Protocol Protocol
	Host     string
	Port     int // 0 means "use Protocol.DefaultPort()"
	Path     string
	Query    string
	Fragment string

	hasHost bool
	hasPort bool
}

// HasHost reports whether a host segment was present in the source URL.
func (c Components) HasHost() bool { return c.hasHost }

// HasPort reports whether an explicit port segment was present.
func (c Components) HasPort() bool { return c.hasPort }

// EffectivePort returns the explicit port if present, else the protocol's
// default, per spec.md §4.8's port-selection rule.
func (c Components) EffectivePort() int {
	if c.hasPort && c.Port != 0 {
		return c.Port
	}
	return c.Protocol.DefaultPort()
}

// RequestTarget renders "path[?query]", defaulting to "/" when the path is
// absent, per spec.md §4.1/§4.5.
func (c Components) RequestTarget() string {
	path := c.Path
	if path == "" {
		path = "/"
	}
	if c.Query != "" {
		return path + "?" + c.Query
	}
	return path
}

// Parse parses a URL string into Components using the standard library's
// net/url (the pack-delegated URL parser spec.md §1 names as an external
// collaborator), reclassifying its scheme through NewProtocol and yielding
// a validation error (spec.md's InvalidUrl kind) on any failure — empty
// input included.
func Parse(raw string) (Components, error) {
	if raw == "" {
		return Components{}, errors.NewValidationError("empty URL")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Components{}, errors.NewValidationError("invalid URL: " + err.Error())
	}
	if u.Scheme == "" || u.Host == "" {
		return Components{}, errors.NewValidationError("invalid URL: missing scheme or host")
	}

	comps := Components{
		Protocol: NewProtocol(u.Scheme),
		Path:     u.Path,
		Query:    u.RawQuery,
		Fragment: u.Fragment,
	}

	host := u.Hostname()
	comps.Host = host
	comps.hasHost = host != ""

	if p := u.Port(); p != "" {
		n, convErr := strconv.Atoi(p)
		if convErr != nil {
			return Components{}, errors.NewValidationError("invalid URL: bad port " + p)
		}
		comps.Port = n
		comps.hasPort = true
	}

	return comps, nil
}

// String reconstructs a URL string from Components. A redirect does not go
// through it: the engine rebinds the request's URL to the Location text
// as received.
func (c Components) String() string {
	u := url.URL{
		Scheme:   c.Protocol.String(),
		Path:     c.Path,
		RawQuery: c.Query,
		Fragment: c.Fragment,
	}
	if c.hasPort {
		u.Host = c.Host + ":" + strconv.Itoa(c.Port)
	} else {
		u.Host = c.Host
	}
	return u.String()
}
