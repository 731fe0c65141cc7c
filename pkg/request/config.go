package request

import (
	"crypto/tls"
	"sync"
	"time"

	"github.com/WhileEndless/rawhttp2/pkg/constants"
	"github.com/WhileEndless/rawhttp2/pkg/urlparts"
)

// DefaultBufferSize is the read-buffer size and decoder hint used when the
// builder does not set one explicitly.
const DefaultBufferSize = 8192

// DefaultMaxRedirectTimes bounds redirect following when enabled but no
// explicit limit was configured.
const DefaultMaxRedirectTimes = 10

// DefaultUserAgent is written as the User-Agent default header.
const DefaultUserAgent = "rawhttp2"

// Config is the per-request mutable policy described in spec.md §3: timeout,
// parsed URL, redirect policy/counters, HTTP version token, buffer size,
// and the auto-decode flag. It is guarded by an RWMutex so a request handle
// shared across goroutines (spec.md §9's shared-mutable-request-state note)
// observes single-send semantics without requiring external locking.
type Config struct {
	mu sync.RWMutex

	TimeoutMs         int64
	urlObj            urlparts.Components
	hasURLObj         bool
	Redirect          bool
	MaxRedirectTimes  int
	RedirectTimes     int
	HTTPVersion       urlparts.HttpVersion
	BufferSize        int
	Decode            bool

	// TLS policy, carried from the builder's options.
	InsecureSkipVerify bool
	ServerName         string
	ClientCertPEM      []byte
	ClientKeyPEM       []byte
	RootCAs            *tls.Config // caller-supplied trust store/cipher policy, merged at dial time
}

// NewConfig returns a Config with spec.md's documented defaults: redirect
// following disabled, decode enabled, HTTP/1.1, default buffer size.
func NewConfig() *Config {
	return &Config{
		Redirect:         false,
		MaxRedirectTimes: DefaultMaxRedirectTimes,
		HTTPVersion:      urlparts.DefaultHttpVersion,
		BufferSize:       DefaultBufferSize,
		Decode:           true,
		TimeoutMs:        int64(constants.DefaultReadTimeout / time.Millisecond),
	}
}

// URLObj returns the currently bound parsed URL under a read lock.
func (c *Config) URLObj() (urlparts.Components, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.urlObj, c.hasURLObj
}

// SetURLObj rebinds the parsed URL, as happens on redirect acceptance
// (spec.md §4.7).
func (c *Config) SetURLObj(u urlparts.Components) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.urlObj = u
	c.hasURLObj = true
}

// Timeout returns TimeoutMs as a time.Duration.
func (c *Config) Timeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// IncrementRedirects bumps RedirectTimes by one under the write lock. It
// does not check MaxRedirectTimes; the caller (decideRedirect) checks the
// bound before incrementing.
func (c *Config) IncrementRedirects() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.RedirectTimes++
}

// RedirectState returns (times, max, enabled) under a read lock.
func (c *Config) RedirectState() (times, max int, enabled bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.RedirectTimes, c.MaxRedirectTimes, c.Redirect
}

// Tmp is the per-request scratch state: the monotonically growing set of
// visited URLs (for redirect loop detection) and the trust store used for
// TLS connections, per spec.md §3.
type Tmp struct {
	mu       sync.RWMutex
	visitURL map[string]struct{}
	RootCert *tls.Config // read-only after construction
}

// NewTmp returns empty scratch state.
func NewTmp() *Tmp {
	return &Tmp{visitURL: make(map[string]struct{})}
}

// Visited reports whether url has already been visited in this logical
// request (i.e. this call chain including redirects).
func (t *Tmp) Visited(url string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.visitURL[url]
	return ok
}

// MarkVisited records url as visited. Per spec.md §5's ordering guarantee,
// this must happen before the next send begins so loop detection sees all
// prior URLs.
func (t *Tmp) MarkVisited(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visitURL[url] = struct{}{}
}
