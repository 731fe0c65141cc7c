// Package connpool is a standalone, opt-in connection-reuse layer. It is
// deliberately NOT wired into engine.Send's default path — spec.md's
// Non-goals exclude connection pooling from the core HTTP engine. engine.Send
// always dials its own stream and takes none from a caller, so a Pool
// holds streams for code that drives a stream.Blocking itself.
//
// Adapted from pkg/transport/transport.go's hostPool/Transport pooling
// subsystem: the same per-host idle LIFO stack and a background cleanup
// goroutine evicting idle connections past MaxIdleTime. Get never waits:
// it returns false at once when no idle stream is stored for the key.
// Repurposed to operate on stream.Blocking values
// instead of raw net.Conn, so pooled streams already carry the engine's
// TLS-wrapping and tunnel-adapter decisions made at dial time.
package connpool

import (
	"sync"
	"time"

	"github.com/WhileEndless/rawhttp2/pkg/constants"
	"github.com/WhileEndless/rawhttp2/pkg/stream"
)

// Config tunes pool bounds and idle-connection lifetime.
type Config struct {
	MaxIdlePerHost int
	MaxIdleTime    time.Duration
}

// DefaultConfig mirrors the teacher's DefaultPoolConfig values.
func DefaultConfig() Config {
	return Config{
		MaxIdlePerHost: 2,
		MaxIdleTime:    constants.DefaultIdleTimeout,
	}
}

type pooledStream struct {
	s        stream.Blocking
	lastUsed time.Time
}

type hostPool struct {
	mu   sync.Mutex
	idle []*pooledStream
}

// Pool is a set of per-host idle-stream stacks plus lifetime counters, and
// a cleanup goroutine that evicts and closes idle streams older than
// MaxIdleTime. Callers must call Close when done with the pool to stop
// that goroutine.
type Pool struct {
	cfg   Config
	mu    sync.Mutex
	hosts map[string]*hostPool

	reused  int64
	created int64

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New starts a Pool with cfg, launching its background eviction
// goroutine immediately — the teacher's NewWithConfig does the same.
func New(cfg Config) *Pool {
	if cfg.MaxIdlePerHost <= 0 {
		cfg.MaxIdlePerHost = 2
	}
	if cfg.MaxIdleTime <= 0 {
		cfg.MaxIdleTime = constants.DefaultIdleTimeout
	}
	p := &Pool{
		cfg:    cfg,
		hosts:  make(map[string]*hostPool),
		stopCh: make(chan struct{}),
	}
	p.wg.Add(1)
	go p.evictLoop()
	return p
}

func (p *Pool) hostPoolFor(key string) *hostPool {
	p.mu.Lock()
	defer p.mu.Unlock()
	hp, ok := p.hosts[key]
	if !ok {
		hp = &hostPool{}
		p.hosts[key] = hp
	}
	return hp
}

// Get pops the most recently returned idle stream for key, if any.
func (p *Pool) Get(key string) (stream.Blocking, bool) {
	hp := p.hostPoolFor(key)
	hp.mu.Lock()
	defer hp.mu.Unlock()
	if len(hp.idle) == 0 {
		return nil, false
	}
	last := hp.idle[len(hp.idle)-1]
	hp.idle = hp.idle[:len(hp.idle)-1]
	p.reused++
	return last.s, true
}

// Put returns s to the pool for key, evicting and closing the oldest idle
// entry first if the per-host bound is already at capacity.
func (p *Pool) Put(key string, s stream.Blocking) {
	hp := p.hostPoolFor(key)
	hp.mu.Lock()
	defer hp.mu.Unlock()

	if len(hp.idle) >= p.cfg.MaxIdlePerHost {
		oldest := hp.idle[0]
		hp.idle = hp.idle[1:]
		oldest.s.Close()
	}
	hp.idle = append(hp.idle, &pooledStream{s: s, lastUsed: time.Now()})
	p.created++
}

// Stats reports lifetime reuse/creation counters and current idle counts.
type Stats struct {
	TotalReused  int64
	TotalCreated int64
	IdleByHost   map[string]int
}

func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := Stats{TotalReused: p.reused, TotalCreated: p.created, IdleByHost: make(map[string]int, len(p.hosts))}
	for key, hp := range p.hosts {
		hp.mu.Lock()
		st.IdleByHost[key] = len(hp.idle)
		hp.mu.Unlock()
	}
	return st
}

func (p *Pool) evictLoop() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.cfg.MaxIdleTime / 3)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.evictStale()
		}
	}
}

func (p *Pool) evictStale() {
	cutoff := time.Now().Add(-p.cfg.MaxIdleTime)
	p.mu.Lock()
	hosts := make([]*hostPool, 0, len(p.hosts))
	for _, hp := range p.hosts {
		hosts = append(hosts, hp)
	}
	p.mu.Unlock()

	for _, hp := range hosts {
		hp.mu.Lock()
		kept := hp.idle[:0]
		for _, entry := range hp.idle {
			if entry.lastUsed.Before(cutoff) {
				entry.s.Close()
				continue
			}
			kept = append(kept, entry)
		}
		hp.idle = kept
		hp.mu.Unlock()
	}
}

// Close stops the eviction goroutine and closes every idle stream.
func (p *Pool) Close() error {
	close(p.stopCh)
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, hp := range p.hosts {
		hp.mu.Lock()
		for _, entry := range hp.idle {
			entry.s.Close()
		}
		hp.idle = nil
		hp.mu.Unlock()
	}
	return nil
}
