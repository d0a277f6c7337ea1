// Package proxy shields the generative backend from redundant and
// excessive calls: a TTL response cache keyed by caller-supplied keys,
// and a rolling-window rate limiter applied before every real
// invocation.
package proxy

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrRateLimited is returned when the admission window is full. It is a
// distinct, retryable condition and must not be conflated with backend
// failures.
var ErrRateLimited = errors.New("proxy: rate limit exceeded, try again later")

// Response is a backend reply with the time it was produced.
type Response struct {
	Text      string
	Timestamp time.Time
}

type cacheEntry struct {
	response  Response
	expiresAt time.Time
}

type Options struct {
	CacheTTL      time.Duration // default 1h
	SweepInterval time.Duration // default 10m; <=0 disables the janitor
	RateLimit     int           // default 20 requests
	RateWindow    time.Duration // default 1m
	Logger        *zap.Logger
}

// Proxy holds process-wide cache and limiter state. Multiple process
// instances each enforce their own independent window.
type Proxy struct {
	mu         sync.Mutex
	cache      map[string]cacheEntry
	admissions []time.Time

	ttl    time.Duration
	limit  int
	window time.Duration
	now    func() time.Time
	logger *zap.Logger
	stop   chan struct{}
}

func New(opts Options) *Proxy {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 20
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	p := &Proxy{
		cache:  make(map[string]cacheEntry),
		ttl:    opts.CacheTTL,
		limit:  opts.RateLimit,
		window: opts.RateWindow,
		now:    time.Now,
		logger: opts.Logger,
		stop:   make(chan struct{}),
	}
	if opts.SweepInterval > 0 {
		go p.janitor(opts.SweepInterval)
	}
	return p
}

// Invoke returns the cached response for key when one is live, otherwise
// admits the request against the rolling window and calls fn. An empty
// key bypasses the cache entirely. fn is never called for rejected
// requests.
func (p *Proxy) Invoke(ctx context.Context, key string, fn func(ctx context.Context) (string, error)) (Response, error) {
	if key != "" {
		if resp, ok := p.lookup(key); ok {
			p.logger.Debug("proxy cache hit", zap.String("key", key))
			return resp, nil
		}
	}

	if !p.admit() {
		p.logger.Warn("proxy rate limit exceeded",
			zap.Int("limit", p.limit),
			zap.Duration("window", p.window))
		return Response{}, ErrRateLimited
	}

	text, err := fn(ctx)
	if err != nil {
		return Response{}, err
	}

	resp := Response{Text: text, Timestamp: p.now()}
	if key != "" {
		p.store(key, resp)
		p.logger.Debug("proxy cached response", zap.String("key", key))
	}
	return resp, nil
}

func (p *Proxy) lookup(key string) (Response, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.cache[key]
	if !ok {
		return Response{}, false
	}
	if p.now().After(entry.expiresAt) {
		delete(p.cache, key)
		return Response{}, false
	}
	return entry.response, true
}

func (p *Proxy) store(key string, resp Response) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache[key] = cacheEntry{response: resp, expiresAt: p.now().Add(p.ttl)}
}

// admit records one request against the rolling window, pruning stale
// admissions first. Returns false when the window is full.
func (p *Proxy) admit() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	cutoff := now.Add(-p.window)
	kept := p.admissions[:0]
	for _, t := range p.admissions {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	p.admissions = kept

	if len(p.admissions) >= p.limit {
		return false
	}
	p.admissions = append(p.admissions, now)
	return true
}

func (p *Proxy) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.sweep()
		}
	}
}

func (p *Proxy) sweep() {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	for key, entry := range p.cache {
		if now.After(entry.expiresAt) {
			delete(p.cache, key)
		}
	}
}

// Close stops the periodic sweep.
func (p *Proxy) Close() {
	close(p.stop)
}
