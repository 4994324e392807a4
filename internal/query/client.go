// Package query is an in-memory query cache keyed by logical query name.
// Each key is fetched independently, retried with backoff, and shares a
// single in-flight call between concurrent callers.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultRetry is the number of attempts made after the first failure
	DefaultRetry = 3

	initialRetryDelay = time.Second
	maxRetryDelay     = 30 * time.Second
)

// ErrTypeMismatch is reported when a key is read with a different type than it was stored with
var ErrTypeMismatch = errors.New("query: cached value has a different type")

// Store is an optional shared backing for the cache, consulted on cold keys
type Store interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Observer receives cache events, typically for metrics
type Observer interface {
	ObserveFetch(key string, err error, elapsed time.Duration)
	ObserveCacheHit(key, source string)
	ObserveInvalidation(key string)
}

// Options configures a Client
type Options struct {
	// Retry is the number of retries after a failed attempt. Zero disables retries.
	Retry int
	// RetryDelay overrides the wait before retry n (0-based). Nil uses
	// exponential backoff from one second, capped at thirty.
	RetryDelay func(attempt int) time.Duration
	// StaleTime is how long a successful result is served without refetching
	StaleTime time.Duration
	Store     Store
	StoreTTL  time.Duration
	Observer  Observer
	Logger    zerolog.Logger
	Now       func() time.Time
}

type entry struct {
	data         any
	hasData      bool
	err          error
	updatedAt    time.Time
	failureCount int
	invalidated  bool
}

// Client holds cache entries and runs fetches
type Client struct {
	opts Options
	log  zerolog.Logger

	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
}

// NewClient creates a query client. Negative Retry values are treated as zero.
func NewClient(opts Options) *Client {
	if opts.Retry < 0 {
		opts.Retry = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Client{
		opts:    opts,
		log:     opts.Logger.With().Str("component", "query").Logger(),
		entries: make(map[string]*entry),
	}
}

// DefaultRetryDelay is the wait before retry n under the default policy
func DefaultRetryDelay(attempt int) time.Duration {
	b := newExponentialBackOff()
	d := b.NextBackOff()
	for i := 0; i < attempt && d < maxRetryDelay; i++ {
		d = b.NextBackOff()
	}
	return d
}

// newExponentialBackOff doubles from one second, caps at thirty and never
// gives up on its own; the retry count is applied by the caller.
func newExponentialBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialRetryDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = maxRetryDelay
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// attemptBackOff adapts a per-attempt delay function to backoff.BackOff
type attemptBackOff struct {
	delay   func(attempt int) time.Duration
	attempt int
}

func (b *attemptBackOff) NextBackOff() time.Duration {
	d := b.delay(b.attempt)
	b.attempt++
	return d
}

func (b *attemptBackOff) Reset() { b.attempt = 0 }

// Fetch returns the cached result for key if it is still fresh, otherwise runs
// fn (with retries) and returns the settled result. Concurrent calls for the
// same key share one execution of fn.
func Fetch[T any](ctx context.Context, c *Client, key string, fn func(context.Context) (T, error)) Result[T] {
	if c.isFresh(key) {
		c.observeHit(key, "memory")
		return Peek[T](c, key)
	}

	_, _, _ = c.group.Do(key, func() (interface{}, error) {
		if c.loadFromStore(ctx, key, decodeAs[T]) {
			return nil, nil
		}

		start := c.opts.Now()
		data, failures, err := c.runWithRetry(ctx, key, func(ctx context.Context) (any, error) {
			return fn(ctx)
		})
		if c.opts.Observer != nil {
			c.opts.Observer.ObserveFetch(key, err, c.opts.Now().Sub(start))
		}

		c.settle(ctx, key, data, failures, err)
		return nil, nil
	})

	return Peek[T](c, key)
}

// Peek returns the current state of key without fetching
func Peek[T any](c *Client, key string) Result[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := Result[T]{Key: key}
	e, ok := c.entries[key]
	if !ok {
		res.Status = StatusPending
		return res
	}

	if e.hasData {
		data, ok := e.data.(T)
		if !ok {
			res.Status = StatusError
			res.Err = fmt.Errorf("%w: %s", ErrTypeMismatch, key)
			return res
		}
		res.Data = data
		res.HasData = true
	}
	res.UpdatedAt = e.updatedAt
	res.FailureCount = e.failureCount

	switch {
	case e.err != nil:
		res.Status = StatusError
		res.Err = e.err
	case e.hasData:
		res.Status = StatusSuccess
	default:
		res.Status = StatusPending
	}
	return res
}

// Invalidate marks keys stale so their next Fetch goes upstream, and drops
// them from the shared store.
func (c *Client) Invalidate(ctx context.Context, keys ...string) {
	c.mu.Lock()
	for _, key := range keys {
		if e, ok := c.entries[key]; ok {
			e.invalidated = true
		}
	}
	c.mu.Unlock()

	for _, key := range keys {
		if c.opts.Observer != nil {
			c.opts.Observer.ObserveInvalidation(key)
		}
	}

	if c.opts.Store != nil && len(keys) > 0 {
		if err := c.opts.Store.Delete(ctx, keys...); err != nil {
			c.log.Warn().Err(err).Strs("keys", keys).Msg("Failed to drop invalidated keys from store")
		}
	}
	c.log.Debug().Strs("keys", keys).Msg("Invalidated queries")
}

func (c *Client) isFresh(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !e.hasData || e.err != nil || e.invalidated {
		return false
	}
	return c.opts.Now().Sub(e.updatedAt) < c.opts.StaleTime
}

func (c *Client) retryPolicy(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff
	if c.opts.RetryDelay != nil {
		b = &attemptBackOff{delay: c.opts.RetryDelay}
	} else {
		b = newExponentialBackOff()
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.opts.Retry)), ctx)
}

// runWithRetry returns the last error fn produced, even when the retries
// were cut short by ctx.
func (c *Client) runWithRetry(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, int, error) {
	var (
		data     any
		failures int
		lastErr  error
	)

	operation := func() error {
		d, err := fn(ctx)
		if err != nil {
			failures++
			lastErr = err
			return err
		}
		data = d
		return nil
	}
	notify := func(err error, delay time.Duration) {
		c.log.Debug().Err(err).Str("query", key).Int("attempt", failures).Dur("delay", delay).Msg("Retrying query")
	}

	if err := backoff.RetryNotify(operation, c.retryPolicy(ctx), notify); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return nil, failures, lastErr
	}
	return data, failures, nil
}

func (c *Client) settle(ctx context.Context, key string, data any, failures int, err error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	e.failureCount = failures
	if err != nil {
		e.err = err
	} else {
		e.data = data
		e.hasData = true
		e.err = nil
		e.updatedAt = c.opts.Now()
		e.invalidated = false
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Warn().Err(err).Str("query", key).Int("failures", failures).Msg("Query failed")
		return
	}
	c.saveToStore(ctx, key, data)
}

func (c *Client) loadFromStore(ctx context.Context, key string, decode func([]byte) (any, error)) bool {
	if c.opts.Store == nil {
		return false
	}

	// Only cold keys read through; an invalidated or failed entry must go upstream.
	c.mu.Lock()
	_, known := c.entries[key]
	c.mu.Unlock()
	if known {
		return false
	}

	payload, ok, err := c.opts.Store.Load(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("query", key).Msg("Failed to read query from store")
		return false
	}
	if !ok {
		return false
	}

	data, err := decode(payload)
	if err != nil {
		c.log.Warn().Err(err).Str("query", key).Msg("Discarding undecodable stored query")
		return false
	}

	c.mu.Lock()
	c.entries[key] = &entry{data: data, hasData: true, updatedAt: c.opts.Now()}
	c.mu.Unlock()

	c.observeHit(key, "store")
	return true
}

func (c *Client) saveToStore(ctx context.Context, key string, data any) {
	if c.opts.Store == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		c.log.Warn().Err(err).Str("query", key).Msg("Failed to encode query for store")
		return
	}
	if err := c.opts.Store.Save(ctx, key, payload, c.opts.StoreTTL); err != nil {
		c.log.Warn().Err(err).Str("query", key).Msg("Failed to write query to store")
	}
}

func (c *Client) observeHit(key, source string) {
	if c.opts.Observer != nil {
		c.opts.Observer.ObserveCacheHit(key, source)
	}
}

func decodeAs[T any](payload []byte) (any, error) {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, err
	}
	return v, nil
}
