// Package translation deduplicates English to Chinese translation requests
// with a session-partitioned, time-expiring LRU cache.
package translation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/sceneling/sceneling/internal/logging"
	"github.com/sceneling/sceneling/internal/observability"
)

// DefaultSession is the bucket used when a request carries no session id.
const DefaultSession = "default"

// Translator performs one remote translation of already-normalized text.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Options bounds the cache. Zero values take the defaults.
type Options struct {
	MaxSessions        int
	MaxItemsPerSession int
	TTL                time.Duration
	// Now overrides the clock. Used by tests.
	Now func() time.Time
}

type entry struct {
	text       string
	lastAccess time.Time
}

type bucket struct {
	lastAccess time.Time
	entries    *simplelru.LRU[string, *entry]
}

// Cache is safe for concurrent use. Buckets and entries are kept in LRU order,
// so recency order and last-access order coincide and expiry sweeps only
// inspect the stale tail.
type Cache struct {
	translator Translator
	logger     *log.Logger
	metrics    *observability.Metrics
	opts       Options

	mu      sync.Mutex
	buckets *simplelru.LRU[string, *bucket]

	inflight singleflight.Group
}

// NewCache returns an empty cache in front of translator.
func NewCache(translator Translator, opts Options, logger *log.Logger, metrics *observability.Metrics) *Cache {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 200
	}
	if opts.MaxItemsPerSession <= 0 {
		opts.MaxItemsPerSession = 200
	}
	if opts.TTL <= 0 {
		opts.TTL = 2 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = logging.Discard()
	}
	c := &Cache{
		translator: translator,
		logger:     logger.With("component", "translation_cache"),
		metrics:    metrics,
		opts:       opts,
	}
	// Size bounds are enforced explicitly in sweepLocked; the LRU capacity is
	// only a backstop one above the limit.
	c.buckets, _ = simplelru.NewLRU[string, *bucket](opts.MaxSessions+1, nil)
	return c
}

// Translate returns the Chinese translation of text for sessionID. It reports
// false on empty input or when the remote call fails or returns nothing.
func (c *Cache) Translate(ctx context.Context, text, sessionID string) (string, bool) {
	normalized := Normalize(text)
	if normalized == "" {
		return "", false
	}
	if sessionID = strings.TrimSpace(sessionID); sessionID == "" {
		sessionID = DefaultSession
	}
	key := Key(normalized)

	if cached, ok := c.lookup(sessionID, key); ok {
		c.metrics.ObserveTranslationLookup("hit")
		return cached, true
	}

	v, err, shared := c.inflight.Do(sessionID+"\x00"+key, func() (any, error) {
		ctx, span := observability.Tracer().Start(ctx, "translation.remote")
		defer span.End()
		span.SetAttributes(attribute.Int("text.length", len(normalized)))

		start := time.Now()
		raw, err := c.translator.Translate(ctx, normalized)
		c.metrics.ObserveStage("translation_remote", time.Since(start))
		if err != nil {
			span.RecordError(err)
			return "", err
		}
		return Clean(raw), nil
	})
	if err != nil {
		c.metrics.ObserveTranslationLookup("failed")
		c.logger.Warn("translate failed", "session", sessionID, "err", err)
		return "", false
	}
	translated, _ := v.(string)
	if translated == "" {
		c.metrics.ObserveTranslationLookup("failed")
		c.logger.Warn("translate returned empty result", "session", sessionID)
		return "", false
	}
	if shared {
		c.metrics.ObserveTranslationLookup("shared")
	} else {
		c.metrics.ObserveTranslationLookup("miss")
	}

	c.store(sessionID, key, translated)
	return translated, true
}

// Len reports the number of live session buckets.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buckets.Len()
}

// SessionLen reports the number of entries held for sessionID.
func (c *Cache) SessionLen(sessionID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.buckets.Peek(sessionID)
	if !ok {
		return 0
	}
	return b.entries.Len()
}

func (c *Cache) lookup(sessionID, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.opts.Now()
	c.sweepLocked(now)
	b := c.touchBucketLocked(sessionID, now)
	c.sweepLocked(now)
	c.trimBucketLocked(b, now)
	e, ok := b.entries.Get(key)
	if !ok {
		return "", false
	}
	e.lastAccess = now
	return e.text, true
}

func (c *Cache) store(sessionID, key, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.opts.Now()
	b := c.touchBucketLocked(sessionID, now)
	b.entries.Add(key, &entry{text: text, lastAccess: now})
	c.trimBucketLocked(b, now)
	c.sweepLocked(now)
}

// touchBucketLocked returns the bucket for sessionID, creating it if needed,
// and marks it most recently used.
func (c *Cache) touchBucketLocked(sessionID string, now time.Time) *bucket {
	b, ok := c.buckets.Get(sessionID)
	if !ok {
		entries, _ := simplelru.NewLRU[string, *entry](c.opts.MaxItemsPerSession+1, nil)
		b = &bucket{entries: entries}
		c.buckets.Add(sessionID, b)
	}
	b.lastAccess = now
	c.metrics.SetTranslationSessions(c.buckets.Len())
	return b
}

// sweepLocked drops expired buckets, then least recently used buckets beyond
// MaxSessions. Entries are trimmed per bucket when that bucket is touched, since
// only the touched bucket can grow.
func (c *Cache) sweepLocked(now time.Time) {
	var expired, overflow int
	for {
		_, b, ok := c.buckets.GetOldest()
		if !ok || now.Sub(b.lastAccess) <= c.opts.TTL {
			break
		}
		c.buckets.RemoveOldest()
		expired++
	}
	for c.buckets.Len() > c.opts.MaxSessions {
		c.buckets.RemoveOldest()
		overflow++
	}
	c.metrics.ObserveTranslationEviction("session_ttl", expired)
	c.metrics.ObserveTranslationEviction("session_limit", overflow)
	c.metrics.SetTranslationSessions(c.buckets.Len())
}

func (c *Cache) trimBucketLocked(b *bucket, now time.Time) {
	n := 0
	for {
		_, e, ok := b.entries.GetOldest()
		if !ok || now.Sub(e.lastAccess) <= c.opts.TTL {
			break
		}
		b.entries.RemoveOldest()
		n++
	}
	for b.entries.Len() > c.opts.MaxItemsPerSession {
		b.entries.RemoveOldest()
		n++
	}
	c.metrics.ObserveTranslationEviction("entry", n)
}

// Normalize trims text and collapses internal whitespace runs to one space.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Key is the hex SHA-256 of normalized text.
func Key(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Clean trims model output and strips one matching pair of surrounding quotes.
func Clean(text string) string {
	cleaned := strings.TrimSpace(text)
	if len(cleaned) >= 2 {
		first, last := cleaned[0], cleaned[len(cleaned)-1]
		if (first == '"' || first == '\'') && first == last {
			cleaned = strings.TrimSpace(cleaned[1 : len(cleaned)-1])
		}
	}
	return cleaned
}
