// Package cache provides the "dataCache" bootstrap service: a small
// key/value store for derived data, kept in memory and optionally persisted
// as JSON files through the file manager.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/filesystem"
)

// Dir is the directory below the file manager root that holds cache files.
const Dir = "cache"

// ErrInvalidKey is returned for keys that cannot name a cache file.
var ErrInvalidKey = errors.New("cache: invalid key")

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// DataCache stores JSON-encodable values by key. Entries expire after the
// configured TTL; a zero TTL keeps them until cleared.
type DataCache struct {
	mu     sync.RWMutex
	items  map[string]entry
	files  *filesystem.Manager
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

type entry struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt time.Time       `json:"expiresAt,omitzero"`
}

func (e entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Option configures a DataCache.
type Option func(*DataCache)

// WithTTL expires entries ttl after they are stored.
func WithTTL(ttl time.Duration) Option {
	return func(c *DataCache) { c.ttl = ttl }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *DataCache) { c.now = now }
}

// New creates a cache. With a nil files manager nothing is persisted.
func New(files *filesystem.Manager, logger *zap.Logger, opts ...Option) *DataCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &DataCache{
		items:  make(map[string]entry),
		files:  files,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Has reports whether a live entry exists for key.
func (c *DataCache) Has(key string) bool {
	_, ok, err := c.lookup(key)
	return ok && err == nil
}

// Get decodes the entry for key into dst. It reports false when there is no
// live entry.
func (c *DataCache) Get(key string, dst any) (bool, error) {
	e, ok, err := c.lookup(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(e.Value, dst); err != nil {
		return false, fmt.Errorf("cache: decoding %q: %w", key, err)
	}
	return true, nil
}

// Store encodes value under key, replacing any previous entry.
func (c *DataCache) Store(key string, value any) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encoding %q: %w", key, err)
	}
	e := entry{Value: raw}
	if c.ttl > 0 {
		e.ExpiresAt = c.now().Add(c.ttl)
	}

	if c.files != nil {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("cache: encoding %q: %w", key, err)
		}
		if err := c.files.PutContents(path(key), data); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.items[key] = e
	c.mu.Unlock()
	c.logger.Debug("cache stored", zap.String("key", key), zap.Int("bytes", len(raw)))
	return nil
}

// Clear removes the entry for key.
func (c *DataCache) Clear(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	if c.files != nil {
		return c.files.Remove(path(key))
	}
	return nil
}

// lookup finds a live entry in memory, then on disk. Expired entries are
// dropped.
func (c *DataCache) lookup(key string) (entry, bool, error) {
	if !validKey.MatchString(key) {
		return entry{}, false, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	now := c.now()

	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok && c.files != nil {
		var err error
		if e, ok, err = c.read(key); err != nil {
			return entry{}, false, err
		}
	}
	if !ok {
		return entry{}, false, nil
	}
	if e.expired(now) {
		c.logger.Debug("cache entry expired", zap.String("key", key))
		if err := c.Clear(key); err != nil {
			return entry{}, false, err
		}
		return entry{}, false, nil
	}

	c.mu.Lock()
	c.items[key] = e
	c.mu.Unlock()
	return e, true, nil
}

func (c *DataCache) read(key string) (entry, bool, error) {
	data, err := c.files.GetContents(path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return entry{}, false, nil
	}
	if err != nil {
		return entry{}, false, fmt.Errorf("cache: reading %q: %w", key, err)
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return entry{}, false, fmt.Errorf("cache: decoding %q: %w", key, err)
	}
	return e, true, nil
}

func path(key string) string { return Dir + "/" + key + ".json" }
