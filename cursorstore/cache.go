// Package cursorstore keeps cursor positions server side, so clients only
// handle opaque names.
package cursorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Alp4ka/pagekit"
)

// ErrCacheMiss is returned by Cache.Get for unknown or expired keys.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a byte-oriented key value cache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value; ttl 0 keeps it until evicted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const (
	DefaultPrefix = "pagekit:cursor:"
	entryVersion  = 1
)

type entry struct {
	Version  int              `json:"v"`
	Position pagekit.Position `json:"position"`
}

// CacheStorage is a pagekit.CursorStorage over a Cache. Expiration is up to
// the cache. Names issued by this instance are indexed for Count and Clear.
type CacheStorage struct {
	cache  Cache
	prefix string
	ttl    time.Duration
	logger *zap.Logger

	mu    sync.Mutex
	names map[string]struct{}
}

type CacheOption func(*CacheStorage)

// WithPrefix sets the key prefix, DefaultPrefix by default.
func WithPrefix(prefix string) CacheOption {
	return func(s *CacheStorage) {
		s.prefix = prefix
	}
}

// WithTTL sets the default entry lifetime. Zero means no expiration.
func WithTTL(ttl time.Duration) CacheOption {
	return func(s *CacheStorage) {
		s.ttl = ttl
	}
}

func WithLogger(logger *zap.Logger) CacheOption {
	return func(s *CacheStorage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewCacheStorage(cache Cache, opts ...CacheOption) (*CacheStorage, error) {
	if cache == nil {
		return nil, fmt.Errorf("%w: nil cache", pagekit.ErrInvalidConfig)
	}

	s := &CacheStorage{
		cache:  cache,
		prefix: DefaultPrefix,
		logger: zap.NewNop(),
		names:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.ttl < 0 {
		return nil, fmt.Errorf("%w: negative cursor ttl %s", pagekit.ErrInvalidConfig, s.ttl)
	}

	return s, nil
}

func (s *CacheStorage) key(name string) string {
	return s.prefix + name
}

func (s *CacheStorage) Store(ctx context.Context, position pagekit.Position) (string, error) {
	return s.StoreTTL(ctx, position, s.ttl)
}

// StoreTTL stores position with a lifetime overriding the default one.
func (s *CacheStorage) StoreTTL(ctx context.Context, position pagekit.Position, ttl time.Duration) (string, error) {
	if ttl < 0 {
		return "", fmt.Errorf("%w: negative cursor ttl %s", pagekit.ErrInvalidArgument, ttl)
	}

	data, err := json.Marshal(entry{Version: entryVersion, Position: position})
	if err != nil {
		return "", fmt.Errorf("cannot store cursor: %w", err)
	}

	name := uuid.NewString()
	if err = s.cache.Set(ctx, s.key(name), data, ttl); err != nil {
		return "", fmt.Errorf("cannot store cursor: %w", err)
	}

	s.mu.Lock()
	s.names[name] = struct{}{}
	s.mu.Unlock()

	return name, nil
}

// Retrieve loads a position. Entries not written by a CacheStorage read as
// absent.
func (s *CacheStorage) Retrieve(ctx context.Context, name string) (pagekit.Position, bool, error) {
	if name == "" {
		return nil, false, nil
	}

	data, err := s.cache.Get(ctx, s.key(name))
	if errors.Is(err, ErrCacheMiss) {
		s.forget(name)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cannot retrieve cursor: %w", err)
	}

	var e entry
	if err = json.Unmarshal(data, &e); err != nil || e.Version != entryVersion || e.Position == nil {
		s.logger.Debug("unreadable cursor entry", zap.String("name", name), zap.Error(err))
		return nil, false, nil
	}

	return e.Position, true, nil
}

func (s *CacheStorage) Delete(ctx context.Context, name string) error {
	if err := s.cache.Delete(ctx, s.key(name)); err != nil {
		return fmt.Errorf("cannot delete cursor: %w", err)
	}
	s.forget(name)

	return nil
}

func (s *CacheStorage) Clear(ctx context.Context) error {
	s.mu.Lock()
	keys := make([]string, 0, len(s.names))
	for name := range s.names {
		keys = append(keys, s.key(name))
	}
	s.names = make(map[string]struct{})
	s.mu.Unlock()

	if len(keys) == 0 {
		return nil
	}

	if err := s.cache.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("cannot clear cursors: %w", err)
	}

	return nil
}

// Count returns the number of issued positions still present in the cache.
// Expired names are dropped from the index on the way.
func (s *CacheStorage) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	names := make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	s.mu.Unlock()

	count := 0
	for _, name := range names {
		_, err := s.cache.Get(ctx, s.key(name))
		switch {
		case errors.Is(err, ErrCacheMiss):
			s.forget(name)
		case err != nil:
			return 0, fmt.Errorf("cannot count cursors: %w", err)
		default:
			count++
		}
	}

	return count, nil
}

func (s *CacheStorage) forget(name string) {
	s.mu.Lock()
	delete(s.names, name)
	s.mu.Unlock()
}

var _ pagekit.CursorStorage = (*CacheStorage)(nil)
