package websearch

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	redisclient "github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/redis"
)

// CachedSearcher fronts a Searcher with a Redis cache keyed by the
// normalized query, so repeated runs do not burn search quota on errors
// already looked up. Cache failures fall through to the live search.
type CachedSearcher struct {
	inner Searcher
	cache *redisclient.Client
	ttl   time.Duration
	log   *slog.Logger
}

// NewCachedSearcher wraps a searcher with a cache.
func NewCachedSearcher(inner Searcher, cache *redisclient.Client, ttl time.Duration, log *slog.Logger) *CachedSearcher {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &CachedSearcher{inner: inner, cache: cache, ttl: ttl, log: log}
}

func cacheKey(query string) string {
	return "websearch:" + query
}

// Search checks the cache before calling the inner searcher.
func (s *CachedSearcher) Search(ctx context.Context, query string) ([]Snippet, error) {
	key := cacheKey(query)

	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.Debug("search cache read failed", "error", err)
	} else if ok {
		var snippets []Snippet
		if err := json.Unmarshal([]byte(raw), &snippets); err == nil {
			return snippets, nil
		}
	}

	snippets, err := s.inner.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(snippets); err == nil {
		if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
			s.log.Debug("search cache write failed", "error", err)
		}
	}
	return snippets, nil
}
