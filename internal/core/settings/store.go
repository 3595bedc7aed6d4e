package settings

import (
	"context"
	"sync"

	"prerender/internal/logger"
	rds "prerender/internal/platform/redis"
)

const persistKey = "prerender:last-config"

// Pair is the most recently accepted configuration snapshot: where to find
// the URL list and where to fetch metadata from.
type Pair struct {
	SitemapURL  string `json:"sitemapUrl"`
	MetaAPIBase string `json:"metaApiBase"`
}

// Store holds the last accepted Pair. Single occasional writer, many
// readers; the pair is always set and read as a unit so readers never see a
// half-updated value. Best-effort persisted to redis and reloaded at
// construction.
type Store struct {
	mu  sync.RWMutex
	cur *Pair

	redis *rds.Service
	log   *logger.Logger
}

func NewStore(redis *rds.Service) *Store {
	s := &Store{redis: redis, log: logger.New("Settings")}
	s.reload()
	return s
}

func (s *Store) reload() {
	if s.redis == nil {
		return
	}
	var p Pair
	if err := s.redis.CacheGet(context.Background(), persistKey, &p); err != nil {
		return
	}
	s.cur = &p
	s.log.LogInfof("restored config: sitemap=%s meta=%s", p.SitemapURL, p.MetaAPIBase)
}

// Accept replaces the current pair.
func (s *Store) Accept(p Pair) {
	s.mu.Lock()
	s.cur = &p
	s.mu.Unlock()

	if s.redis != nil {
		if err := s.redis.CacheSet(context.Background(), persistKey, p, 0); err != nil {
			s.log.LogWarnf("config persist failed: %v", err)
		}
	}
}

// Current returns the last accepted pair, or ok=false if none was ever
// accepted.
func (s *Store) Current() (Pair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return Pair{}, false
	}
	return *s.cur, true
}
