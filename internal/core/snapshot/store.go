package snapshot

import (
	"context"
	"strings"
	"sync"

	"prerender/internal/logger"
	rds "prerender/internal/platform/redis"
)

const persistKey = "prerender:snapshots"

// Store maps canonical URL to rendered HTML. Writes are unconditional
// per-key replacements; entries are never evicted. When a redis service is
// provided, writes flow through to a redis hash and the map is reloaded from
// it at construction, so snapshots survive restarts. Redis failures degrade
// to memory-only operation.
type Store struct {
	mu    sync.RWMutex
	items map[string]string

	redis *rds.Service
	log   *logger.Logger
}

func NewStore(redis *rds.Service) *Store {
	s := &Store{
		items: make(map[string]string),
		redis: redis,
		log:   logger.New("SnapshotStore"),
	}
	s.reload()
	return s
}

func (s *Store) reload() {
	if s.redis == nil {
		return
	}
	saved, err := s.redis.HashGetAll(context.Background(), persistKey)
	if err != nil {
		s.log.LogWarnf("snapshot reload skipped: %v", err)
		return
	}
	for url, html := range saved {
		s.items[url] = html
	}
	if len(saved) > 0 {
		s.log.LogInfof("restored %d snapshots", len(saved))
	}
}

// Put overwrites the snapshot for url. There is no merge or versioning.
func (s *Store) Put(url, html string) {
	s.mu.Lock()
	s.items[url] = html
	s.mu.Unlock()

	if s.redis != nil {
		if err := s.redis.HashSet(context.Background(), persistKey, url, html); err != nil {
			s.log.LogWarnf("snapshot persist failed for %s: %v", url, err)
		}
	}
}

// Get returns the stored HTML for url. Callers must still check IsValid
// before serving; presence alone does not mean the render succeeded.
func (s *Store) Get(url string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	html, ok := s.items[url]
	return html, ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// IsValid reports whether cached HTML is servable. Empty or whitespace-only
// documents are failures, as is a document that opens with an HTML comment,
// which is what a failed render leaves behind.
func IsValid(html string) bool {
	trimmed := strings.TrimSpace(html)
	if trimmed == "" {
		return false
	}
	return !strings.HasPrefix(trimmed, "<!--")
}
