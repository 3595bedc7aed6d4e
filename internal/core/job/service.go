package job

import (
	"context"
	"fmt"
	"time"

	rds "prerender/internal/platform/redis"
)

type Service struct{ redis *rds.Service }

func NewService(redis *rds.Service) *Service { return &Service{redis: redis} }

func (s *Service) Get(ctx context.Context, jobID string) (*Job, error) {
	var j Job
	if err := s.redis.CacheGet(ctx, key(jobID), &j); err != nil {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	return &j, nil
}

func (s *Service) InitPending(ctx context.Context, jobID, sitemapURL string) error {
	return s.store(ctx, Job{JobID: jobID, Status: StatusPending, SitemapURL: sitemapURL})
}

func (s *Service) SetProcessing(ctx context.Context, jobID string) error {
	j, err := s.Get(ctx, jobID)
	if err != nil {
		return err
	}
	j.Status = StatusProcessing
	return s.store(ctx, *j)
}

func (s *Service) Complete(ctx context.Context, jobID string, status Status, attempted, stored int) error {
	j, err := s.Get(ctx, jobID)
	if err != nil {
		j = &Job{JobID: jobID}
	}
	j.Status = status
	j.Attempted = attempted
	j.Stored = stored
	return s.store(ctx, *j)
}

func (s *Service) store(ctx context.Context, j Job) error {
	return s.redis.CacheSet(ctx, key(j.JobID), j, ttl(j.Status))
}

func key(id string) string { return "job:" + id }

func ttl(s Status) time.Duration {
	if s == StatusCompleted || s == StatusFailed {
		return time.Hour
	}
	return 10 * time.Minute
}
