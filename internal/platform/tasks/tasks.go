package tasks

import (
	"github.com/hibiken/asynq"

	"prerender/internal/platform/redis"
)

// TaskTypeRecache is the queued task that re-renders every URL from the last
// accepted sitemap. Enqueued by the scheduler, handled by the prerender
// service's worker handler.
const TaskTypeRecache = "prerender:recache"

type Client struct{ c *asynq.Client }

func New(r *redis.Service) *Client { return &Client{c: asynq.NewClient(r.AsynqRedisOpt())} }

func (t *Client) Enqueue(task *asynq.Task, queue string, maxRetries int) error {
	_, err := t.c.Enqueue(task, asynq.Queue(queue), asynq.MaxRetry(maxRetries))
	return err
}

func (t *Client) Close() error { return t.c.Close() }
