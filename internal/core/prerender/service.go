package prerender

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"prerender/internal/core/job"
	"prerender/internal/core/meta"
	"prerender/internal/core/sitemap"
	"prerender/internal/core/snapshot"
	"prerender/internal/logger"
	tasks "prerender/internal/platform/tasks"
)

// Renderer drives one headless session for one URL and returns the final
// document. A non-empty document alongside an error is a partial result and
// still worth caching.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// MetaFactory builds a metadata provider for the base address supplied with
// each batch. Swapped for a fake in tests.
type MetaFactory func(base string) meta.Provider

type Service struct {
	renderer    Renderer
	store       *snapshot.Store
	sitemap     *sitemap.Service
	jobs        *job.Service
	newMeta     MetaFactory
	concurrency int
	log         *logger.Logger
}

func NewService(renderer Renderer, store *snapshot.Store, sitemapSvc *sitemap.Service, jobs *job.Service, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		renderer:    renderer,
		store:       store,
		sitemap:     sitemapSvc,
		jobs:        jobs,
		newMeta:     func(base string) meta.Provider { return meta.NewClient(base) },
		concurrency: concurrency,
		log:         logger.New("PrerenderService"),
	}
}

// WithMetaFactory overrides how per-batch metadata providers are built.
func (s *Service) WithMetaFactory(f MetaFactory) *Service {
	s.newMeta = f
	return s
}

type outcome struct {
	url    string
	stored bool
}

// RunBatch renders every URL through a bounded worker pool and writes the
// results into the snapshot store. URLs are dispatched in the order supplied;
// a failed URL degrades only its own snapshot and is never retried within the
// batch. The return value is the attempted count, always len(urls) —
// per-URL outcomes are observable only via subsequent snapshot lookups.
func (s *Service) RunBatch(ctx context.Context, urls []string, metaBase string) int {
	attempted, _ := s.runBatch(ctx, urls, metaBase)
	return attempted
}

func (s *Service) runBatch(ctx context.Context, urls []string, metaBase string) (int, int) {
	if len(urls) == 0 {
		return 0, 0
	}
	provider := s.newMeta(metaBase)

	work := make(chan string)
	results := make(chan outcome, len(urls))

	var wg sync.WaitGroup
	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range work {
				results <- s.renderOne(ctx, u, provider)
			}
		}()
	}

	go func() {
		for _, u := range urls {
			work <- u
		}
		close(work)
		wg.Wait()
		close(results)
	}()

	stored := 0
	for r := range results {
		if r.stored {
			stored++
		}
	}
	s.log.LogInfof("batch done: attempted=%d stored=%d", len(urls), stored)
	return len(urls), stored
}

// renderOne runs the full pipeline for a single URL. Every failure is
// contained here; nothing propagates to the rest of the batch.
func (s *Service) renderOne(ctx context.Context, url string, provider meta.Provider) outcome {
	html, err := s.renderer.Render(ctx, url)
	if err != nil {
		s.log.LogWarnf("render failed for %s: %v", url, err)
	}
	if html == "" {
		// Nothing captured at all; leave any previous snapshot in place.
		return outcome{url: url}
	}

	if provider != nil {
		rec, mErr := provider.Fetch(ctx, url)
		if mErr != nil {
			s.log.LogWarnf("metadata fetch failed for %s: %v", url, mErr)
		} else if rec != nil {
			html = meta.Inject(html, rec)
		}
	}

	s.store.Put(url, html)
	s.log.LogInfof("cached %s (%d bytes)", url, len(html))
	return outcome{url: url, stored: true}
}

// recachePayload travels with the queued recache task.
type recachePayload struct {
	JobID       string `json:"job_id"`
	SitemapURL  string `json:"sitemap_url"`
	MetaAPIBase string `json:"meta_api_base"`
}

// EnqueueRecache registers a pending job and queues a recache task for the
// given configuration snapshot.
func (s *Service) EnqueueRecache(ctx context.Context, t *tasks.Client, sitemapURL, metaBase string) (string, error) {
	jobID := uuid.NewString()
	if err := s.jobs.InitPending(ctx, jobID, sitemapURL); err != nil {
		return "", err
	}
	payload, _ := json.Marshal(recachePayload{JobID: jobID, SitemapURL: sitemapURL, MetaAPIBase: metaBase})
	if err := t.Enqueue(asynq.NewTask(tasks.TaskTypeRecache, payload), "default", 0); err != nil {
		return "", err
	}
	return jobID, nil
}

// HandleRecacheTask is the asynq handler for queued recache runs. A sitemap
// fetch failure skips the whole cycle: it is logged, the job is marked
// failed, and no retry happens until the next scheduled firing.
func (s *Service) HandleRecacheTask(ctx context.Context, task *asynq.Task) error {
	var p recachePayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return err
	}
	if err := s.jobs.SetProcessing(ctx, p.JobID); err != nil {
		s.log.LogWarnf("job %s: %v", p.JobID, err)
	}

	urls, err := s.sitemap.Resolve(ctx, p.SitemapURL)
	if err != nil {
		s.log.LogError("recache skipped: sitemap resolve failed", err)
		_ = s.jobs.Complete(ctx, p.JobID, job.StatusFailed, 0, 0)
		return nil
	}

	attempted, stored := s.runBatch(ctx, urls, p.MetaAPIBase)
	_ = s.jobs.Complete(ctx, p.JobID, job.StatusCompleted, attempted, stored)
	return nil
}
