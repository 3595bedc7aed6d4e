package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"

	"prerender/internal/core/prerender"
	"prerender/internal/core/settings"
	"prerender/internal/logger"
	tasks "prerender/internal/platform/tasks"
)

// Scheduler fires a recache on a fixed wall-clock cadence using the last
// accepted configuration snapshot. Firings are independent: a skipped or
// failed cycle never affects the next one.
type Scheduler struct {
	cron     *cron.Cron
	settings *settings.Store
	service  *prerender.Service
	tasks    *tasks.Client
	log      *logger.Logger
}

func New(spec string, settingsStore *settings.Store, service *prerender.Service, taskClient *tasks.Client) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		settings: settingsStore,
		service:  service,
		tasks:    taskClient,
		log:      logger.New("Scheduler"),
	}
	if _, err := s.cron.AddFunc(spec, s.fire); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() { s.cron.Start() }
func (s *Scheduler) Stop()  { s.cron.Stop() }

func (s *Scheduler) fire() {
	pair, ok := s.settings.Current()
	if !ok {
		s.log.LogDebug("recache skipped: no configuration accepted yet")
		return
	}
	jobID, err := s.service.EnqueueRecache(context.Background(), s.tasks, pair.SitemapURL, pair.MetaAPIBase)
	if err != nil {
		s.log.LogError("recache enqueue failed", err)
		return
	}
	s.log.LogInfof("recache queued: job=%s sitemap=%s", jobID, pair.SitemapURL)
}
