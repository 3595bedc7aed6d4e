package job

// Job tracks one recache run: a scheduled batch over the last accepted
// sitemap. Stored in redis with a TTL; per-URL outcomes are observable only
// through the snapshot store, not here.
type Job struct {
	JobID      string `json:"job_id"`
	Status     Status `json:"status"`
	SitemapURL string `json:"sitemap_url,omitempty"`
	Attempted  int    `json:"attempted"`
	Stored     int    `json:"stored"`
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)
