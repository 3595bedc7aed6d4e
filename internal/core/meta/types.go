package meta

import "context"

// Record holds the per-URL fields returned by the metadata provider. It is
// transient: fetched for one render job, injected, never persisted.
type Record struct {
	Title       string            `json:"title,omitempty" yaml:"title,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	OG          map[string]string `json:"og,omitempty" yaml:"og,omitempty"`
	Twitter     map[string]string `json:"twitter,omitempty" yaml:"twitter,omitempty"`
}

// Provider abstracts the external metadata service so the render pipeline can
// be tested with deterministic fakes. A nil record with a nil error means the
// provider has nothing for the URL; that is not a failure.
type Provider interface {
	Fetch(ctx context.Context, url string) (*Record, error)
}
