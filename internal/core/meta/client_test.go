package meta

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientFetch(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://app.example.com/page", r.URL.Query().Get("url"))
		_ = json.NewEncoder(w).Encode(Record{
			Title:       "Page Title",
			Description: "A description",
			OG:          map[string]string{"type": "website"},
			Twitter:     map[string]string{"card": "summary"},
		})
	}))
	defer upstream.Close()

	rec, err := NewClient(upstream.URL).Fetch(context.Background(), "https://app.example.com/page")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Page Title", rec.Title)
	assert.Equal(t, "A description", rec.Description)
	assert.Equal(t, "website", rec.OG["type"])
	assert.Equal(t, "summary", rec.Twitter["card"])
}

func TestClientFetchUnknownURL(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	rec, err := NewClient(upstream.URL).Fetch(context.Background(), "https://app.example.com/unknown")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestClientFetchServerError(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	_, err := NewClient(upstream.URL).Fetch(context.Background(), "https://app.example.com/page")
	assert.Error(t, err)
}

func TestClientFetchUnreachable(t *testing.T) {
	t.Parallel()

	_, err := NewClient("http://127.0.0.1:1").Fetch(context.Background(), "https://app.example.com/page")
	assert.Error(t, err)
}
