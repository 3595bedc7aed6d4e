package prerender

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prerender/internal/core/meta"
	"prerender/internal/core/settings"
	"prerender/internal/core/sitemap"
	"prerender/internal/core/snapshot"
)

const (
	googlebotUA = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
	chromeUA    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0"
)

type fixture struct {
	app      *fiber.App
	store    *snapshot.Store
	settings *settings.Store
	renderer *fakeRenderer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := snapshot.NewStore(nil)
	settingsStore := settings.NewStore(nil)
	sitemapSvc := sitemap.New()
	renderer := &fakeRenderer{docs: map[string]string{}}
	svc := NewService(renderer, store, sitemapSvc, nil, 1).
		WithMetaFactory(func(string) meta.Provider { return &fakeProvider{} })
	h := NewHandler(svc, store, settingsStore, sitemapSvc, nil)

	app := fiber.New()
	app.Post("/api/config", h.HandleConfig)
	app.Post("/api/sitemap", h.HandleSitemap)
	app.Post("/api/prerender", h.HandlePrerender)
	app.Get("/api/last-config", h.HandleLastConfig)
	app.Get("/prerender", h.HandleServe)

	return &fixture{app: app, store: store, settings: settingsStore, renderer: renderer}
}

func (f *fixture) get(t *testing.T, path, userAgent string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp
}

func (f *fixture) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestServeMiss(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	resp := f.get(t, "/prerender?url=https://unknown", googlebotUA)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeMissingURLParam(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	resp := f.get(t, "/prerender", googlebotUA)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeInvalidSnapshotIsMissEvenForAdmin(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.store.Put("https://a", "<!-- failed render -->")

	resp := f.get(t, "/prerender?url=https://a&admin=1", chromeUA)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.get(t, "/prerender?url=https://a", googlebotUA)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeRefusesHumans(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.store.Put("https://a", "<html>content</html>")

	resp := f.get(t, "/prerender?url=https://a", chromeUA)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body(t, resp), "bots only")

	// Absent user agent classifies as human as well.
	req := httptest.NewRequest(http.MethodGet, "/prerender?url=https://a", nil)
	req.Header.Del("User-Agent")
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServeBotsGetHTML(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.store.Put("https://a", "<html>content</html>")

	resp := f.get(t, "/prerender?url=https://a", googlebotUA)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Equal(t, "<html>content</html>", body(t, resp))
}

func TestServeAdminBypassesBotGate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.store.Put("https://a", "<html>content</html>")

	resp := f.get(t, "/prerender?url=https://a&admin=1", chromeUA)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html>content</html>", body(t, resp))
}

func TestConfigValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	resp := f.post(t, "/api/config", `{"sitemapUrl": "https://site/map"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.post(t, "/api/config", `{"metaApiBase": "https://meta"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConfigAcceptAndLastConfig(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	resp := f.get(t, "/api/last-config", "")
	var empty map[string]*string
	require.NoError(t, json.Unmarshal([]byte(body(t, resp)), &empty))
	assert.Nil(t, empty["sitemapUrl"])
	assert.Nil(t, empty["metaApiBase"])

	resp = f.post(t, "/api/config", `{"sitemapUrl": "https://site/map", "metaApiBase": "https://meta"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.get(t, "/api/last-config", "")
	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(body(t, resp)), &got))
	assert.Equal(t, "https://site/map", got["sitemapUrl"])
	assert.Equal(t, "https://meta", got["metaApiBase"])
}

func TestPrerenderValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	resp := f.post(t, "/api/prerender", `{"urls": ["https://a"]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.post(t, "/api/prerender", `{"metaApiBase": "https://meta"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.post(t, "/api/prerender", `{"urls": "not-a-list", "metaApiBase": "https://meta"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPrerenderRunsBatch(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.renderer.docs["https://a"] = "<html>a</html>"
	f.renderer.docs["https://b"] = "<html>b</html>"

	resp := f.post(t, "/api/prerender", `{"urls": ["https://a", "https://b"], "metaApiBase": "https://meta"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Success bool `json:"success"`
		Cached  int  `json:"cached"`
	}
	require.NoError(t, json.Unmarshal([]byte(body(t, resp)), &got))
	assert.True(t, got.Success)
	assert.Equal(t, 2, got.Cached)

	html, ok := f.store.Get("https://a")
	require.True(t, ok)
	assert.Equal(t, "<html>a</html>", html)
}

func TestSitemapEndpoint(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("https://a\n#skip\nhttps://b\n"))
	}))
	defer upstream.Close()

	f := newFixture(t)
	resp := f.post(t, "/api/sitemap", `{"sitemapUrl": "`+upstream.URL+`"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		URLs []string `json:"urls"`
	}
	require.NoError(t, json.Unmarshal([]byte(body(t, resp)), &got))
	assert.Equal(t, []string{"https://a", "https://b"}, got.URLs)
}

func TestSitemapEndpointValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	resp := f.post(t, "/api/sitemap", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSitemapEndpointUpstreamFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	resp := f.post(t, "/api/sitemap", `{"sitemapUrl": "http://127.0.0.1:1/map"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
