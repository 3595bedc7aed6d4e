package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"

	"prerender/internal/config"
	"prerender/internal/logger"
)

// Service drives one isolated headless browsing session per Render call.
// Sessions never share cookies or storage across URLs, and the browser is
// torn down on every exit path. The viewport is pinned to a small mobile
// profile because the target application renders differently at desktop
// sizes.
type Service struct {
	cfg config.Config
	log *logger.Logger
}

const (
	viewportWidth  = 412
	viewportHeight = 732
)

func New(cfg config.Config) *Service {
	if cfg.DataDir != "" {
		_ = os.MkdirAll(cfg.DataDir, 0o755)
	}
	return &Service{cfg: cfg, log: logger.New("RenderService")}
}

// Render navigates url, waits for the application to reach a rendered state
// and returns the serialized document. On navigation or readiness errors it
// still returns whatever document state exists at failure time alongside the
// error; callers treat that as a best-effort, possibly invalid, snapshot.
func (s *Service) Render(_ context.Context, url string) (string, error) {
	pw, err := playwright.Run()
	if err != nil {
		return "", fmt.Errorf("playwright run: %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--disable-dev-shm-usage",
			"--disable-gpu",
		},
	})
	if err != nil {
		return "", fmt.Errorf("browser launch: %w", err)
	}
	defer browser.Close()

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport:          &playwright.Size{Width: viewportWidth, Height: viewportHeight},
		DeviceScaleFactor: playwright.Float(2.0),
		IsMobile:          playwright.Bool(true),
		HasTouch:          playwright.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("browser context: %w", err)
	}
	defer bctx.Close()

	page, err := bctx.NewPage()
	if err != nil {
		return "", fmt.Errorf("new page: %w", err)
	}

	if err := s.navigate(page, url); err != nil {
		s.log.LogWarnf("render degraded for %s: %v", url, err)
		s.screenshot(page, "debug-screenshot-error.png")
		// Capture whatever the page holds at failure time.
		html, _ := page.Content()
		return html, err
	}

	s.screenshot(page, "debug-screenshot.png")

	html, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("extract content: %w", err)
	}
	return html, nil
}

func (s *Service) navigate(page playwright.Page, url string) error {
	_, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(s.cfg.NavTimeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}

	// The application signals readiness by mounting its root element or a
	// canvas; anything else on screen is still the loading shell.
	locator := page.Locator(s.cfg.ReadySelector).First()
	if err := locator.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(s.cfg.ReadyTimeout.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("wait for %q: %w", s.cfg.ReadySelector, err)
	}

	// Late-binding rendering still mutates the DOM after the root appears.
	time.Sleep(s.cfg.SettleDelay)
	return nil
}

// screenshot saves a debugging capture under the data dir, best-effort.
func (s *Service) screenshot(page playwright.Page, name string) {
	if s.cfg.DataDir == "" {
		return
	}
	path := filepath.Join(s.cfg.DataDir, name)
	if _, err := page.Screenshot(playwright.PageScreenshotOptions{Path: playwright.String(path)}); err != nil {
		s.log.LogDebugf("screenshot failed: %v", err)
	}
}
