package scraper

import (
	"context"
	"fmt"
	"time"

	httputils "slidebot/slidebot/utils/http"

	"github.com/playwright-community/playwright-go"
)

// Renderer returns the HTML for a page along with its HTTP status.
type Renderer interface {
	Render(ctx context.Context, url string) (int, []byte, error)
}

// HTTPRenderer fetches the raw server response with one GET.
type HTTPRenderer struct {
	client httputils.Doer
}

func NewHTTPRenderer(client httputils.Doer) *HTTPRenderer {
	return &HTTPRenderer{client: client}
}

func (r *HTTPRenderer) Render(ctx context.Context, url string) (int, []byte, error) {
	return httputils.GetBody(ctx, r.client, url)
}

// PlaywrightRenderer loads the page in headless Chromium, for decks whose
// slide markup is only produced client side.
type PlaywrightRenderer struct {
	pw      *playwright.Playwright
	timeout time.Duration
}

// NewPlaywrightRenderer initializes Playwright
func NewPlaywrightRenderer(timeout time.Duration) (*PlaywrightRenderer, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &PlaywrightRenderer{pw: pw, timeout: timeout}, nil
}

// Close stops Playwright
func (r *PlaywrightRenderer) Close() {
	if r.pw != nil {
		r.pw.Stop()
	}
}

func (r *PlaywrightRenderer) Render(ctx context.Context, url string) (int, []byte, error) {
	browser, err := r.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args:     []string{"--disable-gpu", "--no-sandbox", "--disable-dev-shm-usage"},
	})
	if err != nil {
		return 0, nil, err
	}
	defer browser.Close()

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	})
	if err != nil {
		return 0, nil, err
	}
	defer bctx.Close()

	page, err := bctx.NewPage()
	if err != nil {
		return 0, nil, err
	}
	defer page.Close()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	resp, err := page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return 0, nil, err
	}
	status := 200
	if resp != nil {
		status = resp.Status()
	}

	content, err := page.Content()
	if err != nil {
		return status, nil, err
	}
	return status, []byte(content), nil
}

// NewRenderer picks the renderer named by kind ("http" or "playwright"). The
// returned func releases it.
func NewRenderer(kind string, client httputils.Doer, timeout time.Duration) (Renderer, func(), error) {
	switch kind {
	case "", "http":
		return NewHTTPRenderer(client), func() {}, nil
	case "playwright":
		r, err := NewPlaywrightRenderer(timeout)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown renderer %q", kind)
	}
}
