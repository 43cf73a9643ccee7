// slidebot/utils/http/httputils.go
package httputils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"time"

	"slidebot/slidebot/utils/logging"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Doer is the part of *http.Client the services need.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// NewClient builds a client with a cookie jar, so session cookies set by the
// deck page are sent along with the image requests.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	// cookiejar.New always returns a nil error
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return &http.Client{Timeout: timeout, Jar: jar}
}

func do(c Doer, req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.Do(req)
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	}
	if runID := logging.RunID(req.Context()); runID != "" {
		fields = append(fields, zap.String("run_id", runID))
	}
	if err != nil {
		logging.RequestLogger.Info("request failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	logging.RequestLogger.Info("request done", append(fields, zap.Int("status", resp.StatusCode))...)
	return resp, nil
}

// Get issues a GET with a browser User-Agent. The caller closes the body.
func Get(ctx context.Context, c Doer, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	return do(c, req)
}

// GetBody fetches url and returns the status and the full body.
func GetBody(ctx context.Context, c Doer, url string) (int, []byte, error) {
	resp, err := Get(ctx, c, url)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// PostFile uploads the file at path as multipart/form-data under field.
// The caller closes the body.
func PostFile(ctx context.Context, c Doer, url, field, path string) (*http.Response, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", userAgent)
	return do(c, req)
}
