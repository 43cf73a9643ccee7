package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	httputils "slidebot/slidebot/utils/http"
	"slidebot/slidebot/utils/logging"
	"slidebot/slidebot/utils/types"

	"go.uber.org/zap"
)

// StatusError is a per-page failure caused by a non-success response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("download %s: status %d", e.URL, e.StatusCode)
}

// Fetcher downloads page images concurrently.
type Fetcher struct {
	client        httputils.Doer
	maxConcurrent int
}

// NewFetcher returns a fetcher. maxConcurrent <= 0 launches every download at once.
func NewFetcher(client httputils.Doer, maxConcurrent int) *Fetcher {
	return &Fetcher{client: client, maxConcurrent: maxConcurrent}
}

// ImagePath is where page index is stored inside dir. slot counts earlier
// URLs with the same index, so distinct templates never share a file.
func ImagePath(dir string, index, slot int) string {
	if slot == 0 {
		return filepath.Join(dir, fmt.Sprintf("image%d.jpg", index))
	}
	return filepath.Join(dir, fmt.Sprintf("image%d-%d.jpg", index, slot))
}

// Fetch downloads every page into dir and waits for all of them. The result
// slice is parallel to pages; failures are reported per item, never retried.
func (f *Fetcher) Fetch(ctx context.Context, dir string, pages []types.PageURL) []types.FetchResult {
	defer logging.LogDuration(ctx, "Fetcher.Fetch")()

	results := make([]types.FetchResult, len(pages))
	var sem chan struct{}
	if f.maxConcurrent > 0 {
		sem = make(chan struct{}, f.maxConcurrent)
	}

	seen := make(map[int]int, len(pages))
	var wg sync.WaitGroup
	for i, page := range pages {
		path := ImagePath(dir, page.Index, seen[page.Index])
		seen[page.Index]++

		wg.Add(1)
		go func(i int, page types.PageURL, path string) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}

			err := f.download(ctx, page.URL, path)
			if err != nil {
				logging.AppLogger.Info("page download skipped",
					zap.String("run_id", logging.RunID(ctx)),
					zap.Int("index", page.Index),
					zap.Error(err))
				results[i] = types.FetchResult{Page: page, Err: err}
				return
			}
			results[i] = types.FetchResult{Page: page, Image: types.Image{Index: page.Index, Path: path}}
		}(i, page, path)
	}
	wg.Wait()
	return results
}

func (f *Fetcher) download(ctx context.Context, url, path string) error {
	resp, err := httputils.Get(ctx, f.client, url)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}

// Downloaded keeps only the successful results.
func Downloaded(results []types.FetchResult) []types.Image {
	var images []types.Image
	for _, r := range results {
		if r.OK() {
			images = append(images, r.Image)
		}
	}
	return images
}

func Summarize(results []types.FetchResult) types.FetchSummary {
	s := types.FetchSummary{Attempted: len(results)}
	for _, r := range results {
		if r.OK() {
			s.Succeeded++
		}
	}
	return s
}
