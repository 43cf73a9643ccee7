// slidebot/utils/types/slides.go
package types

import "fmt"

// Link is a slide deck URL found in a chat message.
type Link string

// ScrapeResult is what the page scraper found. TotalPages is 0 when the
// page-count indicator was missing.
type ScrapeResult struct {
	Link       Link
	Candidates []string
	TotalPages int
}

// HasContent reports whether the scrape produced a usable page count.
func (r ScrapeResult) HasContent() bool {
	return r.TotalPages > 0
}

// PageURL is one expanded per-page image URL.
type PageURL struct {
	Index int    `json:"index"`
	URL   string `json:"url"`
}

// Image is a downloaded page image on local disk.
type Image struct {
	Index int    `json:"index"`
	Path  string `json:"path"`
}

// FetchResult is the outcome of downloading a single page. Exactly one of
// Image or Err is meaningful.
type FetchResult struct {
	Page  PageURL
	Image Image
	Err   error
}

func (r FetchResult) OK() bool { return r.Err == nil }

// FetchSummary separates "nothing attempted" from "attempted, all failed".
type FetchSummary struct {
	Attempted int
	Succeeded int
}

func (s FetchSummary) String() string {
	return fmt.Sprintf("%d/%d pages downloaded", s.Succeeded, s.Attempted)
}

// PageInfo describes one page written to the assembled document.
type PageInfo struct {
	Index  int     `json:"index"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
