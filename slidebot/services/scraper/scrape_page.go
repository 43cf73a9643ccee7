package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"slidebot/slidebot/utils/logging"
	"slidebot/slidebot/utils/types"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	pageNumberSelector = `span[data-cy="page-number"]`
	slideImageSelector = `img.vertical-slide-image`
)

var (
	pageCountPattern = regexp.MustCompile(`of (\d+)`)
	srcsetURLPattern = regexp.MustCompile(`https?://[^\s,]+`)
)

// ErrNoPageCount means the page-number indicator exists but carries no "of N".
var ErrNoPageCount = errors.New("page number indicator has no page count")

// Scraper pulls slide image candidates and the page count out of a deck page.
type Scraper struct {
	renderer Renderer
}

func NewScraper(renderer Renderer) *Scraper {
	return &Scraper{renderer: renderer}
}

// Scrape fetches link and parses it. A non-success status yields an empty
// result rather than an error.
func (s *Scraper) Scrape(ctx context.Context, link types.Link) (types.ScrapeResult, error) {
	defer logging.LogDuration(ctx, "Scraper.Scrape")()

	result := types.ScrapeResult{Link: link}
	status, body, err := s.renderer.Render(ctx, string(link))
	if err != nil {
		return result, fmt.Errorf("fetch %s: %w", link, err)
	}
	if status != http.StatusOK {
		logging.AppLogger.Info("deck page returned no data",
			zap.String("link", string(link)), zap.Int("status", status))
		return result, nil
	}

	total, candidates, err := ParsePage(body)
	if err != nil {
		return result, err
	}
	result.TotalPages = total
	result.Candidates = candidates
	return result, nil
}

// ParsePage extracts the total page count and every srcset image URL. Image
// candidates are only collected when the page-count indicator is present.
func ParsePage(body []byte) (int, []string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("parse html: %w", err)
	}

	indicator := doc.Find(pageNumberSelector).First()
	if indicator.Length() == 0 {
		return 0, nil, nil
	}
	m := pageCountPattern.FindStringSubmatch(indicator.Text())
	if m == nil {
		return 0, nil, fmt.Errorf("%w: %q", ErrNoPageCount, strings.TrimSpace(indicator.Text()))
	}
	total, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrNoPageCount, err)
	}

	var candidates []string
	doc.Find(slideImageSelector).Each(func(_ int, img *goquery.Selection) {
		srcset, ok := img.Attr("srcset")
		if !ok || srcset == "" {
			return
		}
		candidates = append(candidates, srcsetURLPattern.FindAllString(srcset, -1)...)
	})
	return total, candidates, nil
}
