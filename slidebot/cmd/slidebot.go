// Command-line entrypoint: converts one deck to a local PDF without Slack.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"slidebot/slidebot/config"
	"slidebot/slidebot/services/expander"
	"slidebot/slidebot/services/fetcher"
	"slidebot/slidebot/services/pdf"
	"slidebot/slidebot/services/scraper"
	"slidebot/slidebot/utils/color"
	httputils "slidebot/slidebot/utils/http"
	"slidebot/slidebot/utils/logging"
	"slidebot/slidebot/utils/types"

	"github.com/google/uuid"
)

func main() {
	args := os.Args[1:]
	if len(args) < 2 || args[0] != "convert" {
		fmt.Println("slidebot CLI usage:")
		fmt.Println("  slidebot convert <deck-url> [out.pdf]   # Download a deck as a PDF")
		os.Exit(1)
	}
	if fi, err := os.Stdout.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		color.Disable()
	}

	cfg := config.LoadConfig()
	logging.InitLogger(cfg.LogDir)
	defer logging.Sync()

	out := "slides.pdf"
	if len(args) >= 3 {
		out = args[2]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := convert(ctx, cfg, types.Link(args[1]), out); err != nil {
		fmt.Println(color.ColorError("✗ " + err.Error()))
		stop()
		os.Exit(1)
	}
}

func convert(ctx context.Context, cfg config.Config, link types.Link, out string) error {
	ctx = logging.WithRunID(ctx, "cli-"+uuid.NewString()[:8])
	client := httputils.NewClient(cfg.HTTPTimeout)

	renderer, closeRenderer, err := scraper.NewRenderer(cfg.ScrapeRenderer, client, cfg.HTTPTimeout)
	if err != nil {
		return err
	}
	defer closeRenderer()

	fmt.Println(color.ColorPrompt("→ scraping " + string(link)))
	scraped, err := scraper.NewScraper(renderer).Scrape(ctx, link)
	if err != nil {
		return err
	}
	if !scraped.HasContent() {
		return fmt.Errorf("no valid image links found on %s", link)
	}

	pages := expander.Expand(scraped.Candidates, scraped.TotalPages, cfg.ImageSize)
	if len(pages) == 0 {
		return fmt.Errorf("no valid image links found on %s", link)
	}
	fmt.Println(color.ColorInfo(fmt.Sprintf("  %d pages, fetching %d images", scraped.TotalPages, len(pages))))

	dir, err := os.MkdirTemp("", "slidebot-cli-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	results := fetcher.NewFetcher(client, cfg.FetchConcurrency).Fetch(ctx, dir, pages)
	summary := fetcher.Summarize(results)
	for _, res := range results {
		if !res.OK() {
			fmt.Println(color.ColorWarning(fmt.Sprintf("  page %d skipped: %v", res.Page.Index, res.Err)))
		}
	}
	images := fetcher.Downloaded(results)
	if len(images) == 0 {
		return fmt.Errorf("no images found on %s", link)
	}
	fmt.Println(color.ColorInfo("  " + summary.String()))

	abs, err := filepath.Abs(out)
	if err != nil {
		return err
	}
	layout, err := pdf.NewAssembler().Assemble(images, abs)
	if err != nil {
		return err
	}
	fmt.Println(color.ColorSuccess(fmt.Sprintf("✓ wrote %d pages to %s", len(layout), abs)))
	return nil
}
