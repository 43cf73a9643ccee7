// Package bot runs the slide deck pipeline for chat messages.
package bot

import (
	"context"

	"slidebot/slidebot/config"
	"slidebot/slidebot/services/expander"
	"slidebot/slidebot/services/publisher"
	"slidebot/slidebot/utils/types"
)

// Messenger is the chat surface the pipeline talks to.
type Messenger interface {
	// Reply posts text in the message's thread and returns a handle to it.
	Reply(ctx context.Context, msg types.Message, text string) (types.MessageRef, error)
	Delete(ctx context.Context, ref types.MessageRef) error
	// Send posts plain text to a channel.
	Send(ctx context.Context, channelID, text string) error
	SendCard(ctx context.Context, msg types.Message, card types.ReplyCard) error
}

type PageScraper interface {
	Scrape(ctx context.Context, link types.Link) (types.ScrapeResult, error)
}

type ImageFetcher interface {
	Fetch(ctx context.Context, dir string, pages []types.PageURL) []types.FetchResult
}

type DocumentAssembler interface {
	Assemble(images []types.Image, outPath string) ([]types.PageInfo, error)
}

// RunRecorder persists run outcomes.
type RunRecorder interface {
	Record(ctx context.Context, outcome types.RunOutcome) error
}

// LinkExtractor picks slide links out of allow-listed messages.
type LinkExtractor interface {
	Extract(channelID, text string) []types.Link
}

// Deps are the collaborators wired at startup.
type Deps struct {
	Messenger Messenger
	Extractor LinkExtractor
	Scraper   PageScraper
	Fetcher   ImageFetcher
	Assembler DocumentAssembler
	Uploader  publisher.Uploader
	Recorder  RunRecorder
	Events    *Hub
	Card      config.CardConfig
	WorkDir   string
	ImageSize int
}

// App is the process-wide context every pipeline run receives.
type App struct {
	messenger Messenger
	extractor LinkExtractor
	scraper   PageScraper
	fetcher   ImageFetcher
	assembler DocumentAssembler
	uploader  publisher.Uploader
	recorder  RunRecorder
	events    *Hub
	card      config.CardConfig
	workDir   string
	imageSize int
}

func NewApp(d Deps) *App {
	size := d.ImageSize
	if size <= 0 {
		size = expander.DefaultSize
	}
	return &App{
		messenger: d.Messenger,
		extractor: d.Extractor,
		scraper:   d.Scraper,
		fetcher:   d.Fetcher,
		assembler: d.Assembler,
		uploader:  d.Uploader,
		recorder:  d.Recorder,
		events:    d.Events,
		card:      d.Card,
		workDir:   d.WorkDir,
		imageSize: size,
	}
}

// Events returns the hub run transitions are published on.
func (a *App) Events() *Hub {
	return a.events
}
