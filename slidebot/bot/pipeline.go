package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"slidebot/slidebot/services/expander"
	"slidebot/slidebot/services/fetcher"
	"slidebot/slidebot/services/publisher"
	"slidebot/slidebot/utils/logging"
	"slidebot/slidebot/utils/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// User-facing replies.
const (
	MsgPleaseWait    = "Please wait. We are retrieving your files :hourglass_flowing_sand:"
	MsgNoValidLinks  = "No valid image links found on the provided URL."
	MsgNoImages      = "No images found on the provided URL."
	MsgUploadFailed  = "An error occurred while uploading the file."
	msgErrorTemplate = "An error occurred: %s"
)

const documentName = "slides.pdf"

var (
	ErrNoContent = errors.New("no valid image links")
	ErrNoImages  = errors.New("no images downloaded")
)

// HandleMessage runs one pipeline per slide link in msg and waits for all of
// them. Outcomes are in link order; completion order is not.
func (a *App) HandleMessage(ctx context.Context, msg types.Message) []types.RunOutcome {
	links := a.extractor.Extract(msg.ChannelID, msg.Text)
	if len(links) == 0 {
		return nil
	}

	outcomes := make([]types.RunOutcome, len(links))
	var wg sync.WaitGroup
	for i, link := range links {
		wg.Add(1)
		go func(i int, link types.Link) {
			defer wg.Done()
			outcomes[i] = a.ProcessLink(ctx, msg, link)
		}(i, link)
	}
	wg.Wait()
	return outcomes
}

// run is the per-link pipeline state.
type run struct {
	app   *App
	id    string
	msg   types.Message
	link  types.Link
	dir   string
	state types.RunState

	// replies and notice deletion outlive cancellation of the run
	replyCtx context.Context
}

func (r *run) enter(state types.RunState, detail string) {
	r.state = state
	r.app.events.Publish(types.RunEvent{
		RunID:  r.id,
		Link:   r.link,
		State:  state,
		Detail: detail,
		At:     time.Now(),
	})
}

// ProcessLink runs scrape, expand, fetch, assemble and publish for one link.
// The "please wait" notice is removed exactly once whichever way the run ends.
func (a *App) ProcessLink(ctx context.Context, msg types.Message, link types.Link) (outcome types.RunOutcome) {
	r := &run{app: a, id: uuid.NewString(), msg: msg, link: link, state: types.StateIdle}
	ctx = logging.WithRunID(ctx, r.id)
	r.replyCtx = context.WithoutCancel(ctx)
	defer logging.LogDuration(ctx, "ProcessLink")()

	logging.AppLogger.Info("pipeline started",
		zap.String("run_id", r.id), zap.String("link", string(link)), zap.String("channel", msg.ChannelID))

	notice, err := a.messenger.Reply(ctx, msg, MsgPleaseWait)
	if err != nil {
		logging.ErrorLogger.Error("wait notice failed", zap.String("run_id", r.id), zap.Error(err))
	} else {
		defer func() {
			if err := a.messenger.Delete(r.replyCtx, notice); err != nil {
				logging.ErrorLogger.Error("wait notice delete failed", zap.String("run_id", r.id), zap.Error(err))
			}
		}()
	}

	defer func() {
		if rec := recover(); rec != nil {
			logging.ErrorLogger.Error("pipeline panic", zap.String("run_id", r.id), zap.Any("recover", rec))
			outcome = r.unhandled(fmt.Errorf("%v", rec))
		}
		a.finish(r, outcome)
	}()

	return r.execute(ctx)
}

func (r *run) outcome(state types.RunState, reply string, err error) types.RunOutcome {
	return types.RunOutcome{
		RunID:     r.id,
		ChannelID: r.msg.ChannelID,
		Link:      r.link,
		State:     state,
		Reply:     reply,
		Err:       err,
	}
}

// handled reports an expected dead end with a fixed message.
func (r *run) handled(reply string, err error) types.RunOutcome {
	r.send(reply)
	return r.outcome(types.StateFailed, reply, err)
}

func (r *run) unhandled(err error) types.RunOutcome {
	logging.ErrorLogger.Error("pipeline failed",
		zap.String("run_id", r.id), zap.String("stage", string(r.state)), zap.Error(err))
	reply := fmt.Sprintf(msgErrorTemplate, err.Error())
	r.send(reply)
	return r.outcome(types.StateFailed, reply, err)
}

func (r *run) send(text string) {
	if err := r.app.messenger.Send(r.replyCtx, r.msg.ChannelID, text); err != nil {
		logging.ErrorLogger.Error("reply failed", zap.String("run_id", r.id), zap.Error(err))
	}
}

func (r *run) execute(ctx context.Context) types.RunOutcome {
	a := r.app

	r.enter(types.StateScraping, "")
	scraped, err := a.scraper.Scrape(ctx, r.link)
	if err != nil {
		return r.unhandled(err)
	}
	if !scraped.HasContent() {
		return r.handled(MsgNoValidLinks, ErrNoContent)
	}

	r.enter(types.StateExpanding, fmt.Sprintf("%d pages", scraped.TotalPages))
	pages := expander.Expand(scraped.Candidates, scraped.TotalPages, a.imageSize)
	if len(pages) == 0 {
		return r.handled(MsgNoValidLinks, ErrNoContent)
	}

	r.enter(types.StateFetching, fmt.Sprintf("%d urls", len(pages)))
	r.dir = filepath.Join(a.workDir, "run-"+r.id)
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return r.unhandled(fmt.Errorf("create work dir: %w", err))
	}
	results := a.fetcher.Fetch(ctx, r.dir, pages)
	images := fetcher.Downloaded(results)
	defer r.cleanupImages(images)

	summary := fetcher.Summarize(results)
	logging.AppLogger.Info("fetch finished", zap.String("run_id", r.id), zap.String("summary", summary.String()))
	if len(images) == 0 {
		return r.handled(MsgNoImages, ErrNoImages)
	}

	r.enter(types.StateAssembling, summary.String())
	docPath := filepath.Join(r.dir, documentName)
	layout, err := a.assembler.Assemble(images, docPath)
	if err != nil {
		os.Remove(docPath)
		return r.unhandled(err)
	}

	r.enter(types.StatePublishing, fmt.Sprintf("%d pages", len(layout)))
	hosted, err := a.uploader.Upload(ctx, docPath)
	if publisher.IsUploadRejected(err) {
		// the document stays on disk
		logging.ErrorLogger.Error("upload rejected",
			zap.String("run_id", r.id), zap.String("document", docPath), zap.Error(err))
		out := r.handled(MsgUploadFailed, err)
		out.Pages = len(layout)
		return out
	}
	if err != nil {
		return r.unhandled(err)
	}

	if err := os.Remove(docPath); err != nil {
		logging.ErrorLogger.Error("document cleanup failed", zap.String("run_id", r.id), zap.Error(err))
	}
	card := publisher.BuildCard(a.card, r.msg, r.link, hosted)
	if err := a.messenger.SendCard(r.replyCtx, r.msg, card); err != nil {
		return r.unhandled(fmt.Errorf("send reply: %w", err))
	}

	out := r.outcome(types.StateDone, card.Title, nil)
	out.HostedLink = hosted
	out.Pages = len(layout)
	return out
}

// cleanupImages removes downloaded pages and the run dir when it is empty.
func (r *run) cleanupImages(images []types.Image) {
	for _, img := range images {
		if err := os.Remove(img.Path); err != nil && !os.IsNotExist(err) {
			logging.ErrorLogger.Error("image cleanup failed", zap.String("path", img.Path), zap.Error(err))
		}
	}
	// fails while a kept document is still inside
	_ = os.Remove(r.dir)
}

func (a *App) finish(r *run, outcome types.RunOutcome) {
	r.enter(outcome.State, outcome.Reply)
	logging.AppLogger.Info("pipeline finished",
		zap.String("run_id", r.id),
		zap.String("state", string(outcome.State)),
		zap.Int("pages", outcome.Pages),
		zap.String("hosted_link", outcome.HostedLink))

	if a.recorder == nil {
		return
	}
	if err := a.recorder.Record(r.replyCtx, outcome); err != nil {
		logging.ErrorLogger.Error("run record failed", zap.String("run_id", r.id), zap.Error(err))
	}
}
