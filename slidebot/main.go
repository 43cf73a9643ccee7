package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slidebot/slidebot/bot"
	"slidebot/slidebot/config"
	"slidebot/slidebot/controllers"
	"slidebot/slidebot/routes"
	"slidebot/slidebot/services/fetcher"
	"slidebot/slidebot/services/links"
	"slidebot/slidebot/services/pdf"
	"slidebot/slidebot/services/publisher"
	"slidebot/slidebot/services/scraper"
	"slidebot/slidebot/sources/psql"
	"slidebot/slidebot/sources/psql/dao"
	slackbot "slidebot/slidebot/sources/slack"
	"slidebot/slidebot/sources/storage"
	httputils "slidebot/slidebot/utils/http"
	"slidebot/slidebot/utils/logging"
	"slidebot/slidebot/utils/types"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logging.InitLogger(cfg.LogDir)
	defer logging.Sync()

	card, err := config.LoadCardConfig(cfg.CardConfig)
	if err != nil {
		logging.ErrorLogger.Error("card config error", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	checks := map[string]controllers.Pinger{}
	client := httputils.NewClient(cfg.HTTPTimeout)

	renderer, closeRenderer, err := scraper.NewRenderer(cfg.ScrapeRenderer, client, cfg.HTTPTimeout)
	if err != nil {
		logging.ErrorLogger.Error("renderer error", zap.Error(err))
		os.Exit(1)
	}
	defer closeRenderer()

	var uploader publisher.Uploader
	switch cfg.UploadBackend {
	case config.UploadMinIO:
		minioClient, err := storage.NewMinIOClient(startCtx, cfg)
		if err != nil {
			logging.ErrorLogger.Error("minio connection error", zap.Error(err))
			os.Exit(1)
		}
		checks["storage"] = minioClient
		uploader = publisher.NewObjectStoreUploader(minioClient, cfg.PresignExpiry)
	case config.UploadFileHost:
		uploader = publisher.NewFileHostUploader(client, cfg.UploadEndpoint)
	default:
		logging.ErrorLogger.Error("unknown upload backend", zap.String("backend", cfg.UploadBackend))
		os.Exit(1)
	}

	// run history is optional
	var recorder bot.RunRecorder
	var runLister controllers.RunLister
	if cfg.HistoryEnabled() {
		db, err := psql.NewDatabase(startCtx, cfg)
		if err != nil {
			logging.ErrorLogger.Error("database connection error", zap.Error(err))
			os.Exit(1)
		}
		defer db.Close()
		checks["database"] = db
		runDAO := dao.NewRunDAO(db.DB)
		recorder = runDAO
		runLister = runDAO
	}

	slackClient, err := slackbot.NewClient(slackbot.Config{
		BotToken: cfg.SlackBotToken,
		AppToken: cfg.SlackAppToken,
		Debug:    cfg.SlackDebug,
	})
	if err != nil {
		logging.ErrorLogger.Error("slack config error", zap.Error(err))
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		logging.ErrorLogger.Error("work dir error", zap.String("dir", cfg.WorkDir), zap.Error(err))
		os.Exit(1)
	}

	hub := bot.NewHub()
	app := bot.NewApp(bot.Deps{
		Messenger: slackbot.NewMessenger(slackClient),
		Extractor: links.NewExtractor(cfg.SlideHost, cfg.AllowedChannels),
		Scraper:   scraper.NewScraper(renderer),
		Fetcher:   fetcher.NewFetcher(client, cfg.FetchConcurrency),
		Assembler: pdf.NewAssembler(),
		Uploader:  uploader,
		Recorder:  recorder,
		Events:    hub,
		Card:      card,
		WorkDir:   cfg.WorkDir,
		ImageSize: cfg.ImageSize,
	})

	listener := slackbot.NewListener(slackClient, cfg.SlackDebug, func(ctx context.Context, msg types.Message) {
		app.HandleMessage(ctx, msg)
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Mount("/health", routes.HealthRoutes(controllers.NewHealthController(checks)))
	r.Mount("/runs", routes.RunsRoutes(controllers.NewRunsController(runLister), cfg))
	r.Mount("/events", routes.EventsRoutes(controllers.NewEventsController(hub), cfg))

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()
	logging.AppLogger.Info("ops server listening", zap.String("addr", cfg.HTTPAddr))

	go func() {
		if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.ErrorLogger.Error("slack listener stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logging.AppLogger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	listener.Wait()
	logging.AppLogger.Info("shutdown complete")
}
