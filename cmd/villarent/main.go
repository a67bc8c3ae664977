package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	availabilityapp "villarent/internal/app/handlers/availability"
	quotesapp "villarent/internal/app/handlers/quotes"
	"villarent/internal/app/ingest"
	"villarent/internal/app/middleware"
	"villarent/internal/app/queries"
	"villarent/internal/app/uow"
	domaincalendar "villarent/internal/domain/calendar"
	"villarent/internal/domain/pricing"
	domainvillas "villarent/internal/domain/villas"
	"villarent/internal/infra/broker/kafka"
	rediscache "villarent/internal/infra/cache/redis"
	"villarent/internal/infra/config"
	mongostore "villarent/internal/infra/db/mongo"
	ginserver "villarent/internal/infra/http/gin"
	"villarent/internal/infra/obs"
	"villarent/internal/infra/storage/memory"
	"villarent/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dotenvErr := config.LoadDotEnv()
	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)
	slog.SetDefault(logger)
	if dotenvErr != nil {
		logger.Warn("dotenv load failed", "error", dotenvErr)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg = config.Defaults()
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", cfg.HTTPAddr)
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.close()

	if err := app.loadFixtures(ctx, cfg, logger); err != nil {
		logger.Warn("fixtures load failed", "error", err)
	}
	if len(cfg.KafkaBrokers) > 0 {
		go app.runIngestion(ctx, cfg, logger)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Checks: app.checks}, app.handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageDriver)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	checks   map[string]obs.Check
	ingest   *ingest.Handler
	closers  []func()
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{checks: map[string]obs.Check{}}

	var (
		factory   uow.UoWFactory
		villaW    domainvillas.Writer
		calendarW domaincalendar.Writer
		inbox     ingest.Inbox
	)
	switch cfg.StorageDriver {
	case config.DriverMongo:
		client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func() { _ = client.Close(context.Background()) })
		if err := client.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		factory = mongostore.NewFactory(client.DB)
		villaW = mongostore.NewVillaRepository(client.DB)
		calendarW = mongostore.NewCalendarRepository(client.DB)
		inbox = mongostore.NewInbox(client.DB, cfg.KafkaGroupID)
		app.checks["mongo"] = client.Ping
	default:
		villaRepo := memory.NewVillaRepository()
		calRepo := memory.NewCalendarRepository()
		factory = memory.Factory{VillasRepo: villaRepo, CalendarRepo: calRepo}
		villaW = villaRepo
		calendarW = calRepo
		inbox = memory.NewInbox()
	}

	var (
		resultCache middleware.ResultCache
		invalidator ingest.Invalidator
	)
	if cfg.RedisAddr != "" {
		cache, err := rediscache.Connect(ctx, rediscache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			logger.Warn("redis unavailable, query cache disabled", "error", err)
		} else {
			resultCache = cache
			invalidator = cache
			app.checks["redis"] = cache.Ping
			app.closers = append(app.closers, func() { _ = cache.Close() })
		}
	}

	app.ingest = &ingest.Handler{
		Villas:   villaW,
		Calendar: calendarW,
		Inbox:    inbox,
		Cache:    invalidator,
		Logger:   logger,
	}

	calculator := pricing.Calculator{TaxRate: cfg.GSTRate}
	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.ListVillasQuery{}.Key(), &availabilityapp.ListVillasHandler{
		UoWFactory: factory,
	})
	queries.RegisterHandler(queryBus, quotesapp.GetQuoteQuery{}.Key(), &quotesapp.GetQuoteHandler{
		UoWFactory: factory,
		Calculator: &calculator,
	})
	logger.Debug("queries registered", "keys", queryBus.Keys())

	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryCache(resultCache, cfg.CacheTTL, logger),
	)

	app.handlers = ginserver.Handlers{
		Villas: ginserver.VillaHandler{Queries: queryBusWithMiddleware, Logger: logger},
	}
	return app, nil
}

// loadFixtures imports a snapshot from S3 when FIXTURES_S3_KEY is set, otherwise
// from the fixtures file in memory mode.
func (a *application) loadFixtures(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	var (
		snap   ingest.Snapshot
		source string
	)
	switch {
	case cfg.FixturesS3Key != "":
		store, err := s3.NewSnapshotStore(s3.Options{
			Endpoint:  cfg.S3Endpoint,
			UseSSL:    cfg.S3UseSSL,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
		}, logger)
		if err != nil {
			return err
		}
		if snap, err = store.Get(ctx, cfg.FixturesS3Key); err != nil {
			return err
		}
		source = "s3://" + cfg.S3Bucket + "/" + cfg.FixturesS3Key
	case cfg.StorageDriver == config.DriverMemory:
		path := resolveFixturesPath(cfg.FixturesPath)
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.Info("fixtures file not found, skipping", "path", path)
				return nil
			}
			return fmt.Errorf("open fixtures: %w", err)
		}
		defer f.Close()
		if snap, err = ingest.DecodeSnapshot(f); err != nil {
			return err
		}
		source = path
	default:
		return nil
	}

	stats, err := a.ingest.ApplySnapshot(ctx, snap)
	if err != nil {
		return fmt.Errorf("apply fixtures from %s: %w", source, err)
	}
	logger.Info("fixtures imported", "source", source, "villas", stats.Villas, "entries", stats.Entries)
	return nil
}

func (a *application) runIngestion(ctx context.Context, cfg config.Config, logger *slog.Logger) {
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, nil, kafka.PayloadHandler(a.ingest.HandleMessage), logger)
	if err != nil {
		logger.Error("ingestion consumer failed to start", "error", err)
		return
	}
	defer consumer.Close()
	logger.Info("ingestion consumer started", "topic", cfg.CalendarTopic, "group", cfg.KafkaGroupID)
	if err := consumer.Run(ctx, []string{cfg.CalendarTopic}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("ingestion consumer stopped", "error", err)
	}
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func resolveFixturesPath(path string) string {
	if path == "" {
		path = filepath.Join("data", "villas.json")
	}
	if _, err := os.Stat(path); err == nil || filepath.IsAbs(path) {
		return path
	}
	if alt := filepath.Join("..", "..", path); fileExists(alt) {
		return alt
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
