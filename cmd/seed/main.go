package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"villarent/internal/app/ingest"
	"villarent/internal/domain/shared/daterange"
	"villarent/internal/infra/broker/kafka"
	"villarent/internal/infra/config"
	mongostore "villarent/internal/infra/db/mongo"
	"villarent/internal/infra/obs"
	"villarent/internal/infra/storage/s3"
)

const (
	targetMongo = "mongo"
	targetJSON  = "json"
	targetKafka = "kafka"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = config.LoadDotEnv()
	logger := obs.NewLogger(os.Getenv("APP_ENV"))
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg = config.Defaults()
	}

	var (
		target = flag.String("target", targetJSON, "mongo, json or kafka")
		villas = flag.Int("villas", 50, "number of villas")
		from   = flag.String("from", "2025-01-01", "first calendar day")
		to     = flag.String("to", "2025-12-31", "last calendar day (inclusive)")
		seed   = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		base   = flag.Int64("base-price", 0, "villa base price used for nights without a calendar row")
		out    = flag.String("out", cfg.FixturesPath, "output file for the json target")
		upload = flag.Bool("upload", false, "also upload the snapshot to S3")
		s3Key  = flag.String("s3-key", "fixtures/villas.json", "object key for -upload")
		batch  = flag.Int("batch", 500, "calendar rows per kafka event")
	)
	flag.Parse()

	if err := run(ctx, cfg, logger, runOptions{
		target: *target, villas: *villas, from: *from, to: *to, seed: *seed, basePrice: *base,
		out: *out, upload: *upload, s3Key: *s3Key, batch: *batch,
	}); err != nil {
		logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	target    string
	villas    int
	from, to  string
	seed      int64
	basePrice int64
	out       string
	upload    bool
	s3Key     string
	batch     int
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, opts runOptions) error {
	fromDay, err := daterange.ParseDay(opts.from)
	if err != nil {
		return fmt.Errorf("-from: %w", err)
	}
	toDay, err := daterange.ParseDay(opts.to)
	if err != nil {
		return fmt.Errorf("-to: %w", err)
	}
	snap, err := generate(generatorOptions{Villas: opts.villas, From: fromDay, To: toDay, Seed: opts.seed, BasePrice: opts.basePrice})
	if err != nil {
		return err
	}
	logger.Info("snapshot generated", "villas", len(snap.Villas), "entries", len(snap.Calendar), "seed", opts.seed)

	switch strings.ToLower(opts.target) {
	case targetJSON:
		if err := writeJSON(opts.out, snap); err != nil {
			return err
		}
		logger.Info("fixtures written", "path", opts.out)
	case targetMongo:
		if err := seedMongo(ctx, cfg, logger, snap); err != nil {
			return err
		}
	case targetKafka:
		if err := publishKafka(ctx, cfg, snap, opts.batch, logger); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown target %q", opts.target)
	}

	if opts.upload {
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
		if err := store.Put(ctx, opts.s3Key, snap); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, snap ingest.Snapshot) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create fixtures: %w", err)
	}
	if err := ingest.EncodeSnapshot(f, snap); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func seedMongo(ctx context.Context, cfg config.Config, logger *slog.Logger, snap ingest.Snapshot) error {
	if cfg.MongoURI == "" {
		return errors.New("MONGO_URI is required for the mongo target")
	}
	client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return err
	}
	defer client.Close(context.Background())
	if err := client.EnsureIndexes(ctx); err != nil {
		return err
	}

	villaRepo := mongostore.NewVillaRepository(client.DB)
	calRepo := mongostore.NewCalendarRepository(client.DB)
	if err := villaRepo.Reset(ctx); err != nil {
		return fmt.Errorf("reset villas: %w", err)
	}
	if err := calRepo.Reset(ctx); err != nil {
		return fmt.Errorf("reset calendar: %w", err)
	}
	h := &ingest.Handler{Villas: villaRepo, Calendar: calRepo, Logger: logger}
	stats, err := h.ApplySnapshot(ctx, snap)
	if err != nil {
		return err
	}
	logger.Info("database seeded", "villas", stats.Villas, "entries", stats.Entries)
	return nil
}

func publishKafka(ctx context.Context, cfg config.Config, snap ingest.Snapshot, batch int, logger *slog.Logger) error {
	if len(cfg.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required for the kafka target")
	}
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		return err
	}
	defer producer.Close()

	events := eventsFor(snap, batch, time.Now())
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode event %s: %w", ev.ID, err)
		}
		key := villaKey(ev)
		if err := producer.Publish(ctx, cfg.CalendarTopic, key, payload, map[string]string{"type": string(ev.Type)}); err != nil {
			return err
		}
	}
	logger.Info("events published", "topic", cfg.CalendarTopic, "events", len(events))
	return nil
}

// villaKey keeps every event of a villa on one partition.
func villaKey(ev ingest.Event) string {
	if ev.Villa != nil {
		return ev.Villa.ID
	}
	if len(ev.Entries) > 0 {
		return ev.Entries[0].VillaID
	}
	return ev.ID
}
