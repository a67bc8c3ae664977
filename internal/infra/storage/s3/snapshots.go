package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"villarent/internal/app/ingest"
)

var ErrSnapshotNotFound = errors.New("s3: snapshot not found")

type Options struct {
	Endpoint  string
	UseSSL    bool
	AccessKey string
	SecretKey string
	Bucket    string
}

// SnapshotStore keeps villa and calendar snapshots as JSON objects in an S3-compatible bucket.
type SnapshotStore struct {
	bucket         string
	client         *minio.Client
	logger         *slog.Logger
	bucketInitOnce sync.Once
	bucketInitErr  error
}

func NewSnapshotStore(opts Options, logger *slog.Logger) (*SnapshotStore, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	bucket := strings.TrimSpace(opts.Bucket)
	if bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	client, err := minio.New(parseEndpoint(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(opts.AccessKey), strings.TrimSpace(opts.SecretKey), ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	return &SnapshotStore{bucket: bucket, client: client, logger: logger}, nil
}

// Put encodes snap and stores it under key, creating the bucket on first use.
func (s *SnapshotStore) Put(ctx context.Context, key string, snap ingest.Snapshot) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := ingest.EncodeSnapshot(&buf, snap); err != nil {
		return fmt.Errorf("s3: encode snapshot: %w", err)
	}
	size := int64(buf.Len())
	if _, err := s.client.PutObject(ctx, s.bucket, key, &buf, size, minio.PutObjectOptions{
		ContentType: "application/json",
	}); err != nil {
		return fmt.Errorf("s3: put object: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("snapshot uploaded", "bucket", s.bucket, "key", key, "bytes", size, "villas", len(snap.Villas), "entries", len(snap.Calendar))
	}
	return nil
}

// Get downloads and decodes the snapshot stored under key.
func (s *SnapshotStore) Get(ctx context.Context, key string) (ingest.Snapshot, error) {
	key, err := cleanKey(key)
	if err != nil {
		return ingest.Snapshot{}, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return ingest.Snapshot{}, fmt.Errorf("s3: get object: %w", err)
	}
	defer obj.Close()
	if _, err := obj.Stat(); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return ingest.Snapshot{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, key)
		}
		return ingest.Snapshot{}, fmt.Errorf("s3: stat object: %w", err)
	}
	snap, err := ingest.DecodeSnapshot(obj)
	if err != nil {
		return ingest.Snapshot{}, fmt.Errorf("s3: decode snapshot %s: %w", key, err)
	}
	return snap, nil
}

func (s *SnapshotStore) ensureBucket(ctx context.Context) error {
	s.bucketInitOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.bucketInitErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			s.bucketInitErr = fmt.Errorf("s3: create bucket: %w", err)
		}
	})
	return s.bucketInitErr
}

func cleanKey(key string) (string, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("s3: object key is required")
	}
	return key, nil
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}
