package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/eoforge/sathub/internal/storage"
)

// Sink uploads finished downloads into an object store, grouped under a
// per-run prefix.
type Sink struct {
	Store  storage.ObjectStore
	Bucket string
	Prefix string
}

// NewSink creates a sink writing under bucket/prefix.
func NewSink(store storage.ObjectStore, bucket, prefix string) *Sink {
	return &Sink{Store: store, Bucket: bucket, Prefix: prefix}
}

// NewRunID returns a fresh identifier grouping the uploads of one run.
func NewRunID() string {
	return "run-" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Upload stores one local file under the run prefix. Files already
// present with the same size are skipped.
func (s *Sink) Upload(ctx context.Context, runID, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	key := storage.JoinKey(s.Prefix, runID, filepath.Base(path))

	if existing, err := s.Store.StatObject(ctx, s.Bucket, key); err == nil && existing.Size == info.Size() {
		log.Debug().Str("key", key).Msg("object already uploaded, skipping")
		return key, nil
	}

	if err := s.Store.EnsureBucket(ctx, s.Bucket); err != nil {
		return "", err
	}
	if err := s.Store.PutFile(ctx, s.Bucket, key, path); err != nil {
		return "", err
	}
	log.Info().Str("key", key).Int64("bytes", info.Size()).Msg("uploaded to object store")
	return key, nil
}

// UploadAll stores several local files under one run prefix and returns
// their keys in input order.
func (s *Sink) UploadAll(ctx context.Context, runID string, paths ...string) ([]string, error) {
	keys := make([]string, 0, len(paths))
	for _, path := range paths {
		key, err := s.Upload(ctx, runID, path)
		if err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
