// Package storage keeps uploaded report files.  Keys are flat names
// generated by the server; callers never pass client input as a key.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/iliyamo/report-vault/internal/config"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrInvalidKey = errors.New("invalid blob key")
)

// Store is a flat key/value blob store.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes key.  Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by BLOB_BACKEND.
func New(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.BlobBackend {
	case "", "local":
		return NewLocalStore(cfg.UploadDir)
	case "s3":
		return NewS3Store(ctx, S3Options{
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3RootUser,
			SecretKey:    cfg.S3RootPassword,
		})
	default:
		return nil, fmt.Errorf("unsupported blob backend %q", cfg.BlobBackend)
	}
}

func validKey(key string) error {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, `/\`) || strings.ContainsRune(key, 0) {
		return ErrInvalidKey
	}
	return nil
}
