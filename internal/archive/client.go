package archive

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/aleister1102/pricefeed/internal/config"
	"google.golang.org/api/option"
)

// NewClient opens a GCS client from the archive config.
// Without a credentials file Application Default Credentials are used.
func NewClient(ctx context.Context, cfg config.ArchiveConfig) (*storage.Client, error) {
	if cfg.Bucket == "" {
		return nil, common.NewValidationError("bucket", cfg.Bucket, "archive bucket is not configured")
	}
	if cfg.CredentialsFile != "" {
		return storage.NewClient(ctx, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	return storage.NewClient(ctx)
}
