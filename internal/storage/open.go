package storage

import (
	"context"
	"fmt"

	"github.com/iliyamo/insurance-lead-desk/internal/config"
)

// Open returns the file store selected by UPLOAD_DRIVER.
func Open(ctx context.Context, cfg config.Config) (FileStore, error) {
	switch cfg.UploadDriver {
	case config.UploadMinio:
		s, err := NewMinioStore(cfg.Minio)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure bucket %s: %w", cfg.Minio.Bucket, err)
		}
		return s, nil
	default:
		return NewLocalStore(cfg.UploadDir, cfg.BackendURL)
	}
}
