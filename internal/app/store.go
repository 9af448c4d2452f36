package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/smashpoint/league/internal/infra"
	"github.com/smashpoint/league/internal/repository"
)

// OpenDocumentStore connects the document backend named by cfg.StoreBackend.
// The returned close func releases whatever the backend holds open.
func OpenDocumentStore(ctx context.Context, cfg *infra.Config, logger *slog.Logger) (repository.DocumentRepository, func(), error) {
	switch cfg.StoreBackend {
	case infra.StoreFile:
		logger.Info("using file document store", "path", cfg.DataFile)
		return repository.NewFileDocumentRepository(cfg.DataFile), func() {}, nil

	case infra.StorePostgres:
		if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		pool, err := infra.NewPostgresPool(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		logger.Info("connected to postgres")
		return repository.NewPgDocumentRepository(pool), pool.Close, nil

	case infra.StoreS3:
		client, err := infra.NewS3Client(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("create s3 client: %w", err)
		}
		logger.Info("using s3 document store", "bucket", cfg.S3Bucket, "key", cfg.S3Key)
		return repository.NewS3DocumentRepository(client, cfg.S3Bucket, cfg.S3Key), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
