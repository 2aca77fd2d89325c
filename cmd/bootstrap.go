package cmd

import (
	"fmt"

	"cloud-assets/core/bucket"
	"cloud-assets/core/bucket/local"
	"cloud-assets/core/bucket/s3"
	"cloud-assets/core/config"
	"cloud-assets/core/logger"
	"cloud-assets/core/storage"

	"go.uber.org/zap"
)

// env is what every command needs: configuration, a logger and the bucket.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	bucket bucket.Bucket
}

func bootstrap() (*env, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	b, err := openBucket(cfg, logg)
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, logger: logg, bucket: b}, nil
}

// openBucket builds the bucket selected by storage.driver.
func openBucket(cfg *config.Config, logg *zap.Logger) (bucket.Bucket, error) {
	switch cfg.Storage.Driver {
	case storage.DriverLocal:
		b, err := local.New(cfg.Server.AssetsPath, cfg.Storage.LocalRoot, logg)
		if err != nil {
			return nil, err
		}
		return b, nil
	case storage.DriverS3, "":
		b, err := s3.New(cfg.Server.AssetsPath, cfg.Storage, logg)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
