package storage

import (
	"context"
	"fmt"

	"snowflake_data/internal/config"

	"github.com/sirupsen/logrus"
)

// NewStorageFromConfig создает хранилище из конфигурации и оборачивает его в middleware
func NewStorageFromConfig(cfg config.Config, logger *logrus.Logger) (Storage, error) {
	var (
		storage Storage
		err     error
	)

	switch cfg.Storage.Type {
	case StorageTypeS3:
		storage, err = NewS3Storage(context.Background(), S3Config{
			Region:         cfg.Storage.S3.Region,
			Bucket:         cfg.Storage.S3.Bucket,
			Endpoint:       cfg.Storage.S3.Endpoint,
			AccessKey:      cfg.Storage.S3.AccessKey,
			SecretKey:      cfg.Storage.S3.SecretKey,
			ForcePathStyle: cfg.Storage.S3.Endpoint != "",
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("ошибка создания S3 хранилища: %w", err)
		}

	case StorageTypeLocal:
		storage, err = NewLocalStorage(cfg.Storage.BasePath, logger)
		if err != nil {
			return nil, fmt.Errorf("ошибка создания локального хранилища: %w", err)
		}

	default:
		return nil, fmt.Errorf("неподдерживаемый тип хранилища: %s", cfg.Storage.Type)
	}

	return wrapWithMiddleware(storage, logger), nil
}

// wrapWithMiddleware оборачивает хранилище в middleware
func wrapWithMiddleware(storage Storage, logger *logrus.Logger) Storage {
	if logger != nil {
		storage = NewLoggingMiddleware(storage, logger)
	}
	return NewValidationMiddleware(storage)
}
