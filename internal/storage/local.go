package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// LocalStorage хранит файлы в локальной директории
type LocalStorage struct {
	basePath    string
	permissions os.FileMode
	logger      *logrus.Logger
}

// NewLocalStorage создает локальное хранилище, создавая базовую директорию
func NewLocalStorage(basePath string, logger *logrus.Logger) (*LocalStorage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base path %s: %w", basePath, err)
	}

	return &LocalStorage{
		basePath:    basePath,
		permissions: 0o755,
		logger:      logger,
	}, nil
}

// Save записывает файл атомарно через временный файл
func (l *LocalStorage) Save(ctx context.Context, key string, reader io.Reader) error {
	if err := l.ValidateKey(key); err != nil {
		return err
	}

	fullPath := l.getFullPath(key)
	if err := os.MkdirAll(filepath.Dir(fullPath), l.permissions); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// Get открывает файл для чтения
func (l *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := l.ValidateKey(key); err != nil {
		return nil, err
	}

	f, err := os.Open(l.getFullPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Delete удаляет файл
func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := l.ValidateKey(key); err != nil {
		return err
	}

	if err := os.Remove(l.getFullPath(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists проверяет наличие файла
func (l *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	if err := l.ValidateKey(key); err != nil {
		return false, err
	}

	_, err := os.Stat(l.getFullPath(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// List возвращает файлы с заданным префиксом, отсортированные по ключу
func (l *LocalStorage) List(ctx context.Context, prefix string) ([]FileInfo, error) {
	files := make([]FileInfo, 0)

	err := filepath.WalkDir(l.basePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}

		rel, err := filepath.Rel(l.basePath, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Key < files[j].Key })
	return files, nil
}

// JoinPath объединяет элементы ключа
func (l *LocalStorage) JoinPath(elem ...string) string {
	return path.Join(elem...)
}

// ValidateKey запрещает пустые и выходящие за базовую директорию ключи
func (l *LocalStorage) ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty key: %w", ErrInvalidKey)
	}
	clean := path.Clean(key)
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%s: %w", key, ErrInvalidKey)
	}
	return nil
}

func (l *LocalStorage) getFullPath(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(path.Clean(key)))
}
