package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strings"
	"time"

	"snowflake_data/internal/catalog"
	"snowflake_data/internal/result"
	"snowflake_data/internal/storage"

	"github.com/sirupsen/logrus"
)

// ErrUnknownQuery is returned when an export names a query missing from the catalog.
var ErrUnknownQuery = errors.New("unknown query")

// ErrInvalidParam is returned when an export parameter is not a scalar value.
var ErrInvalidParam = errors.New("parameters must be strings, numbers, booleans or null")

// ExportWriter renders a result set into a file.
type ExportWriter interface {
	Write(title string, data *result.Data) (io.Reader, error)
	MimeType() string
	Extension() string
}

// ExportInfo describes a stored export.
type ExportInfo struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Query    string `json:"query"`
	RowCount int    `json:"row_count"`
}

// ExportService runs catalog queries and stores their results as files.
type ExportService struct {
	data    *DataService
	writer  ExportWriter
	storage storage.Storage
	prefix  string
	logger  *logrus.Logger
	now     func() time.Time
}

// NewExportService создает сервис выгрузок
func NewExportService(data *DataService, writer ExportWriter, store storage.Storage, prefix string, logger *logrus.Logger) *ExportService {
	return &ExportService{
		data:    data,
		writer:  writer,
		storage: store,
		prefix:  strings.Trim(prefix, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

// MimeType returns the content type of stored exports.
func (s *ExportService) MimeType() string {
	return s.writer.MimeType()
}

// Create runs the named catalog query and stores the rendered result.
func (s *ExportService) Create(ctx context.Context, queryName string, params []any) (*ExportInfo, error) {
	q, ok := catalog.Lookup(queryName)
	if !ok {
		return nil, fmt.Errorf("%q: %w", queryName, ErrUnknownQuery)
	}

	args := make([]any, len(params))
	for i, p := range params {
		if !isScalar(p) {
			return nil, fmt.Errorf("parameter %d: %w", i+1, ErrInvalidParam)
		}
		args[i] = normalizeParam(p)
	}
	if _, err := q.Bind(args...); err != nil {
		return nil, err
	}

	logger := s.logger.WithField("query", q.Name)

	env := s.data.Run(ctx, q, args...)
	if !env.Success {
		return nil, &QueryError{Query: q.Name, Message: env.Error}
	}

	file, err := s.writer.Write(q.Name, env.Data)
	if err != nil {
		logger.WithError(err).Error("Failed to render export")
		return nil, fmt.Errorf("failed to render export: %w", err)
	}

	name := fmt.Sprintf("%s_%s.%s", q.Name, s.now().UTC().Format("20060102T150405.000000000"), s.writer.Extension())
	key := s.key(name)
	if err := s.storage.Save(ctx, key, file); err != nil {
		return nil, fmt.Errorf("failed to store export: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"key":  key,
		"rows": env.Data.RowCount,
	}).Info("Export stored")

	return &ExportInfo{
		Key:      key,
		Name:     name,
		Query:    q.Name,
		RowCount: env.Data.RowCount,
	}, nil
}

// List returns the stored exports.
func (s *ExportService) List(ctx context.Context) ([]storage.FileInfo, error) {
	prefix := ""
	if s.prefix != "" {
		prefix = s.prefix + "/"
	}
	return s.storage.List(ctx, prefix)
}

// Open returns the contents of the export called name.
func (s *ExportService) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return s.storage.Get(ctx, s.key(name))
}

// Delete removes the export called name.
func (s *ExportService) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	return s.storage.Delete(ctx, s.key(name))
}

func (s *ExportService) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.storage.JoinPath(s.prefix, name)
}

func validateName(name string) error {
	if name == "" || name != path.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("%q: %w", name, storage.ErrInvalidKey)
	}
	return nil
}

// JSON numbers decode as float64; integral values are bound as integers so
// keys compare as the warehouse expects.
func isScalar(p any) bool {
	switch p.(type) {
	case nil, string, bool, float64, int, int64, json.Number:
		return true
	default:
		return false
	}
}

func normalizeParam(p any) any {
	if f, ok := p.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f)
	}
	return p
}
