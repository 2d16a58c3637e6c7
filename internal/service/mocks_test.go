package service

import (
	"context"
	"io"
	"testing"

	"snowflake_data/internal/database"
	"snowflake_data/internal/models"
	"snowflake_data/internal/storage"
	"snowflake_data/internal/warehouse"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockExecutor is a mock implementation of the Executor interface
type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) Execute(ctx context.Context, name, query string, args ...any) warehouse.Outcome {
	called := m.Called(ctx, name, query, args)
	return called.Get(0).(warehouse.Outcome)
}

func (m *MockExecutor) Driver() string {
	return warehouse.DriverSnowflake
}

// MockStorage is a mock implementation of the Storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Save(ctx context.Context, key string, reader io.Reader) error {
	args := m.Called(ctx, key, reader)
	return args.Error(0)
}

func (m *MockStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if rc, ok := args.Get(0).(io.ReadCloser); ok {
		return rc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) List(ctx context.Context, prefix string) ([]storage.FileInfo, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).([]storage.FileInfo), args.Error(1)
}

func (m *MockStorage) JoinPath(elem ...string) string {
	args := m.Called(elem)
	return args.String(0)
}

func (m *MockStorage) ValidateKey(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func setupTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.DebugLevel)
	return logger
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.NewDatabase(database.Config{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.SnowflakeData{}))
	return db
}

func rowsOutcome(columns []string, rows ...[]any) warehouse.Outcome {
	if rows == nil {
		rows = [][]any{}
	}
	return warehouse.Outcome{Columns: columns, Rows: rows}
}
