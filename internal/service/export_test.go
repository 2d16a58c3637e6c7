package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"snowflake_data/internal/catalog"
	"snowflake_data/internal/export"
	"snowflake_data/internal/storage"
	"snowflake_data/internal/warehouse"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setupExportService(t *testing.T, executor *MockExecutor) (*ExportService, storage.Storage) {
	logger := setupTestLogger()

	local, err := storage.NewLocalStorage(t.TempDir(), logger)
	require.NoError(t, err)
	store := storage.NewValidationMiddleware(local)

	svc := NewExportService(NewDataService(executor, logger), export.NewXLSXWriter(logger), store, "/exports/", logger)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 5, time.UTC) }
	return svc, store
}

func TestCreateExport(t *testing.T) {
	executor := new(MockExecutor)
	svc, store := setupExportService(t, executor)

	executor.On("Execute", mock.Anything, "favorite_side", mock.Anything, []any{int64(7)}).
		Return(rowsOutcome([]string{"customer_key", "side", "side_count"},
			[]any{int64(7), "Chips", int64(4)},
		))

	info, err := svc.Create(context.Background(), "favorite_side", []any{float64(7)})
	require.NoError(t, err)
	executor.AssertExpectations(t)

	assert.Equal(t, "favorite_side_20240301T123000.000000005.xlsx", info.Name)
	assert.Equal(t, "exports/"+info.Name, info.Key)
	assert.Equal(t, "favorite_side", info.Query)
	assert.Equal(t, 1, info.RowCount)

	reader, err := store.Get(context.Background(), info.Key)
	require.NoError(t, err)
	defer reader.Close()

	f, err := excelize.OpenReader(reader)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("favorite_side")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"customer_key", "side", "side_count"},
		{"7", "Chips", "4"},
	}, rows)
}

func TestCreateExportUnknownQuery(t *testing.T) {
	executor := new(MockExecutor)
	svc, _ := setupExportService(t, executor)

	_, err := svc.Create(context.Background(), "drop_everything", nil)
	assert.True(t, errors.Is(err, ErrUnknownQuery))
	executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateExportParameterMismatch(t *testing.T) {
	executor := new(MockExecutor)
	svc, _ := setupExportService(t, executor)

	_, err := svc.Create(context.Background(), "favorite_month", nil)
	assert.True(t, errors.Is(err, catalog.ErrParamCount))
	executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateExportRejectsNonScalarParams(t *testing.T) {
	executor := new(MockExecutor)
	svc, _ := setupExportService(t, executor)

	for _, param := range []any{map[string]any{"id": float64(1)}, []any{float64(1)}} {
		_, err := svc.Create(context.Background(), "favorite_side", []any{param})
		assert.True(t, errors.Is(err, ErrInvalidParam), "%v", err)
	}
	executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIsScalar(t *testing.T) {
	assert.True(t, isScalar(nil))
	assert.True(t, isScalar("555-0101"))
	assert.True(t, isScalar(float64(3)))
	assert.True(t, isScalar(true))
	assert.False(t, isScalar(map[string]any{}))
	assert.False(t, isScalar([]any{}))
}

func TestCreateExportQueryFailure(t *testing.T) {
	executor := new(MockExecutor)
	svc, store := setupExportService(t, executor)

	executor.On("Execute", mock.Anything, "list_customers", mock.Anything, mock.Anything).
		Return(warehouse.Outcome{Err: errors.New("Object 'SUBS_DIM_CUSTOMER' does not exist")})

	_, err := svc.Create(context.Background(), "list_customers", nil)

	var queryErr *QueryError
	require.True(t, errors.As(err, &queryErr))
	assert.Equal(t, "Object 'SUBS_DIM_CUSTOMER' does not exist", queryErr.Message)

	files, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCreateExportStorageFailure(t *testing.T) {
	executor := new(MockExecutor)
	mockStorage := new(MockStorage)
	logger := setupTestLogger()
	svc := NewExportService(NewDataService(executor, logger), export.NewXLSXWriter(logger), mockStorage, "exports", logger)

	executor.On("Execute", mock.Anything, "list_customers", mock.Anything, mock.Anything).
		Return(rowsOutcome([]string{"customer_key"}))
	mockStorage.On("JoinPath", mock.Anything).Return("exports/out.xlsx")
	mockStorage.On("Save", mock.Anything, "exports/out.xlsx", mock.Anything).Return(errors.New("disk full"))

	_, err := svc.Create(context.Background(), "list_customers", nil)
	assert.ErrorContains(t, err, "disk full")
	mockStorage.AssertExpectations(t)
}

func TestListOpenDeleteExports(t *testing.T) {
	executor := new(MockExecutor)
	svc, _ := setupExportService(t, executor)

	executor.On("Execute", mock.Anything, "list_customers", mock.Anything, mock.Anything).
		Return(rowsOutcome([]string{"customer_key"}, []any{int64(1)}))

	info, err := svc.Create(context.Background(), "list_customers", nil)
	require.NoError(t, err)

	files, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, info.Key, files[0].Key)
	assert.Positive(t, files[0].Size)

	reader, err := svc.Open(context.Background(), info.Name)
	require.NoError(t, err)
	content, err := io.ReadAll(reader)
	reader.Close()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "PK"))

	require.NoError(t, svc.Delete(context.Background(), info.Name))

	_, err = svc.Open(context.Background(), info.Name)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	assert.True(t, errors.Is(svc.Delete(context.Background(), info.Name), storage.ErrNotFound))
}

func TestExportNamesCannotEscapePrefix(t *testing.T) {
	executor := new(MockExecutor)
	svc, _ := setupExportService(t, executor)

	for _, name := range []string{"", ".", "..", "../secret.xlsx", "nested/file.xlsx"} {
		_, err := svc.Open(context.Background(), name)
		assert.True(t, errors.Is(err, storage.ErrInvalidKey), name)
		assert.True(t, errors.Is(svc.Delete(context.Background(), name), storage.ErrInvalidKey), name)
	}
}

func TestNormalizeParam(t *testing.T) {
	assert.Equal(t, int64(42), normalizeParam(float64(42)))
	assert.Equal(t, 4.5, normalizeParam(4.5))
	assert.Equal(t, "555-0101", normalizeParam("555-0101"))
	assert.Nil(t, normalizeParam(nil))
}
