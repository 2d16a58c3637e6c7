package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"snowflake_data/internal/warehouse"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var customerColumns = []string{"customer_key", "customerfname", "customerlname", "customerphone"}

func TestGetCustomersEndToEnd(t *testing.T) {
	srv := setupWarehouseServer(t)

	rec := do(t, srv, http.MethodGet, "/data/get_customers/", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Columns  []string         `json:"columns"`
		Results  []map[string]any `json:"results"`
		RowCount int              `json:"row_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, customerColumns, body.Columns)
	assert.Equal(t, 3, body.RowCount)
	assert.Len(t, body.Results, 3)
	for _, row := range body.Results {
		assert.Len(t, row, 4)
	}
}

func TestGetCustomersEmpty(t *testing.T) {
	executor := new(MockExecutor)
	srv := setupServer(t, executor, testConfig())

	executor.On("Execute", mock.Anything, "list_customers", mock.Anything, mock.Anything).
		Return(warehouse.Outcome{Columns: customerColumns, Rows: [][]any{}})

	rec := do(t, srv, http.MethodGet, "/data/get_customers/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"columns":["customer_key","customerfname","customerlname","customerphone"],"results":[],"row_count":0}`,
		rec.Body.String())
}

func TestGetCustomersFailure(t *testing.T) {
	executor := new(MockExecutor)
	srv := setupServer(t, executor, testConfig())

	executor.On("Execute", mock.Anything, "list_customers", mock.Anything, mock.Anything).
		Return(warehouse.Outcome{Err: errors.New("260008 (08004): failed to connect to db")})

	rec := do(t, srv, http.MethodGet, "/data/get_customers/", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"260008 (08004): failed to connect to db"}`, rec.Body.String())
}

func TestCustomerMetricsRequiresKey(t *testing.T) {
	executor := new(MockExecutor)
	srv := setupServer(t, executor, testConfig())

	rec := do(t, srv, http.MethodGet, "/data/customer_metrics/", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"customer_key is required"}`, rec.Body.String())
	executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCustomerMetricsPartialFailure(t *testing.T) {
	executor := new(MockExecutor)
	srv := setupServer(t, executor, testConfig())

	executor.On("Execute", mock.Anything, "most_visited_store", mock.Anything, []any{"1"}).
		Return(warehouse.Outcome{Err: errors.New("SQL compilation error: invalid identifier 'CITY'")})
	executor.On("Execute", mock.Anything, mock.Anything, mock.Anything, []any{"1"}).
		Return(warehouse.Outcome{Columns: []string{"value"}, Rows: [][]any{{int64(1)}}})

	rec := do(t, srv, http.MethodGet, "/data/customer_metrics/?customer_key=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Len(t, body, 4)
	assert.NotContains(t, body, "most_visited_store")
	for _, key := range []string{"favorite_sandwich", "favorite_side", "total_inches", "favorite_month"} {
		assert.Equal(t, map[string]any{"value": float64(1)}, body[key], key)
	}
	executor.AssertNumberOfCalls(t, "Execute", 5)
}

func TestCustomerMetricsEndToEnd(t *testing.T) {
	srv := setupWarehouseServer(t)

	rec := do(t, srv, http.MethodGet, "/data/customer_metrics/?customer_key=1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.JSONEq(t, `{
		"favorite_sandwich": {"customer_key": 1, "sandwich": "Italian BMT", "sandwich_count": 2},
		"favorite_side": {"customer_key": 1, "side": "Chips", "side_count": 2},
		"total_inches": {"customer_key": 1, "inches_of_sandwich": 30},
		"most_visited_store": {"customer_key": 1, "store_key": 1, "city": "Austin", "most_visited_count": 5},
		"favorite_month": {"customer_key": 1, "month": "January", "numofvisits": 3}
	}`, rec.Body.String())
}

func TestCustomerMetricsEmptyMetricsAreNull(t *testing.T) {
	srv := setupWarehouseServer(t)

	rec := do(t, srv, http.MethodGet, "/data/customer_metrics/?customer_key=3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Len(t, body, 5)
	assert.Nil(t, body["favorite_sandwich"])
	assert.Nil(t, body["total_inches"])
	assert.NotNil(t, body["favorite_side"])
}

func TestCustomerMetricsTiedMonthReturnsOne(t *testing.T) {
	srv := setupWarehouseServer(t)

	rec := do(t, srv, http.MethodGet, "/data/customer_metrics/?customer_key=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	month, ok := body["favorite_month"].(map[string]any)
	require.True(t, ok, "favorite_month should be a single object")
	assert.Contains(t, []any{"January", "February"}, month["month"])
	assert.Equal(t, float64(1), month["numofvisits"])
}

func TestFetchFromSnowflake(t *testing.T) {
	srv := setupWarehouseServer(t)

	rec := do(t, srv, http.MethodGet, "/data/fetch_from_snowflake/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Message string  `json:"message"`
		Tables  [][]any `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Connection successful", body.Message)
	assert.Contains(t, body.Tables, []any{"subs_dim_customer"})
}

func TestFetchFromSnowflakeFailure(t *testing.T) {
	executor := new(MockExecutor)
	srv := setupServer(t, executor, testConfig())

	executor.On("Execute", mock.Anything, "list_tables", "SHOW TABLES", mock.Anything).
		Return(warehouse.Outcome{Err: errors.New("390100 (08004): Incorrect username or password was specified.")})

	rec := do(t, srv, http.MethodGet, "/data/fetch_from_snowflake/", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"390100 (08004): Incorrect username or password was specified."}`, rec.Body.String())
}

func TestFavoriteSandwiches(t *testing.T) {
	srv := setupWarehouseServer(t)

	rec := do(t, srv, http.MethodGet, "/data/favorite_sandwiches/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"message": "Connection successful",
		"favorite_sandwiches": [[1, "Italian BMT", 2], [2, "Turkey Sub", 2]]
	}`, rec.Body.String())
}

func TestFavoriteSandwichesFailure(t *testing.T) {
	executor := new(MockExecutor)
	srv := setupServer(t, executor, testConfig())

	executor.On("Execute", mock.Anything, "favorite_sandwiches_all", mock.Anything, mock.Anything).
		Return(warehouse.Outcome{Err: errors.New("warehouse suspended")})

	rec := do(t, srv, http.MethodGet, "/data/favorite_sandwiches/", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"warehouse suspended"}`, rec.Body.String())
}

func TestGetCustomerByPhone(t *testing.T) {
	srv := setupWarehouseServer(t)

	rec := do(t, srv, http.MethodGet, "/data/get_customer_by_phone/?phone=555-0102", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		`{"customer_key":2,"customerfname":"Bob","customerlname":"Stone","customerphone":"555-0102"}`,
		string(trimNewline(rec.Body.Bytes())))
}

func TestGetCustomerByPhoneNotFound(t *testing.T) {
	srv := setupWarehouseServer(t)

	rec := do(t, srv, http.MethodGet, "/data/get_customer_by_phone/?phone=000-0000", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Customer not found"}`, rec.Body.String())
}

func TestGetCustomerByPhoneRequiresPhone(t *testing.T) {
	executor := new(MockExecutor)
	srv := setupServer(t, executor, testConfig())

	rec := do(t, srv, http.MethodGet, "/data/get_customer_by_phone/", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Phone number is required"}`, rec.Body.String())
	executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetCustomerByPhoneFailure(t *testing.T) {
	executor := new(MockExecutor)
	srv := setupServer(t, executor, testConfig())

	executor.On("Execute", mock.Anything, "customer_by_phone", mock.Anything, []any{"555-0101"}).
		Return(warehouse.Outcome{Err: errors.New("Object 'SUBS_DIM_CUSTOMER' does not exist or not authorized.")})

	rec := do(t, srv, http.MethodGet, "/data/get_customer_by_phone/?phone=555-0101", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Object 'SUBS_DIM_CUSTOMER' does not exist or not authorized."}`, rec.Body.String())
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && b[len(b)-1] == '\n' {
		b = b[:len(b)-1]
	}
	return b
}
