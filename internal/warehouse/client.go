// Package warehouse executes statements against the analytical warehouse.
//
// Every call opens its own connection and releases it before returning.
// Failures never escape as errors or panics: they are folded into an Outcome.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"snowflake_data/internal/config"
	"snowflake_data/internal/metrics"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/snowflakedb/gosnowflake"
)

const (
	DriverSnowflake = "snowflake"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite3"
)

// Outcome is the discriminated result of a single Execute call.
// Err is nil on success; Columns is empty when the statement produced no result set.
type Outcome struct {
	Columns []string
	Rows    [][]any
	Err     error
}

// OK reports whether the statement succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// RowCount returns the number of fetched rows.
func (o Outcome) RowCount() int { return len(o.Rows) }

// Error returns the failure message or an empty string.
func (o Outcome) Error() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Client runs one statement per connection.
type Client struct {
	driver     string
	dsn        string
	columnCase string
	logger     *logrus.Logger
}

// NewClient builds a client from the warehouse configuration.
func NewClient(cfg config.Config, logger *logrus.Logger) (*Client, error) {
	dsn, err := buildDSN(cfg.Warehouse)
	if err != nil {
		return nil, err
	}

	return &Client{
		driver:     cfg.Warehouse.Driver,
		dsn:        dsn,
		columnCase: cfg.Warehouse.ColumnCase,
		logger:     logger,
	}, nil
}

// Driver returns the database/sql driver name used for connections.
func (c *Client) Driver() string {
	return c.driver
}

// Execute opens a connection, runs query with positional args, fetches every
// row and closes the connection. name labels the call in logs and metrics.
func (c *Client) Execute(ctx context.Context, name, query string, args ...any) (out Outcome) {
	start := time.Now()
	logger := c.logger.WithFields(logrus.Fields{
		"query":  name,
		"driver": c.driver,
	})

	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Err: fmt.Errorf("%v", r)}
		}

		status := "success"
		if !out.OK() {
			status = "error"
			logger.WithError(out.Err).WithField("duration", time.Since(start)).Error("Warehouse query failed")
		} else {
			logger.WithFields(logrus.Fields{
				"rows":     out.RowCount(),
				"duration": time.Since(start),
			}).Debug("Warehouse query completed")
		}
		metrics.WarehouseQueries.WithLabelValues(name, status).Inc()
		metrics.WarehouseQueryDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	columns, rows, err := c.run(ctx, Rebind(c.driver, query), args)
	if err != nil {
		return Outcome{Err: err}
	}
	return Outcome{Columns: columns, Rows: rows}
}

func (c *Client) run(ctx context.Context, query string, args []any) ([]string, [][]any, error) {
	db, err := sql.Open(c.driver, c.dsn)
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	columns := make([]string, len(cols))
	for i, col := range cols {
		columns[i] = normalizeColumn(col, c.columnCase)
	}

	converters, err := columnConverters(c.driver, rows)
	if err != nil {
		return nil, nil, err
	}

	results := make([][]any, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range ptrs {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			if converters != nil {
				v = converters[i](v)
			}
			vals[i] = v
		}
		results = append(results, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return columns, results, nil
}

func normalizeColumn(name, mode string) string {
	switch mode {
	case "upper":
		return strings.ToUpper(name)
	case "preserve":
		return name
	default:
		return strings.ToLower(name)
	}
}

// Rebind rewrites '?' placeholders to the driver's native form.
// Only postgres needs rewriting; quoted literals are left untouched.
func Rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func buildDSN(cfg config.Warehouse) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.Driver != DriverSnowflake {
		return "", fmt.Errorf("warehouse DSN is required for driver %s", cfg.Driver)
	}

	dsn, err := gosnowflake.DSN(&gosnowflake.Config{
		Account:      cfg.Account,
		User:         cfg.User,
		Password:     cfg.Password,
		Warehouse:    cfg.Warehouse,
		Database:     cfg.Database,
		Schema:       cfg.Schema,
		Role:         cfg.Role,
		LoginTimeout: cfg.LoginTimeout,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build snowflake DSN: %w", err)
	}
	return dsn, nil
}
