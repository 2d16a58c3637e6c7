// Package warehousetest provides a seeded sqlite warehouse for tests.
//
// Seed data (customer 1 is the "busy" customer):
//
//	customer 1: favorite sandwich Italian BMT (2), side Chips (2), 30 inches,
//	            Austin (5 visits), January (3 visits)
//	customer 2: favorite sandwich Turkey Sub (2), no sides, 12 inches,
//	            Dallas (2 visits), January and February tied (1 visit each)
//	customer 3: no sandwiches, side Chips (1), 0 inches, Austin (1), March (1)
package warehousetest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"snowflake_data/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

var schema = []string{
	`CREATE TABLE subs_dim_customer (
		customer_key INTEGER PRIMARY KEY,
		customerfname TEXT,
		customerlname TEXT,
		customerphone TEXT
	)`,
	`CREATE TABLE subs_dim_product (
		product_key INTEGER PRIMARY KEY,
		productname TEXT,
		breadtype TEXT,
		length INTEGER
	)`,
	`CREATE TABLE subs_dim_store (
		store_key INTEGER PRIMARY KEY,
		city TEXT
	)`,
	`CREATE TABLE subs_dim_date (
		date_key INTEGER PRIMARY KEY,
		month TEXT
	)`,
	`CREATE TABLE subs_fact_orderline (
		orderline_key INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_key INTEGER,
		product_key INTEGER,
		store_key INTEGER,
		date_key INTEGER
	)`,
}

var seed = []string{
	`INSERT INTO subs_dim_customer VALUES
		(1, 'Ann', 'Lee', '555-0101'),
		(2, 'Bob', 'Stone', '555-0102'),
		(3, 'Cy', 'Park', '555-0103')`,
	`INSERT INTO subs_dim_product VALUES
		(1, 'Italian BMT', 'Italian', 12),
		(2, 'Turkey Sub', 'Wheat', 6),
		(3, 'Chips', NULL, 0),
		(4, 'Cookie', NULL, 0)`,
	`INSERT INTO subs_dim_store VALUES (1, 'Austin'), (2, 'Dallas')`,
	`INSERT INTO subs_dim_date VALUES (1, 'January'), (2, 'February'), (3, 'March')`,
	`INSERT INTO subs_fact_orderline (customer_key, product_key, store_key, date_key) VALUES
		(1, 1, 1, 1),
		(1, 1, 1, 1),
		(1, 2, 2, 2),
		(1, 3, 1, 2),
		(1, 3, 1, 3),
		(1, 4, 1, 1),
		(2, 2, 2, 1),
		(2, 2, 2, 2),
		(3, 3, 1, 3)`,
}

// NewSQLite creates a seeded sqlite database file in a temporary directory
// and returns its DSN.
func NewSQLite(t testing.TB) string {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "warehouse.db")
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open warehouse: %v", err)
	}
	defer db.Close()

	for _, stmt := range append(append([]string{}, schema...), seed...) {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed warehouse: %v", err)
		}
	}
	return dsn
}

// Config returns an application config pointing the warehouse at a fresh
// seeded sqlite database.
func Config(t testing.TB) config.Config {
	t.Helper()

	return config.Config{
		Warehouse: config.Warehouse{
			Driver:     "sqlite3",
			DSN:        NewSQLite(t),
			ColumnCase: "lower",
		},
		Metrics: config.Metrics{Path: "/metrics"},
	}
}
