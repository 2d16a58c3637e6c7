package service

import (
	"bytes"
	"context"
	"encoding/json"

	"snowflake_data/internal/catalog"
	"snowflake_data/internal/result"

	"github.com/sirupsen/logrus"
)

// MetricStatus is the outcome of one customer metric sub-query.
type MetricStatus string

const (
	MetricFound  MetricStatus = "found"
	MetricEmpty  MetricStatus = "empty"
	MetricFailed MetricStatus = "failed"
)

// Metric holds one sub-query result of CustomerMetrics.
type Metric struct {
	Key    string
	Status MetricStatus
	Row    result.Row
	Err    string
}

// CustomerMetrics is the fixed-shape summary for one customer.
//
// JSON encoding: found metrics are objects, empty ones are null and failed
// ones are omitted.
type CustomerMetrics struct {
	CustomerKey string
	Metrics     []Metric
}

// Get returns the metric stored under key.
func (m CustomerMetrics) Get(key string) (Metric, bool) {
	for _, metric := range m.Metrics {
		if metric.Key == key {
			return metric, true
		}
	}
	return Metric{}, false
}

// MarshalJSON implements json.Marshaler
func (m CustomerMetrics) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, metric := range m.Metrics {
		if metric.Status == MetricFailed {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false

		key, err := json.Marshal(metric.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var row result.Row
		if metric.Status == MetricFound {
			row = metric.Row
		}
		val, err := json.Marshal(row)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type metricQuery struct {
	key   string
	query catalog.Query
}

// Порядок ключей ответа фиксирован
var customerMetricQueries = []metricQuery{
	{key: "favorite_sandwich", query: catalog.FavoriteSandwich},
	{key: "favorite_side", query: catalog.FavoriteSide},
	{key: "total_inches", query: catalog.TotalInches},
	{key: "most_visited_store", query: catalog.MostVisitedStore},
	{key: "favorite_month", query: catalog.FavoriteMonth},
}

// CustomerMetrics runs every metric sub-query for customerKey one after
// another. A failed sub-query does not fail the others. Only the first row
// of each result is kept, so ties in favorite_month surface a single month.
func (s *DataService) CustomerMetrics(ctx context.Context, customerKey string) CustomerMetrics {
	logger := s.logger.WithField("customer_key", customerKey)

	out := CustomerMetrics{
		CustomerKey: customerKey,
		Metrics:     make([]Metric, 0, len(customerMetricQueries)),
	}

	for _, mq := range customerMetricQueries {
		env := s.Run(ctx, mq.query, customerKey)

		metric := Metric{Key: mq.key}
		switch row, ok := env.First(); {
		case !env.Success:
			metric.Status = MetricFailed
			metric.Err = env.Error
			logger.WithFields(logrus.Fields{
				"metric": mq.key,
				"error":  env.Error,
			}).Warn("Customer metric sub-query failed")
		case !ok:
			metric.Status = MetricEmpty
		default:
			metric.Status = MetricFound
			metric.Row = row
		}
		out.Metrics = append(out.Metrics, metric)
	}

	return out
}
