package service

import (
	"context"
	"errors"

	"snowflake_data/internal/catalog"
	"snowflake_data/internal/result"
	"snowflake_data/internal/warehouse"

	"github.com/sirupsen/logrus"
)

// ErrCustomerNotFound is returned when a customer lookup matches no rows.
var ErrCustomerNotFound = errors.New("customer not found")

// Executor runs one statement against the warehouse.
type Executor interface {
	Execute(ctx context.Context, name, query string, args ...any) warehouse.Outcome
	Driver() string
}

// QueryError carries the warehouse failure message of a catalog query verbatim.
type QueryError struct {
	Query   string
	Message string
}

func (e *QueryError) Error() string {
	return e.Message
}

// DataService runs catalog queries and shapes their results.
type DataService struct {
	executor Executor
	logger   *logrus.Logger
}

// NewDataService создает сервис запросов к хранилищу
func NewDataService(executor Executor, logger *logrus.Logger) *DataService {
	return &DataService{
		executor: executor,
		logger:   logger,
	}
}

// Raw executes q with args and returns the unshaped outcome.
func (s *DataService) Raw(ctx context.Context, q catalog.Query, args ...any) warehouse.Outcome {
	bound, err := q.Bind(args...)
	if err != nil {
		return warehouse.Outcome{Err: err}
	}

	text := q.Text(s.executor.Driver())
	if err := catalog.Validate(text); err != nil {
		s.logger.WithError(err).WithField("query", q.Name).Error("Catalog query rejected")
		return warehouse.Outcome{Err: err}
	}

	return s.executor.Execute(ctx, q.Name, text, bound...)
}

// Run executes q and wraps the outcome into an Envelope.
func (s *DataService) Run(ctx context.Context, q catalog.Query, args ...any) result.Envelope {
	return result.FromOutcome(s.Raw(ctx, q, args...))
}

// ListCustomers returns every customer.
func (s *DataService) ListCustomers(ctx context.Context) result.Envelope {
	return s.Run(ctx, catalog.ListCustomers)
}

// CustomerByPhone returns the first customer whose phone matches exactly.
func (s *DataService) CustomerByPhone(ctx context.Context, phone string) (result.Row, error) {
	env := s.Run(ctx, catalog.CustomerByPhone, phone)
	if !env.Success {
		return nil, &QueryError{Query: catalog.CustomerByPhone.Name, Message: env.Error}
	}

	row, ok := env.First()
	if !ok {
		return nil, ErrCustomerNotFound
	}
	return row, nil
}

// ListTables returns the warehouse table listing as positional rows.
func (s *DataService) ListTables(ctx context.Context) ([][]any, error) {
	return s.rows(ctx, catalog.ListTables)
}

// FavoriteSandwiches returns every customer's favorite sandwich as positional
// rows ordered by customer key.
func (s *DataService) FavoriteSandwiches(ctx context.Context) ([][]any, error) {
	return s.rows(ctx, catalog.FavoriteSandwichesAll)
}

func (s *DataService) rows(ctx context.Context, q catalog.Query) ([][]any, error) {
	out := s.Raw(ctx, q)
	if !out.OK() {
		return nil, &QueryError{Query: q.Name, Message: out.Error()}
	}
	if out.Rows == nil {
		return [][]any{}, nil
	}
	return out.Rows, nil
}
