package server

import (
	"errors"
	"net/http"

	"snowflake_data/internal/service"

	"github.com/labstack/echo/v4"
)

const connectionSuccessful = "Connection successful"

// getCustomers returns the customer listing envelope payload
func (s *Server) getCustomers(c echo.Context) error {
	env := s.data.ListCustomers(c.Request().Context())
	if !env.Success {
		return errorJSON(c, http.StatusInternalServerError, env.Error)
	}
	return c.JSON(http.StatusOK, env.Data)
}

// customerMetrics returns the five per-customer metrics. Failed sub-queries
// are left out of the response, empty ones are null.
func (s *Server) customerMetrics(c echo.Context) error {
	customerKey := c.QueryParam("customer_key")
	if customerKey == "" {
		return errorJSON(c, http.StatusBadRequest, "customer_key is required")
	}

	metrics := s.data.CustomerMetrics(c.Request().Context(), customerKey)
	return c.JSON(http.StatusOK, metrics)
}

// fetchFromSnowflake lists warehouse tables
func (s *Server) fetchFromSnowflake(c echo.Context) error {
	tables, err := s.data.ListTables(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": connectionSuccessful,
		"tables":  tables,
	})
}

// favoriteSandwiches returns every customer's favorite sandwich
func (s *Server) favoriteSandwiches(c echo.Context) error {
	rows, err := s.data.FavoriteSandwiches(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":             connectionSuccessful,
		"favorite_sandwiches": rows,
	})
}

// getCustomerByPhone looks up a single customer by exact phone number
func (s *Server) getCustomerByPhone(c echo.Context) error {
	phone := c.QueryParam("phone")
	if phone == "" {
		return errorJSON(c, http.StatusBadRequest, "Phone number is required")
	}

	row, err := s.data.CustomerByPhone(c.Request().Context(), phone)
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			return errorJSON(c, http.StatusNotFound, "Customer not found")
		}
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, row)
}
