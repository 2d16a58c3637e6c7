package server

import (
	"errors"
	"net/http"
	"strconv"

	"snowflake_data/internal/models"
	"snowflake_data/internal/service"

	"github.com/labstack/echo/v4"
)

func parseRecordID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// recordError maps record service errors to HTTP responses
func (s *Server) recordError(c echo.Context, err error, msg string) error {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return errorJSON(c, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, service.ErrRecordNotFound):
		return errorJSON(c, http.StatusNotFound, "Not found.")
	default:
		s.logger.WithError(err).Error(msg)
		return errorJSON(c, http.StatusInternalServerError, msg)
	}
}

// listRecords handles listing records
func (s *Server) listRecords(c echo.Context) error {
	records, err := s.records.List(c.Request().Context())
	if err != nil {
		return s.recordError(c, err, "Failed to list records")
	}
	return c.JSON(http.StatusOK, records)
}

// createRecord handles record creation
func (s *Server) createRecord(c echo.Context) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request format")
	}

	record := &models.SnowflakeData{
		Title:       req.Title,
		Description: req.Description,
	}
	if err := s.records.Create(c.Request().Context(), record); err != nil {
		return s.recordError(c, err, "Failed to create record")
	}
	return c.JSON(http.StatusCreated, record)
}

// getRecord handles getting a single record
func (s *Server) getRecord(c echo.Context) error {
	id, ok := parseRecordID(c)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "Invalid record ID")
	}

	record, err := s.records.Get(c.Request().Context(), id)
	if err != nil {
		return s.recordError(c, err, "Failed to get record")
	}
	return c.JSON(http.StatusOK, record)
}

func (s *Server) updateRecord(c echo.Context) error {
	return s.applyUpdate(c, false)
}

func (s *Server) partialUpdateRecord(c echo.Context) error {
	return s.applyUpdate(c, true)
}

func (s *Server) applyUpdate(c echo.Context, partial bool) error {
	id, ok := parseRecordID(c)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "Invalid record ID")
	}

	var params service.RecordUpdateParams
	if err := c.Bind(&params); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request format")
	}

	record, err := s.records.Update(c.Request().Context(), id, params, partial)
	if err != nil {
		return s.recordError(c, err, "Failed to update record")
	}
	return c.JSON(http.StatusOK, record)
}

// deleteRecord handles record deletion
func (s *Server) deleteRecord(c echo.Context) error {
	id, ok := parseRecordID(c)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "Invalid record ID")
	}

	if err := s.records.Delete(c.Request().Context(), id); err != nil {
		return s.recordError(c, err, "Failed to delete record")
	}
	return c.NoContent(http.StatusNoContent)
}
