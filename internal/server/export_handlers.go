package server

import (
	"errors"
	"fmt"
	"net/http"

	"snowflake_data/internal/catalog"
	"snowflake_data/internal/service"
	"snowflake_data/internal/storage"

	"github.com/labstack/echo/v4"
)

// listExports handles listing stored exports
func (s *Server) listExports(c echo.Context) error {
	files, err := s.exports.List(c.Request().Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to list exports")
		return errorJSON(c, http.StatusInternalServerError, "Failed to list exports")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"exports": files,
		"count":   len(files),
	})
}

// createExport runs a catalog query and stores the result as a workbook
func (s *Server) createExport(c echo.Context) error {
	var req struct {
		Query  string        `json:"query"`
		Params []interface{} `json:"params"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request format")
	}
	if req.Query == "" {
		return errorJSON(c, http.StatusBadRequest, "query is required")
	}

	info, err := s.exports.Create(c.Request().Context(), req.Query, req.Params)
	if err != nil {
		var queryErr *service.QueryError
		switch {
		case errors.Is(err, service.ErrUnknownQuery), errors.Is(err, service.ErrInvalidParam), errors.Is(err, catalog.ErrParamCount):
			return errorJSON(c, http.StatusBadRequest, err.Error())
		case errors.As(err, &queryErr):
			return errorJSON(c, http.StatusInternalServerError, queryErr.Message)
		default:
			s.logger.WithError(err).Error("Failed to create export")
			return errorJSON(c, http.StatusInternalServerError, "Failed to create export")
		}
	}
	return c.JSON(http.StatusCreated, info)
}

// downloadExport streams a stored workbook
func (s *Server) downloadExport(c echo.Context) error {
	name := c.Param("name")

	reader, err := s.exports.Open(c.Request().Context(), name)
	if err != nil {
		return s.exportError(c, err)
	}
	defer reader.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Stream(http.StatusOK, s.exports.MimeType(), reader)
}

// deleteExport removes a stored workbook
func (s *Server) deleteExport(c echo.Context) error {
	if err := s.exports.Delete(c.Request().Context(), c.Param("name")); err != nil {
		return s.exportError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) exportError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return errorJSON(c, http.StatusNotFound, "Export not found")
	case errors.Is(err, storage.ErrInvalidKey):
		return errorJSON(c, http.StatusBadRequest, "Invalid export name")
	default:
		s.logger.WithError(err).Error("Export storage operation failed")
		return errorJSON(c, http.StatusInternalServerError, "Export storage operation failed")
	}
}
