// Package export renders query results into spreadsheet files.
package export

import (
	"bytes"
	"fmt"
	"io"

	"snowflake_data/internal/result"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const (
	MimeTypeXLSX  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ExtensionXLSX = "xlsx"

	// Excel limits sheet names to 31 characters.
	maxSheetName = 31
	columnWidth  = 24
)

// XLSXWriter writes a result set as a single-sheet workbook: a styled
// header row with the column names followed by one row per result.
type XLSXWriter struct {
	logger *logrus.Logger
}

// NewXLSXWriter создает новый генератор Excel выгрузок
func NewXLSXWriter(logger *logrus.Logger) *XLSXWriter {
	return &XLSXWriter{logger: logger}
}

// MimeType возвращает MIME тип для Excel файлов
func (w *XLSXWriter) MimeType() string {
	return MimeTypeXLSX
}

// Extension возвращает расширение файла для Excel
func (w *XLSXWriter) Extension() string {
	return ExtensionXLSX
}

// Write renders data into a workbook whose sheet is named after title.
func (w *XLSXWriter) Write(title string, data *result.Data) (io.Reader, error) {
	logger := w.logger.WithField("sheet", title)

	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(title)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	// Стиль для заголовков
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		logger.WithError(err).Warn("Failed to create header style")
	}

	columns := []string{}
	var rows []result.Row
	if data != nil {
		columns = data.Columns
		rows = data.Results
	}

	for i, column := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, column); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		if headerStyle != 0 {
			if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
				logger.WithError(err).Warn("Failed to apply header style")
			}
		}
	}

	for rowIndex, row := range rows {
		for colIndex, field := range row {
			cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, cellValue(field.Value)); err != nil {
				return nil, fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if len(columns) > 0 {
		last, err := excelize.ColumnNumberToName(len(columns))
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, "A", last, columnWidth); err != nil {
			logger.WithError(err).Warn("Failed to set column width")
		}
	}

	var buffer bytes.Buffer
	if err := f.Write(&buffer); err != nil {
		logger.WithError(err).Error("Failed to write workbook")
		return nil, fmt.Errorf("failed to generate xlsx: %w", err)
	}

	logger.WithField("rows", len(rows)).Debug("Workbook generated")
	return &buffer, nil
}

// cellValue maps warehouse scalars onto values excelize can store natively.
func cellValue(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

func sheetName(title string) string {
	if title == "" {
		return "Results"
	}
	runes := []rune(title)
	if len(runes) > maxSheetName {
		runes = runes[:maxSheetName]
	}
	return string(runes)
}
