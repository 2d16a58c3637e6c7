package warehouse

import (
	"database/sql"
	"encoding/json"
	"strconv"
)

// valueConverter maps a scanned driver value to the value exposed in an Outcome.
type valueConverter func(v any) any

// columnConverters returns one converter per column, or nil when the driver
// already yields native Go values.
//
// gosnowflake hands NUMBER and FLOAT columns back as their decimal text.
func columnConverters(driver string, rows *sql.Rows) ([]valueConverter, error) {
	if driver != DriverSnowflake {
		return nil, nil
	}

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	converters := make([]valueConverter, len(types))
	for i, ct := range types {
		_, scale, ok := ct.DecimalSize()
		if !ok {
			scale = 0
		}
		typeName := ct.DatabaseTypeName()
		converters[i] = func(v any) any {
			return snowflakeValue(typeName, scale, v)
		}
	}
	return converters, nil
}

// snowflakeValue converts the textual form of a Snowflake numeric column.
// FIXED with scale 0 becomes int64 (json.Number past the int64 range),
// REAL becomes float64. Decimals with a scale keep their exact text.
func snowflakeValue(typeName string, scale int64, v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}

	switch typeName {
	case "FIXED":
		if scale != 0 {
			return s
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return json.Number(s)
		}
	case "REAL":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}
