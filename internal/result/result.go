// Package result shapes raw warehouse rows into ordered mappings and the
// uniform response envelope.
package result

import (
	"bytes"
	"encoding/json"
	"fmt"

	"snowflake_data/internal/warehouse"
)

// Field is one column/value pair of a Row.
type Field struct {
	Key   string
	Value any
}

// Row is an ordered mapping from column name to value.
// It encodes to a JSON object with keys in column order.
type Row []Field

// Get returns the value stored under key.
func (r Row) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys returns the column names in order.
func (r Row) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// MarshalJSON implements json.Marshaler
func (r Row) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, keeping the key order of the object.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*r = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("result: cannot decode %v into Row", tok)
	}

	row := Row{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		var val any
		if err := dec.Decode(&val); err != nil {
			return err
		}
		row = append(row, Field{Key: keyTok.(string), Value: val})
	}
	*r = row
	return nil
}

// NewRow zips columns and values by position. The shorter of the two
// determines how many pairs are produced.
func NewRow(columns []string, values []any) Row {
	n := len(columns)
	if len(values) < n {
		n = len(values)
	}

	row := make(Row, n)
	for i := 0; i < n; i++ {
		row[i] = Field{Key: columns[i], Value: values[i]}
	}
	return row
}

// Format converts raw positional rows into ordered mappings, preserving row order.
func Format(columns []string, rows [][]any) []Row {
	out := make([]Row, 0, len(rows))
	for _, values := range rows {
		out = append(out, NewRow(columns, values))
	}
	return out
}

// Data is the success payload of an Envelope.
type Data struct {
	Columns  []string `json:"columns"`
	Results  []Row    `json:"results"`
	RowCount int      `json:"row_count"`
}

// Envelope is the uniform success/failure wrapper around one query.
type Envelope struct {
	Success bool   `json:"success"`
	Data    *Data  `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// First returns the first result row, if any.
func (e Envelope) First() (Row, bool) {
	if !e.Success || e.Data == nil || len(e.Data.Results) == 0 {
		return nil, false
	}
	return e.Data.Results[0], true
}

// FromOutcome wraps adapter output into an Envelope.
func FromOutcome(out warehouse.Outcome) Envelope {
	if !out.OK() {
		return Failure(out.Error())
	}
	return Success(out.Columns, out.Rows)
}

// Success builds a successful Envelope; row_count always equals len(results).
func Success(columns []string, rows [][]any) Envelope {
	if columns == nil {
		columns = []string{}
	}
	results := Format(columns, rows)
	return Envelope{
		Success: true,
		Data: &Data{
			Columns:  columns,
			Results:  results,
			RowCount: len(results),
		},
	}
}

// Failure builds a failed Envelope carrying msg.
func Failure(msg string) Envelope {
	return Envelope{Success: false, Error: msg}
}
