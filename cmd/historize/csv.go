package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lakeforge/scd2historize/internal/tabular"
)

// loadTypedCSV reads a CSV file whose header row encodes each column as
// "name:type[:nullable]" (type one of string, int64, float64, bool,
// timestamp, bytes) and whose cells use the empty string for null. This is a
// CLI convenience for exercising historize end-to-end; it is not part of
// the engine's contract.
func loadTypedCSV(path string) (tabular.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return tabular.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return tabular.Table{}, fmt.Errorf("read header of %s: %w", path, err)
	}

	cols := make([]tabular.Column, len(header))
	for i, h := range header {
		c, err := parseColumnHeader(h)
		if err != nil {
			return tabular.Table{}, fmt.Errorf("%s: column %d: %w", path, i, err)
		}
		cols[i] = c
	}
	schema, err := tabular.NewSchema(cols...)
	if err != nil {
		return tabular.Table{}, fmt.Errorf("%s: %w", path, err)
	}

	var rows []tabular.Row
	for {
		rec, err := r.Read()
		if err != nil {
			break
		}
		row := make(tabular.Row, len(cols))
		for i, cell := range rec {
			v, err := parseCell(cell, cols[i].Type)
			if err != nil {
				return tabular.Table{}, fmt.Errorf("%s: row %d column %q: %w", path, len(rows), cols[i].Name, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}

	return tabular.New(schema, rows)
}

func parseColumnHeader(h string) (tabular.Column, error) {
	parts := strings.Split(h, ":")
	if len(parts) < 2 {
		return tabular.Column{}, fmt.Errorf("expected name:type[:nullable], got %q", h)
	}
	var typ tabular.Type
	switch parts[1] {
	case "string":
		typ = tabular.TypeString
	case "int64":
		typ = tabular.TypeInt64
	case "float64":
		typ = tabular.TypeFloat64
	case "bool":
		typ = tabular.TypeBool
	case "timestamp":
		typ = tabular.TypeTimestamp
	case "bytes":
		typ = tabular.TypeBytes
	default:
		return tabular.Column{}, fmt.Errorf("unknown type %q", parts[1])
	}
	nullable := len(parts) > 2 && parts[2] == "nullable"
	return tabular.Column{Name: parts[0], Type: typ, Nullable: nullable}, nil
}

func parseCell(cell string, typ tabular.Type) (tabular.Value, error) {
	if cell == "" {
		return tabular.Null(), nil
	}
	switch typ {
	case tabular.TypeString:
		return tabular.StringValue(cell), nil
	case tabular.TypeInt64:
		i, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return tabular.Value{}, err
		}
		return tabular.Int64Value(i), nil
	case tabular.TypeFloat64:
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return tabular.Value{}, err
		}
		return tabular.Float64Value(f), nil
	case tabular.TypeBool:
		b, err := strconv.ParseBool(cell)
		if err != nil {
			return tabular.Value{}, err
		}
		return tabular.BoolValue(b), nil
	case tabular.TypeTimestamp:
		ts, err := time.Parse(time.RFC3339Nano, cell)
		if err != nil {
			return tabular.Value{}, err
		}
		return tabular.TimestampValue(ts), nil
	case tabular.TypeBytes:
		return tabular.BytesValue([]byte(cell)), nil
	default:
		return tabular.Value{}, fmt.Errorf("unknown type %v", typ)
	}
}

// writeTypedCSV writes table back out in the same "name:type[:nullable]"
// header format loadTypedCSV reads.
func writeTypedCSV(path string, table tabular.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := make([]string, table.Schema().Len())
	for i, c := range table.Schema().Columns() {
		typeName := strings.ToLower(c.Type.String())
		if c.Nullable {
			header[i] = fmt.Sprintf("%s:%s:nullable", c.Name, typeName)
		} else {
			header[i] = fmt.Sprintf("%s:%s", c.Name, typeName)
		}
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header to %s: %w", path, err)
	}

	for _, row := range table.Rows() {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = formatCell(v)
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write row to %s: %w", path, err)
		}
	}
	return nil
}

func formatCell(v tabular.Value) string {
	if v.IsNull() {
		return ""
	}
	switch raw := v.Raw().(type) {
	case string:
		return raw
	case int64:
		return strconv.FormatInt(raw, 10)
	case float64:
		return strconv.FormatFloat(raw, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(raw)
	case time.Time:
		return raw.Format(time.RFC3339Nano)
	case []byte:
		return string(raw)
	default:
		return fmt.Sprintf("%v", raw)
	}
}
