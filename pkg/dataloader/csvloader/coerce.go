package csvloader

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm/schema"
)

// timeLayouts covers the timestamp shapes found in the dataset exports.
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999 MST",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func isNull(raw string) bool {
	switch raw {
	case "", "NaN", "nan", "NaT":
		return true
	}
	return false
}

// coerce converts one CSV cell into a value for field. Null markers become
// nil. Timestamps that match no known layout are stored as NULL rather than
// failing the row; numbers and booleans that do not parse fail it.
func coerce(field *schema.Field, raw string) (interface{}, error) {
	raw = strings.TrimSpace(raw)
	if isNull(raw) {
		return nil, nil
	}

	switch field.DataType {
	case schema.Int:
		return parseInt(raw)
	case schema.Uint:
		n, err := parseInt(raw)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, errors.Errorf("negative value %d for unsigned column", n)
		}
		return uint64(n), nil
	case schema.Float:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parse float %q", raw)
		}
		return f, nil
	case schema.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "parse bool %q", raw)
		}
		return b, nil
	case schema.Time:
		if t, ok := parseTime(raw); ok {
			return t, nil
		}
		return nil, nil
	default:
		return raw, nil
	}
}

// parseInt accepts integral floats such as "12.0", which spreadsheet exports
// produce for integer columns holding blanks.
func parseInt(raw string) (int64, error) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse integer %q", raw)
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, errors.Errorf("parse integer %q: not a whole number", raw)
	}
	return int64(f), nil
}

func parseTime(raw string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// coerceRow maps a CSV record onto column values. fields is aligned with the
// header, so fields[i] describes record[i].
func coerceRow(fields []*schema.Field, record []string) (map[string]interface{}, error) {
	if len(record) != len(fields) {
		return nil, errors.Errorf("expected %d columns, got %d", len(fields), len(record))
	}
	row := make(map[string]interface{}, len(fields))
	for i, field := range fields {
		v, err := coerce(field, record[i])
		if err != nil {
			return nil, errors.Wrapf(err, "column %s", field.DBName)
		}
		row[field.DBName] = v
	}
	return row, nil
}
