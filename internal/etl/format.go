package etl

// format.go converts extracted store values to their CSV text form.
//
// Values are never re-typed on export: each cell records the store's
// natural string conversion, so a round trip through CSV preserves what
// the driver produced.

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"
)

// formatValue renders a single extracted value as CSV cell text.
// NULLs become the empty string.
func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case time.Time:
		// DATE columns scan as midnight; keep them date-only so the file
		// round-trips the way the store rendered them.
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format("2006-01-02 15:04:05.999999-07")
	}

	// pgtype wrappers (numeric, interval, ...) expose their text form
	// through driver.Valuer.
	if valuer, ok := v.(driver.Valuer); ok {
		if dv, err := valuer.Value(); err == nil {
			if _, again := dv.(driver.Valuer); !again {
				return formatValue(dv)
			}
		}
	}

	return fmt.Sprint(v)
}
