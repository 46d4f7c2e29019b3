package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// consoleTimeLayout is local wall time without zone; the JSON sink carries UTC.
const consoleTimeLayout = "2006-01-02 15:04:05"

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Local().Format(consoleTimeLayout)
}

// attrString is the raw text of a value, used for header fields that are
// never quoted.
func attrString(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindAny:
		return anyText(v.Any())
	}
	return formatValue(v)
}

// formatValue renders a field value for the console, quoting strings that
// are empty or carry control characters or quotes.
func formatValue(v slog.Value) string {
	v = v.Resolve()
	var text string
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return formatTimestamp(v.Time())
	case slog.KindAny:
		text = anyText(v.Any())
	default:
		text = v.String()
	}
	if text == "" || hasUnsafeRune(text) {
		return strconv.Quote(text)
	}
	return text
}

func anyText(value any) string {
	if err, ok := value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(value)
}

func hasUnsafeRune(s string) bool {
	for _, r := range s {
		if r < ' ' || r == '"' {
			return true
		}
	}
	return false
}
