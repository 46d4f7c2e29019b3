package subtitles

import (
	"fmt"
	"math"
)

// FormatTimestamp renders seconds as HH:MM:SS,mmm. Milliseconds are rounded
// half away from zero. When alwaysIncludeHours is false the hour field is
// omitted for timestamps under one hour.
func FormatTimestamp(seconds float64, alwaysIncludeHours bool) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int64(math.Round(seconds * 1000))
	hours := total / 3_600_000
	total %= 3_600_000
	minutes := total / 60_000
	total %= 60_000
	secs := total / 1_000
	millis := total % 1_000
	if hours > 0 || alwaysIncludeHours {
		return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
	}
	return fmt.Sprintf("%02d:%02d,%03d", minutes, secs, millis)
}
