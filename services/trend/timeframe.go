package trend

import (
	"strings"
	"time"
)

// Timeframe selectors accepted by the dashboard and the evaluator.
const (
	TimeframeDay   = "day"
	TimeframeWeek  = "week"
	TimeframeMonth = "month"
)

// Span maps a timeframe selector to the window it covers. Unrecognized
// selectors fall back to one day.
func Span(timeframe string) time.Duration {
	switch strings.ToLower(timeframe) {
	case TimeframeWeek:
		return 7 * 24 * time.Hour
	case TimeframeMonth:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}
