// Package budget tracks daily embedding token spend against a configured cap.
// The counter is keyed by UTC day and resets when the day rolls over.
package budget

// Budget is a snapshot of one day's embedding token spend.
type Budget struct {
	day   string // YYYY-MM-DD, UTC
	limit int64
	used  int64
}

// New creates a Budget snapshot. limit <= 0 means unlimited.
func New(day string, limit, used int64) Budget {
	return Budget{day: day, limit: limit, used: used}
}

// Day returns the UTC day the snapshot covers.
func (b Budget) Day() string { return b.day }

// Limit returns the daily token cap. Zero or negative means unlimited.
func (b Budget) Limit() int64 { return b.limit }

// Used returns tokens spent so far today.
func (b Budget) Used() int64 { return b.used }

// Remaining returns tokens left today, never negative.
func (b Budget) Remaining() int64 {
	if b.limit <= 0 {
		return 0
	}
	if b.used >= b.limit {
		return 0
	}
	return b.limit - b.used
}

// Exhausted reports whether the cap is spent.
func (b Budget) Exhausted() bool {
	return b.limit > 0 && b.used >= b.limit
}

// Allows reports whether spending tokens more would stay within the cap.
func (b Budget) Allows(tokens int64) bool {
	if b.limit <= 0 {
		return true
	}
	return b.used+tokens <= b.limit
}
