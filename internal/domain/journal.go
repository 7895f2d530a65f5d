package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DormancyPeriod is the inactivity span after which an account counts as dormant.
const DormancyPeriod = 30 * 24 * time.Hour

// Journal is the append-only list of entries of one account.
// Insertion order is chronological order.
type Journal []Entry

// Since returns the entries with a timestamp at or after threshold, in journal order.
func (j Journal) Since(threshold time.Time) Journal {
	out := Journal{}

	for _, e := range j {
		if !e.Timestamp.Before(threshold) {
			out = append(out, e)
		}
	}

	return out
}

// Sum returns the total of all signed amounts.
func (j Journal) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range j {
		sum = sum.Add(e.Amount)
	}

	return sum
}

// Last returns the latest entry.
func (j Journal) Last() (Entry, bool) {
	if len(j) == 0 {
		return Entry{}, false
	}

	return j[len(j)-1], true
}

// IsDormant reports whether there was no activity within DormancyPeriod before now.
func (j Journal) IsDormant(now time.Time) bool {
	last, ok := j.Last()
	if !ok {
		return true
	}

	return last.Timestamp.Before(now.Add(-DormancyPeriod))
}

// Clone returns a copy that does not share the backing array.
func (j Journal) Clone() Journal {
	out := make(Journal, len(j))
	copy(out, j)

	return out
}
