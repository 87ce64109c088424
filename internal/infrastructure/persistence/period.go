package persistence

import "time"

// periodBounds returns the half-open [from, to) interval of a fiscal month
func periodBounds(month, year int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}
