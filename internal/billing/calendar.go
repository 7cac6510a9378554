// Package billing maps purchase dates and card withdraw days to statement
// periods and decides which reporting period a transaction belongs to.
//
// Every function here is pure: dates come in as arguments, including the
// reference "now", and nothing is cached or read from a clock.
package billing

import (
	"time"

	"billcycle/internal/core"
)

// LastDayOfMonth returns the number of days in the given month, leap years included.
func LastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDayToMonth returns day, or the month's last day when the month is shorter.
func ClampDayToMonth(day, year int, month time.Month) int {
	if last := LastDayOfMonth(year, month); day > last {
		return last
	}
	return day
}

// ShiftMonths moves (year, month) by delta months, rolling the year over in
// either direction.
func ShiftMonths(year int, month time.Month, delta int) (int, time.Month) {
	idx := year*12 + int(month) - 1 + delta
	y := idx / 12
	if idx%12 < 0 {
		y--
	}
	return y, time.Month(idx-y*12) + 1
}

// AddDays returns d shifted by n calendar days.
func AddDays(d core.Date, n int) core.Date {
	return d.AddDays(n)
}

func dateIn(year int, month time.Month, day int) core.Date {
	return core.NewDate(year, int(month), day)
}
