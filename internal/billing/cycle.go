package billing

import (
	"time"

	"billcycle/internal/core"
)

// CalculateCycle returns the statement period that contains reference for a
// card closing on withdrawDay. A purchase on the withdraw day itself belongs
// to the cycle that closes that day.
//
// withdrawDay must already be within [1,31]; see core.ClampWithdrawDay.
func CalculateCycle(reference core.Date, withdrawDay int) (start, end core.Date) {
	year, month := reference.Year(), reference.Time.Month()
	if reference.Day() > withdrawDay {
		year, month = ShiftMonths(year, month, 1)
	}
	return CycleEndingIn(year, month, withdrawDay)
}

// CycleEndingIn returns the statement period whose closing day falls in the
// given month. The start is the day after the previous month's clamped close,
// so consecutive cycles are contiguous; it is not the same day one calendar
// month before the end.
func CycleEndingIn(year int, month time.Month, withdrawDay int) (start, end core.Date) {
	end = dateIn(year, month, ClampDayToMonth(withdrawDay, year, month))

	startYear, startMonth := ShiftMonths(year, month, -1)
	startDay := ClampDayToMonth(withdrawDay, startYear, startMonth) + 1
	if startDay > LastDayOfMonth(startYear, startMonth) {
		// Previous statement closed on its month's last day.
		return dateIn(year, month, 1), end
	}
	return dateIn(startYear, startMonth, startDay), end
}

// cycleEndMonth is the month in which the cycle containing reference closes.
func cycleEndMonth(reference core.Date, withdrawDay int) (int, time.Month) {
	_, end := CalculateCycle(reference, withdrawDay)
	return end.Year(), end.Time.Month()
}
