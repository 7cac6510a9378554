package billing

import (
	"slices"

	"billcycle/internal/core"
)

// DueGraceDays is the fixed number of days between a statement closing and
// its payment being due.
const DueGraceDays = 21

// GenerateCycles returns the count most recent cycles of a card, oldest first,
// the last one being the cycle that contains today. IDs are positions in the
// returned slice and change whenever today moves into a new cycle.
//
// Configs without a withdraw day have no cycles.
func GenerateCycles(cfg core.PaymentMethodConfig, count int, today core.Date) []core.BillingCycle {
	if count <= 0 || !cfg.HasWithdrawDay() {
		return []core.BillingCycle{}
	}

	year, month := cycleEndMonth(today, cfg.WithdrawDay)
	cycles := make([]core.BillingCycle, 0, count)
	for i := 0; i < count; i++ {
		y, m := ShiftMonths(year, month, -i)
		start, end := CycleEndingIn(y, m, cfg.WithdrawDay)
		cycles = append(cycles, core.BillingCycle{
			CardID:   cfg.ID,
			CardName: cfg.DisplayName(),
			Start:    start,
			End:      end,
			Due:      DueDate(end),
		})
	}

	slices.Reverse(cycles)
	for i := range cycles {
		cycles[i].ID = i
	}
	return cycles
}

// DueDate is the payment due date of a statement closing on end.
func DueDate(end core.Date) core.Date {
	return AddDays(end, DueGraceDays)
}
