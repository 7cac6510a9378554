package billing

import (
	"billcycle/internal/core"
)

// IsWithinCycle reports whether reference falls inside the statement period
// that contains txDate, both ends inclusive.
func IsWithinCycle(txDate core.Date, withdrawDay int, reference core.Date) bool {
	start, end := CalculateCycle(core.DateOf(txDate.Time), withdrawDay)
	ref := core.DateOf(reference.Time)
	return !ref.Before(start) && !ref.After(end)
}

// ShouldIncludeInCurrentTotals decides whether tx counts toward the totals
// shown for reference. Card purchases count while reference is inside their
// own statement period; everything else counts when its settlement date is
// in reference's calendar month.
func ShouldIncludeInCurrentTotals(tx core.Transaction, configs []core.PaymentMethodConfig, reference core.Date) bool {
	return ruleFor(tx, configs).inCurrentPeriod(tx, reference)
}

// EffectiveBillingDate is the date tx is grouped under in monthly and weekly
// reports: the statement closing date for card purchases with a configured
// cycle, otherwise the purchase date moved by any fixed billing delay.
func EffectiveBillingDate(tx core.Transaction, configs []core.PaymentMethodConfig) core.Date {
	return ruleFor(tx, configs).effectiveDate(tx)
}

// CycleFor returns the statement tx lands on. ok is false when tx does not use
// an active card with a withdraw day.
func CycleFor(tx core.Transaction, configs []core.PaymentMethodConfig) (cycle core.BillingCycle, ok bool) {
	if tx.Method != core.Credit {
		return core.BillingCycle{}, false
	}
	cfg, ok := cardFor(tx, configs)
	if !ok {
		return core.BillingCycle{}, false
	}
	start, end := CalculateCycle(core.DateOf(tx.Date.Time), cfg.WithdrawDay)
	return core.BillingCycle{
		CardID:   cfg.ID,
		CardName: cfg.DisplayName(),
		Start:    start,
		End:      end,
		Due:      DueDate(end),
	}, true
}

// attributionRule decides how one transaction is placed in reporting periods.
type attributionRule interface {
	effectiveDate(tx core.Transaction) core.Date
	inCurrentPeriod(tx core.Transaction, reference core.Date) bool
}

// calendarMonthRule groups by settlement date and compares calendar months.
type calendarMonthRule struct{}

func (calendarMonthRule) effectiveDate(tx core.Transaction) core.Date {
	return settlementDate(tx)
}

func (r calendarMonthRule) inCurrentPeriod(tx core.Transaction, reference core.Date) bool {
	return r.effectiveDate(tx).SameMonth(core.DateOf(reference.Time))
}

// statementRule groups by statement closing date and checks the reference
// against the transaction's own statement window.
type statementRule struct {
	withdrawDay int
}

func (r statementRule) effectiveDate(tx core.Transaction) core.Date {
	_, end := CalculateCycle(core.DateOf(tx.Date.Time), r.withdrawDay)
	return end
}

func (r statementRule) inCurrentPeriod(tx core.Transaction, reference core.Date) bool {
	return IsWithinCycle(tx.Date, r.withdrawDay, reference)
}

type ruleSelector func(tx core.Transaction, configs []core.PaymentMethodConfig) attributionRule

// rulesByMethod is read-only after init.
var rulesByMethod = map[core.PaymentMethod]ruleSelector{
	core.Cash:   calendarMonth,
	core.Cheque: calendarMonth,
	core.Credit: statementOrCalendarMonth,
}

func ruleFor(tx core.Transaction, configs []core.PaymentMethodConfig) attributionRule {
	sel, ok := rulesByMethod[tx.Method]
	if !ok {
		return calendarMonthRule{}
	}
	return sel(tx, configs)
}

func calendarMonth(core.Transaction, []core.PaymentMethodConfig) attributionRule {
	return calendarMonthRule{}
}

func statementOrCalendarMonth(tx core.Transaction, configs []core.PaymentMethodConfig) attributionRule {
	cfg, ok := cardFor(tx, configs)
	if !ok {
		return calendarMonthRule{}
	}
	return statementRule{withdrawDay: cfg.WithdrawDay}
}

// cardFor finds the active, cycle-bearing config tx refers to.
func cardFor(tx core.Transaction, configs []core.PaymentMethodConfig) (core.PaymentMethodConfig, bool) {
	if tx.ConfigID == "" {
		return core.PaymentMethodConfig{}, false
	}
	for _, cfg := range configs {
		if cfg.ID != tx.ConfigID {
			continue
		}
		if !cfg.Active || !cfg.HasWithdrawDay() {
			return core.PaymentMethodConfig{}, false
		}
		return cfg, true
	}
	return core.PaymentMethodConfig{}, false
}

func settlementDate(tx core.Transaction) core.Date {
	d := core.DateOf(tx.Date.Time)
	if tx.BillingDelayDays > 0 {
		return AddDays(d, tx.BillingDelayDays)
	}
	return d
}
