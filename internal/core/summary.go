package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount_cents"`
}

// MonthOverview is a compact summary for a specific year+month, grouped by
// effective billing date.
type MonthOverview struct {
	Year       int              `json:"year"`
	Month      int              `json:"month"` // 1-12
	Total      Money            `json:"total_cents"`
	Count      int              `json:"count"`
	ByCategory []CategoryAmount `json:"by_category"`
}

// WeekTotal is the total of one week bucket inside a month.
type WeekTotal struct {
	Start Date  `json:"start"`
	End   Date  `json:"end"`
	Total Money `json:"total_cents"`
	Count int   `json:"count"`
}

// CycleSummary is a billing cycle with the purchases that land on its statement.
type CycleSummary struct {
	Cycle BillingCycle `json:"cycle"`
	Spent Money        `json:"spent_cents"`
	Count int          `json:"count"`
}

// CurrentTotals is what counts toward "now" for a reference date.
type CurrentTotals struct {
	Reference Date  `json:"reference"`
	Total     Money `json:"total_cents"`
	Count     int   `json:"count"`
}

// CardCycles is the recent statement history of one card, oldest first.
type CardCycles struct {
	Card   PaymentMethodConfig `json:"card"`
	Cycles []CycleSummary      `json:"cycles"`
}
