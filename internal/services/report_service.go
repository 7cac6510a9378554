package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"billcycle/internal/billing"
	"billcycle/internal/core"
	"billcycle/internal/ledger"
	"billcycle/internal/log"
)

const uncategorized = "Uncategorized"

// currentWindowAhead bounds how far past today a purchase can be and still
// share today's statement or calendar month.
const currentWindowAhead = 62

// ReportService aggregates stored transactions into the periods the billing
// engine assigns them to.
type ReportService struct {
	configs      ledger.ConfigReader
	transactions ledger.TransactionLister
	lookbackDays int
}

// NewReportService builds a report service. lookbackDays widens every
// purchase-date query backwards so purchases billed later (card statements,
// billing delays) are still seen.
func NewReportService(configs ledger.ConfigReader, transactions ledger.TransactionLister, lookbackDays int) *ReportService {
	return &ReportService{
		configs:      configs,
		transactions: transactions,
		lookbackDays: lookbackDays,
	}
}

// load fetches configs and the transactions purchased within [from, to]
// concurrently.
func (s *ReportService) load(ctx context.Context, from, to core.Date) ([]core.PaymentMethodConfig, []core.Transaction, error) {
	var (
		configs []core.PaymentMethodConfig
		txs     []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.configs.ListConfigs(gctx)
		if err != nil {
			return fmt.Errorf("list configs: %w", err)
		}
		configs = c
		return nil
	})
	g.Go(func() error {
		t, err := s.transactions.ListTransactions(gctx, from, to)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		txs = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return configs, txs, nil
}

// windowStart is the earliest purchase date that can still be billed on or
// after first: the configured lookback, or the longest stored billing delay
// when that reaches further back.
func (s *ReportService) windowStart(ctx context.Context, first core.Date) (core.Date, error) {
	longest, err := s.transactions.MaxBillingDelay(ctx)
	if err != nil {
		return core.Date{}, fmt.Errorf("max billing delay: %w", err)
	}
	return first.AddDays(-max(s.lookbackDays, longest)), nil
}

type attributed struct {
	tx        core.Transaction
	effective core.Date
}

// billedIn loads the transactions whose effective billing date falls in the
// given month.
func (s *ReportService) billedIn(ctx context.Context, year, month int) ([]attributed, error) {
	if month < 1 || month > 12 {
		return nil, core.ErrInvalidMonth
	}
	first := core.NewDate(year, month, 1)
	last := core.NewDate(year, month, billing.LastDayOfMonth(year, time.Month(month)))

	from, err := s.windowStart(ctx, first)
	if err != nil {
		return nil, err
	}
	configs, txs, err := s.load(ctx, from, last)
	if err != nil {
		return nil, err
	}

	var out []attributed
	for _, tx := range txs {
		eff := billing.EffectiveBillingDate(tx, configs)
		if eff.Year() == year && eff.Month() == month {
			out = append(out, attributed{tx: tx, effective: eff})
		}
	}
	return out, nil
}

// MonthOverview totals the transactions billed in year/month by category,
// largest first.
func (s *ReportService) MonthOverview(ctx context.Context, year, month int) (core.MonthOverview, error) {
	items, err := s.billedIn(ctx, year, month)
	if err != nil {
		return core.MonthOverview{}, fmt.Errorf("month overview %04d-%02d: %w", year, month, err)
	}

	overview := core.MonthOverview{Year: year, Month: month}
	byCategory := make(map[string]int64)
	for _, it := range items {
		name := it.tx.Category
		if name == "" {
			name = uncategorized
		}
		byCategory[name] += it.tx.Amount.Cents
		overview.Total = overview.Total.Add(it.tx.Amount)
		overview.Count++
	}

	overview.ByCategory = make([]core.CategoryAmount, 0, len(byCategory))
	for name, cents := range byCategory {
		overview.ByCategory = append(overview.ByCategory, core.CategoryAmount{Name: name, Amount: core.Money{Cents: cents}})
	}
	sort.Slice(overview.ByCategory, func(i, j int) bool {
		a, b := overview.ByCategory[i], overview.ByCategory[j]
		if a.Amount.Cents != b.Amount.Cents {
			return a.Amount.Cents > b.Amount.Cents
		}
		return a.Name < b.Name
	})

	log.FromContext(ctx).WithComponent(log.ComponentReport).DebugContext(ctx, "Month overview computed",
		log.FieldYear, year, log.FieldMonth, month, log.FieldCount, overview.Count)
	return overview, nil
}

// WeeklyTotals splits the month into weeks beginning on weekStart. The first
// and last buckets are clipped to the month.
func (s *ReportService) WeeklyTotals(ctx context.Context, year, month int, weekStart time.Weekday) ([]core.WeekTotal, error) {
	items, err := s.billedIn(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("weekly totals %04d-%02d: %w", year, month, err)
	}

	weeks := monthWeeks(year, month, weekStart)
	for _, it := range items {
		for i := range weeks {
			if it.effective.Before(weeks[i].Start) || it.effective.After(weeks[i].End) {
				continue
			}
			weeks[i].Total = weeks[i].Total.Add(it.tx.Amount)
			weeks[i].Count++
			break
		}
	}
	return weeks, nil
}

func monthWeeks(year, month int, weekStart time.Weekday) []core.WeekTotal {
	last := core.NewDate(year, month, billing.LastDayOfMonth(year, time.Month(month)))
	var weeks []core.WeekTotal
	for start := core.NewDate(year, month, 1); !start.After(last); {
		span := (int(weekStart) - int(start.Weekday()) + 7) % 7
		if span == 0 {
			span = 7
		}
		end := start.AddDays(span - 1)
		if end.After(last) {
			end = last
		}
		weeks = append(weeks, core.WeekTotal{Start: start, End: end})
		start = end.AddDays(1)
	}
	return weeks
}

// CurrentTotals sums what counts toward today: card purchases in today's
// statement period and other payments settling in today's calendar month.
func (s *ReportService) CurrentTotals(ctx context.Context, today core.Date) (core.CurrentTotals, error) {
	first := core.NewDate(today.Year(), today.Month(), 1)
	from, err := s.windowStart(ctx, first)
	if err != nil {
		return core.CurrentTotals{}, fmt.Errorf("current totals %s: %w", today, err)
	}
	configs, txs, err := s.load(ctx, from, today.AddDays(currentWindowAhead))
	if err != nil {
		return core.CurrentTotals{}, fmt.Errorf("current totals %s: %w", today, err)
	}

	totals := core.CurrentTotals{Reference: today}
	for _, tx := range txs {
		if billing.ShouldIncludeInCurrentTotals(tx, configs, today) {
			totals.Total = totals.Total.Add(tx.Amount)
			totals.Count++
		}
	}
	return totals, nil
}

// CardCycles returns, for every active card with a withdraw day, its count
// most recent cycles with the purchases landing on each statement.
func (s *ReportService) CardCycles(ctx context.Context, count int, today core.Date) ([]core.CardCycles, error) {
	if count <= 0 {
		return []core.CardCycles{}, nil
	}

	configs, err := s.configs.ListConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}

	var (
		cards    []core.CardCycles
		from, to core.Date
	)
	for _, cfg := range configs {
		if !cfg.Active || !cfg.HasWithdrawDay() {
			continue
		}
		series := billing.GenerateCycles(cfg, count, today)
		card := core.CardCycles{Card: cfg, Cycles: make([]core.CycleSummary, len(series))}
		for i, c := range series {
			card.Cycles[i].Cycle = c
		}
		if from.IsEmpty() || series[0].Start.Before(from) {
			from = series[0].Start
		}
		if to.IsEmpty() || series[len(series)-1].End.After(to) {
			to = series[len(series)-1].End
		}
		cards = append(cards, card)
	}
	if len(cards) == 0 {
		return []core.CardCycles{}, nil
	}

	txs, err := s.transactions.ListTransactions(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range cards {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tallyStatements(&cards[i], txs, configs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.FromContext(ctx).WithComponent(log.ComponentReport).DebugContext(ctx, "Card cycles computed",
		log.FieldCount, len(cards), log.FieldReference, today.String())
	return cards, nil
}

// tallyStatements adds each of the card's purchases to the cycle whose
// statement it lands on.
func tallyStatements(card *core.CardCycles, txs []core.Transaction, configs []core.PaymentMethodConfig) {
	for _, tx := range txs {
		cycle, ok := billing.CycleFor(tx, configs)
		if !ok || cycle.CardID != card.Card.ID {
			continue
		}
		for i := range card.Cycles {
			if card.Cycles[i].Cycle.End.Equal(cycle.End) {
				card.Cycles[i].Spent = card.Cycles[i].Spent.Add(tx.Amount)
				card.Cycles[i].Count++
				break
			}
		}
	}
}
