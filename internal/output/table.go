// Package output renders billing reports for terminals and spreadsheets.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"billcycle/internal/core"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	return t
}

// PrintCycles prints one table per card, oldest cycle first. The cycle
// containing today is marked.
func PrintCycles(w io.Writer, cards []core.CardCycles, today core.Date) {
	if len(cards) == 0 {
		fmt.Fprintln(w, "No active credit cards with a withdraw day configured.")
		return
	}
	for i, card := range cards {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (withdraw day %d)\n", card.Card.DisplayName(), card.Card.WithdrawDay)

		t := newTable(w)
		t.AppendHeader(table.Row{"#", "Start", "End", "Due", "Purchases", "Spent", ""})
		var total core.Money
		for _, cs := range card.Cycles {
			marker := ""
			if !today.Before(cs.Cycle.Start) && !today.After(cs.Cycle.End) {
				marker = text.FgGreen.Sprint("current")
			}
			t.AppendRow(table.Row{cs.Cycle.ID, cs.Cycle.Start, cs.Cycle.End, cs.Cycle.Due, cs.Count, cs.Spent, marker})
			total = total.Add(cs.Spent)
		}
		t.AppendSeparator()
		t.AppendFooter(table.Row{"", "", "", "", text.Bold.Sprint("Total"), text.Bold.Sprint(total), ""})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 5, Align: text.AlignRight},
			{Number: 6, Align: text.AlignRight},
		})
		t.Render()
	}
}

// PrintOverview prints category totals for a month, largest first.
func PrintOverview(w io.Writer, ov core.MonthOverview) {
	fmt.Fprintf(w, "Billed in %04d-%02d: %d transactions\n\n", ov.Year, ov.Month, ov.Count)

	t := newTable(w)
	t.AppendHeader(table.Row{"Category", "Amount"})
	for _, c := range ov.ByCategory {
		t.AppendRow(table.Row{c.Name, c.Amount})
	}
	t.AppendSeparator()
	t.AppendFooter(table.Row{text.Bold.Sprint("Total"), text.Bold.Sprint(ov.Total)})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	t.Render()
}

// PrintWeeks prints the week buckets of a month.
func PrintWeeks(w io.Writer, weeks []core.WeekTotal) {
	t := newTable(w)
	t.AppendHeader(table.Row{"From", "To", "Transactions", "Amount"})
	var total core.Money
	for _, wk := range weeks {
		t.AppendRow(table.Row{wk.Start, wk.End, wk.Count, wk.Total})
		total = total.Add(wk.Total)
	}
	t.AppendSeparator()
	t.AppendFooter(table.Row{"", "", text.Bold.Sprint("Total"), text.Bold.Sprint(total)})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 4, Align: text.AlignRight}})
	t.Render()
}

// PrintCurrent prints what counts toward the current totals.
func PrintCurrent(w io.Writer, cur core.CurrentTotals) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Reference", "Transactions", "Total"})
	t.AppendRow(table.Row{cur.Reference, cur.Count, cur.Total})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})
	t.Render()
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
