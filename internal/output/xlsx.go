package output

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"billcycle/internal/core"
)

const (
	SheetCycles   = "Cycles"
	SheetOverview = "Overview"
	SheetWeeks    = "Weeks"
	SheetCurrent  = "Current"
)

// Workbook collects the views to export. Nil or empty views get no sheet.
type Workbook struct {
	Cycles   []core.CardCycles
	Overview *core.MonthOverview
	Weeks    []core.WeekTotal
	Current  *core.CurrentTotals
}

type sheet struct {
	name string
	rows [][]any
}

// sheets lays out every non-empty view as a header row followed by data rows.
func (wb Workbook) sheets() []sheet {
	var out []sheet
	if len(wb.Cycles) > 0 {
		rows := [][]any{{"Card", "Cycle", "Start", "End", "Due", "Purchases", "Spent"}}
		for _, card := range wb.Cycles {
			for _, cs := range card.Cycles {
				rows = append(rows, []any{
					card.Card.DisplayName(), cs.Cycle.ID,
					cs.Cycle.Start.String(), cs.Cycle.End.String(), cs.Cycle.Due.String(),
					cs.Count, cs.Spent.Euros(),
				})
			}
		}
		out = append(out, sheet{SheetCycles, rows})
	}
	if wb.Overview != nil {
		rows := [][]any{{"Period", "Category", "Amount"}}
		period := fmt.Sprintf("%04d-%02d", wb.Overview.Year, wb.Overview.Month)
		for _, c := range wb.Overview.ByCategory {
			rows = append(rows, []any{period, c.Name, c.Amount.Euros()})
		}
		rows = append(rows, []any{period, "Total", wb.Overview.Total.Euros()})
		out = append(out, sheet{SheetOverview, rows})
	}
	if len(wb.Weeks) > 0 {
		rows := [][]any{{"From", "To", "Transactions", "Amount"}}
		for _, w := range wb.Weeks {
			rows = append(rows, []any{w.Start.String(), w.End.String(), w.Count, w.Total.Euros()})
		}
		out = append(out, sheet{SheetWeeks, rows})
	}
	if wb.Current != nil {
		out = append(out, sheet{SheetCurrent, [][]any{
			{"Reference", "Transactions", "Total"},
			{wb.Current.Reference.String(), wb.Current.Count, wb.Current.Total.Euros()},
		}})
	}
	return out
}

// WriteXLSX saves the workbook to path, one sheet per view.
func WriteXLSX(path string, wb Workbook) error {
	sheets := wb.sheets()
	if len(sheets) == 0 {
		return errors.New("nothing to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return fmt.Errorf("write %s row %d: %w", s.name, r+1, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
