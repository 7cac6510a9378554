package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/GiGurra/boa/pkg/boa"

	"billcycle/internal/cli"
	"billcycle/internal/config"
	"billcycle/internal/core"
	"billcycle/internal/log"
	"billcycle/internal/output"
	"billcycle/internal/services"
	"billcycle/internal/sheets/google"
)

type Params struct {
	Mode      string `descr:"Report to print" alts:"cycles,overview,weeks,current" strict:"true" default:"cycles"`
	Today     string `descr:"Reference date (YYYY-MM-DD), defaults to the local date" optional:"true"`
	Count     int    `descr:"Cycles per card, 0 uses CYCLE_COUNT" default:"0"`
	Year      int    `descr:"Year for overview and weeks, 0 uses the reference year" default:"0"`
	Month     int    `descr:"Month for overview and weeks, 0 uses the reference month" default:"0"`
	WeekStart string `descr:"First day of the week for weekly buckets" default:"monday"`
	Format    string `descr:"Output format" alts:"table,json" strict:"true" default:"table"`
	Xlsx      string `descr:"Also write the report to this .xlsx file" optional:"true"`
	Sheets    bool   `descr:"Also append the report to GOOGLE_SPREADSHEET_ID" default:"false"`
}

func main() {
	boa.NewCmdT[Params]("billcycle").
		WithShort("Credit card billing cycles and statement reports").
		WithLong("Computes billing cycles, due dates and statement-month totals from the configured ledger (memory seed file or SQLite).").
		WithRunFunc(func(params *Params) {
			if err := run(params); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}).
		Run()
}

func run(p *Params) error {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentCLI, os.Stderr)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := log.NewContext(context.Background(), logger)
	store := cli.InitBackend(ctx, logger, cfg)
	defer store.Close()

	today := core.DateOf(time.Now())
	if p.Today != "" {
		d, err := core.ParseDate(p.Today)
		if err != nil {
			return fmt.Errorf("--today: %w", err)
		}
		today = d
	}
	year, month := today.Year(), today.Month()
	if p.Year != 0 {
		year = p.Year
	}
	if p.Month != 0 {
		month = p.Month
	}
	count := p.Count
	if count <= 0 {
		count = cfg.CycleCount
	}

	reports := services.NewReportService(store.Backend, store.Backend, cfg.ReportLookbackDays)
	var wb output.Workbook
	var view any

	switch p.Mode {
	case "cycles":
		cards, err := reports.CardCycles(ctx, count, today)
		if err != nil {
			return err
		}
		wb.Cycles, view = cards, cards
		if p.Format == "table" {
			output.PrintCycles(os.Stdout, cards, today)
		}
	case "overview":
		ov, err := reports.MonthOverview(ctx, year, month)
		if err != nil {
			return err
		}
		wb.Overview, view = &ov, ov
		if p.Format == "table" {
			output.PrintOverview(os.Stdout, ov)
		}
	case "weeks":
		weekStart, err := core.ParseWeekday(p.WeekStart)
		if err != nil {
			return fmt.Errorf("--week-start: %w", err)
		}
		weeks, err := reports.WeeklyTotals(ctx, year, month, weekStart)
		if err != nil {
			return err
		}
		wb.Weeks, view = weeks, weeks
		if p.Format == "table" {
			output.PrintWeeks(os.Stdout, weeks)
		}
	case "current":
		cur, err := reports.CurrentTotals(ctx, today)
		if err != nil {
			return err
		}
		wb.Current, view = &cur, cur
		if p.Format == "table" {
			output.PrintCurrent(os.Stdout, cur)
		}
	}

	if p.Format == "json" {
		if err := output.PrintJSON(os.Stdout, view); err != nil {
			return err
		}
	}

	if p.Xlsx != "" {
		if err := output.WriteXLSX(p.Xlsx, wb); err != nil {
			return err
		}
		logger.Info("Workbook written", "path", p.Xlsx, log.FieldOperation, log.OpExport)
	}

	if p.Sheets {
		return exportToSheets(ctx, cfg, wb)
	}
	return nil
}

func exportToSheets(ctx context.Context, cfg *config.Config, wb output.Workbook) error {
	client, err := google.NewClient(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		return fmt.Errorf("sheets export: %w", err)
	}
	now := time.Now()
	switch {
	case wb.Overview != nil:
		_, err = client.AppendMonthOverview(ctx, *wb.Overview, now)
	case len(wb.Cycles) > 0:
		_, err = client.AppendStatements(ctx, wb.Cycles, now)
	default:
		return errors.New("sheets export supports the overview and cycles modes")
	}
	if err != nil {
		return fmt.Errorf("sheets export: %w", err)
	}
	return nil
}
