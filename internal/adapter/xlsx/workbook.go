// Package xlsx exports summary tables as an Excel workbook.
package xlsx

import (
	"fmt"
	"io"
	"time"

	"github.com/couchcryptid/bike-rental-report/internal/report"
	"github.com/xuri/excelize/v2"
)

// Sheet names, in workbook order.
const (
	SheetOverview  = "Overview"
	SheetSeason    = "Season"
	SheetWeather   = "Weather"
	SheetTimeOfDay = "TimeOfDay"
	SheetYearMonth = "YearMonth"
)

// WriteSummary renders s as a workbook with one sheet per table and writes it to w.
func WriteSummary(w io.Writer, s report.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetOverview); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}

	tables := []struct {
		name string
		rows [][]any
	}{
		{SheetOverview, overviewRows(s)},
		{SheetSeason, categoryRows("season", s.BySeason)},
		{SheetWeather, categoryRows("weather", s.ByWeather)},
		{SheetTimeOfDay, timeOfDayRows(s.ByTimeOfDay)},
		{SheetYearMonth, yearMonthRows(s.ByYearMonth)},
	}

	for _, t := range tables {
		if t.name != SheetOverview {
			if _, err := f.NewSheet(t.name); err != nil {
				return fmt.Errorf("create sheet %s: %w", t.name, err)
			}
		}
		if err := writeRows(f, t.name, t.rows); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func overviewRows(s report.Summary) [][]any {
	return [][]any{
		{"generated_at", s.GeneratedAt.UTC().Format(time.RFC3339)},
		{"filter", s.Filter.Key()},
		{"records", s.Records},
	}
}

func categoryRows(dimension string, in []report.CategoryMean) [][]any {
	rows := [][]any{{dimension, "mean_count", "records"}}
	for _, c := range in {
		rows = append(rows, []any{c.Label, c.Mean, c.Records})
	}
	return rows
}

func timeOfDayRows(in []report.TimeOfDayTotal) [][]any {
	rows := [][]any{{"time_of_day", "total_count", "share_pct", "records"}}
	for _, t := range in {
		rows = append(rows, []any{t.Label, t.Total, t.Share, t.Records})
	}
	return rows
}

func yearMonthRows(in []report.MonthlyMean) [][]any {
	rows := [][]any{{"year", "month", "mean_count", "records"}}
	for _, m := range in {
		rows = append(rows, []any{m.Year, m.Month, m.Mean, m.Records})
	}
	return rows
}
