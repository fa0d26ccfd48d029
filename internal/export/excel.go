// Package export writes agent history to spreadsheet files.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rileyhilliard/ccdash/internal/api"
	"github.com/rileyhilliard/ccdash/internal/errors"
	"github.com/rileyhilliard/ccdash/internal/feed"
	"github.com/rileyhilliard/ccdash/internal/health"
)

const (
	sheetSummary = "Summary"
	sheetHistory = "History"

	timeLayout = "2006-01-02 15:04:05"
)

// Cell colors per tier (fill, font).
const (
	colorHeaderBg   = "4472C4"
	colorHeaderFont = "FFFFFF"
	colorGoodBg     = "C6EFCE"
	colorGoodFont   = "006100"
	colorWarningBg  = "FFEB9C"
	colorWarnFont   = "9C6500"
	colorCriticalBg = "FFC7CE"
	colorCritFont   = "9C0006"
)

// Report is one agent's history over a range, as served (newest first).
type Report struct {
	AgentID     string
	Range       string
	GeneratedAt time.Time
	Points      []api.HistoryPoint
}

// Writer renders history reports to .xlsx workbooks.
type Writer struct {
	loc        *time.Location
	thresholds health.Thresholds
}

// NewWriter creates a writer. A nil location means local time.
func NewWriter(th health.Thresholds, loc *time.Location) *Writer {
	if loc == nil {
		loc = time.Local
	}
	return &Writer{loc: loc, thresholds: th}
}

type styles struct {
	header int
	label  int
	tier   [3]int
}

// Write saves the report and returns the final path (".xlsx" is appended
// when missing). A report with no points is an EMPTY_RESULT error.
func (w *Writer) Write(r Report, outputPath string) (string, error) {
	if len(r.Points) == 0 {
		return "", errors.New(errors.ErrEmptyResult,
			fmt.Sprintf("No history for %s in the last %s", r.AgentID, r.Range),
			"Try a longer --range or check the agent is reporting")
	}

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath += ".xlsx"
	}

	f := excelize.NewFile()
	defer f.Close()

	st, err := w.createStyles(f)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrExport, "Failed to create workbook styles", "")
	}

	chrono := feed.Chronological(r.Points)

	if err := w.writeSummary(f, st, r, chrono); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrExport, "Failed to write summary sheet", "")
	}
	if err := w.writeHistory(f, st, chrono); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrExport, "Failed to write history sheet", "")
	}

	_ = f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(sheetSummary); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrExport,
			fmt.Sprintf("Couldn't save %s", filepath.Base(outputPath)),
			"Check the output directory exists and is writable")
	}
	return outputPath, nil
}

func (w *Writer) createStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error

	st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: colorHeaderFont},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{colorHeaderBg}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return st, err
	}

	st.label, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return st, err
	}

	tierColors := [3][2]string{
		health.Good:     {colorGoodBg, colorGoodFont},
		health.Moderate: {colorWarningBg, colorWarnFont},
		health.Danger:   {colorCriticalBg, colorCritFont},
	}
	for tier, c := range tierColors {
		st.tier[tier], err = f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Color: c[1]},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{c[0]}, Pattern: 1},
			NumFmt:    2,
			Alignment: &excelize.Alignment{Horizontal: "right"},
		})
		if err != nil {
			return st, err
		}
	}
	return st, nil
}

func (w *Writer) writeSummary(f *excelize.File, st styles, r Report, chrono []api.HistoryPoint) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}
	_ = f.SetColWidth(sheetSummary, "A", "A", 18)
	_ = f.SetColWidth(sheetSummary, "B", "D", 14)

	first, last := chrono[0], chrono[len(chrono)-1]
	latest := w.thresholds.Check(last.CPUPercent, last.MemoryPercent, last.DiskPercent)

	rows := [][]any{
		{"Agent", r.AgentID},
		{"Range", r.Range},
		{"Generated", r.GeneratedAt.In(w.loc).Format(timeLayout)},
		{"Samples", len(chrono)},
		{"First sample", first.Timestamp.In(w.loc).Format(timeLayout)},
		{"Last sample", last.Timestamp.In(w.loc).Format(timeLayout)},
		{"Latest status", latest.Tier.Label()},
		{"Health score", latest.Score},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return err
		}
		_ = f.SetCellStyle(sheetSummary, cell, cell, st.label)
	}

	// Per-series aggregates below the facts.
	start := len(rows) + 2
	header := []any{"Metric", "Average", "Peak", "Latest"}
	cell, _ := excelize.CoordinatesToCellName(1, start)
	if err := f.SetSheetRow(sheetSummary, cell, &header); err != nil {
		return err
	}
	end, _ := excelize.CoordinatesToCellName(len(header), start)
	_ = f.SetCellStyle(sheetSummary, cell, end, st.header)

	for i, s := range feed.AllSeries {
		avg, peak := aggregate(chrono, s)
		latestVal := s.Value(last)
		row := i + start + 1
		values := []any{s.Short(), avg, peak, latestVal}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetSummary, cell, &values); err != nil {
			return err
		}
		for col, v := range []float64{avg, peak, latestVal} {
			c, _ := excelize.CoordinatesToCellName(col+2, row)
			_ = f.SetCellStyle(sheetSummary, c, c, st.tier[w.thresholds.MetricTier(v)])
		}
	}
	return nil
}

func (w *Writer) writeHistory(f *excelize.File, st styles, chrono []api.HistoryPoint) error {
	if _, err := f.NewSheet(sheetHistory); err != nil {
		return err
	}

	headers := []any{"Time", "CPU %", "Memory %", "Disk %", "Status", "Score"}
	if err := f.SetSheetRow(sheetHistory, "A1", &headers); err != nil {
		return err
	}
	_ = f.SetCellStyle(sheetHistory, "A1", "F1", st.header)
	_ = f.SetColWidth(sheetHistory, "A", "A", 22)
	_ = f.SetColWidth(sheetHistory, "B", "F", 12)

	for i, p := range chrono {
		row := i + 2
		report := w.thresholds.Check(p.CPUPercent, p.MemoryPercent, p.DiskPercent)
		values := []any{
			p.Timestamp.In(w.loc).Format(timeLayout),
			p.CPUPercent,
			p.MemoryPercent,
			p.DiskPercent,
			report.Tier.Label(),
			report.Score,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetHistory, cell, &values); err != nil {
			return err
		}
		for col, v := range []float64{p.CPUPercent, p.MemoryPercent, p.DiskPercent} {
			c, _ := excelize.CoordinatesToCellName(col+2, row)
			_ = f.SetCellStyle(sheetHistory, c, c, st.tier[w.thresholds.MetricTier(v)])
		}
		statusCell, _ := excelize.CoordinatesToCellName(5, row)
		_ = f.SetCellStyle(sheetHistory, statusCell, statusCell, st.tier[report.Tier])
	}

	return f.SetPanes(sheetHistory, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func aggregate(points []api.HistoryPoint, s feed.Series) (avg, peak float64) {
	var sum float64
	for i, p := range points {
		v := s.Value(p)
		sum += v
		if i == 0 || v > peak {
			peak = v
		}
	}
	return sum / float64(len(points)), peak
}
