package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rileyhilliard/ccdash/internal/api"
	"github.com/rileyhilliard/ccdash/internal/errors"
	"github.com/rileyhilliard/ccdash/internal/health"
)

var epoch = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func testReport() Report {
	// Newest first, as the server returns it.
	return Report{
		AgentID:     "web-1",
		Range:       "30m",
		GeneratedAt: epoch.Add(time.Minute),
		Points: []api.HistoryPoint{
			{Timestamp: epoch.Add(20 * time.Second), CPUPercent: 91, MemoryPercent: 40, DiskPercent: 30},
			{Timestamp: epoch.Add(10 * time.Second), CPUPercent: 65, MemoryPercent: 40, DiskPercent: 30},
			{Timestamp: epoch, CPUPercent: 20, MemoryPercent: 40, DiskPercent: 30},
		},
	}
}

func openWorkbook(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func raw(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func TestWrite_Sheets(t *testing.T) {
	w := NewWriter(health.DefaultThresholds(), time.UTC)
	path, err := w.Write(testReport(), filepath.Join(t.TempDir(), "web-1.xlsx"))
	require.NoError(t, err)

	f := openWorkbook(t, path)
	assert.Equal(t, []string{"Summary", "History"}, f.GetSheetList())
}

func TestWrite_HistoryIsChronological(t *testing.T) {
	w := NewWriter(health.DefaultThresholds(), time.UTC)
	path, err := w.Write(testReport(), filepath.Join(t.TempDir(), "web-1.xlsx"))
	require.NoError(t, err)

	f := openWorkbook(t, path)
	assert.Equal(t, "Time", raw(t, f, "History", "A1"))
	assert.Equal(t, "Status", raw(t, f, "History", "E1"))

	assert.Equal(t, "2024-01-15 10:00:00", raw(t, f, "History", "A2"))
	assert.Equal(t, "2024-01-15 10:00:10", raw(t, f, "History", "A3"))
	assert.Equal(t, "2024-01-15 10:00:20", raw(t, f, "History", "A4"))

	assert.Equal(t, "20", raw(t, f, "History", "B2"))
	assert.Equal(t, "91", raw(t, f, "History", "B4"))

	assert.Equal(t, "Healthy", raw(t, f, "History", "E2"))
	assert.Equal(t, "Warning", raw(t, f, "History", "E3"))
	assert.Equal(t, "Critical", raw(t, f, "History", "E4"))

	assert.Empty(t, raw(t, f, "History", "A5"))
}

func TestWrite_Summary(t *testing.T) {
	w := NewWriter(health.DefaultThresholds(), time.UTC)
	path, err := w.Write(testReport(), filepath.Join(t.TempDir(), "web-1.xlsx"))
	require.NoError(t, err)

	f := openWorkbook(t, path)
	assert.Equal(t, "web-1", raw(t, f, "Summary", "B1"))
	assert.Equal(t, "30m", raw(t, f, "Summary", "B2"))
	assert.Equal(t, "3", raw(t, f, "Summary", "B4"))
	assert.Equal(t, "2024-01-15 10:00:00", raw(t, f, "Summary", "B5"))
	assert.Equal(t, "2024-01-15 10:00:20", raw(t, f, "Summary", "B6"))
	assert.Equal(t, "Critical", raw(t, f, "Summary", "B7"))

	// Aggregate table starts two rows below the facts.
	assert.Equal(t, "Metric", raw(t, f, "Summary", "A10"))
	assert.Equal(t, "CPU", raw(t, f, "Summary", "A11"))
	assert.Equal(t, "Memory", raw(t, f, "Summary", "A12"))
	assert.Equal(t, "Disk", raw(t, f, "Summary", "A13"))
	assert.Equal(t, "91", raw(t, f, "Summary", "C11"), "peak CPU")
	assert.Equal(t, "40", raw(t, f, "Summary", "B12"), "average memory")
}

func TestWrite_AddsExtension(t *testing.T) {
	w := NewWriter(health.DefaultThresholds(), time.UTC)
	path, err := w.Write(testReport(), filepath.Join(t.TempDir(), "report"))
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", filepath.Ext(path))

	path, err = w.Write(testReport(), filepath.Join(t.TempDir(), "report.XLSX"))
	require.NoError(t, err)
	assert.Equal(t, ".XLSX", filepath.Ext(path))
}

func TestWrite_EmptyHistory(t *testing.T) {
	w := NewWriter(health.DefaultThresholds(), time.UTC)
	r := testReport()
	r.Points = nil

	_, err := w.Write(r, filepath.Join(t.TempDir(), "empty.xlsx"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrEmptyResult))
	assert.Contains(t, err.Error(), "No history for web-1 in the last 30m")
}

func TestWrite_MissingDirectory(t *testing.T) {
	w := NewWriter(health.DefaultThresholds(), time.UTC)
	_, err := w.Write(testReport(), filepath.Join(t.TempDir(), "missing", "out.xlsx"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExport))
}

func TestWrite_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	w := NewWriter(health.DefaultThresholds(), loc)
	path, err := w.Write(testReport(), filepath.Join(t.TempDir(), "tz.xlsx"))
	require.NoError(t, err)

	f := openWorkbook(t, path)
	assert.Equal(t, "2024-01-15 12:00:00", raw(t, f, "History", "A2"))
}

func TestNewWriter_NilLocation(t *testing.T) {
	w := NewWriter(health.DefaultThresholds(), nil)
	assert.Equal(t, time.Local, w.loc)
}
