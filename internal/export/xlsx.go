// Package export writes the question log to spreadsheet files.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hyperjump/ragscope/internal/models"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the log.
const SheetName = "Logs"

// LogHeader is the first row of the exported sheet.
var LogHeader = []string{
	"Log ID", "Time", "Question", "Mode", "Top K", "Rerank",
	"Docs", "Grounded", "Refused", "Answerability", "Latency (ms)",
}

// XLSXContentType is the MIME type of the exported workbook.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteLogsXLSX writes logs as a single-sheet workbook, one row per entry in
// the given order.
func WriteLogsXLSX(w io.Writer, logs []models.LogEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRow(f, 1, toCells(LogHeader)); err != nil {
		return err
	}
	for i, e := range logs {
		row := []any{
			e.LogID,
			logTime(e.Timestamp),
			e.Question,
			strings.ToUpper(e.Mode),
			e.TopK,
			e.Rerank,
			strings.Join(e.UsedDocs, ", "),
			e.Grounded,
			e.Refused,
			e.Answerability,
			e.TotalMS,
		}
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func toCells(xs []string) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

// logTime keeps the backend text when the timestamp did not parse.
func logTime(ts models.Timestamp) string {
	if ts.Time.IsZero() {
		return ts.Raw
	}
	return ts.Time.UTC().Format(time.RFC3339)
}
