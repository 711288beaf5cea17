package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/flashcards/internal/ledger"
	"github.com/verte-zerg/flashcards/internal/model"
)

const exportSheet = "Sheet1"

var exportHeaders = []string{"card", "correct", "incorrect", "accuracy", "last_reviewed"}

// ExportFormat selects the card table export encoding.
type ExportFormat string

// Supported export formats.
const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ParseExportFormat validates a user-supplied format name.
func ParseExportFormat(name string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (use csv or xlsx)", name)
	}
}

// Export writes card aggregates in the given format, ordered by card id.
func Export(w io.Writer, format ExportFormat, aggs []model.CardAggregate) error {
	sorted := make([]model.CardAggregate, len(aggs))
	copy(sorted, aggs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CardID < sorted[j].CardID
	})
	switch format {
	case FormatCSV:
		return writeCSV(w, sorted)
	case FormatXLSX:
		return writeXLSX(w, sorted)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func lastReviewedCell(agg model.CardAggregate) string {
	if agg.LastReviewed.IsZero() {
		return ""
	}
	return agg.LastReviewed.Format(ledger.TimestampLayout)
}

func writeCSV(w io.Writer, aggs []model.CardAggregate) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeaders); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, agg := range aggs {
		record := []string{
			agg.CardID,
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
			fmt.Sprintf("%.4f", Accuracy(agg.Correct, agg.Incorrect)),
			lastReviewedCell(agg),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func writeXLSX(w io.Writer, aggs []model.CardAggregate) error {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of the in-memory workbook.
			_ = cerr
		}
	}()

	header := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write xlsx header: %w", err)
	}
	for i, agg := range aggs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to resolve xlsx cell: %w", err)
		}
		row := []interface{}{
			agg.CardID,
			agg.Correct,
			agg.Incorrect,
			Accuracy(agg.Correct, agg.Incorrect),
			lastReviewedCell(agg),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write xlsx row: %w", err)
		}
	}
	if err := f.SetColWidth(exportSheet, "A", "A", 24); err != nil {
		return fmt.Errorf("failed to size xlsx column: %w", err)
	}
	if err := f.SetColWidth(exportSheet, "E", "E", 20); err != nil {
		return fmt.Errorf("failed to size xlsx column: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}
