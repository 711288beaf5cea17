package stats

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseExportFormat(t *testing.T) {
	if f, err := ParseExportFormat(" XLSX "); err != nil || f != FormatXLSX {
		t.Fatalf("expected xlsx, got %q %v", f, err)
	}
	if _, err := ParseExportFormat("pdf"); err == nil {
		t.Fatalf("expected error for pdf")
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, FormatCSV, CardAggregates(testLedger(), nil)); err != nil {
		t.Fatalf("export: %v", err)
	}
	want := "card,correct,incorrect,accuracy,last_reviewed\n" +
		"card-1,2,1,0.6667,2024-03-05 09:00:00\n" +
		"card-2,0,1,0.0000,2024-03-01 10:00:00\n" +
		"card-3,1,0,1.0000,2024-03-04 10:00:00\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}
}

func TestExportXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, FormatXLSX, CardAggregates(testLedger(), nil)); err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() {
		_ = f.Close()
	}()
	rows, err := f.GetRows(exportSheet)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header and 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "card" || rows[1][0] != "card-1" || rows[1][1] != "2" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}
