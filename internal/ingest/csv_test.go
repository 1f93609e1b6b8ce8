package ingest

import (
	"strings"
	"testing"

	"github.com/ledgerpulse/ledgerpulse/internal/report"
)

func TestParseCSV(t *testing.T) {
	src := "Vendor,Account,Amount\nAcme,6000,\"1,000.50\"\nGlobex,7000,25\n"
	table, err := ParseCSV(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Columns) != 3 || table.Columns[2] != "Amount" {
		t.Fatalf("unexpected columns: %v", table.Columns)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if got := table.Cell(0, 2).Text(); got != "1,000.50" {
		t.Fatalf("quoted field mangled: %q", got)
	}
}

func TestParseCSVSemicolonDelimiter(t *testing.T) {
	src := "Vendor;Account;Amount\nAcme;6000;10\n"
	table, err := ParseCSVBytes([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Columns) != 3 {
		t.Fatalf("delimiter not detected, columns: %v", table.Columns)
	}
}

func TestParseCSVRaggedRowsPadWithNull(t *testing.T) {
	src := "Vendor,Account,Amount\nAcme,6000\n"
	table, err := ParseCSVBytes([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !table.Cell(0, 2).IsNull() {
		t.Fatalf("short row must pad with null")
	}
}

func TestParseCSVEmptyCellsAreNull(t *testing.T) {
	src := "Vendor,Amount\nAcme,\n"
	table, err := ParseCSVBytes([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !table.Cell(0, 1).IsNull() {
		t.Fatalf("empty cell must be null")
	}
}

func TestParseCSVStripsBOM(t *testing.T) {
	src := "\xef\xbb\xbfVendor,Amount\nAcme,5\n"
	table, err := ParseCSVBytes([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Columns[0] != report.ColVendor {
		t.Fatalf("BOM not stripped: %q", table.Columns[0])
	}
}

func TestParseCSVEmptyInput(t *testing.T) {
	if _, err := ParseCSVBytes(nil); err != ErrNoHeader {
		t.Fatalf("expected ErrNoHeader, got %v", err)
	}
	if _, err := ParseCSVBytes([]byte("   \n ")); err != ErrNoHeader {
		t.Fatalf("expected ErrNoHeader for blank input, got %v", err)
	}
}
