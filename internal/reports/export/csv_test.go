package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finboard/finboard/internal/records"
	"github.com/finboard/finboard/internal/reports"
)

func readCSV(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	reader := csv.NewReader(bytes.NewReader(buf.Bytes()))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("csv read error: %v", err)
	}
	return rows
}

func TestWriteCashFlowCSV(t *testing.T) {
	report := reports.CashFlowReport{Rows: []reports.MonthlyFlow{
		{Month: "2024-01", Type: records.EntryRevenue, Total: decimal.NewFromInt(100)},
		{Month: "2024-01", Type: records.EntryExpense, Total: decimal.RequireFromString("40.5")},
	}}
	buf := &bytes.Buffer{}
	if err := Write(buf, report); err != nil {
		t.Fatalf("cash flow csv error: %v", err)
	}
	rows := readCSV(t, buf)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[2][2] != "40.50" {
		t.Fatalf("unexpected total %q", rows[2][2])
	}
}

func TestWriteTopClientsCSVIncludesSummary(t *testing.T) {
	result := reports.TopClientsResult{
		Rows: []reports.ClientRevenue{{Rank: 1, ClientID: 1, Client: "Alice", Total: decimal.NewFromInt(300), Formatted: "R$ 300,00"}},
		Metrics: &reports.Concentration{
			LeadingClient:  "Alice",
			Sum:            decimal.NewFromInt(300),
			SharePercent:   decimal.NewFromInt(100),
			FormattedSum:   "R$ 300,00",
			FormattedShare: "100,0%",
		},
	}
	buf := &bytes.Buffer{}
	if err := WriteTopClientsCSV(buf, result); err != nil {
		t.Fatalf("top clients csv error: %v", err)
	}
	rows := readCSV(t, buf)
	last := rows[len(rows)-1]
	if last[0] != "Leading Share" || last[1] != "100.0" || last[2] != "100,0%" {
		t.Fatalf("unexpected summary row %v", last)
	}
}

func TestWriteRejectsUnknownReport(t *testing.T) {
	if err := Write(&bytes.Buffer{}, struct{}{}); err == nil {
		t.Fatalf("expected error for unsupported report")
	}
}
