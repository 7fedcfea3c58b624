package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/finboard/finboard/internal/reports"
)

// WriteCashFlowCSV emits monthly totals per entry type as CSV.
func WriteCashFlowCSV(w io.Writer, report reports.CashFlowReport) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Month", "Type", "Total"}); err != nil {
		return err
	}
	for _, row := range report.Rows {
		if err := writer.Write([]string{row.Month, string(row.Type), row.Total.StringFixed(2)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WritePayablesCSV emits the supplier ranking as CSV.
func WritePayablesCSV(w io.Writer, report reports.PayablesReport) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Rank", "Supplier", "Total"}); err != nil {
		return err
	}
	for _, row := range report.Rows {
		if err := writer.Write([]string{strconv.Itoa(row.Rank), row.Supplier, row.Total.StringFixed(2)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTopClientsCSV emits the client ranking followed by the concentration summary.
func WriteTopClientsCSV(w io.Writer, result reports.TopClientsResult) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Rank", "Client", "Total", "Formatted"}); err != nil {
		return err
	}
	for _, row := range result.Rows {
		if err := writer.Write([]string{
			strconv.Itoa(row.Rank),
			row.Client,
			row.Total.StringFixed(2),
			row.Formatted,
		}); err != nil {
			return err
		}
	}
	if m := result.Metrics; m != nil {
		summary := [][]string{
			{},
			{"Leading Client", m.LeadingClient},
			{"Top Clients Total", m.Sum.StringFixed(2), m.FormattedSum},
			{"Leading Share", m.SharePercent.StringFixed(1), m.FormattedShare},
		}
		for _, record := range summary {
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// Write dispatches on the concrete report type returned by reports.Service.Build.
func Write(w io.Writer, report any) error {
	switch r := report.(type) {
	case reports.CashFlowReport:
		return WriteCashFlowCSV(w, r)
	case reports.PayablesReport:
		return WritePayablesCSV(w, r)
	case reports.TopClientsResult:
		return WriteTopClientsCSV(w, r)
	default:
		return fmt.Errorf("export: unsupported report %T", report)
	}
}
