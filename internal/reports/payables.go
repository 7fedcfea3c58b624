package reports

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/finboard/finboard/internal/money"
	"github.com/finboard/finboard/internal/records"
)

// BuildPayablesDistribution sums payables per supplier and keeps the ten
// largest, ordered by total descending then supplier name.
func BuildPayablesDistribution(entries []records.PayableEntry) (PayablesReport, error) {
	if len(entries) == 0 {
		return PayablesReport{Rows: []SupplierTotal{}, NoData: true}, nil
	}

	totals := make(map[string]decimal.Decimal)
	for _, entry := range entries {
		amount, err := money.ParseNonNegative(entry.Amount)
		if err != nil {
			return PayablesReport{}, &MalformedAmountError{
				Report: KindPayablesDistribution, Entity: "payable", ID: entry.ID, Value: entry.Amount, Err: err,
			}
		}
		current, ok := totals[entry.Supplier]
		if !ok {
			current = decimal.Zero
		}
		totals[entry.Supplier] = current.Add(amount)
	}

	rows := make([]SupplierTotal, 0, len(totals))
	for supplier, total := range totals {
		rows = append(rows, SupplierTotal{Supplier: supplier, Total: total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if cmp := rows[i].Total.Cmp(rows[j].Total); cmp != 0 {
			return cmp > 0
		}
		return rows[i].Supplier < rows[j].Supplier
	})
	if len(rows) > PayablesLimit {
		rows = rows[:PayablesLimit]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return PayablesReport{Rows: rows}, nil
}

// PayablesDistribution computes the supplier distribution report.
func (s *Service) PayablesDistribution(ctx context.Context) (PayablesReport, error) {
	entries, err := s.reader.Payables(ctx)
	if err != nil {
		return PayablesReport{}, err
	}
	return memoize(ctx, s, KindPayablesDistribution, entries, func() (PayablesReport, error) {
		return BuildPayablesDistribution(entries)
	})
}
