package reports

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/finboard/finboard/internal/money"
	"github.com/finboard/finboard/internal/records"
)

const monthLayout = "2006-01"

type flowKey struct {
	month string
	kind  records.EntryType
}

// BuildCashFlow sums ledger entries per calendar month and entry type.
// Months ascend; types within a month keep their first-appearance order in entries.
func BuildCashFlow(entries []records.LedgerEntry) (CashFlowReport, error) {
	if len(entries) == 0 {
		return CashFlowReport{Rows: []MonthlyFlow{}, NoData: true}, nil
	}

	typeOrder := make(map[records.EntryType]int)
	totals := make(map[flowKey]decimal.Decimal)
	keys := make([]flowKey, 0)
	for _, entry := range entries {
		amount, err := money.ParseNonNegative(entry.Amount)
		if err != nil {
			return CashFlowReport{}, &MalformedAmountError{
				Report: KindCashFlow, Entity: "ledger entry", ID: entry.ID, Value: entry.Amount, Err: err,
			}
		}
		if _, seen := typeOrder[entry.Type]; !seen {
			typeOrder[entry.Type] = len(typeOrder)
		}
		key := flowKey{month: entry.Date.Format(monthLayout), kind: entry.Type}
		current, ok := totals[key]
		if !ok {
			keys = append(keys, key)
			current = decimal.Zero
		}
		totals[key] = current.Add(amount)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].month != keys[j].month {
			return keys[i].month < keys[j].month
		}
		return typeOrder[keys[i].kind] < typeOrder[keys[j].kind]
	})

	rows := make([]MonthlyFlow, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, MonthlyFlow{Month: key.month, Type: key.kind, Total: totals[key]})
	}
	return CashFlowReport{Rows: rows}, nil
}

// CashFlow computes the monthly cash flow report.
func (s *Service) CashFlow(ctx context.Context) (CashFlowReport, error) {
	entries, err := s.reader.LedgerEntries(ctx)
	if err != nil {
		return CashFlowReport{}, err
	}
	return memoize(ctx, s, KindCashFlow, entries, func() (CashFlowReport, error) {
		return BuildCashFlow(entries)
	})
}
