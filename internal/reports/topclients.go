package reports

import (
	"context"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/finboard/finboard/internal/money"
	"github.com/finboard/finboard/internal/records"
)

var hundred = decimal.NewFromInt(100)

// BuildTopClients ranks clients by settled revenue and keeps the top five.
//
// Only receivables whose status is exactly "Settled" count. Settled
// receivables with no client, or pointing at a client missing from clients,
// are skipped and listed in the result's Orphans. Every settled amount is validated before
// client references are resolved.
func BuildTopClients(receivables []records.ReceivableEntry, clients map[int64]records.Client, f money.Formatter) (TopClientsResult, error) {
	type settled struct {
		entry  records.ReceivableEntry
		amount decimal.Decimal
	}
	candidates := make([]settled, 0, len(receivables))
	for _, entry := range receivables {
		if entry.Status != records.StatusSettled {
			continue
		}
		amount, err := money.ParseNonNegative(entry.Amount)
		if err != nil {
			return TopClientsResult{}, &MalformedAmountError{
				Report: KindTopClients, Entity: "receivable", ID: entry.ID, Value: entry.Amount, Err: err,
			}
		}
		candidates = append(candidates, settled{entry: entry, amount: amount})
	}

	var orphans []OrphanReference
	totals := make(map[int64]decimal.Decimal)
	for _, c := range candidates {
		if c.entry.Unassigned {
			orphans = append(orphans, OrphanReference{ReceivableID: c.entry.ID, Unassigned: true})
			continue
		}
		if _, ok := clients[c.entry.ClientID]; !ok {
			orphans = append(orphans, OrphanReference{ReceivableID: c.entry.ID, ClientID: c.entry.ClientID})
			continue
		}
		current, ok := totals[c.entry.ClientID]
		if !ok {
			current = decimal.Zero
		}
		totals[c.entry.ClientID] = current.Add(c.amount)
	}

	rows := make([]ClientRevenue, 0, len(totals))
	for id, total := range totals {
		rows = append(rows, ClientRevenue{ClientID: id, Client: clients[id].Name, Total: total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if cmp := rows[i].Total.Cmp(rows[j].Total); cmp != 0 {
			return cmp > 0
		}
		if rows[i].Client != rows[j].Client {
			return rows[i].Client < rows[j].Client
		}
		return rows[i].ClientID < rows[j].ClientID
	})
	if len(rows) > TopClientsLimit {
		rows = rows[:TopClientsLimit]
	}
	for i := range rows {
		rows[i].Rank = i + 1
		rows[i].Formatted = f.Currency(rows[i].Total)
	}

	result := TopClientsResult{Rows: rows, Orphans: orphans}
	if len(rows) == 0 {
		result.NoData = true
		return result, nil
	}
	result.Metrics = concentration(rows, f)
	return result, nil
}

func concentration(rows []ClientRevenue, f money.Formatter) *Concentration {
	sum := decimal.Zero
	for _, row := range rows {
		sum = sum.Add(row.Total)
	}
	leader := rows[0]
	share, percent := decimal.Zero, decimal.Zero
	if sum.IsPositive() {
		share = leader.Total.Div(sum)
		percent = leader.Total.Mul(hundred).Div(sum).Round(1)
	}
	return &Concentration{
		LeadingClient:  leader.Client,
		LeadingAmount:  leader.Total,
		Sum:            sum,
		Share:          share,
		SharePercent:   percent,
		FormattedSum:   f.Currency(sum),
		FormattedShare: f.Percent(percent),
	}
}

// TopClients computes the client ranking from settled receivables.
func (s *Service) TopClients(ctx context.Context) (TopClientsResult, error) {
	receivables, err := s.reader.Receivables(ctx)
	if err != nil {
		return TopClientsResult{}, err
	}
	clients, err := s.reader.Clients(ctx)
	if err != nil {
		return TopClientsResult{}, err
	}
	result, err := memoize(ctx, s, KindTopClients, []any{receivables, clients, s.formatter.Key()}, func() (TopClientsResult, error) {
		return BuildTopClients(receivables, records.ClientIndex(clients), s.formatter)
	})
	if err != nil {
		return TopClientsResult{}, err
	}
	if n := result.OrphanCount(); n > 0 {
		s.observer.AddOrphans(string(KindTopClients), n)
		for _, orphan := range result.Orphans {
			s.logger.Warn("settled receivable skipped", slog.Any("error", orphan))
		}
	}
	return result, nil
}
