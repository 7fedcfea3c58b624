package records

import (
	"fmt"
	"strings"
	"time"
)

// rowSource is the iteration surface shared by *sql.Rows and pgx.Rows.
type rowSource interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339,
	time.RFC3339Nano,
}

func parseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q", ErrMalformedRow, raw)
}

func parseOptionalDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	return parseDate(raw)
}

func (s Schema) collectClients(rows rowSource) ([]Client, error) {
	out := make([]Client, 0)
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("records: scan client: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s Schema) collectPayables(rows rowSource) ([]PayableEntry, error) {
	out := make([]PayableEntry, 0)
	for rows.Next() {
		var (
			p   PayableEntry
			due string
		)
		if err := rows.Scan(&p.ID, &p.Supplier, &p.Amount, &due, &p.Status); err != nil {
			return nil, fmt.Errorf("records: scan payable: %w", err)
		}
		date, err := parseOptionalDate(due)
		if err != nil {
			return nil, fmt.Errorf("records: payable %d: %w", p.ID, err)
		}
		p.DueDate = date
		p.Status = s.Canonical(p.Status)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s Schema) collectReceivables(rows rowSource) ([]ReceivableEntry, error) {
	out := make([]ReceivableEntry, 0)
	for rows.Next() {
		var (
			r        ReceivableEntry
			clientID *int64
			date     string
		)
		if err := rows.Scan(&r.ID, &clientID, &r.Amount, &r.Status, &date); err != nil {
			return nil, fmt.Errorf("records: scan receivable: %w", err)
		}
		if clientID != nil {
			r.ClientID = *clientID
		} else {
			r.Unassigned = true
		}
		parsed, err := parseOptionalDate(date)
		if err != nil {
			return nil, fmt.Errorf("records: receivable %d: %w", r.ID, err)
		}
		r.Date = parsed
		r.Status = s.Canonical(r.Status)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s Schema) collectLedger(rows rowSource) ([]LedgerEntry, error) {
	out := make([]LedgerEntry, 0)
	for rows.Next() {
		var (
			e          LedgerEntry
			date, kind string
		)
		if err := rows.Scan(&e.ID, &date, &kind, &e.Amount); err != nil {
			return nil, fmt.Errorf("records: scan ledger entry: %w", err)
		}
		// Ledger entries are bucketed by month, so the date is mandatory.
		parsed, err := parseDate(date)
		if err != nil {
			return nil, fmt.Errorf("records: ledger entry %d: %w", e.ID, err)
		}
		e.Date = parsed
		e.Type = EntryType(s.Canonical(kind))
		out = append(out, e)
	}
	return out, rows.Err()
}
