// Package records holds the financial rows the dashboard browses and reports on,
// and the read-only stores that load them.
package records

import (
	"context"
	"errors"
	"time"
)

// EntryType classifies a ledger entry.
type EntryType string

const (
	EntryRevenue EntryType = "Revenue"
	EntryExpense EntryType = "Expense"
)

// StatusSettled is the only receivable status that counts as realized revenue.
const StatusSettled = "Settled"

// Client is a customer that receivables point at.
type Client struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PayableEntry is an amount owed to a supplier. Amount is the stored textual value.
type PayableEntry struct {
	ID       int64     `json:"id"`
	Supplier string    `json:"supplier"`
	Amount   string    `json:"amount"`
	DueDate  time.Time `json:"due_date"`
	Status   string    `json:"status"`
}

// ReceivableEntry is an amount owed by a client. Unassigned is set when the
// stored client reference is NULL, in which case ClientID is 0.
type ReceivableEntry struct {
	ID         int64     `json:"id"`
	ClientID   int64     `json:"client_id"`
	Unassigned bool      `json:"unassigned,omitempty"`
	Amount     string    `json:"amount"`
	Status     string    `json:"status"`
	Date       time.Time `json:"date"`
}

// LedgerEntry is a single dated revenue or expense movement.
type LedgerEntry struct {
	ID     int64     `json:"id"`
	Date   time.Time `json:"date"`
	Type   EntryType `json:"type"`
	Amount string    `json:"amount"`
}

// Reader exposes the four read-only row fetches. Rows come back in storage
// order with no filtering applied.
type Reader interface {
	Clients(ctx context.Context) ([]Client, error)
	Payables(ctx context.Context) ([]PayableEntry, error)
	Receivables(ctx context.Context) ([]ReceivableEntry, error)
	LedgerEntries(ctx context.Context) ([]LedgerEntry, error)
}

var (
	// ErrSchemaMissing indicates the configured tables do not exist.
	ErrSchemaMissing = errors.New("records: schema missing")
	// ErrMalformedRow indicates a row that could not be decoded.
	ErrMalformedRow = errors.New("records: malformed row")
)

// ClientIndex maps client identifiers to clients.
func ClientIndex(clients []Client) map[int64]Client {
	index := make(map[int64]Client, len(clients))
	for _, c := range clients {
		index[c.ID] = c
	}
	return index
}
