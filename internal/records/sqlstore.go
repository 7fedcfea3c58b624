package records

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// SQLStore reads records through database/sql. It is used with SQLite.
type SQLStore struct {
	db     *sql.DB
	schema Schema
}

// NewSQLStore constructs a store over an open database handle.
func NewSQLStore(db *sql.DB, schema Schema) *SQLStore {
	return &SQLStore{db: db, schema: schema}
}

// Clients lists every client.
func (s *SQLStore) Clients(ctx context.Context) ([]Client, error) {
	var out []Client
	err := s.query(ctx, s.schema.clientsQuery(sq.Question), func(rows *sql.Rows) (err error) {
		out, err = s.schema.collectClients(rows)
		return err
	})
	return out, err
}

// Payables lists every payable.
func (s *SQLStore) Payables(ctx context.Context) ([]PayableEntry, error) {
	var out []PayableEntry
	err := s.query(ctx, s.schema.payablesQuery(sq.Question), func(rows *sql.Rows) (err error) {
		out, err = s.schema.collectPayables(rows)
		return err
	})
	return out, err
}

// Receivables lists every receivable.
func (s *SQLStore) Receivables(ctx context.Context) ([]ReceivableEntry, error) {
	var out []ReceivableEntry
	err := s.query(ctx, s.schema.receivablesQuery(sq.Question), func(rows *sql.Rows) (err error) {
		out, err = s.schema.collectReceivables(rows)
		return err
	})
	return out, err
}

// LedgerEntries lists every ledger entry.
func (s *SQLStore) LedgerEntries(ctx context.Context) ([]LedgerEntry, error) {
	var out []LedgerEntry
	err := s.query(ctx, s.schema.ledgerQuery(sq.Question), func(rows *sql.Rows) (err error) {
		out, err = s.schema.collectLedger(rows)
		return err
	})
	return out, err
}

func (s *SQLStore) query(ctx context.Context, builder sq.SelectBuilder, collect func(*sql.Rows) error) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("records: build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return fmt.Errorf("%w: %v", ErrSchemaMissing, err)
		}
		return fmt.Errorf("records: query: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return collect(rows)
}
