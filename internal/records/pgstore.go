package records

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUndefinedTable = "42P01"

// PGStore reads records from PostgreSQL.
type PGStore struct {
	pool   *pgxpool.Pool
	schema Schema
}

// NewPGStore constructs a store over a pgx pool.
func NewPGStore(pool *pgxpool.Pool, schema Schema) *PGStore {
	return &PGStore{pool: pool, schema: schema}
}

// Clients lists every client.
func (s *PGStore) Clients(ctx context.Context) ([]Client, error) {
	var out []Client
	err := s.query(ctx, s.schema.clientsQuery(sq.Dollar), func(rows pgx.Rows) (err error) {
		out, err = s.schema.collectClients(rows)
		return err
	})
	return out, err
}

// Payables lists every payable.
func (s *PGStore) Payables(ctx context.Context) ([]PayableEntry, error) {
	var out []PayableEntry
	err := s.query(ctx, s.schema.payablesQuery(sq.Dollar), func(rows pgx.Rows) (err error) {
		out, err = s.schema.collectPayables(rows)
		return err
	})
	return out, err
}

// Receivables lists every receivable.
func (s *PGStore) Receivables(ctx context.Context) ([]ReceivableEntry, error) {
	var out []ReceivableEntry
	err := s.query(ctx, s.schema.receivablesQuery(sq.Dollar), func(rows pgx.Rows) (err error) {
		out, err = s.schema.collectReceivables(rows)
		return err
	})
	return out, err
}

// LedgerEntries lists every ledger entry.
func (s *PGStore) LedgerEntries(ctx context.Context) ([]LedgerEntry, error) {
	var out []LedgerEntry
	err := s.query(ctx, s.schema.ledgerQuery(sq.Dollar), func(rows pgx.Rows) (err error) {
		out, err = s.schema.collectLedger(rows)
		return err
	})
	return out, err
}

func (s *PGStore) query(ctx context.Context, builder sq.SelectBuilder, collect func(pgx.Rows) error) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("records: build query: %w", err)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return mapPGError(err)
	}
	defer rows.Close()
	if err := collect(rows); err != nil {
		return mapPGError(err)
	}
	return nil
}

func mapPGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable {
		return fmt.Errorf("%w: %s", ErrSchemaMissing, pgErr.Message)
	}
	if errors.Is(err, ErrMalformedRow) {
		return err
	}
	return fmt.Errorf("records: query: %w", err)
}
