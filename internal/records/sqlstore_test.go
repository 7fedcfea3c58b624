package records_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/finboard/finboard/internal/platform/db"
	"github.com/finboard/finboard/internal/records"
)

func openMigrated(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "finance.db")
	conn, err := db.OpenSQLite(context.Background(), path, db.SQLiteOptions{Migrate: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func exec(t *testing.T, conn *sql.DB, statements ...string) {
	t.Helper()
	for _, stmt := range statements {
		_, err := conn.Exec(stmt)
		require.NoError(t, err, stmt)
	}
}

func TestSQLStoreReadsDefaultSchema(t *testing.T) {
	conn := openMigrated(t)
	exec(t, conn,
		`INSERT INTO clients (id, name) VALUES (1, 'Alice'), (2, 'Bob')`,
		`INSERT INTO payables (id, supplier, amount, due_date, status) VALUES (1, 'Acme', '120.50', '2024-03-10', 'Open'), (2, 'Globex', 80, NULL, 'Paid')`,
		`INSERT INTO receivables (id, client_id, amount, status, date) VALUES (1, 1, '300.00', 'Settled', '2024-01-05'), (2, 2, 150, 'Pending', '2024-02-01')`,
		`INSERT INTO ledger_entries (id, date, type, amount) VALUES (1, '2024-01-15', 'Revenue', '100.00'), (2, '2024-01-20 10:30:00', 'Expense', 40)`,
	)
	store := records.NewSQLStore(conn, records.DefaultSchema)
	ctx := context.Background()

	clients, err := store.Clients(ctx)
	require.NoError(t, err)
	require.Equal(t, []records.Client{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}}, clients)

	payables, err := store.Payables(ctx)
	require.NoError(t, err)
	require.Len(t, payables, 2)
	require.Equal(t, "Acme", payables[0].Supplier)
	require.Equal(t, "120.5", payables[0].Amount)
	require.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), payables[0].DueDate)
	require.True(t, payables[1].DueDate.IsZero())

	receivables, err := store.Receivables(ctx)
	require.NoError(t, err)
	require.Len(t, receivables, 2)
	require.Equal(t, int64(1), receivables[0].ClientID)
	require.Equal(t, records.StatusSettled, receivables[0].Status)
	require.Equal(t, "Pending", receivables[1].Status)

	ledger, err := store.LedgerEntries(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	require.Equal(t, records.EntryRevenue, ledger[0].Type)
	require.Equal(t, records.EntryExpense, ledger[1].Type)
	require.Equal(t, time.January, ledger[1].Date.Month())
}

func TestSQLStoreMapsLegacyVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "erp_finance.db")
	conn, err := db.OpenSQLite(context.Background(), path, db.SQLiteOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	exec(t, conn,
		`CREATE TABLE clientes (id INTEGER PRIMARY KEY, nome TEXT)`,
		`CREATE TABLE contas_pagar (id INTEGER PRIMARY KEY, fornecedor TEXT, valor REAL, data_vencimento DATE, status TEXT)`,
		`CREATE TABLE contas_receber (id INTEGER PRIMARY KEY, cliente_id INTEGER, valor REAL, status TEXT, data DATE)`,
		`CREATE TABLE lancamentos (id INTEGER PRIMARY KEY, data DATE, tipo TEXT, valor REAL)`,
		`INSERT INTO clientes VALUES (1, 'Ana')`,
		`INSERT INTO contas_receber VALUES (1, 1, 300.0, 'Recebido', '2024-01-05'), (2, 1, 50.0, 'recebido', '2024-01-06')`,
		`INSERT INTO lancamentos VALUES (1, '2024-01-15', 'Receita', 100.0), (2, '2024-01-16', 'Despesa', 40.0)`,
	)
	store := records.NewSQLStore(conn, records.LegacySchema)
	ctx := context.Background()

	receivables, err := store.Receivables(ctx)
	require.NoError(t, err)
	require.Len(t, receivables, 2)
	require.Equal(t, records.StatusSettled, receivables[0].Status)
	// Only the exact token is mapped.
	require.Equal(t, "recebido", receivables[1].Status)
	require.Equal(t, "300.0", receivables[0].Amount)

	ledger, err := store.LedgerEntries(ctx)
	require.NoError(t, err)
	require.Equal(t, records.EntryRevenue, ledger[0].Type)
	require.Equal(t, records.EntryExpense, ledger[1].Type)

	payables, err := store.Payables(ctx)
	require.NoError(t, err)
	require.Empty(t, payables)
}

func openLegacy(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "erp_finance.db")
	conn, err := db.OpenSQLite(context.Background(), path, db.SQLiteOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	exec(t, conn,
		`CREATE TABLE contas_receber (id INTEGER PRIMARY KEY, cliente_id INTEGER, valor REAL, status TEXT, data DATE)`,
		`CREATE TABLE lancamentos (id INTEGER PRIMARY KEY, data DATE, tipo TEXT, valor REAL)`,
	)
	return conn
}

func TestSQLStoreKeepsReceivablesWithoutClient(t *testing.T) {
	conn := openLegacy(t)
	exec(t, conn, `INSERT INTO contas_receber VALUES (1, 4, 300.0, 'Recebido', '2024-01-05'), (2, NULL, 150, 'Recebido', '2024-01-06')`)

	receivables, err := records.NewSQLStore(conn, records.LegacySchema).Receivables(context.Background())
	require.NoError(t, err)
	require.Len(t, receivables, 2)
	require.Equal(t, int64(4), receivables[0].ClientID)
	require.False(t, receivables[0].Unassigned)
	require.Equal(t, int64(0), receivables[1].ClientID)
	require.True(t, receivables[1].Unassigned)
	require.Equal(t, records.StatusSettled, receivables[1].Status)
}

func TestSQLStoreParsesISODateTimes(t *testing.T) {
	for _, raw := range []string{"2024-01-15T10:00:00", "2024-01-15T10:00:00.123456"} {
		t.Run(raw, func(t *testing.T) {
			conn := openLegacy(t)
			exec(t, conn, `INSERT INTO lancamentos VALUES (1, '`+raw+`', 'Receita', 100.0)`)

			ledger, err := records.NewSQLStore(conn, records.LegacySchema).LedgerEntries(context.Background())
			require.NoError(t, err)
			require.Len(t, ledger, 1)
			require.Equal(t, 2024, ledger[0].Date.Year())
			require.Equal(t, time.January, ledger[0].Date.Month())
			require.Equal(t, 15, ledger[0].Date.Day())
			require.Equal(t, 10, ledger[0].Date.Hour())
		})
	}
}

func TestSQLStoreMissingTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	conn, err := db.OpenSQLite(context.Background(), path, db.SQLiteOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = records.NewSQLStore(conn, records.DefaultSchema).Clients(context.Background())
	require.ErrorIs(t, err, records.ErrSchemaMissing)
}

func TestSQLStoreRejectsUndatedLedgerEntry(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery(`SELECT id, .* FROM ledger_entries ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "type", "amount"}).
			AddRow(int64(7), "", "Revenue", "10.00"))

	_, err = records.NewSQLStore(conn, records.DefaultSchema).LedgerEntries(context.Background())
	require.ErrorIs(t, err, records.ErrMalformedRow)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStorePropagatesQueryError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery(`SELECT id, .* FROM payables`).WillReturnError(sql.ErrConnDone)

	_, err = records.NewSQLStore(conn, records.DefaultSchema).Payables(context.Background())
	require.ErrorIs(t, err, sql.ErrConnDone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaByName(t *testing.T) {
	s, err := records.SchemaByName("LEGACY")
	require.NoError(t, err)
	require.Equal(t, "contas_receber", s.Receivables.Table)

	s, err = records.SchemaByName("")
	require.NoError(t, err)
	require.Equal(t, records.DefaultSchema.Name, s.Name)

	_, err = records.SchemaByName("other")
	require.Error(t, err)
}
