package records

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// ClientsTable names the client table and its columns.
type ClientsTable struct {
	Table string
	ID    string
	Name  string
}

// PayablesTable names the payables table and its columns.
type PayablesTable struct {
	Table    string
	ID       string
	Supplier string
	Amount   string
	DueDate  string
	Status   string
}

// ReceivablesTable names the receivables table and its columns.
type ReceivablesTable struct {
	Table    string
	ID       string
	ClientID string
	Amount   string
	Status   string
	Date     string
}

// LedgerTable names the ledger table and its columns.
type LedgerTable struct {
	Table  string
	ID     string
	Date   string
	Type   string
	Amount string
}

// Schema describes where rows live and how stored tokens map onto the
// canonical statuses and entry types.
type Schema struct {
	Name        string
	Clients     ClientsTable
	Payables    PayablesTable
	Receivables ReceivablesTable
	Ledger      LedgerTable
	// Vocabulary maps stored tokens to canonical ones by exact match.
	// Unmapped tokens pass through unchanged.
	Vocabulary map[string]string
}

// DefaultSchema is the layout created by the bundled migrations.
var DefaultSchema = Schema{
	Name:        "default",
	Clients:     ClientsTable{Table: "clients", ID: "id", Name: "name"},
	Payables:    PayablesTable{Table: "payables", ID: "id", Supplier: "supplier", Amount: "amount", DueDate: "due_date", Status: "status"},
	Receivables: ReceivablesTable{Table: "receivables", ID: "id", ClientID: "client_id", Amount: "amount", Status: "status", Date: "date"},
	Ledger:      LedgerTable{Table: "ledger_entries", ID: "id", Date: "date", Type: "type", Amount: "amount"},
}

// LegacySchema reads the Portuguese tables of the original erp_finance.db.
var LegacySchema = Schema{
	Name:        "legacy",
	Clients:     ClientsTable{Table: "clientes", ID: "id", Name: "nome"},
	Payables:    PayablesTable{Table: "contas_pagar", ID: "id", Supplier: "fornecedor", Amount: "valor", DueDate: "data_vencimento", Status: "status"},
	Receivables: ReceivablesTable{Table: "contas_receber", ID: "id", ClientID: "cliente_id", Amount: "valor", Status: "status", Date: "data"},
	Ledger:      LedgerTable{Table: "lancamentos", ID: "id", Date: "data", Type: "tipo", Amount: "valor"},
	Vocabulary: map[string]string{
		"Recebido": StatusSettled,
		"Receita":  string(EntryRevenue),
		"Despesa":  string(EntryExpense),
	},
}

// SchemaByName resolves a schema preset.
func SchemaByName(name string) (Schema, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", DefaultSchema.Name:
		return DefaultSchema, nil
	case LegacySchema.Name:
		return LegacySchema, nil
	default:
		return Schema{}, fmt.Errorf("records: unknown schema %q", name)
	}
}

// Canonical maps a stored token to its canonical form.
func (s Schema) Canonical(token string) string {
	if mapped, ok := s.Vocabulary[token]; ok {
		return mapped
	}
	return token
}

// Amounts and dates are read as text so both backends hand back the value as stored.
func asText(column string) string {
	return fmt.Sprintf("COALESCE(CAST(%s AS TEXT), '')", column)
}

func (s Schema) clientsQuery(format sq.PlaceholderFormat) sq.SelectBuilder {
	t := s.Clients
	return sq.Select(t.ID, asText(t.Name)).
		From(t.Table).
		OrderBy(t.ID).
		PlaceholderFormat(format)
}

func (s Schema) payablesQuery(format sq.PlaceholderFormat) sq.SelectBuilder {
	t := s.Payables
	return sq.Select(t.ID, asText(t.Supplier), asText(t.Amount), asText(t.DueDate), asText(t.Status)).
		From(t.Table).
		OrderBy(t.ID).
		PlaceholderFormat(format)
}

func (s Schema) receivablesQuery(format sq.PlaceholderFormat) sq.SelectBuilder {
	t := s.Receivables
	return sq.Select(t.ID, t.ClientID, asText(t.Amount), asText(t.Status), asText(t.Date)).
		From(t.Table).
		OrderBy(t.ID).
		PlaceholderFormat(format)
}

func (s Schema) ledgerQuery(format sq.PlaceholderFormat) sq.SelectBuilder {
	t := s.Ledger
	return sq.Select(t.ID, asText(t.Date), asText(t.Type), asText(t.Amount)).
		From(t.Table).
		OrderBy(t.ID).
		PlaceholderFormat(format)
}
