package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/finboard/finboard/internal/money"
	"github.com/finboard/finboard/internal/records"
	"github.com/finboard/finboard/internal/reports"
)

type fixedBuilder struct {
	receivables []records.ReceivableEntry
	clients     []records.Client
}

func (b fixedBuilder) Build(ctx context.Context, kind reports.Kind) (any, error) {
	return reports.BuildTopClients(b.receivables, records.ClientIndex(b.clients), money.MustFormatter(money.DefaultFormatConfig()))
}

func runReport(t *testing.T, builder ReportBuilder, args ...string) (string, error) {
	t.Helper()
	cmd := NewReportCmd(func(ctx context.Context) (ReportBuilder, func(), error) {
		return builder, func() {}, nil
	})
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestReportCmdPrintsTopClients(t *testing.T) {
	builder := fixedBuilder{
		clients: []records.Client{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}},
		receivables: []records.ReceivableEntry{
			{ID: 1, ClientID: 1, Amount: "300", Status: "Settled"},
			{ID: 2, ClientID: 1, Amount: "200", Status: "Pending"},
			{ID: 3, ClientID: 2, Amount: "150", Status: "Settled"},
			{ID: 4, ClientID: 26, Amount: "5", Status: "Settled"},
		},
	}
	out, err := runReport(t, builder, "top-clients")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal(t, []string{"RANK", "CLIENT", "REVENUE"}, strings.Fields(lines[0]))
	require.Contains(t, lines[1], "Alice")
	require.Contains(t, lines[1], "R$ 300,00")
	require.Contains(t, out, "Alice share:")
	require.Contains(t, out, "66,7%")
	require.Contains(t, out, "R$ 450,00")
	require.Contains(t, out, "Skipped receivables:")
}

func TestReportCmdRejectsUnknownReport(t *testing.T) {
	_, err := runReport(t, fixedBuilder{}, "aging")
	require.Error(t, err)
}

func TestWriteTableCashFlow(t *testing.T) {
	buf := &bytes.Buffer{}
	err := WriteTable(buf, reports.CashFlowReport{Rows: []reports.MonthlyFlow{
		{Month: "2024-01", Type: records.EntryRevenue, Total: decimal.NewFromInt(100)},
		{Month: "2024-01", Type: records.EntryExpense, Total: decimal.NewFromInt(40)},
	}})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "2024-01  Expense  40.00")

	buf.Reset()
	require.NoError(t, WriteTable(buf, reports.PayablesReport{NoData: true}))
	require.Equal(t, "no payables\n", buf.String())
}
