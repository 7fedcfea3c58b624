package reports

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/finboard/finboard/internal/money"
	"github.com/finboard/finboard/internal/records"
)

type mockReader struct {
	mu          sync.Mutex
	clients     []records.Client
	payables    []records.PayableEntry
	receivables []records.ReceivableEntry
	ledger      []records.LedgerEntry
	payablesErr error
	calls       map[string]int
}

func (m *mockReader) count(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
}

func (m *mockReader) Clients(ctx context.Context) ([]records.Client, error) {
	m.count("clients")
	return m.clients, nil
}

func (m *mockReader) Payables(ctx context.Context) ([]records.PayableEntry, error) {
	m.count("payables")
	return m.payables, m.payablesErr
}

func (m *mockReader) Receivables(ctx context.Context) ([]records.ReceivableEntry, error) {
	m.count("receivables")
	return m.receivables, nil
}

func (m *mockReader) LedgerEntries(ctx context.Context) ([]records.LedgerEntry, error) {
	m.count("ledger")
	return m.ledger, nil
}

type recordingObserver struct {
	mu      sync.Mutex
	builds  map[string]int
	failed  map[string]int
	orphans int
}

func (o *recordingObserver) ObserveReportBuild(report string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.builds == nil {
		o.builds = make(map[string]int)
		o.failed = make(map[string]int)
	}
	o.builds[report]++
	if err != nil {
		o.failed[report]++
	}
}

func (o *recordingObserver) AddOrphans(_ string, n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.orphans += n
}

func sampleReader() *mockReader {
	return &mockReader{
		clients: []records.Client{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}},
		payables: []records.PayableEntry{
			{ID: 1, Supplier: "Acme", Amount: "120.50"},
			{ID: 2, Supplier: "Globex", Amount: "80"},
		},
		receivables: []records.ReceivableEntry{
			{ID: 1, ClientID: 1, Amount: "300", Status: "Settled"},
			{ID: 2, ClientID: 1, Amount: "200", Status: "Pending"},
			{ID: 3, ClientID: 2, Amount: "150", Status: "Settled"},
			{ID: 4, ClientID: 26, Amount: "10", Status: "Settled"},
		},
		ledger: []records.LedgerEntry{
			{ID: 1, Date: day(2024, 1, 15), Type: records.EntryRevenue, Amount: "100"},
			{ID: 2, Date: day(2024, 1, 20), Type: records.EntryExpense, Amount: "40"},
			{ID: 3, Date: day(2024, 2, 2), Type: records.EntryRevenue, Amount: "50"},
		},
	}
}

func newTestService(t *testing.T, reader Reader) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(reader, NewCache(client, time.Minute), brl(), nil), mr
}

func TestCashFlowCachesByFingerprint(t *testing.T) {
	reader := sampleReader()
	svc, mr := newTestService(t, reader)
	ctx := context.Background()

	first, err := svc.CashFlow(ctx)
	require.NoError(t, err)
	require.Len(t, first.Rows, 3)
	keys := mr.Keys()
	require.Contains(t, keys, cacheVersionKey)
	require.Len(t, keys, 2)

	second, err := svc.CashFlow(ctx)
	require.NoError(t, err)
	require.Len(t, second.Rows, 3)
	for i := range first.Rows {
		require.Equal(t, first.Rows[i].Month, second.Rows[i].Month)
		require.Equal(t, first.Rows[i].Type, second.Rows[i].Type)
		require.True(t, first.Rows[i].Total.Equal(second.Rows[i].Total))
	}
	require.Len(t, mr.Keys(), 2)

	// New rows change the fingerprint and therefore the key.
	reader.ledger = append(reader.ledger, records.LedgerEntry{ID: 4, Date: day(2024, 3, 1), Type: records.EntryExpense, Amount: "5"})
	third, err := svc.CashFlow(ctx)
	require.NoError(t, err)
	require.Len(t, third.Rows, 4)
	require.Len(t, mr.Keys(), 3)
}

func TestCacheBumpInvalidates(t *testing.T) {
	svc, mr := newTestService(t, sampleReader())
	ctx := context.Background()

	_, err := svc.PayablesDistribution(ctx)
	require.NoError(t, err)
	ver, err := svc.Cache().Bump(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), ver)

	_, err = svc.PayablesDistribution(ctx)
	require.NoError(t, err)
	require.Len(t, mr.Keys(), 3)
}

func TestServiceMatchesDirectBuild(t *testing.T) {
	reader := sampleReader()
	cached, _ := newTestService(t, reader)
	direct := NewService(reader, nil, brl(), nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		want, err := direct.TopClients(ctx)
		require.NoError(t, err)
		got, err := cached.TopClients(ctx)
		require.NoError(t, err)

		require.Equal(t, len(want.Rows), len(got.Rows))
		for j := range want.Rows {
			require.Equal(t, want.Rows[j].Client, got.Rows[j].Client)
			require.Equal(t, want.Rows[j].Formatted, got.Rows[j].Formatted)
			require.True(t, want.Rows[j].Total.Equal(got.Rows[j].Total))
		}
		require.Equal(t, want.Orphans, got.Orphans)
		require.Equal(t, want.Metrics.FormattedShare, got.Metrics.FormattedShare)
		require.True(t, want.Metrics.SharePercent.Equal(got.Metrics.SharePercent))
	}
}

func TestServiceDoesNotCacheFailures(t *testing.T) {
	reader := sampleReader()
	reader.payables = append(reader.payables, records.PayableEntry{ID: 3, Supplier: "Initech", Amount: "n/a"})
	svc, mr := newTestService(t, reader)

	_, err := svc.PayablesDistribution(context.Background())
	var malformed *MalformedAmountError
	require.ErrorAs(t, err, &malformed)
	require.Equal(t, []string{cacheVersionKey}, mr.Keys())
}

func TestServiceFallsBackWhenCacheIsDown(t *testing.T) {
	svc, mr := newTestService(t, sampleReader())
	mr.Close()

	report, err := svc.CashFlow(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Rows, 3)
}

func TestDashboardIsolatesFailures(t *testing.T) {
	reader := sampleReader()
	reader.payablesErr = errors.New("connection reset")
	observer := &recordingObserver{}
	svc, _ := newTestService(t, reader)
	svc.WithObserver(observer)

	snapshot := svc.Dashboard(context.Background())
	require.NotNil(t, snapshot.CashFlow)
	require.Nil(t, snapshot.Payables)
	require.NotNil(t, snapshot.TopClients)
	require.Len(t, snapshot.Errors, 1)
	require.ErrorContains(t, snapshot.Errors[KindPayablesDistribution], "connection reset")
	require.ErrorContains(t, snapshot.Err(), "connection reset")

	require.Equal(t, 1, snapshot.TopClients.OrphanCount())
	require.Equal(t, "Alice", snapshot.TopClients.Metrics.LeadingClient)
	require.Equal(t, 1, observer.builds[string(KindCashFlow)])
	require.Equal(t, 1, observer.builds[string(KindTopClients)])
	require.Equal(t, 1, observer.orphans)
}

func TestDashboardReportsMalformedAmounts(t *testing.T) {
	reader := sampleReader()
	reader.ledger[1].Amount = "-40"
	svc := NewService(reader, nil, money.Formatter{}, nil)

	snapshot := svc.Dashboard(context.Background())
	require.Nil(t, snapshot.CashFlow)
	require.NotNil(t, snapshot.Payables)
	var malformed *MalformedAmountError
	require.ErrorAs(t, snapshot.Err(), &malformed)
	require.Equal(t, int64(2), malformed.ID)
	require.Equal(t, "300.00", snapshot.TopClients.Rows[0].Formatted)
}

func TestFingerprintIsStable(t *testing.T) {
	a, err := Fingerprint(sampleReader().ledger)
	require.NoError(t, err)
	b, err := Fingerprint(sampleReader().ledger)
	require.NoError(t, err)
	require.Equal(t, a, b)

	changed := sampleReader().ledger
	changed[0].Amount = "100.01"
	c, err := Fingerprint(changed)
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}
