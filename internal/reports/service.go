package reports

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/finboard/finboard/internal/money"
)

// BuildObserver receives report build outcomes.
type BuildObserver interface {
	ObserveReportBuild(report string, duration time.Duration, err error)
	AddOrphans(report string, n int)
}

type noopObserver struct{}

func (noopObserver) ObserveReportBuild(string, time.Duration, error) {}
func (noopObserver) AddOrphans(string, int)                          {}

// Service coordinates row fetches, report builds and the cache layer.
type Service struct {
	reader    Reader
	cache     *Cache
	formatter money.Formatter
	logger    *slog.Logger
	observer  BuildObserver
}

// NewService wires a Reader with a Cache helper. cache may be nil.
func NewService(reader Reader, cache *Cache, formatter money.Formatter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		reader:    reader,
		cache:     cache,
		formatter: formatter,
		logger:    logger,
		observer:  noopObserver{},
	}
}

// WithObserver attaches a build observer.
func (s *Service) WithObserver(observer BuildObserver) *Service {
	if observer != nil {
		s.observer = observer
	}
	return s
}

// Cache exposes the cache helper, nil when caching is disabled.
func (s *Service) Cache() *Cache {
	return s.cache
}

// Build computes a single report by kind.
func (s *Service) Build(ctx context.Context, kind Kind) (any, error) {
	switch kind {
	case KindCashFlow:
		return s.CashFlow(ctx)
	case KindPayablesDistribution:
		return s.PayablesDistribution(ctx)
	case KindTopClients:
		return s.TopClients(ctx)
	}
	return nil, errors.New("reports: unknown report " + string(kind))
}

// memoize runs build behind the cache, keyed by report kind and a fingerprint
// of the rows it consumes. Cache failures degrade to a direct build.
func memoize[T any](ctx context.Context, s *Service, kind Kind, input any, build func() (T, error)) (T, error) {
	start := time.Now()
	out, err := cachedBuild(ctx, s, kind, input, build)
	s.observer.ObserveReportBuild(string(kind), time.Since(start), err)
	return out, err
}

func cachedBuild[T any](ctx context.Context, s *Service, kind Kind, input any, build func() (T, error)) (T, error) {
	if s.cache == nil {
		return build()
	}

	fingerprint, err := Fingerprint(input)
	if err != nil {
		return build()
	}
	key, err := s.cache.BuildKey(ctx, keyReport(kind, fingerprint))
	if err != nil {
		s.logger.Warn("report cache unavailable", slog.String("report", string(kind)), slog.Any("error", err))
		return build()
	}

	var (
		fresh    T
		built    bool
		buildErr error
		out      T
	)
	loader := func(context.Context) (any, error) {
		built = true
		fresh, buildErr = build()
		if buildErr != nil {
			return nil, buildErr
		}
		return fresh, nil
	}
	err = s.cache.FetchJSON(ctx, key, &out, loader)
	switch {
	case err == nil:
		return out, nil
	case built && buildErr != nil:
		return out, buildErr
	case built:
		s.logger.Warn("report cache write failed", slog.String("report", string(kind)), slog.Any("error", err))
		return fresh, nil
	default:
		s.logger.Warn("report cache read failed", slog.String("report", string(kind)), slog.Any("error", err))
		return build()
	}
}

// DashboardSnapshot holds all three reports. A report that failed is nil and
// its error is kept in Errors.
type DashboardSnapshot struct {
	CashFlow   *CashFlowReport   `json:"cash_flow,omitempty"`
	Payables   *PayablesReport   `json:"payables_distribution,omitempty"`
	TopClients *TopClientsResult `json:"top_clients,omitempty"`
	Errors     map[Kind]error    `json:"-"`
}

// Err joins the per-report errors in dashboard order.
func (d DashboardSnapshot) Err() error {
	var errs []error
	for _, kind := range Kinds() {
		if err, ok := d.Errors[kind]; ok {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dashboard builds the three reports concurrently. A failing report never
// cancels or alters the others.
func (s *Service) Dashboard(ctx context.Context) DashboardSnapshot {
	snapshot := DashboardSnapshot{Errors: make(map[Kind]error)}
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	record := func(kind Kind, err error) {
		mu.Lock()
		defer mu.Unlock()
		snapshot.Errors[kind] = err
	}

	g.Go(func() error {
		report, err := s.CashFlow(ctx)
		if err != nil {
			record(KindCashFlow, err)
			return nil
		}
		snapshot.CashFlow = &report
		return nil
	})
	g.Go(func() error {
		report, err := s.PayablesDistribution(ctx)
		if err != nil {
			record(KindPayablesDistribution, err)
			return nil
		}
		snapshot.Payables = &report
		return nil
	})
	g.Go(func() error {
		result, err := s.TopClients(ctx)
		if err != nil {
			record(KindTopClients, err)
			return nil
		}
		snapshot.TopClients = &result
		return nil
	})
	_ = g.Wait()

	for kind, err := range snapshot.Errors {
		s.logger.Error("report build failed", slog.String("report", string(kind)), slog.Any("error", err))
	}
	return snapshot
}
