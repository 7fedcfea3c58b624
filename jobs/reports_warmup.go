package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	jobmetrics "github.com/finboard/finboard/internal/jobs"
	"github.com/finboard/finboard/internal/records"
	"github.com/finboard/finboard/internal/reports"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ReportBuilder is the part of reports.Service the warmup relies on.
type ReportBuilder interface {
	Dashboard(ctx context.Context) reports.DashboardSnapshot
	Build(ctx context.Context, kind reports.Kind) (any, error)
	Cache() *reports.Cache
}

// ReportsWarmupJob rebuilds dashboard reports so requests hit a warm cache.
type ReportsWarmupJob struct {
	Reports ReportBuilder
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Timeout time.Duration
	clock   func() time.Time
}

// NewReportsWarmupJob wires dependencies for the warmup handler.
func NewReportsWarmupJob(builder ReportBuilder, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsWarmupJob {
	return &ReportsWarmupJob{
		Reports: builder,
		Logger:  logger,
		Metrics: metrics,
		Timeout: 30 * time.Second,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes reports warmup tasks. Failures caused only by malformed
// amounts or rows skip retries.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("reports warmup: handler not configured")
	}
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("reports warmup: decode payload: %w", asynq.SkipRetry)
	}
	kinds, err := payloadKinds(payload.Reports)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.RunID == "" {
		payload.RunID = uuid.NewString()
	}

	tracker := j.metrics().Track(TaskReportsWarmup)
	logger := j.logger().With(slog.String("run_id", payload.RunID))
	start := j.now()
	logger.Info("starting reports warmup", slog.Int("reports", len(kinds)))

	if payload.BumpCache {
		if ver, err := j.Reports.Cache().Bump(ctx); err != nil {
			logger.Warn("bump report cache", slog.Any("error", err))
		} else if ver > 0 {
			logger.Info("report cache bumped", slog.Int64("version", ver))
		}
	}

	runCtx := ctx
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	failures := j.warm(runCtx, kinds)
	for kind, err := range failures {
		j.metrics().AddReportFailure(TaskReportsWarmup, string(kind))
		logger.Error("warm report", slog.String("report", string(kind)), slog.Any("error", err))
	}

	resultErr := joinFailures(failures)
	logger.Info("completed reports warmup",
		slog.Int("warmed", len(kinds)-len(failures)),
		slog.Int("failed", len(failures)),
		slog.Duration("duration", j.now().Sub(start)),
	)
	return tracker.End(resultErr)
}

func (j *ReportsWarmupJob) warm(ctx context.Context, kinds []reports.Kind) map[reports.Kind]error {
	if len(kinds) == len(reports.Kinds()) {
		return j.Reports.Dashboard(ctx).Errors
	}
	failures := make(map[reports.Kind]error)
	for _, kind := range kinds {
		if _, err := j.Reports.Build(ctx, kind); err != nil {
			failures[kind] = err
		}
	}
	return failures
}

func payloadKinds(names []string) ([]reports.Kind, error) {
	if len(names) == 0 {
		return reports.Kinds(), nil
	}
	seen := make(map[reports.Kind]bool, len(names))
	kinds := make([]reports.Kind, 0, len(names))
	for _, name := range names {
		kind, err := reports.ParseKind(name)
		if err != nil {
			return nil, err
		}
		if !seen[kind] {
			seen[kind] = true
			kinds = append(kinds, kind)
		}
	}
	return kinds, nil
}

func joinFailures(failures map[reports.Kind]error) error {
	if len(failures) == 0 {
		return nil
	}
	var (
		errs      []error
		retryable bool
	)
	for _, kind := range reports.Kinds() {
		err, ok := failures[kind]
		if !ok {
			continue
		}
		errs = append(errs, err)
		if !isDataError(err) {
			retryable = true
		}
	}
	joined := errors.Join(errs...)
	if !retryable {
		return fmt.Errorf("%w: %w", joined, asynq.SkipRetry)
	}
	return joined
}

// isDataError reports whether err comes from stored rows that no rebuild can fix.
func isDataError(err error) bool {
	var malformed *reports.MalformedAmountError
	return errors.As(err, &malformed) || errors.Is(err, records.ErrMalformedRow)
}

func (j *ReportsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportsWarmup))
}

func (j *ReportsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReportsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
