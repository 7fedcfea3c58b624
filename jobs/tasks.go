package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportsWarmup recomputes dashboard reports so the cache stays primed.
	TaskReportsWarmup = "reports:warmup"
)

// ReportsWarmupPayload describes a warmup run.
type ReportsWarmupPayload struct {
	RunID string `json:"run_id,omitempty"`
	// Reports limits the run to the named reports. Empty means all of them.
	Reports []string `json:"reports,omitempty"`
	// BumpCache invalidates cached reports before rebuilding them.
	BumpCache    bool      `json:"bump_cache,omitempty"`
	ScheduledFor time.Time `json:"scheduled_for,omitempty"`
}

// NewReportsWarmupTask constructs an Asynq task for a warmup run.
func NewReportsWarmupTask(payload ReportsWarmupPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}
