// Package worker implements the background task that keeps the shared rate
// cache warm.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"cryptoquote/internal/rates"
)

// TaskTypeRefreshRates is the asynq task type for a rate cache refresh.
const TaskTypeRefreshRates = "ratefeed:refresh"

// RefreshPayload is the task body.
type RefreshPayload struct {
	Feed string `json:"feed"`
}

// Refresher re-fetches the rate feed and rewrites the cache.
type Refresher interface {
	Refresh(ctx context.Context) ([]rates.Entry, error)
}

// NewRefreshHandler returns a function to handle rate refresh tasks.
func NewRefreshHandler(r Refresher, logger *zap.SugaredLogger) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload RefreshPayload
		if len(t.Payload()) > 0 {
			if err := json.Unmarshal(t.Payload(), &payload); err != nil {
				logger.Errorw("Invalid task payload", "type", t.Type(), "error", err)
				return fmt.Errorf("decode payload: %w", asynq.SkipRetry)
			}
		}

		entries, err := r.Refresh(ctx)
		if err != nil {
			logger.Errorw("Rate refresh failed", "feed", payload.Feed, "error", err)
			return err
		}

		logger.Infow("Rate refresh completed", "feed", payload.Feed, "rates", len(entries))
		return nil
	}
}

// NewRefreshTask builds a refresh task for feed with the given retry and
// timeout options.
func NewRefreshTask(feed string, maxRetry int, timeout time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(RefreshPayload{Feed: feed})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRefreshRates, data,
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(timeout),
		// uniqueness is keyed on type and payload, so one pending refresh per feed
		asynq.Unique(timeout),
	), nil
}

// TaskEnqueuer is the subset of *asynq.Client used to enqueue tasks.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqEnqueuer enqueues refresh tasks for one feed with fixed retry and
// timeout settings.
type AsynqEnqueuer struct {
	client   TaskEnqueuer
	feed     string
	maxRetry int
	timeout  time.Duration
}

// NewAsynqEnqueuer creates a new AsynqEnqueuer.
func NewAsynqEnqueuer(client TaskEnqueuer, feed string, maxRetry int, timeout time.Duration) *AsynqEnqueuer {
	return &AsynqEnqueuer{
		client:   client,
		feed:     feed,
		maxRetry: maxRetry,
		timeout:  timeout,
	}
}

// EnqueueRefresh enqueues an immediate refresh of the feed. A refresh that is
// already pending counts as success.
func (e *AsynqEnqueuer) EnqueueRefresh(ctx context.Context) error {
	task, err := NewRefreshTask(e.feed, e.maxRetry, e.timeout)
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

// RegisterSchedule adds the periodic refresh of feed to scheduler. cronspec
// accepts the robfig/cron syntax, including "@every 30s".
func RegisterSchedule(scheduler *asynq.Scheduler, cronspec, feed string, maxRetry int, timeout time.Duration) (string, error) {
	task, err := NewRefreshTask(feed, maxRetry, timeout)
	if err != nil {
		return "", err
	}
	return scheduler.Register(cronspec, task)
}
