package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeBroadcastPage = "notify:broadcast_page"

const broadcastMaxRetry = 5

// NewBroadcastTask builds the task for one broadcast page. The task id is
// derived from (post, cursor), so enqueueing the same page twice is a no-op.
func NewBroadcastTask(job BroadcastJob) (*asynq.Task, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBroadcastPage, payload,
		asynq.TaskID(broadcastTaskID(job)),
		asynq.MaxRetry(broadcastMaxRetry),
	), nil
}

func broadcastTaskID(job BroadcastJob) string {
	return fmt.Sprintf("broadcast:%s:%d", job.PostID, job.Cursor)
}

// QueueEnqueuer enqueues broadcast pages on an asynq (Redis) queue.
type QueueEnqueuer struct {
	client *asynq.Client
}

func NewQueueEnqueuer(client *asynq.Client) *QueueEnqueuer {
	return &QueueEnqueuer{client: client}
}

func (q *QueueEnqueuer) EnqueueBroadcast(ctx context.Context, job BroadcastJob) error {
	task, err := NewBroadcastTask(job)
	if err != nil {
		return err
	}
	_, err = q.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// HandleBroadcastTask runs one page and enqueues its successor. A failed
// page is retried by asynq; the rows it already wrote are skipped on retry
// through their dedup keys.
func (e *Engine) HandleBroadcastTask(ctx context.Context, task *asynq.Task) error {
	var job BroadcastJob
	if err := json.Unmarshal(task.Payload(), &job); err != nil {
		e.logger.Error("invalid broadcast payload", zap.Error(err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	next, err := e.RunPage(ctx, job)
	if err != nil {
		return e.fail("post_published", err, zap.String("post_id", job.PostID), zap.Uint("cursor", job.Cursor))
	}
	if next == nil {
		e.logger.Info("broadcast finished", zap.String("post_id", job.PostID), zap.Int("recipients", job.Sent))
		return nil
	}
	if e.enqueuer == nil {
		return fmt.Errorf("broadcast %s: no enqueuer for next page", job.PostID)
	}
	return e.enqueuer.EnqueueBroadcast(ctx, *next)
}

// NewServeMux routes queued notification tasks to the engine.
func NewServeMux(e *Engine) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBroadcastPage, e.HandleBroadcastTask)
	return mux
}
