package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"

	"github.com/aryanbrs/packklite-sub001/internal/common"
)

// TaskEmailSend is the asynq task type for outbound emails.
const TaskEmailSend = "email:send"

// QueueName is the asynq queue email tasks are placed on.
const QueueName = "email"

// NewEmailTask encodes msg as an asynq task.
func NewEmailTask(msg common.EmailMessage, opts ...asynq.Option) (*asynq.Task, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode email task: %w", err)
	}
	return asynq.NewTask(TaskEmailSend, payload, opts...), nil
}

// TaskClient is the subset of *asynq.Client used for enqueueing.
type TaskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqEnqueuer places emails on the asynq queue for cmd/worker.
type AsynqEnqueuer struct {
	Client   TaskClient
	MaxRetry int
	Timeout  time.Duration
}

// Enqueue implements Enqueuer.
func (q AsynqEnqueuer) Enqueue(ctx context.Context, msg common.EmailMessage) error {
	if q.Client == nil {
		return errors.New("notify: task client not configured")
	}
	retry := q.MaxRetry
	if retry <= 0 {
		retry = 8
	}
	timeout := q.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	task, err := NewEmailTask(msg, asynq.Queue(QueueName), asynq.MaxRetry(retry), asynq.Timeout(timeout))
	if err != nil {
		return err
	}
	_, err = q.Client.EnqueueContext(ctx, task)
	return err
}

// SyncEnqueuer delivers immediately. Used when no worker queue is configured.
type SyncEnqueuer struct {
	Sender common.EmailSender
}

// Enqueue implements Enqueuer.
func (s SyncEnqueuer) Enqueue(ctx context.Context, msg common.EmailMessage) error {
	if s.Sender == nil {
		return nil
	}
	return s.Sender.Send(ctx, msg)
}

// EmailTaskHandler processes email:send tasks.
type EmailTaskHandler struct {
	Sender common.EmailSender
}

// ProcessTask implements asynq.Handler. Malformed payloads and provider
// rejections other than 429 are not retried.
func (h EmailTaskHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var msg common.EmailMessage
	if err := json.Unmarshal(task.Payload(), &msg); err != nil {
		return fmt.Errorf("decode email task: %v: %w", err, asynq.SkipRetry)
	}
	if msg.To == "" {
		return fmt.Errorf("email task without recipient: %w", asynq.SkipRetry)
	}
	err := h.Sender.Send(ctx, msg)
	var rejected *RejectedError
	if errors.As(err, &rejected) && rejected.StatusCode != http.StatusTooManyRequests {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return err
}

// RejectedError reports a 4xx answer from the email API.
type RejectedError struct {
	StatusCode int
	Body       string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("email api rejected message: %d %s", e.StatusCode, e.Body)
}
