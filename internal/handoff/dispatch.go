package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/foodcart/internal/obs"
)

// TaskDeliver is the asynq task type carrying a Message.
const TaskDeliver = "handoff:deliver"

// Message is one order handoff to deliver to an external channel.
type Message struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	Text      string    `json:"text"`
	Link      string    `json:"link,omitempty"`
	Payload   Payload   `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

// Messenger sends a handoff. Implementations must not block on the final delivery.
type Messenger interface {
	Send(ctx context.Context, msg Message) error
}

// NopMessenger drops every message.
type NopMessenger struct{}

// Send implements Messenger.
func (NopMessenger) Send(context.Context, Message) error { return nil }

// Enqueuer is the subset of *asynq.Client used by Dispatcher.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher queues messages for the delivery worker.
type Dispatcher struct {
	Client   Enqueuer
	Queue    string
	MaxRetry int
	Timeout  time.Duration
}

// Send implements Messenger by enqueuing a TaskDeliver task.
func (d Dispatcher) Send(ctx context.Context, msg Message) error {
	if d.Client == nil {
		return errors.New("handoff: task client not configured")
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode handoff: %w", err)
	}
	opts := []asynq.Option{asynq.MaxRetry(d.maxRetry())}
	if q := strings.TrimSpace(d.Queue); q != "" {
		opts = append(opts, asynq.Queue(q))
	}
	if d.Timeout > 0 {
		opts = append(opts, asynq.Timeout(d.Timeout))
	}
	if msg.ID != "" {
		opts = append(opts, asynq.TaskID(msg.ID))
	}
	if _, err := d.Client.EnqueueContext(ctx, asynq.NewTask(TaskDeliver, body), opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("enqueue handoff: %w", err)
	}
	return nil
}

func (d Dispatcher) maxRetry() int {
	if d.MaxRetry <= 0 {
		return 5
	}
	return d.MaxRetry
}

// Notify sends msg in the background. Failures are logged and counted, never returned.
func Notify(ctx context.Context, m Messenger, msg Message, logger zerolog.Logger) {
	if m == nil {
		return
	}
	if obs.HandoffEnqueuedTotal != nil {
		obs.HandoffEnqueuedTotal.WithLabelValues(msg.Channel).Inc()
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := m.Send(ctx, msg); err != nil {
			logger.Warn().Err(err).Str("handoff_id", msg.ID).Str("channel", msg.Channel).Msg("handoff dispatch failed")
		}
	}()
}
