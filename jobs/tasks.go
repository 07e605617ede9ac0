package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/muster-hq/muster/internal/push"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeInviteEmail is the task type for event invite emails.
	TaskTypeInviteEmail = "mail:invite"
	// TaskTypePushSend is the task type for outbound push deliveries.
	TaskTypePushSend = "push:send"
)

// InviteEmailPayload describes an event invite email.
type InviteEmailPayload struct {
	To      string `json:"to"`
	EventID string `json:"event_id"`
}

// PushSendPayload describes an outbound push delivery.
type PushSendPayload struct {
	Tokens []string          `json:"tokens"`
	Data   map[string]string `json:"data"`
}

// Mailer delivers invite emails.
type Mailer interface {
	SendInvite(ctx context.Context, to, eventID string) error
}

// NewInviteEmailTask constructs an Asynq task.
func NewInviteEmailTask(payload InviteEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeInviteEmail, data), nil
}

// NewPushSendTask constructs an Asynq task.
func NewPushSendTask(payload PushSendPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypePushSend, data), nil
}

// NewInviteEmailHandler processes TaskTypeInviteEmail tasks with the given
// mailer. A malformed payload is dropped instead of retried.
func NewInviteEmailHandler(mailer Mailer, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload InviteEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if err := mailer.SendInvite(ctx, payload.To, payload.EventID); err != nil {
			logger.Error("invite email failed",
				slog.String("to", payload.To), slog.Any("error", err))
			return err
		}
		return nil
	}
}

// NewPushSendHandler processes TaskTypePushSend tasks with the given sender.
func NewPushSendHandler(sender push.Sender, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload PushSendPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}

		var err error
		switch len(payload.Tokens) {
		case 0:
			return asynq.SkipRetry
		case 1:
			err = sender.Send(ctx, payload.Tokens[0], payload.Data)
		default:
			err = sender.SendMulticast(ctx, payload.Tokens, payload.Data)
		}
		if err != nil {
			logger.Error("push delivery failed",
				slog.Int("tokens", len(payload.Tokens)), slog.Any("error", err))
			return err
		}
		return nil
	}
}
