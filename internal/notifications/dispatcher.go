package notifications

import (
	"context"
	"fmt"

	"github.com/muster-hq/muster/internal/platform/httpx"
	"github.com/muster-hq/muster/internal/push"
)

// Dispatcher fans a payload out over the push collaborator, choosing between
// single-target and multicast delivery.
type Dispatcher struct {
	sender push.Sender
}

// NewDispatcher constructs a Dispatcher over the given sender.
func NewDispatcher(sender push.Sender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

// Send delivers the payload. Zero tokens is a caller error and fails fast
// before any external call.
func (d *Dispatcher) Send(ctx context.Context, tokens []string, payload map[string]string) error {
	if len(tokens) == 0 {
		return fmt.Errorf("%w: at least one recipient token required", httpx.ErrValidation)
	}
	if len(tokens) == 1 {
		return d.sender.Send(ctx, tokens[0], payload)
	}
	return d.sender.SendMulticast(ctx, tokens, payload)
}
