package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/muster-hq/muster/internal/platform/httpx"
)

// DefaultReminderOffsets are the day offsets applied when scheduling the
// standard reminder series for an appointment.
var DefaultReminderOffsets = []int{270, 180, 1}

// DispatchFunc delivers a scheduled payload to its recipient tokens when a
// timer fires.
type DispatchFunc func(ctx context.Context, tokens []string, payload map[string]string) error

// Registry tracks pending delayed deliveries keyed by generated identifier.
// Every entry fires at most once: it moves from scheduled to fired or
// cancelled and is removed either way. All registry state is guarded by a
// single mutex; Schedule and Cancel are safe to call from concurrent request
// handlers.
type Registry struct {
	mu       sync.Mutex
	timers   map[string]TimerHandle
	clock    Clock
	dispatch DispatchFunc
	logger   *slog.Logger
}

// NewRegistry constructs a Registry. A nil clock selects the system clock.
func NewRegistry(clock Clock, dispatch DispatchFunc, logger *slog.Logger) *Registry {
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		timers:   make(map[string]TimerHandle),
		clock:    clock,
		dispatch: dispatch,
		logger:   logger,
	}
}

// Schedule registers a one-shot delivery at the given RFC3339 instant and
// returns its identifier without blocking. An unparseable time fails
// synchronously and registers nothing.
func (r *Registry) Schedule(at string, tokens []string, payload map[string]string) (string, error) {
	target, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return "", fmt.Errorf("%w: %q", httpx.ErrInvalidTime, at)
	}
	return r.scheduleAfter(target.Sub(r.clock.Now()), tokens, payload), nil
}

// ScheduleReminders registers one delivery per offset for the appointment at
// the given RFC3339 instant and returns the identifiers in offset order. Nil
// offsets select DefaultReminderOffsets.
//
// Each delay is computed as (appointment - now) + offset days: the offsets
// shift the base delay forward rather than measuring calendar distance from
// the appointment. This mirrors the arithmetic of the system this replaces;
// see DESIGN.md for the alternative reading and why this one was kept.
func (r *Registry) ScheduleReminders(appointment string, offsets []int, tokens []string, payload map[string]string) ([]string, error) {
	target, err := time.Parse(time.RFC3339, appointment)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", httpx.ErrInvalidTime, appointment)
	}
	if offsets == nil {
		offsets = DefaultReminderOffsets
	}

	base := target.Sub(r.clock.Now())
	ids := make([]string, 0, len(offsets))
	for _, days := range offsets {
		delay := base + time.Duration(days)*24*time.Hour
		ids = append(ids, r.scheduleAfter(delay, tokens, payload))
	}
	return ids, nil
}

// Cancel stops the pending timer with the given identifier. Cancelling an
// unknown or already-fired identifier is a no-op.
func (r *Registry) Cancel(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if timer, ok := r.timers[id]; ok {
		timer.Stop()
		delete(r.timers, id)
	}
}

// Pending returns the number of timers that have not fired or been cancelled.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

func (r *Registry) scheduleAfter(delay time.Duration, tokens []string, payload map[string]string) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.timers[id] = r.clock.AfterFunc(delay, func() { r.fire(id, tokens, payload) })
	r.mu.Unlock()
	return id
}

// fire runs on the timer's goroutine. The entry is removed before dispatch so
// a racing Cancel is a no-op; a dispatch failure is logged and the entry is
// still considered fired.
func (r *Registry) fire(id string, tokens []string, payload map[string]string) {
	r.mu.Lock()
	delete(r.timers, id)
	r.mu.Unlock()

	if r.dispatch == nil {
		return
	}
	if err := r.dispatch(context.Background(), tokens, payload); err != nil {
		r.logger.Error("scheduled notification dispatch failed",
			slog.String("id", id), slog.Any("error", err))
	}
}
