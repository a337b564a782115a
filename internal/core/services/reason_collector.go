package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jonboulle/clockwork"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
	"github.com/vncsmyrnk/attendance/internal/core/ports"
)

// notifyTimeout bounds outbound calls made from timer callbacks, which have
// no caller context.
const notifyTimeout = 10 * time.Second

type pendingReason struct {
	deadline time.Time
	source   domain.MessageRef
	timer    clockwork.Timer
}

// ReasonCollector asks declining participants for a reason over private
// messages and resolves each request exactly once: by reply, by timeout or
// by cancellation.
//
// Request and Cancel expect the caller to hold the participant's lock.
// Reply and the timeout callback take it themselves.
type ReasonCollector struct {
	store     ports.ResponseStore
	messenger ports.Messenger
	locks     *participantLocks
	clock     clockwork.Clock
	timeout   time.Duration
	logger    *slog.Logger

	onResolved func(ctx context.Context)

	mu      sync.Mutex
	pending map[domain.ParticipantID]*pendingReason
	closed  bool
}

func newReasonCollector(
	store ports.ResponseStore,
	messenger ports.Messenger,
	locks *participantLocks,
	clock clockwork.Clock,
	timeout time.Duration,
	logger *slog.Logger,
	onResolved func(ctx context.Context),
) *ReasonCollector {
	if onResolved == nil {
		onResolved = func(context.Context) {}
	}
	return &ReasonCollector{
		store:      store,
		messenger:  messenger,
		locks:      locks,
		clock:      clock,
		timeout:    timeout,
		logger:     resolveLogger(logger),
		onResolved: onResolved,
		pending:    make(map[domain.ParticipantID]*pendingReason),
	}
}

// Request registers a pending request for participant and sends the prompt.
// The deadline starts now. When the prompt cannot be delivered the request
// is dropped and the returned error wraps domain.ErrParticipantUnreachable.
func (c *ReasonCollector) Request(ctx context.Context, participant domain.ParticipantID, source domain.MessageRef) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrNoActivePoll
	}
	if _, ok := c.pending[participant]; ok {
		c.mu.Unlock()
		return domain.ErrReasonPending
	}
	req := &pendingReason{
		deadline: c.clock.Now().Add(c.timeout),
		source:   source,
	}
	req.timer = c.clock.AfterFunc(c.timeout, func() { c.expire(participant, req) })
	c.pending[participant] = req
	c.mu.Unlock()

	if err := c.messenger.SendPrivateMessage(ctx, participant, reasonPromptText); err != nil {
		c.drop(participant, req)
		return fmt.Errorf("failed to send reason prompt: %w", err)
	}
	return nil
}

// Reply resolves the participant's pending request with text. It reports
// false when nothing was pending, e.g. the request already timed out.
func (c *ReasonCollector) Reply(ctx context.Context, participant domain.ParticipantID, text string) bool {
	unlock := c.locks.Lock(participant)
	req := c.take(participant)
	if req == nil {
		unlock()
		return false
	}
	c.store.Set(participant, domain.DecliningRecord(reasonFromText(text)))
	unlock()

	if err := c.messenger.SendPrivateMessage(ctx, participant, reasonSavedText); err != nil {
		c.logger.Warn("failed to acknowledge reason", "participant", participant, "error", err)
	}
	c.onResolved(ctx)
	return true
}

// Cancel discards the participant's pending request without writing a
// record or notifying anyone.
func (c *ReasonCollector) Cancel(participant domain.ParticipantID) bool {
	return c.take(participant) != nil
}

// CancelAll discards every pending request and refuses new ones.
func (c *ReasonCollector) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	for p, req := range c.pending {
		req.timer.Stop()
		delete(c.pending, p)
	}
}

func (c *ReasonCollector) Pending(participant domain.ParticipantID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[participant]
	return ok
}

func (c *ReasonCollector) Deadline(participant domain.ParticipantID) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	req, ok := c.pending[participant]
	if !ok {
		return time.Time{}, false
	}
	return req.deadline, true
}

func (c *ReasonCollector) take(participant domain.ParticipantID) *pendingReason {
	c.mu.Lock()
	defer c.mu.Unlock()

	req, ok := c.pending[participant]
	if !ok {
		return nil
	}
	req.timer.Stop()
	delete(c.pending, participant)
	return req
}

// drop removes req only if it is still the participant's current request.
func (c *ReasonCollector) drop(participant domain.ParticipantID, req *pendingReason) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending[participant] != req {
		return false
	}
	req.timer.Stop()
	delete(c.pending, participant)
	return true
}

// expire runs on the timer goroutine. A timer that lost the race against a
// reply or cancellation finds a different (or no) pending request and does
// nothing.
func (c *ReasonCollector) expire(participant domain.ParticipantID, req *pendingReason) {
	unlock := c.locks.Lock(participant)
	expired := c.drop(participant, req)
	unlock()
	if !expired {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	c.logger.Info("reason request expired", "participant", participant, "deadline", req.deadline, "error", domain.ErrReasonTimeout)

	if !req.source.IsZero() {
		if err := c.messenger.RemoveReaction(ctx, req.source, domain.EmojiDecline, participant); err != nil {
			c.logger.Warn("failed to revert decline reaction", "participant", participant, "error", err)
		}
	}
	msg := fmt.Sprintf(reasonTimeoutText, formatWindow(c.timeout))
	if err := c.messenger.SendPrivateMessage(ctx, participant, msg); err != nil {
		c.logger.Warn("failed to notify reason timeout", "participant", participant, "error", err)
	}
}

func reasonFromText(text string) *string {
	reason := strings.TrimSpace(text)
	if reason == "" {
		return nil
	}
	return &reason
}

// formatWindow renders a duration such as "2 minutes" for user messages.
func formatWindow(d time.Duration) string {
	start := time.Unix(0, 0)
	return strings.TrimSpace(humanize.RelTime(start, start.Add(d), "", ""))
}
