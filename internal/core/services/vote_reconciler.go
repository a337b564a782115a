package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
	"github.com/vncsmyrnk/attendance/internal/core/ports"
)

// VoteReconciler applies vote intents and withdrawals to the response store,
// keeping at most one active choice per participant. Events for the same
// participant are serialized through the shared participant locks.
type VoteReconciler struct {
	store     ports.ResponseStore
	collector *ReasonCollector
	locks     *participantLocks
	messenger ports.Messenger
	logger    *slog.Logger

	refresh func(ctx context.Context)
}

func newVoteReconciler(
	store ports.ResponseStore,
	collector *ReasonCollector,
	locks *participantLocks,
	messenger ports.Messenger,
	logger *slog.Logger,
	refresh func(ctx context.Context),
) *VoteReconciler {
	if refresh == nil {
		refresh = func(context.Context) {}
	}
	return &VoteReconciler{
		store:     store,
		collector: collector,
		locks:     locks,
		messenger: messenger,
		logger:    resolveLogger(logger),
		refresh:   refresh,
	}
}

// State derives the participant's current state from the store and the
// pending reason requests.
func (r *VoteReconciler) State(participant domain.ParticipantID) domain.ParticipantState {
	if r.collector.Pending(participant) {
		return domain.StateAwaitingReason
	}
	record, ok := r.store.Get(participant)
	if !ok {
		return domain.StateUndecided
	}
	if record.Choice == domain.ChoiceDeclining {
		return domain.StateDeclining
	}
	return domain.StateAttending
}

// Intend handles a participant signalling choice on the poll message.
//
// A repeated signal of the current choice is a no-op. A signal opposite to
// the current one is reverted at source, the participant is warned and
// domain.ErrConflictingVote is returned. An attend intent from an undecided
// participant is recorded at once; a decline intent starts a reason request
// and is only recorded once the reason arrives.
func (r *VoteReconciler) Intend(ctx context.Context, participant domain.ParticipantID, choice domain.Choice, source domain.MessageRef) error {
	unlock := r.locks.Lock(participant)
	current, decided := r.State(participant).Choice()

	switch {
	case decided && current == choice:
		unlock()
		return nil

	case decided:
		unlock()
		r.rejectConflict(ctx, participant, choice, source)
		return domain.ErrConflictingVote

	case choice == domain.ChoiceAttending:
		r.store.Set(participant, domain.AttendingRecord())
		unlock()
		r.refresh(ctx)
		return nil

	default:
		err := r.collector.Request(ctx, participant, source)
		unlock()
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrNoActivePoll) {
			r.revert(ctx, participant, choice, source)
		}
		return err
	}
}

// Withdraw handles a participant removing their choice signal. Only the
// signal matching the participant's current choice counts; removals of
// other reactions (such as reverted conflicting ones) are ignored.
func (r *VoteReconciler) Withdraw(ctx context.Context, participant domain.ParticipantID, choice domain.Choice) bool {
	unlock := r.locks.Lock(participant)
	current, decided := r.State(participant).Choice()
	if !decided || current != choice {
		unlock()
		return false
	}

	r.collector.Cancel(participant)
	r.store.Remove(participant)
	unlock()

	r.refresh(ctx)
	return true
}

func (r *VoteReconciler) rejectConflict(ctx context.Context, participant domain.ParticipantID, choice domain.Choice, source domain.MessageRef) {
	r.revert(ctx, participant, choice, source)
	if err := r.messenger.SendPrivateMessage(ctx, participant, conflictingVoteText); err != nil {
		r.logger.Warn("failed to warn about conflicting vote", "participant", participant, "error", err)
	}
}

func (r *VoteReconciler) revert(ctx context.Context, participant domain.ParticipantID, choice domain.Choice, source domain.MessageRef) {
	if source.IsZero() {
		return
	}
	if err := r.messenger.RemoveReaction(ctx, source, choice.Emoji(), participant); err != nil {
		r.logger.Warn("failed to revert reaction", "participant", participant, "choice", choice, "error", err)
	}
}
