package ports

import (
	"context"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
)

type StartPollInput struct {
	Date string
	// ChannelID overrides the configured target channel when set.
	ChannelID string
}

type PollService interface {
	StartPoll(ctx context.Context, input StartPollInput) (*domain.Poll, error)
	RefreshSummary(ctx context.Context) error
	Current(ctx context.Context) (*domain.Poll, *domain.SummaryView, error)

	HandleReactionAdded(ctx context.Context, event domain.ReactionEvent)
	HandleReactionRemoved(ctx context.Context, event domain.ReactionEvent)
	HandlePrivateMessage(ctx context.Context, msg domain.PrivateMessage)

	// Close cancels every pending reason request of the active poll.
	Close()
}

// SummaryObserver is notified after every successful summary publish.
// Implementations must not block.
type SummaryObserver interface {
	SummaryPublished(view domain.SummaryView)
}
