package ports

import (
	"context"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
)

type MeetingRepository interface {
	// Get returns domain.ErrMeetingNotFound when nothing was saved yet.
	Get(ctx context.Context) (*domain.Meeting, error)
	Save(ctx context.Context, meeting *domain.Meeting) error
}

// UpdateMeetingInput carries a partial update; nil fields are left as is.
type UpdateMeetingInput struct {
	Time     *string
	Building *string
	Room     *string
}

type MeetingService interface {
	Get(ctx context.Context) (*domain.Meeting, error)
	Update(ctx context.Context, input UpdateMeetingInput) (*domain.Meeting, error)
}
