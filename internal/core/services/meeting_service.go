package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
	"github.com/vncsmyrnk/attendance/internal/core/ports"
)

type meetingService struct {
	repo  ports.MeetingRepository
	clock clockwork.Clock

	mu sync.Mutex
}

func NewMeetingService(repo ports.MeetingRepository, clock clockwork.Clock) ports.MeetingService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &meetingService{
		repo:  repo,
		clock: clock,
	}
}

// Get returns the stored settings, or the defaults when none were saved.
func (s *meetingService) Get(ctx context.Context) (*domain.Meeting, error) {
	meeting, err := s.repo.Get(ctx)
	if errors.Is(err, domain.ErrMeetingNotFound) {
		m := domain.DefaultMeeting()
		return &m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	return meeting, nil
}

func (s *meetingService) Update(ctx context.Context, input ports.UpdateMeetingInput) (*domain.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meeting, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	fields := []struct {
		name  string
		value *string
		dst   *string
	}{
		{"time", input.Time, &meeting.Time},
		{"building", input.Building, &meeting.Building},
		{"room", input.Room, &meeting.Room},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		v := strings.TrimSpace(*f.value)
		if v == "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidMeeting, f.name)
		}
		*f.dst = v
	}

	meeting.UpdatedAt = s.clock.Now()
	if err := s.repo.Save(ctx, meeting); err != nil {
		return nil, fmt.Errorf("failed to save meeting: %w", err)
	}
	return meeting, nil
}
