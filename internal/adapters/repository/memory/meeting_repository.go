package memory

import (
	"context"
	"sync"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
	"github.com/vncsmyrnk/attendance/internal/core/ports"
)

type MeetingRepository struct {
	mu      sync.RWMutex
	meeting *domain.Meeting
}

func NewMeetingRepository() ports.MeetingRepository {
	return &MeetingRepository{}
}

func (r *MeetingRepository) Get(ctx context.Context) (*domain.Meeting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.meeting == nil {
		return nil, domain.ErrMeetingNotFound
	}
	m := *r.meeting
	return &m, nil
}

func (r *MeetingRepository) Save(ctx context.Context, meeting *domain.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := *meeting
	r.meeting = &m
	return nil
}
