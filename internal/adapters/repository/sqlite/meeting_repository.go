package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
	"github.com/vncsmyrnk/attendance/internal/core/ports"
)

type meetingRepository struct {
	db *sql.DB
}

func NewMeetingRepository(db *sql.DB) ports.MeetingRepository {
	return &meetingRepository{
		db: db,
	}
}

func (r *meetingRepository) Get(ctx context.Context) (*domain.Meeting, error) {
	query := `SELECT time, building, room, updated_at FROM meeting_settings WHERE id = 1`

	var (
		meeting   domain.Meeting
		updatedAt string
	)
	err := r.db.QueryRowContext(ctx, query).Scan(&meeting.Time, &meeting.Building, &meeting.Room, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to get meeting settings: %w", err)
	}

	meeting.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid updated_at %q: %w", updatedAt, err)
	}
	return &meeting, nil
}

func (r *meetingRepository) Save(ctx context.Context, meeting *domain.Meeting) error {
	query := `
		INSERT INTO meeting_settings (id, time, building, room, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET time = excluded.time,
			building = excluded.building,
			room = excluded.room,
			updated_at = excluded.updated_at
	`

	updatedAt := meeting.UpdatedAt.UTC().Format(time.RFC3339Nano)
	if _, err := r.db.ExecContext(ctx, query, meeting.Time, meeting.Building, meeting.Room, updatedAt); err != nil {
		return fmt.Errorf("failed to save meeting settings: %w", err)
	}
	return nil
}
