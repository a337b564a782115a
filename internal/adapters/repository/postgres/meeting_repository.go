package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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
	query := `
		SELECT time, building, room, updated_at
		FROM meeting_settings
		WHERE id = 1
	`

	var meeting domain.Meeting
	err := r.db.QueryRowContext(ctx, query).Scan(
		&meeting.Time, &meeting.Building, &meeting.Room, &meeting.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to get meeting settings: %w", err)
	}

	return &meeting, nil
}

func (r *meetingRepository) Save(ctx context.Context, meeting *domain.Meeting) error {
	query := `
		INSERT INTO meeting_settings (id, time, building, room, updated_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET time = EXCLUDED.time,
			building = EXCLUDED.building,
			room = EXCLUDED.room,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, meeting.Time, meeting.Building, meeting.Room, meeting.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save meeting settings: %w", err)
	}

	return nil
}
