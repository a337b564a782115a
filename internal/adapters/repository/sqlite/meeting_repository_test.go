package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
)

func testDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "attendance.db")
}

func TestMeetingRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Get before save", func(t *testing.T) {
		db, err := Open(testDBPath(t))
		require.NoError(t, err)
		defer db.Close()

		_, err = NewMeetingRepository(db).Get(ctx)
		assert.ErrorIs(t, err, domain.ErrMeetingNotFound)
	})

	t.Run("Save then overwrite", func(t *testing.T) {
		db, err := Open(testDBPath(t))
		require.NoError(t, err)
		defer db.Close()

		repo := NewMeetingRepository(db)
		at := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

		require.NoError(t, repo.Save(ctx, &domain.Meeting{Time: "19:00", Building: "B-4", Room: "2.40", UpdatedAt: at}))
		require.NoError(t, repo.Save(ctx, &domain.Meeting{Time: "18:30", Building: "B-4", Room: "1.10", UpdatedAt: at.Add(time.Hour)}))

		got, err := repo.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "18:30", got.Time)
		assert.Equal(t, "1.10", got.Room)
		assert.True(t, got.UpdatedAt.Equal(at.Add(time.Hour)))

		var rows int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM meeting_settings`).Scan(&rows))
		assert.Equal(t, 1, rows)
	})

	t.Run("Survives reopen", func(t *testing.T) {
		path := testDBPath(t)

		db, err := Open(path)
		require.NoError(t, err)
		require.NoError(t, NewMeetingRepository(db).Save(ctx, &domain.Meeting{Time: "20:00", Building: "A-1", Room: "0.01", UpdatedAt: time.Now()}))
		require.NoError(t, db.Close())

		db, err = Open(path)
		require.NoError(t, err)
		defer db.Close()

		got, err := NewMeetingRepository(db).Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "A-1", got.Building)
	})
}
