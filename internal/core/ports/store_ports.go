package ports

import "github.com/vncsmyrnk/attendance/internal/core/domain"

// ResponseStore holds the current record per participant of one poll.
// Implementations must be safe for concurrent use and Snapshot must observe
// a single consistent point in time.
type ResponseStore interface {
	Reset()
	Set(participant domain.ParticipantID, record domain.ResponseRecord)
	Remove(participant domain.ParticipantID)
	Get(participant domain.ParticipantID) (domain.ResponseRecord, bool)
	Snapshot() []domain.Response
}
