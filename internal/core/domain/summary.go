package domain

import (
	"time"

	"github.com/google/uuid"
)

type SummaryEntry struct {
	Participant ParticipantID `json:"participant"`
	DisplayName string        `json:"display_name"`
	Reason      *string       `json:"reason,omitempty"`
}

// SummaryView partitions the responses of a poll into attending and
// declining lists, in store order.
type SummaryView struct {
	PollID      uuid.UUID      `json:"poll_id"`
	Attending   []SummaryEntry `json:"attending"`
	Declining   []SummaryEntry `json:"declining"`
	GeneratedAt time.Time      `json:"generated_at"`
}
