package domain

import (
	"time"

	"github.com/google/uuid"
)

// Poll describes one attendance poll session. Meeting is a snapshot taken
// when the poll was started; later settings changes do not alter it.
type Poll struct {
	ID        uuid.UUID  `json:"id"`
	ChannelID string     `json:"channel_id"`
	Date      string     `json:"date"`
	Meeting   Meeting    `json:"meeting"`
	Message   MessageRef `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
}
