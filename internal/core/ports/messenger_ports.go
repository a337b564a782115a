package ports

import (
	"context"
	"time"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
)

type EmbedField struct {
	Name  string
	Value string
}

type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []EmbedField
	Timestamp   time.Time
}

// OutboundMessage is a platform message with optional plain content and an
// optional embed.
type OutboundMessage struct {
	Content string
	Embed   *Embed
}

// Messenger is the outbound side of the chat platform.
type Messenger interface {
	Self() domain.ParticipantID
	ChannelExists(ctx context.Context, channelID string) (bool, error)
	SendMessage(ctx context.Context, channelID string, msg OutboundMessage) (domain.MessageRef, error)
	EditMessage(ctx context.Context, ref domain.MessageRef, msg OutboundMessage) error
	AddReaction(ctx context.Context, ref domain.MessageRef, emoji string) error
	RemoveReaction(ctx context.Context, ref domain.MessageRef, emoji string, participant domain.ParticipantID) error
	// SendPrivateMessage fails with domain.ErrParticipantUnreachable when
	// the participant does not accept direct messages.
	SendPrivateMessage(ctx context.Context, participant domain.ParticipantID, content string) error
}

type MemberDirectory interface {
	DisplayName(ctx context.Context, channelID string, participant domain.ParticipantID) (string, error)
}
