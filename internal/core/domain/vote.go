package domain

const (
	EmojiAttend  = "✅"
	EmojiDecline = "❌"
)

// ChoiceFromEmoji maps one of the two recognised poll reactions to a choice.
func ChoiceFromEmoji(emoji string) (Choice, bool) {
	switch emoji {
	case EmojiAttend:
		return ChoiceAttending, true
	case EmojiDecline:
		return ChoiceDeclining, true
	default:
		return 0, false
	}
}

// MessageRef addresses a message sent through the chat platform so it can
// be edited or reacted to later.
type MessageRef struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

func (r MessageRef) IsZero() bool {
	return r.ChannelID == "" && r.MessageID == ""
}

// ReactionEvent is a reaction added to or removed from a message.
type ReactionEvent struct {
	Participant ParticipantID
	Emoji       string
	Message     MessageRef
}

// PrivateMessage is a direct message received from a participant.
type PrivateMessage struct {
	Participant ParticipantID
	Text        string
}
