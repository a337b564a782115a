package domain

import (
	"encoding/json"
	"fmt"
)

// ParticipantID is the platform user id of a poll participant.
type ParticipantID string

type Choice int

const (
	ChoiceAttending Choice = iota + 1
	ChoiceDeclining
)

func (c Choice) String() string {
	switch c {
	case ChoiceAttending:
		return "attending"
	case ChoiceDeclining:
		return "declining"
	default:
		return fmt.Sprintf("choice(%d)", int(c))
	}
}

// Emoji returns the reaction that signals c on a poll message.
func (c Choice) Emoji() string {
	switch c {
	case ChoiceAttending:
		return EmojiAttend
	case ChoiceDeclining:
		return EmojiDecline
	default:
		return ""
	}
}

func (c Choice) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// ResponseRecord is the active vote of one participant. Reason is only set
// for declining records, and nil means no reason was given.
type ResponseRecord struct {
	Choice Choice  `json:"choice"`
	Reason *string `json:"reason,omitempty"`
}

func AttendingRecord() ResponseRecord {
	return ResponseRecord{Choice: ChoiceAttending}
}

func DecliningRecord(reason *string) ResponseRecord {
	return ResponseRecord{Choice: ChoiceDeclining, Reason: reason}
}

// Response pairs a participant with its record, as returned by store snapshots.
type Response struct {
	Participant ParticipantID  `json:"participant"`
	Record      ResponseRecord `json:"record"`
}

// ParticipantState is the derived per-participant position in the vote
// state machine.
type ParticipantState int

const (
	StateUndecided ParticipantState = iota
	StateAttending
	StateAwaitingReason
	StateDeclining
)

func (s ParticipantState) String() string {
	switch s {
	case StateUndecided:
		return "undecided"
	case StateAttending:
		return "attending"
	case StateAwaitingReason:
		return "awaiting_reason"
	case StateDeclining:
		return "declining"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Choice is the vote a state currently signals. Awaiting a reason already
// counts as a decline signal; undecided signals nothing.
func (s ParticipantState) Choice() (Choice, bool) {
	switch s {
	case StateAttending:
		return ChoiceAttending, true
	case StateAwaitingReason, StateDeclining:
		return ChoiceDeclining, true
	default:
		return 0, false
	}
}
