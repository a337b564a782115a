package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
	"github.com/vncsmyrnk/attendance/internal/core/ports"
)

const botID domain.ParticipantID = "bot"

type sentMessage struct {
	Ref domain.MessageRef
	Msg ports.OutboundMessage
}

type directMessage struct {
	To      domain.ParticipantID
	Content string
}

type reactionCall struct {
	Ref         domain.MessageRef
	Emoji       string
	Participant domain.ParticipantID
}

type fakeMessenger struct {
	mu sync.Mutex

	missingChannels map[string]bool
	unreachable     map[domain.ParticipantID]bool
	sendErr         error

	// editGate, when set, blocks EditMessage until a value is received.
	editGate    chan struct{}
	editStarted chan struct{}

	nextID  int
	sent    []sentMessage
	edits   []sentMessage
	dms     []directMessage
	added   []reactionCall
	removed []reactionCall
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		missingChannels: make(map[string]bool),
		unreachable:     make(map[domain.ParticipantID]bool),
	}
}

func (m *fakeMessenger) Self() domain.ParticipantID { return botID }

func (m *fakeMessenger) ChannelExists(ctx context.Context, channelID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.missingChannels[channelID], nil
}

func (m *fakeMessenger) SendMessage(ctx context.Context, channelID string, msg ports.OutboundMessage) (domain.MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return domain.MessageRef{}, m.sendErr
	}
	m.nextID++
	ref := domain.MessageRef{ChannelID: channelID, MessageID: fmt.Sprintf("msg-%d", m.nextID)}
	m.sent = append(m.sent, sentMessage{Ref: ref, Msg: msg})
	return ref, nil
}

func (m *fakeMessenger) EditMessage(ctx context.Context, ref domain.MessageRef, msg ports.OutboundMessage) error {
	m.mu.Lock()
	gate, started := m.editGate, m.editStarted
	m.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, sentMessage{Ref: ref, Msg: msg})
	return nil
}

func (m *fakeMessenger) AddReaction(ctx context.Context, ref domain.MessageRef, emoji string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.added = append(m.added, reactionCall{Ref: ref, Emoji: emoji})
	return nil
}

func (m *fakeMessenger) RemoveReaction(ctx context.Context, ref domain.MessageRef, emoji string, participant domain.ParticipantID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, reactionCall{Ref: ref, Emoji: emoji, Participant: participant})
	return nil
}

func (m *fakeMessenger) SendPrivateMessage(ctx context.Context, participant domain.ParticipantID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unreachable[participant] {
		return fmt.Errorf("%w: direct messages closed", domain.ErrParticipantUnreachable)
	}
	m.dms = append(m.dms, directMessage{To: participant, Content: content})
	return nil
}

func (m *fakeMessenger) setUnreachable(p domain.ParticipantID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unreachable[p] = true
}

func (m *fakeMessenger) dmsTo(p domain.ParticipantID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, dm := range m.dms {
		if dm.To == p {
			out = append(out, dm.Content)
		}
	}
	return out
}

func (m *fakeMessenger) removedFor(p domain.ParticipantID) []reactionCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []reactionCall
	for _, r := range m.removed {
		if r.Participant == p {
			out = append(out, r)
		}
	}
	return out
}

func (m *fakeMessenger) sentMessages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.sent...)
}

func (m *fakeMessenger) editedMessages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.edits...)
}

func (m *fakeMessenger) addedReactions() []reactionCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]reactionCall(nil), m.added...)
}

// lastSummary returns the newest summary embed, edited or sent.
func (m *fakeMessenger) lastSummary() *ports.Embed {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.edits) - 1; i >= 0; i-- {
		if e := m.edits[i].Msg.Embed; e != nil && e.Title == summaryTitle {
			return e
		}
	}
	for i := len(m.sent) - 1; i >= 0; i-- {
		if e := m.sent[i].Msg.Embed; e != nil && e.Title == summaryTitle {
			return e
		}
	}
	return nil
}

type fakeDirectory struct {
	names map[domain.ParticipantID]string
}

func (d fakeDirectory) DisplayName(ctx context.Context, channelID string, p domain.ParticipantID) (string, error) {
	name, ok := d.names[p]
	if !ok {
		return "", errors.New("member not found")
	}
	return name, nil
}

func containsAny(values []string, sub string) bool {
	for _, v := range values {
		if strings.Contains(v, sub) {
			return true
		}
	}
	return false
}
