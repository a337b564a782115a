package discord

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
	"github.com/vncsmyrnk/attendance/internal/core/ports"
)

func restError(status, code int) *discordgo.RESTError {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: status, Status: http.StatusText(status)},
		Message:  &discordgo.APIErrorMessage{Code: code},
	}
}

type channelMessage struct {
	ChannelID string
	Content   string
}

type fakeSession struct {
	mu sync.Mutex

	channels   map[string]*discordgo.Channel
	members    map[string]*discordgo.Member
	roles      []*discordgo.Role
	closedDMs  map[string]bool
	dmOpened   int
	nextID     int
	sent       []channelMessage
	complex    []*discordgo.MessageSend
	edits      []*discordgo.MessageEdit
	reactions  []string
	unreacted  []string
	memberHits int
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		channels:  make(map[string]*discordgo.Channel),
		members:   make(map[string]*discordgo.Member),
		closedDMs: make(map[string]bool),
	}
}

func (s *fakeSession) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channels[channelID]
	if !ok {
		return nil, restError(http.StatusNotFound, discordgo.ErrCodeUnknownChannel)
	}
	return ch, nil
}

func (s *fakeSession) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := dmRecipient(channelID); ok && s.closedDMs[user] {
		return nil, restError(http.StatusForbidden, discordgo.ErrCodeCannotSendMessagesToThisUser)
	}
	s.sent = append(s.sent, channelMessage{ChannelID: channelID, Content: content})
	return &discordgo.Message{ID: s.newID(), ChannelID: channelID, Content: content}, nil
}

func (s *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complex = append(s.complex, data)
	return &discordgo.Message{ID: s.newID(), ChannelID: channelID}, nil
}

func (s *fakeSession) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits = append(s.edits, m)
	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel}, nil
}

func (s *fakeSession) MessageReactionAdd(channelID, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reactions = append(s.reactions, messageID+":"+emojiID)
	return nil
}

func (s *fakeSession) MessageReactionRemove(channelID, messageID, emojiID, userID string, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unreacted = append(s.unreacted, messageID+":"+emojiID+":"+userID)
	return nil
}

func (s *fakeSession) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dmOpened++
	return &discordgo.Channel{ID: "dm-" + recipientID, Type: discordgo.ChannelTypeDM}, nil
}

func (s *fakeSession) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberHits++
	m, ok := s.members[userID]
	if !ok {
		return nil, restError(http.StatusNotFound, discordgo.ErrCodeUnknownMember)
	}
	return m, nil
}

func (s *fakeSession) GuildRoles(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roles, nil
}

func (s *fakeSession) newID() string {
	s.nextID++
	return fmt.Sprintf("m%d", s.nextID)
}

func (s *fakeSession) sentTo(channelID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, m := range s.sent {
		if m.ChannelID == channelID {
			out = append(out, m.Content)
		}
	}
	return out
}

func dmRecipient(channelID string) (string, bool) {
	if len(channelID) > 3 && channelID[:3] == "dm-" {
		return channelID[3:], true
	}
	return "", false
}

type fakePollService struct {
	mu sync.Mutex

	startErr   error
	refreshErr error
	starts     []ports.StartPollInput
	refreshes  int
	added      []domain.ReactionEvent
	removed    []domain.ReactionEvent
	private    []domain.PrivateMessage
}

func (p *fakePollService) StartPoll(ctx context.Context, input ports.StartPollInput) (*domain.Poll, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.starts = append(p.starts, input)
	if p.startErr != nil {
		return nil, p.startErr
	}
	return &domain.Poll{Date: input.Date}, nil
}

func (p *fakePollService) RefreshSummary(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshes++
	return p.refreshErr
}

func (p *fakePollService) Current(ctx context.Context) (*domain.Poll, *domain.SummaryView, error) {
	return nil, nil, domain.ErrNoActivePoll
}

func (p *fakePollService) HandleReactionAdded(ctx context.Context, event domain.ReactionEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.added = append(p.added, event)
}

func (p *fakePollService) HandleReactionRemoved(ctx context.Context, event domain.ReactionEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removed = append(p.removed, event)
}

func (p *fakePollService) HandlePrivateMessage(ctx context.Context, msg domain.PrivateMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.private = append(p.private, msg)
}

func (p *fakePollService) Close() {}
