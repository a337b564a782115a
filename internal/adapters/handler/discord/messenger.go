package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
	"github.com/vncsmyrnk/attendance/internal/core/ports"
)

// Session is the subset of *discordgo.Session used by the adapter.
type Session interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	MessageReactionRemove(channelID, messageID, emojiID, userID string, options ...discordgo.RequestOption) error
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
}

// MemberCache is the member lookup of *discordgo.State.
type MemberCache interface {
	Member(guildID, userID string) (*discordgo.Member, error)
}

// Messenger implements ports.Messenger and ports.MemberDirectory over a
// Discord bot session.
type Messenger struct {
	session Session
	members MemberCache
	selfID  domain.ParticipantID

	mu         sync.Mutex
	dmChannels map[domain.ParticipantID]string
	guilds     map[string]string
}

var (
	_ ports.Messenger       = (*Messenger)(nil)
	_ ports.MemberDirectory = (*Messenger)(nil)
	_ MemberCache           = (*discordgo.State)(nil)
)

func NewMessenger(session Session, selfID string) *Messenger {
	return &Messenger{
		session:    session,
		selfID:     domain.ParticipantID(selfID),
		dmChannels: make(map[domain.ParticipantID]string),
		guilds:     make(map[string]string),
	}
}

// WithMemberCache makes DisplayName consult cache before asking the REST
// API.
func (m *Messenger) WithMemberCache(cache MemberCache) *Messenger {
	m.members = cache
	return m
}

func (m *Messenger) Self() domain.ParticipantID {
	return m.selfID
}

func (m *Messenger) ChannelExists(ctx context.Context, channelID string) (bool, error) {
	if channelID == "" {
		return false, nil
	}
	ch, err := m.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		if isMissing(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up channel %s: %w", channelID, err)
	}
	m.rememberGuild(ch)
	return true, nil
}

func (m *Messenger) SendMessage(ctx context.Context, channelID string, msg ports.OutboundMessage) (domain.MessageRef, error) {
	data := &discordgo.MessageSend{
		Content: msg.Content,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeEveryone},
		},
	}
	if msg.Embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{toMessageEmbed(msg.Embed)}
	}

	sent, err := m.session.ChannelMessageSendComplex(channelID, data, discordgo.WithContext(ctx))
	if err != nil {
		return domain.MessageRef{}, fmt.Errorf("failed to send message: %w", classify(err))
	}
	return domain.MessageRef{ChannelID: sent.ChannelID, MessageID: sent.ID}, nil
}

func (m *Messenger) EditMessage(ctx context.Context, ref domain.MessageRef, msg ports.OutboundMessage) error {
	edit := discordgo.NewMessageEdit(ref.ChannelID, ref.MessageID)
	if msg.Content != "" {
		edit.SetContent(msg.Content)
	}
	if msg.Embed != nil {
		edit.SetEmbeds([]*discordgo.MessageEmbed{toMessageEmbed(msg.Embed)})
	}

	if _, err := m.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to edit message: %w", classify(err))
	}
	return nil
}

func (m *Messenger) AddReaction(ctx context.Context, ref domain.MessageRef, emoji string) error {
	if err := m.session.MessageReactionAdd(ref.ChannelID, ref.MessageID, emoji, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to add reaction: %w", classify(err))
	}
	return nil
}

func (m *Messenger) RemoveReaction(ctx context.Context, ref domain.MessageRef, emoji string, participant domain.ParticipantID) error {
	err := m.session.MessageReactionRemove(ref.ChannelID, ref.MessageID, emoji, string(participant), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to remove reaction: %w", classify(err))
	}
	return nil
}

func (m *Messenger) SendPrivateMessage(ctx context.Context, participant domain.ParticipantID, content string) error {
	channelID, err := m.dmChannel(ctx, participant)
	if err != nil {
		return err
	}
	if _, err := m.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send private message: %w", classify(err))
	}
	return nil
}

// DisplayName prefers the guild nickname, then the global display name,
// then the username.
func (m *Messenger) DisplayName(ctx context.Context, channelID string, participant domain.ParticipantID) (string, error) {
	guildID, err := m.guildOf(ctx, channelID)
	if err != nil {
		return "", err
	}

	if m.members != nil {
		if member, err := m.members.Member(guildID, string(participant)); err == nil && member != nil {
			return memberName(member), nil
		}
	}

	member, err := m.session.GuildMember(guildID, string(participant), discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to get member: %w", err)
	}
	return memberName(member), nil
}

func (m *Messenger) dmChannel(ctx context.Context, participant domain.ParticipantID) (string, error) {
	m.mu.Lock()
	id, ok := m.dmChannels[participant]
	m.mu.Unlock()
	if ok {
		return id, nil
	}

	ch, err := m.session.UserChannelCreate(string(participant), discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to open private channel: %w", classify(err))
	}

	m.mu.Lock()
	m.dmChannels[participant] = ch.ID
	m.mu.Unlock()
	return ch.ID, nil
}

func (m *Messenger) guildOf(ctx context.Context, channelID string) (string, error) {
	m.mu.Lock()
	guildID, ok := m.guilds[channelID]
	m.mu.Unlock()
	if ok {
		return guildID, nil
	}

	ch, err := m.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to look up channel %s: %w", channelID, err)
	}
	if ch.GuildID == "" {
		return "", fmt.Errorf("channel %s is not in a guild", channelID)
	}
	m.rememberGuild(ch)
	return ch.GuildID, nil
}

func (m *Messenger) rememberGuild(ch *discordgo.Channel) {
	if ch == nil || ch.GuildID == "" {
		return
	}
	m.mu.Lock()
	m.guilds[ch.ID] = ch.GuildID
	m.mu.Unlock()
}

func memberName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User == nil {
		return ""
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}

func toMessageEmbed(e *ports.Embed) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	if !e.Timestamp.IsZero() {
		embed.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)
	}
	for _, f := range e.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  f.Name,
			Value: f.Value,
		})
	}
	return embed
}

// classify maps the Discord errors the core reacts to onto domain errors.
func classify(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Message == nil {
		return err
	}
	if restErr.Message.Code == discordgo.ErrCodeCannotSendMessagesToThisUser {
		return fmt.Errorf("%w: %v", domain.ErrParticipantUnreachable, err)
	}
	return err
}

func isMissing(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownChannel, discordgo.ErrCodeMissingAccess:
			return true
		}
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}
