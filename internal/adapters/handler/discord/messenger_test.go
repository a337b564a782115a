package discord

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
	"github.com/vncsmyrnk/attendance/internal/core/ports"
)

func TestMessenger_ChannelExists(t *testing.T) {
	session := newFakeSession()
	session.channels["chan"] = &discordgo.Channel{ID: "chan", GuildID: "guild"}
	m := NewMessenger(session, "bot")
	ctx := context.Background()

	ok, err := m.ChannelExists(ctx, "chan")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.ChannelExists(ctx, "gone")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.ChannelExists(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMessenger_SendPrivateMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("Reuses the private channel", func(t *testing.T) {
		session := newFakeSession()
		m := NewMessenger(session, "bot")

		require.NoError(t, m.SendPrivateMessage(ctx, "alice", "one"))
		require.NoError(t, m.SendPrivateMessage(ctx, "alice", "two"))

		assert.Equal(t, 1, session.dmOpened)
		assert.Equal(t, []string{"one", "two"}, session.sentTo("dm-alice"))
	})

	t.Run("Closed DMs map to unreachable", func(t *testing.T) {
		session := newFakeSession()
		session.closedDMs["bob"] = true
		m := NewMessenger(session, "bot")

		err := m.SendPrivateMessage(ctx, "bob", "hello")
		assert.ErrorIs(t, err, domain.ErrParticipantUnreachable)
	})
}

func TestMessenger_SendAndEdit(t *testing.T) {
	session := newFakeSession()
	m := NewMessenger(session, "bot")
	ctx := context.Background()
	at := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	ref, err := m.SendMessage(ctx, "chan", ports.OutboundMessage{
		Content: "@everyone",
		Embed: &ports.Embed{
			Title:     "Poll",
			Color:     0x3498db,
			Fields:    []ports.EmbedField{{Name: "✅ Attending", Value: "none"}},
			Timestamp: at,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "chan", ref.ChannelID)
	assert.NotEmpty(t, ref.MessageID)

	require.Len(t, session.complex, 1)
	sent := session.complex[0]
	assert.Equal(t, "@everyone", sent.Content)
	require.NotNil(t, sent.AllowedMentions)
	assert.Contains(t, sent.AllowedMentions.Parse, discordgo.AllowedMentionTypeEveryone)
	require.Len(t, sent.Embeds, 1)
	assert.Equal(t, "Poll", sent.Embeds[0].Title)
	assert.Equal(t, "2026-03-02T12:00:00Z", sent.Embeds[0].Timestamp)
	require.Len(t, sent.Embeds[0].Fields, 1)
	assert.Equal(t, "none", sent.Embeds[0].Fields[0].Value)

	require.NoError(t, m.EditMessage(ctx, ref, ports.OutboundMessage{Embed: &ports.Embed{Title: "Updated"}}))
	require.Len(t, session.edits, 1)
	edit := session.edits[0]
	assert.Equal(t, ref.MessageID, edit.ID)
	assert.Nil(t, edit.Content)
	require.NotNil(t, edit.Embeds)
	assert.Equal(t, "Updated", (*edit.Embeds)[0].Title)
}

func TestMessenger_Reactions(t *testing.T) {
	session := newFakeSession()
	m := NewMessenger(session, "bot")
	ctx := context.Background()
	ref := domain.MessageRef{ChannelID: "chan", MessageID: "m1"}

	require.NoError(t, m.AddReaction(ctx, ref, domain.EmojiAttend))
	require.NoError(t, m.RemoveReaction(ctx, ref, domain.EmojiDecline, "alice"))

	assert.Equal(t, []string{"m1:✅"}, session.reactions)
	assert.Equal(t, []string{"m1:❌:alice"}, session.unreacted)
}

func TestMessenger_DisplayName(t *testing.T) {
	session := newFakeSession()
	session.channels["chan"] = &discordgo.Channel{ID: "chan", GuildID: "guild"}
	session.members["nick"] = &discordgo.Member{Nick: "Nicky", User: &discordgo.User{ID: "nick", Username: "n", GlobalName: "N"}}
	session.members["global"] = &discordgo.Member{User: &discordgo.User{ID: "global", Username: "g", GlobalName: "Gee"}}
	session.members["plain"] = &discordgo.Member{User: &discordgo.User{ID: "plain", Username: "plainuser"}}
	m := NewMessenger(session, "bot")
	ctx := context.Background()

	for id, want := range map[domain.ParticipantID]string{"nick": "Nicky", "global": "Gee", "plain": "plainuser"} {
		got, err := m.DisplayName(ctx, "chan", id)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := m.DisplayName(ctx, "chan", "stranger")
	assert.Error(t, err)

	_, err = m.DisplayName(ctx, "gone", "nick")
	assert.Error(t, err)
}

func TestMessenger_DisplayNamePrefersMemberCache(t *testing.T) {
	session := newFakeSession()
	session.channels["chan"] = &discordgo.Channel{ID: "chan", GuildID: "guild"}
	session.members["uncached"] = &discordgo.Member{User: &discordgo.User{ID: "uncached", Username: "fromrest"}}

	state := discordgo.NewState()
	require.NoError(t, state.GuildAdd(&discordgo.Guild{ID: "guild"}))
	require.NoError(t, state.MemberAdd(&discordgo.Member{GuildID: "guild", Nick: "Cached", User: &discordgo.User{ID: "cached", Username: "c"}}))

	m := NewMessenger(session, "bot").WithMemberCache(state)
	ctx := context.Background()

	got, err := m.DisplayName(ctx, "chan", "cached")
	require.NoError(t, err)
	assert.Equal(t, "Cached", got)
	assert.Zero(t, session.memberHits)

	got, err = m.DisplayName(ctx, "chan", "uncached")
	require.NoError(t, err)
	assert.Equal(t, "fromrest", got)
	assert.Equal(t, 1, session.memberHits)
}

func TestClassify(t *testing.T) {
	assert.ErrorIs(t, classify(restError(http.StatusForbidden, discordgo.ErrCodeCannotSendMessagesToThisUser)), domain.ErrParticipantUnreachable)
	assert.NotErrorIs(t, classify(restError(http.StatusForbidden, discordgo.ErrCodeMissingAccess)), domain.ErrParticipantUnreachable)
	assert.Equal(t, assert.AnError, classify(assert.AnError))

	assert.True(t, isMissing(restError(http.StatusNotFound, discordgo.ErrCodeUnknownChannel)))
	assert.True(t, isMissing(restError(http.StatusForbidden, discordgo.ErrCodeMissingAccess)))
	assert.False(t, isMissing(restError(http.StatusInternalServerError, 0)))
	assert.False(t, isMissing(assert.AnError))
}
