package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
	"github.com/vncsmyrnk/attendance/internal/core/ports"
)

const (
	DefaultPrefix    = "!"
	DefaultAdminRole = "Board"
)

type command struct {
	Name string
	Args string
}

// parseCommand splits "!name args..." into its parts. Names are matched
// case-insensitively and returned lower-cased.
func parseCommand(prefix, content string) (command, bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return command{}, false
	}
	rest := strings.TrimPrefix(content, prefix)
	if rest == "" || strings.HasPrefix(rest, " ") {
		return command{}, false
	}

	name, args, _ := strings.Cut(rest, " ")
	return command{
		Name: strings.ToLower(name),
		Args: strings.TrimSpace(args),
	}, true
}

func helpText(prefix string) string {
	return "**📖 Bot usage:**\n\n" +
		"🔧 **Meeting settings:**\n" +
		"`" + prefix + "setTime <time>`\n" +
		"`" + prefix + "setBuilding <name>`\n" +
		"`" + prefix + "setRoom <number>`\n\n" +
		"📅 **Creating a poll:**\n" +
		"`" + prefix + "poll <date>` e.g. `" + prefix + "poll 12.12.2025`\n\n" +
		"📋 **Response list:**\n" +
		"Updated automatically after every reaction.\n\n" +
		"📬 **Refreshing the list:**\n" +
		"`" + prefix + "responses` refreshes the summary and confirms in a private message."
}

type CommandConfig struct {
	Prefix    string
	AdminRole string
	Logger    *slog.Logger
}

// CommandHandler runs the admin text commands posted in guild channels.
type CommandHandler struct {
	session  Session
	meetings ports.MeetingService
	polls    ports.PollService
	dm       func(ctx context.Context, participant domain.ParticipantID, content string) error

	prefix    string
	adminRole string
	logger    *slog.Logger
}

func NewCommandHandler(session Session, messenger ports.Messenger, meetings ports.MeetingService, polls ports.PollService, cfg CommandConfig) *CommandHandler {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.AdminRole == "" {
		cfg.AdminRole = DefaultAdminRole
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &CommandHandler{
		session:   session,
		meetings:  meetings,
		polls:     polls,
		dm:        messenger.SendPrivateMessage,
		prefix:    cfg.Prefix,
		adminRole: cfg.AdminRole,
		logger:    cfg.Logger,
	}
}

// Handle runs msg when it is a known command. It reports whether msg was
// treated as a command.
func (h *CommandHandler) Handle(ctx context.Context, msg *discordgo.Message) bool {
	cmd, ok := parseCommand(h.prefix, msg.Content)
	if !ok {
		return false
	}

	run, known := h.commands()[cmd.Name]
	if !known {
		h.logger.Debug("unknown command", "name", cmd.Name, "author", authorID(msg))
		return false
	}

	admin, err := h.isAdmin(ctx, msg)
	if err != nil {
		h.logger.Error("failed to check admin role", "author", authorID(msg), "error", err)
		return true
	}
	if !admin {
		h.reply(ctx, msg, fmt.Sprintf("⛔ You need the **%s** role to use this command.", h.adminRole))
		return true
	}

	h.logger.Info("running command", "name", cmd.Name, "author", authorID(msg))
	run(ctx, msg, cmd.Args)
	return true
}

type commandFunc func(ctx context.Context, msg *discordgo.Message, args string)

func (h *CommandHandler) commands() map[string]commandFunc {
	return map[string]commandFunc{
		"settime":     h.setTime,
		"setbuilding": h.setBuilding,
		"setroom":     h.setRoom,
		"poll":        h.startPoll,
		"responses":   h.responses,
		"help":        h.help,
	}
}

func (h *CommandHandler) setTime(ctx context.Context, msg *discordgo.Message, args string) {
	h.updateMeeting(ctx, msg, ports.UpdateMeetingInput{Time: &args}, "setTime <time>", func(m *domain.Meeting) string {
		return "🕒 Meeting time set to: **" + m.Time + "**"
	})
}

func (h *CommandHandler) setBuilding(ctx context.Context, msg *discordgo.Message, args string) {
	h.updateMeeting(ctx, msg, ports.UpdateMeetingInput{Building: &args}, "setBuilding <name>", func(m *domain.Meeting) string {
		return "🏫 Building set to: **" + m.Building + "**"
	})
}

func (h *CommandHandler) setRoom(ctx context.Context, msg *discordgo.Message, args string) {
	h.updateMeeting(ctx, msg, ports.UpdateMeetingInput{Room: &args}, "setRoom <number>", func(m *domain.Meeting) string {
		return "🏠 Room set to: **" + m.Room + "**"
	})
}

func (h *CommandHandler) updateMeeting(ctx context.Context, msg *discordgo.Message, input ports.UpdateMeetingInput, usage string, confirm func(*domain.Meeting) string) {
	meeting, err := h.meetings.Update(ctx, input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidMeeting) {
			h.reply(ctx, msg, "❌ Usage: `"+h.prefix+usage+"`")
			return
		}
		h.logger.Error("failed to update meeting", "error", err)
		h.reply(ctx, msg, "❌ Could not save the meeting settings.")
		return
	}
	h.reply(ctx, msg, confirm(meeting))
}

func (h *CommandHandler) startPoll(ctx context.Context, msg *discordgo.Message, args string) {
	poll, err := h.polls.StartPoll(ctx, ports.StartPollInput{Date: args})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPollDate):
			h.reply(ctx, msg, "❌ Usage: `"+h.prefix+"poll <date>`")
		case errors.Is(err, domain.ErrMissingTarget):
			h.reply(ctx, msg, "❌ Channel not found!")
		default:
			h.logger.Error("failed to start poll", "error", err)
			h.reply(ctx, msg, "❌ Could not start the poll.")
		}
		return
	}
	h.logger.Info("poll started from command", "poll_id", poll.ID, "date", poll.Date)
}

func (h *CommandHandler) responses(ctx context.Context, msg *discordgo.Message, _ string) {
	if err := h.polls.RefreshSummary(ctx); err != nil {
		if errors.Is(err, domain.ErrNoActivePoll) {
			h.reply(ctx, msg, "ℹ️ There is no active poll.")
			return
		}
		h.logger.Error("failed to refresh summary", "error", err)
		h.reply(ctx, msg, "❌ Could not refresh the poll summary.")
		return
	}
	h.privateReply(ctx, msg, "📋 The poll summary has been refreshed.")
}

func (h *CommandHandler) help(ctx context.Context, msg *discordgo.Message, _ string) {
	h.privateReply(ctx, msg, helpText(h.prefix))
	if err := h.session.MessageReactionAdd(msg.ChannelID, msg.ID, domain.EmojiAttend, discordgo.WithContext(ctx)); err != nil {
		h.logger.Warn("failed to acknowledge help command", "error", err)
	}
}

func (h *CommandHandler) isAdmin(ctx context.Context, msg *discordgo.Message) (bool, error) {
	if msg.GuildID == "" || msg.Member == nil {
		return false, nil
	}
	roles, err := h.session.GuildRoles(msg.GuildID, discordgo.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to list roles: %w", err)
	}
	return hasRole(roles, msg.Member.Roles, h.adminRole), nil
}

func hasRole(guildRoles []*discordgo.Role, memberRoles []string, name string) bool {
	for _, role := range guildRoles {
		if role.Name != name {
			continue
		}
		for _, id := range memberRoles {
			if id == role.ID {
				return true
			}
		}
	}
	return false
}

func (h *CommandHandler) reply(ctx context.Context, msg *discordgo.Message, content string) {
	if _, err := h.session.ChannelMessageSend(msg.ChannelID, content, discordgo.WithContext(ctx)); err != nil {
		h.logger.Warn("failed to reply to command", "channel", msg.ChannelID, "error", err)
	}
}

func (h *CommandHandler) privateReply(ctx context.Context, msg *discordgo.Message, content string) {
	if err := h.dm(ctx, domain.ParticipantID(authorID(msg)), content); err != nil {
		h.logger.Warn("failed to send private reply", "author", authorID(msg), "error", err)
	}
}

func authorID(msg *discordgo.Message) string {
	if msg.Author == nil {
		return ""
	}
	return msg.Author.ID
}
