package discord

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
	"github.com/vncsmyrnk/attendance/internal/core/ports"
)

const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent

// Router translates gateway events into poll service calls. It expects
// events in gateway order (Session.SyncEvents) and hands them to a queue per
// author, so one participant's events are applied in the order they arrived
// without holding up the gateway loop.
type Router struct {
	ctx      context.Context
	polls    ports.PollService
	commands *CommandHandler
	selfID   string
	logger   *slog.Logger
	queue    *eventQueue
}

func NewRouter(ctx context.Context, polls ports.PollService, commands *CommandHandler, selfID string, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		ctx:      ctx,
		polls:    polls,
		commands: commands,
		selfID:   selfID,
		logger:   logger,
		queue:    newEventQueue(),
	}
}

// Wait blocks until every event handed to the poll service has been handled.
func (r *Router) Wait() {
	r.queue.Wait()
}

// Register adds the router's handlers to s and returns a function that
// removes them.
func (r *Router) Register(s *discordgo.Session) func() {
	removers := []func(){
		s.AddHandler(r.onReactionAdd),
		s.AddHandler(r.onReactionRemove),
		s.AddHandler(r.onMessageCreate),
	}
	return func() {
		for _, remove := range removers {
			remove()
		}
	}
}

func (r *Router) onReactionAdd(_ *discordgo.Session, e *discordgo.MessageReactionAdd) {
	if e.MessageReaction == nil {
		return
	}
	event := reactionEvent(e.MessageReaction)
	r.queue.Submit(e.UserID, func() {
		r.polls.HandleReactionAdded(r.ctx, event)
	})
}

func (r *Router) onReactionRemove(_ *discordgo.Session, e *discordgo.MessageReactionRemove) {
	if e.MessageReaction == nil {
		return
	}
	event := reactionEvent(e.MessageReaction)
	r.queue.Submit(e.UserID, func() {
		r.polls.HandleReactionRemoved(r.ctx, event)
	})
}

func (r *Router) onMessageCreate(_ *discordgo.Session, e *discordgo.MessageCreate) {
	r.dispatchMessage(e.Message)
}

func (r *Router) dispatchMessage(msg *discordgo.Message) {
	if msg == nil || msg.Author == nil || msg.Author.ID == r.selfID || msg.Author.Bot {
		return
	}

	if msg.GuildID == "" {
		pm := domain.PrivateMessage{
			Participant: domain.ParticipantID(msg.Author.ID),
			Text:        msg.Content,
		}
		r.queue.Submit(msg.Author.ID, func() {
			r.polls.HandlePrivateMessage(r.ctx, pm)
		})
		return
	}

	if r.commands != nil {
		r.queue.Submit(msg.Author.ID, func() {
			r.commands.Handle(r.ctx, msg)
		})
	}
}

func reactionEvent(r *discordgo.MessageReaction) domain.ReactionEvent {
	return domain.ReactionEvent{
		Participant: domain.ParticipantID(r.UserID),
		Emoji:       r.Emoji.Name,
		Message: domain.MessageRef{
			ChannelID: r.ChannelID,
			MessageID: r.MessageID,
		},
	}
}
