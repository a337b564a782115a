package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
	"github.com/vncsmyrnk/attendance/internal/core/ports"
)

const DefaultReasonTimeout = 120 * time.Second

type PollServiceConfig struct {
	// ChannelID is the default target channel for new polls.
	ChannelID     string
	ReasonTimeout time.Duration
	Clock         clockwork.Clock
	Logger        *slog.Logger
	Observers     []ports.SummaryObserver
}

// session is the state of one poll run. It is replaced as a whole when a
// new poll starts.
type session struct {
	poll       domain.Poll
	store      ports.ResponseStore
	collector  *ReasonCollector
	reconciler *VoteReconciler
	publisher  *summaryPublisher
	closed     atomic.Bool
}

func (s *session) refresh(ctx context.Context, logger *slog.Logger) {
	if s.closed.Load() {
		return
	}
	if err := s.publisher.Publish(ctx); err != nil {
		logger.Warn("failed to publish summary", "poll_id", s.poll.ID, "error", err)
	}
}

func (s *session) close() {
	s.closed.Store(true)
	s.collector.CancelAll()
	s.store.Reset()
}

type pollService struct {
	messenger ports.Messenger
	directory ports.MemberDirectory
	meetings  ports.MeetingService
	newStore  func() ports.ResponseStore
	cfg       PollServiceConfig
	logger    *slog.Logger

	startMu sync.Mutex

	mu     sync.RWMutex
	active *session
}

func NewPollService(
	messenger ports.Messenger,
	directory ports.MemberDirectory,
	meetings ports.MeetingService,
	newStore func() ports.ResponseStore,
	cfg PollServiceConfig,
) ports.PollService {
	if cfg.ReasonTimeout <= 0 {
		cfg.ReasonTimeout = DefaultReasonTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &pollService{
		messenger: messenger,
		directory: directory,
		meetings:  meetings,
		newStore:  newStore,
		cfg:       cfg,
		logger:    resolveLogger(cfg.Logger),
	}
}

// StartPoll posts a new poll and replaces the active session. Nothing is
// replaced when the target channel is missing or the poll cannot be posted.
func (s *pollService) StartPoll(ctx context.Context, input ports.StartPollInput) (*domain.Poll, error) {
	date := strings.TrimSpace(input.Date)
	if date == "" {
		return nil, domain.ErrInvalidPollDate
	}
	channelID := input.ChannelID
	if channelID == "" {
		channelID = s.cfg.ChannelID
	}

	s.startMu.Lock()
	defer s.startMu.Unlock()

	if channelID == "" {
		return nil, domain.ErrMissingTarget
	}
	exists, err := s.messenger.ChannelExists(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up channel %s: %w", channelID, err)
	}
	if !exists {
		return nil, domain.ErrMissingTarget
	}

	meeting, err := s.meetings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load meeting settings: %w", err)
	}

	poll := domain.Poll{
		ID:        uuid.New(),
		ChannelID: channelID,
		Date:      date,
		Meeting:   *meeting,
		CreatedAt: s.cfg.Clock.Now(),
	}

	ref, err := s.messenger.SendMessage(ctx, channelID, renderAnnouncement(poll))
	if err != nil {
		return nil, fmt.Errorf("failed to post poll: %w", err)
	}
	poll.Message = ref

	for _, emoji := range []string{domain.EmojiAttend, domain.EmojiDecline} {
		if err := s.messenger.AddReaction(ctx, ref, emoji); err != nil {
			s.logger.Warn("failed to seed poll reaction", "poll_id", poll.ID, "emoji", emoji, "error", err)
		}
	}

	next := s.newSession(poll)

	s.mu.Lock()
	prev := s.active
	s.active = next
	s.mu.Unlock()

	if prev != nil {
		prev.close()
	}

	s.logger.Info("poll started", "poll_id", poll.ID, "channel_id", channelID, "date", date)
	next.refresh(ctx, s.logger)

	return &poll, nil
}

func (s *pollService) newSession(poll domain.Poll) *session {
	sess := &session{
		poll:  poll,
		store: s.newStore(),
	}
	locks := newParticipantLocks()
	refresh := func(ctx context.Context) { sess.refresh(ctx, s.logger) }

	sess.publisher = newSummaryPublisher(poll, sess.store, s.messenger, s.directory, s.cfg.Clock, s.cfg.Observers, s.logger)
	sess.collector = newReasonCollector(sess.store, s.messenger, locks, s.cfg.Clock, s.cfg.ReasonTimeout, s.logger, refresh)
	sess.reconciler = newVoteReconciler(sess.store, sess.collector, locks, s.messenger, s.logger, refresh)
	return sess
}

func (s *pollService) RefreshSummary(ctx context.Context) error {
	sess := s.current()
	if sess == nil {
		return domain.ErrNoActivePoll
	}
	return sess.publisher.Publish(ctx)
}

func (s *pollService) Current(ctx context.Context) (*domain.Poll, *domain.SummaryView, error) {
	sess := s.current()
	if sess == nil {
		return nil, nil, domain.ErrNoActivePoll
	}
	poll := sess.poll
	view := sess.publisher.View(ctx)
	return &poll, &view, nil
}

func (s *pollService) HandleReactionAdded(ctx context.Context, event domain.ReactionEvent) {
	sess, choice, ok := s.route(event)
	if !ok {
		return
	}

	err := sess.reconciler.Intend(ctx, event.Participant, choice, event.Message)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrConflictingVote):
		s.logger.Info("conflicting vote rejected", "participant", event.Participant, "choice", choice)
	case errors.Is(err, domain.ErrParticipantUnreachable):
		s.logger.Warn("decline dropped, participant unreachable", "participant", event.Participant)
	case errors.Is(err, domain.ErrNoActivePoll):
		s.logger.Debug("vote for closed poll ignored", "participant", event.Participant)
	default:
		s.logger.Error("failed to apply vote", "participant", event.Participant, "choice", choice, "error", err)
	}
}

func (s *pollService) HandleReactionRemoved(ctx context.Context, event domain.ReactionEvent) {
	sess, choice, ok := s.route(event)
	if !ok {
		return
	}
	if sess.reconciler.Withdraw(ctx, event.Participant, choice) {
		s.logger.Debug("vote withdrawn", "participant", event.Participant, "choice", choice)
	}
}

func (s *pollService) HandlePrivateMessage(ctx context.Context, msg domain.PrivateMessage) {
	if msg.Participant == "" || msg.Participant == s.messenger.Self() {
		return
	}
	sess := s.current()
	if sess == nil {
		return
	}
	if !sess.collector.Reply(ctx, msg.Participant, msg.Text) {
		s.logger.Debug("private message without pending reason request", "participant", msg.Participant)
	}
}

func (s *pollService) Close() {
	s.mu.Lock()
	sess := s.active
	s.active = nil
	s.mu.Unlock()

	if sess != nil {
		sess.close()
	}
}

// route drops events from the bot itself, unknown emoji and messages other
// than the active poll.
func (s *pollService) route(event domain.ReactionEvent) (*session, domain.Choice, bool) {
	if event.Participant == "" || event.Participant == s.messenger.Self() {
		return nil, 0, false
	}
	choice, ok := domain.ChoiceFromEmoji(event.Emoji)
	if !ok {
		return nil, 0, false
	}
	sess := s.current()
	if sess == nil || sess.poll.Message.MessageID != event.Message.MessageID {
		return nil, 0, false
	}
	return sess, choice, true
}

func (s *pollService) current() *session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}
