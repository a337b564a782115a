package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
	"github.com/vncsmyrnk/attendance/internal/core/ports"
)

// ProjectSummary partitions responses into attending and declining lists,
// keeping the order of responses. Participants missing from names are shown
// by id.
func ProjectSummary(pollID uuid.UUID, responses []domain.Response, names map[domain.ParticipantID]string, at time.Time) domain.SummaryView {
	view := domain.SummaryView{
		PollID:      pollID,
		Attending:   []domain.SummaryEntry{},
		Declining:   []domain.SummaryEntry{},
		GeneratedAt: at,
	}

	for _, r := range responses {
		name, ok := names[r.Participant]
		if !ok || name == "" {
			name = string(r.Participant)
		}
		entry := domain.SummaryEntry{Participant: r.Participant, DisplayName: name}

		switch r.Record.Choice {
		case domain.ChoiceAttending:
			view.Attending = append(view.Attending, entry)
		case domain.ChoiceDeclining:
			entry.Reason = r.Record.Reason
			view.Declining = append(view.Declining, entry)
		}
	}
	return view
}

// summaryPublisher owns the summary message of one poll. The first publish
// sends it, later ones edit it in place. At most one publish runs at a time;
// publishes requested meanwhile collapse into one more pass over the latest
// store state instead of queueing.
type summaryPublisher struct {
	poll      domain.Poll
	store     ports.ResponseStore
	messenger ports.Messenger
	directory ports.MemberDirectory
	clock     clockwork.Clock
	observers []ports.SummaryObserver
	logger    *slog.Logger

	mu       sync.Mutex
	handle   *domain.MessageRef
	inFlight bool
	dirty    bool
}

func newSummaryPublisher(
	poll domain.Poll,
	store ports.ResponseStore,
	messenger ports.Messenger,
	directory ports.MemberDirectory,
	clock clockwork.Clock,
	observers []ports.SummaryObserver,
	logger *slog.Logger,
) *summaryPublisher {
	return &summaryPublisher{
		poll:      poll,
		store:     store,
		messenger: messenger,
		directory: directory,
		clock:     clock,
		observers: observers,
		logger:    resolveLogger(logger),
	}
}

func (p *summaryPublisher) View(ctx context.Context) domain.SummaryView {
	responses := p.store.Snapshot()
	names := p.resolveNames(ctx, responses)
	return ProjectSummary(p.poll.ID, responses, names, p.clock.Now())
}

func (p *summaryPublisher) Handle() (domain.MessageRef, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == nil {
		return domain.MessageRef{}, false
	}
	return *p.handle, true
}

// Publish brings the summary message up to date. Callers that arrive while
// another publish is running return nil immediately; the running publish
// picks up their changes on a pass that outlives the first caller's context.
func (p *summaryPublisher) Publish(ctx context.Context) error {
	p.mu.Lock()
	if p.inFlight {
		p.dirty = true
		p.mu.Unlock()
		return nil
	}
	p.inFlight = true
	p.mu.Unlock()

	// Passes after the first serve callers that already returned, so they
	// must not die with the first caller's context.
	detached := context.WithoutCancel(ctx)
	for pass := 0; ; pass++ {
		var err error
		if pass == 0 {
			err = p.publishOnce(ctx)
		} else {
			passCtx, cancel := context.WithTimeout(detached, notifyTimeout)
			err = p.publishOnce(passCtx)
			cancel()
		}

		p.mu.Lock()
		if p.dirty {
			p.dirty = false
			p.mu.Unlock()
			continue
		}
		p.dirty = false
		p.inFlight = false
		p.mu.Unlock()
		return err
	}
}

func (p *summaryPublisher) publishOnce(ctx context.Context) error {
	view := p.View(ctx)
	msg := renderSummary(view)

	if ref, ok := p.Handle(); ok {
		if err := p.messenger.EditMessage(ctx, ref, msg); err != nil {
			return fmt.Errorf("failed to edit summary: %w", err)
		}
	} else {
		ref, err := p.messenger.SendMessage(ctx, p.poll.ChannelID, msg)
		if err != nil {
			return fmt.Errorf("failed to send summary: %w", err)
		}
		p.mu.Lock()
		p.handle = &ref
		p.mu.Unlock()
	}

	for _, o := range p.observers {
		o.SummaryPublished(view)
	}
	return nil
}

func (p *summaryPublisher) resolveNames(ctx context.Context, responses []domain.Response) map[domain.ParticipantID]string {
	names := make(map[domain.ParticipantID]string, len(responses))
	if p.directory == nil || len(responses) == 0 {
		return names
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, r := range responses {
		wg.Add(1)
		go func(id domain.ParticipantID) {
			defer wg.Done()
			name, err := p.directory.DisplayName(ctx, p.poll.ChannelID, id)
			if err != nil {
				p.logger.Debug("failed to resolve display name", "participant", id, "error", err)
				return
			}
			mu.Lock()
			names[id] = name
			mu.Unlock()
		}(r.Participant)
	}
	wg.Wait()

	return names
}
