package services

import (
	"sync"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
)

// participantLocks serializes work per participant while letting different
// participants proceed in parallel. Entries are dropped once unused.
type participantLocks struct {
	mu    sync.Mutex
	locks map[domain.ParticipantID]*participantLock
}

type participantLock struct {
	sync.Mutex
	refs int
}

func newParticipantLocks() *participantLocks {
	return &participantLocks{
		locks: make(map[domain.ParticipantID]*participantLock),
	}
}

// Lock blocks until the participant's lock is held and returns the release
// function. The release function must be called exactly once.
func (l *participantLocks) Lock(participant domain.ParticipantID) func() {
	l.mu.Lock()
	pl, ok := l.locks[participant]
	if !ok {
		pl = &participantLock{}
		l.locks[participant] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.Lock()
	return func() {
		pl.Unlock()

		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.locks, participant)
		}
		l.mu.Unlock()
	}
}

func (l *participantLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
