package memory

import (
	"sync"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
	"github.com/vncsmyrnk/attendance/internal/core/ports"
)

// ResponseStore keeps records in insertion order. Overwriting a record keeps
// its position; removing and setting again moves it to the end.
type ResponseStore struct {
	mu sync.RWMutex

	records map[domain.ParticipantID]domain.ResponseRecord
	order   []domain.ParticipantID
}

func NewResponseStore() ports.ResponseStore {
	return &ResponseStore{
		records: make(map[domain.ParticipantID]domain.ResponseRecord),
	}
}

func (s *ResponseStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[domain.ParticipantID]domain.ResponseRecord)
	s.order = nil
}

func (s *ResponseStore) Set(participant domain.ParticipantID, record domain.ResponseRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[participant]; !ok {
		s.order = append(s.order, participant)
	}
	s.records[participant] = cloneRecord(record)
}

func (s *ResponseStore) Remove(participant domain.ParticipantID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[participant]; !ok {
		return
	}
	delete(s.records, participant)
	for i, p := range s.order {
		if p == participant {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *ResponseStore) Get(participant domain.ParticipantID) (domain.ResponseRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[participant]
	if !ok {
		return domain.ResponseRecord{}, false
	}
	return cloneRecord(record), true
}

func (s *ResponseStore) Snapshot() []domain.Response {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Response, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, domain.Response{Participant: p, Record: cloneRecord(s.records[p])})
	}
	return out
}

func cloneRecord(record domain.ResponseRecord) domain.ResponseRecord {
	if record.Reason != nil {
		reason := *record.Reason
		record.Reason = &reason
	}
	return record
}
