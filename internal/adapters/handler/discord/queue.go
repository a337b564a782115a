package discord

import "sync"

// eventQueue runs the jobs submitted for one key in submission order, one at
// a time. Different keys run concurrently.
type eventQueue struct {
	mu      sync.Mutex
	pending map[string][]func()
	wg      sync.WaitGroup
}

func newEventQueue() *eventQueue {
	return &eventQueue{pending: make(map[string][]func())}
}

func (q *eventQueue) Submit(key string, job func()) {
	q.mu.Lock()
	defer q.mu.Unlock()

	jobs, draining := q.pending[key]
	q.pending[key] = append(jobs, job)
	if !draining {
		q.wg.Add(1)
		go q.drain(key)
	}
}

// Wait blocks until every submitted job has run.
func (q *eventQueue) Wait() {
	q.wg.Wait()
}

func (q *eventQueue) drain(key string) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		jobs := q.pending[key]
		if len(jobs) == 0 {
			delete(q.pending, key)
			q.mu.Unlock()
			return
		}
		job := jobs[0]
		q.pending[key] = jobs[1:]
		q.mu.Unlock()

		job()
	}
}
