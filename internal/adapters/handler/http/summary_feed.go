package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
)

const (
	feedWriteTimeout = 10 * time.Second
	feedBufferSize   = 16
)

type feedClient struct {
	send chan domain.SummaryView
}

// SummaryFeed fans published summaries out to websocket clients. A client
// that falls behind misses updates rather than blocking publishers.
type SummaryFeed struct {
	mu      sync.RWMutex
	clients map[*feedClient]struct{}
	logger  *slog.Logger

	originPatterns []string
}

func NewSummaryFeed(logger *slog.Logger, originPatterns ...string) *SummaryFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryFeed{
		clients:        make(map[*feedClient]struct{}),
		logger:         logger,
		originPatterns: originPatterns,
	}
}

func (f *SummaryFeed) SummaryPublished(view domain.SummaryView) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for c := range f.clients {
		select {
		case c.send <- view:
		default:
			f.logger.Warn("summary feed client lagging, update dropped", "poll_id", view.PollID)
		}
	}
}

func (f *SummaryFeed) Serve(w http.ResponseWriter, r *http.Request, initial *domain.SummaryView) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: f.originPatterns})
	if err != nil {
		f.logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())

	client := &feedClient{send: make(chan domain.SummaryView, feedBufferSize)}
	f.register(client)
	defer f.unregister(client)

	if initial != nil {
		if err := f.write(ctx, conn, *initial); err != nil {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case view := <-client.send:
			if err := f.write(ctx, conn, view); err != nil {
				f.logger.Debug("summary feed write failed", "error", err)
				return
			}
		}
	}
}

func (f *SummaryFeed) Clients() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

func (f *SummaryFeed) write(ctx context.Context, conn *websocket.Conn, view domain.SummaryView) error {
	ctx, cancel := context.WithTimeout(ctx, feedWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, view)
}

func (f *SummaryFeed) register(c *feedClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clients[c] = struct{}{}
}

func (f *SummaryFeed) unregister(c *feedClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.clients, c)
}
