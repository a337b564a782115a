package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
	"github.com/vncsmyrnk/attendance/internal/core/ports"
)

type PollHandler struct {
	service ports.PollService
	feed    *SummaryFeed
}

func NewPollHandler(service ports.PollService, feed *SummaryFeed) *PollHandler {
	return &PollHandler{
		service: service,
		feed:    feed,
	}
}

type startPollRequest struct {
	Date      string `json:"date"`
	ChannelID string `json:"channel_id"`
}

type currentPollResponse struct {
	Poll    *domain.Poll        `json:"poll"`
	Summary *domain.SummaryView `json:"summary"`
}

// StartPoll godoc
// @Summary      Starts a new attendance poll
// @Description  Posts the announcement to the target channel and replaces the active poll. channel_id defaults to the configured channel.
// @Tags         polls
// @Accept       json
// @Produce      json
// @Param        request  body      startPollRequest  true  "Poll date"
// @Success      201      {object}  domain.Poll
// @Failure      400
// @Failure      404
// @Router       /api/polls [post]
func (h *PollHandler) StartPoll(w http.ResponseWriter, r *http.Request) {
	var req startPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	poll, err := h.service.StartPoll(r.Context(), ports.StartPollInput{
		Date:      req.Date,
		ChannelID: req.ChannelID,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPollDate):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, domain.ErrMissingTarget):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, poll)
}

// GetCurrent godoc
// @Summary      Active poll and its summary
// @Tags         polls
// @Produce      json
// @Success      200  {object}  currentPollResponse
// @Failure      404
// @Router       /api/polls/current [get]
func (h *PollHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	poll, view, err := h.service.Current(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoActivePoll) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, currentPollResponse{Poll: poll, Summary: view})
}

func (h *PollHandler) RefreshSummary(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RefreshSummary(r.Context()); err != nil {
		if errors.Is(err, domain.ErrNoActivePoll) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Feed upgrades to a websocket that receives the current summary followed by
// every published one.
func (h *PollHandler) Feed(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		http.Error(w, "summary feed disabled", http.StatusNotFound)
		return
	}

	var initial *domain.SummaryView
	if _, view, err := h.service.Current(r.Context()); err == nil {
		initial = view
	}
	h.feed.Serve(w, r, initial)
}
