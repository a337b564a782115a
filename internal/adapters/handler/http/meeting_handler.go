package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vncsmyrnk/attendance/internal/core/domain"
	"github.com/vncsmyrnk/attendance/internal/core/ports"
)

type MeetingHandler struct {
	service ports.MeetingService
}

func NewMeetingHandler(service ports.MeetingService) *MeetingHandler {
	return &MeetingHandler{
		service: service,
	}
}

type updateMeetingRequest struct {
	Time     *string `json:"time"`
	Building *string `json:"building"`
	Room     *string `json:"room"`
}

// GetMeeting godoc
// @Summary      Current meeting settings
// @Description  Returns the stored meeting time, building and room, or the defaults when nothing was saved.
// @Tags         meeting
// @Produce      json
// @Success      200  {object}  domain.Meeting
// @Failure      401
// @Router       /api/meeting [get]
func (h *MeetingHandler) GetMeeting(w http.ResponseWriter, r *http.Request) {
	meeting, err := h.service.Get(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, meeting)
}

// UpdateMeeting godoc
// @Summary      Updates meeting settings
// @Description  Partial update. Omitted fields keep their value; blank values are rejected.
// @Tags         meeting
// @Accept       json
// @Produce      json
// @Param        request  body      updateMeetingRequest  true  "Fields to change"
// @Success      200      {object}  domain.Meeting
// @Failure      400
// @Failure      401
// @Router       /api/meeting [put]
func (h *MeetingHandler) UpdateMeeting(w http.ResponseWriter, r *http.Request) {
	var req updateMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	meeting, err := h.service.Update(r.Context(), ports.UpdateMeetingInput{
		Time:     req.Time,
		Building: req.Building,
		Room:     req.Room,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidMeeting) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, meeting)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
