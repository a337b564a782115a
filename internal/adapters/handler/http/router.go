package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(meetingHandler *MeetingHandler, pollHandler *PollHandler, auth func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		})

		r.Group(func(r chi.Router) {
			if auth != nil {
				r.Use(auth)
			}

			r.Route("/meeting", func(r chi.Router) {
				r.Get("/", meetingHandler.GetMeeting)
				r.Put("/", meetingHandler.UpdateMeeting)
			})

			r.Route("/polls", func(r chi.Router) {
				r.Post("/", pollHandler.StartPoll)
				r.Get("/current", pollHandler.GetCurrent)
				r.Post("/current/refresh", pollHandler.RefreshSummary)
				r.Get("/current/feed", pollHandler.Feed)
			})
		})
	})

	return r
}
