package domain

import "time"

const (
	DefaultMeetingTime     = "19:00"
	DefaultMeetingBuilding = "B-4"
	DefaultMeetingRoom     = "2.40"
)

type Meeting struct {
	Time      string    `json:"time"`
	Building  string    `json:"building"`
	Room      string    `json:"room"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

func DefaultMeeting() Meeting {
	return Meeting{
		Time:     DefaultMeetingTime,
		Building: DefaultMeetingBuilding,
		Room:     DefaultMeetingRoom,
	}
}
