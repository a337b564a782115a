package domain

import "errors"

var (
	ErrConflictingVote        = errors.New("participant already holds the opposite vote")
	ErrParticipantUnreachable = errors.New("participant cannot be reached privately")
	ErrReasonTimeout          = errors.New("no reason received before the deadline")
	ErrReasonPending          = errors.New("a reason request is already pending")
	ErrMissingTarget          = errors.New("poll target channel not found")
	ErrNoActivePoll           = errors.New("no active poll")
	ErrInvalidPollDate        = errors.New("poll date is required")
	ErrInvalidMeeting         = errors.New("meeting field must not be empty")
	ErrMeetingNotFound        = errors.New("meeting settings not found")
)
