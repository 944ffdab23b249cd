// Package events defines the domain events published by the meeting-update
// flow and consumed by out-of-band workers (reminder scheduling, email).
package events

import (
	"time"

	"meeting_assistant_backend/platform/events"

	"github.com/google/uuid"
)

const MeetingUpdatedName = "meeting.updated"

// MeetingUpdated fires after a commit completes. The scheduler uses it to
// requeue reminder dispatch for the meeting's new start time.
type MeetingUpdated struct {
	events.BaseEvent
	UserID          uuid.UUID `json:"userId"`
	MeetingID       string    `json:"meetingId"`
	Title           string    `json:"title"`
	StartDate       time.Time `json:"startDate"`
	Timezone        string    `json:"timezone"`
	ReminderMinutes []int     `json:"reminderMinutes,omitempty"`
	Recurrence      []string  `json:"recurrence,omitempty"`
}

func (MeetingUpdated) EventName() string { return MeetingUpdatedName }

func NewMeetingUpdated(userID uuid.UUID, meetingID, title string, startDate time.Time, timezone string, reminderMinutes []int, recurrence []string) MeetingUpdated {
	return MeetingUpdated{
		BaseEvent:       events.NewBaseEvent(),
		UserID:          userID,
		MeetingID:       meetingID,
		Title:           title,
		StartDate:       startDate,
		Timezone:        timezone,
		ReminderMinutes: reminderMinutes,
		Recurrence:      recurrence,
	}
}
