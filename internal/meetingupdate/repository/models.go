package repository

import (
	"time"

	"meeting_assistant_backend/internal/meetingupdate/domain"

	"github.com/google/uuid"
)

// Event is the stored calendar event row. ID is the app-local identifier
// (also the search index point id); ProviderEventID is the calendar
// provider's id for the same event.
type Event struct {
	ID              string
	UserID          uuid.UUID
	CalendarID      string
	ProviderEventID string
	Title           string
	StartDate       time.Time
	EndDate         time.Time
	Timezone        string
	Duration        int
	Notes           string
	Priority        int
	Transparency    string
	Visibility      string
	ConferenceID    *string
	Location        *string
	PreEventID      *string
	PostEventID     *string
	IsPreEvent      bool
	IsPostEvent     bool
	IsFollowUp      bool
	AllDay          bool
	Modifiable      bool
	Recurrence      []string
	RecurrenceRule  *domain.RecurrenceRule
	TimeBlocking    *domain.BufferTime

	UserModifiedAvailability   bool
	UserModifiedTimeBlocking   bool
	UserModifiedTimePreference bool
	UserModifiedReminders      bool
	UserModifiedPriorityLevel  bool
	UserModifiedDuration       bool
	UserModifiedModifiable     bool

	CreatedAt time.Time
	UpdatedAt time.Time
	Deleted   bool
}

// Conference is the stored conference row linked from an event. For the
// built-in provider ID is a generated uuid string; for hosted providers it
// is the provider's numeric meeting id rendered as a string.
type Conference struct {
	ID         string
	UserID     uuid.UUID
	CalendarID string
	App        domain.ConferenceApp
	Name       string
	Notes      string
	JoinURL    *string
	StartURL   *string
	IsHost     bool
	RequestID  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Deleted    bool
}

// Reminder is one stored alarm for an event.
type Reminder struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	EventID    string
	Timezone   string
	Minutes    int
	UseDefault bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Deleted    bool
}

// PreferredTimeRange is one stored scheduling preference for an event.
// DayOfWeek uses ISO numbering (1=Monday..7=Sunday); -1 means any day.
type PreferredTimeRange struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	EventID   string
	DayOfWeek int
	StartTime string
	EndTime   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Attendee is one stored attendee row for an event.
type Attendee struct {
	ID        string
	UserID    uuid.UUID
	EventID   string
	Name      string
	ContactID *uuid.UUID
	Emails    []AttendeeEmail
	CreatedAt time.Time
	UpdatedAt time.Time
	Deleted   bool
}

// AttendeeEmail mirrors the provider-side email entry shape.
type AttendeeEmail struct {
	Primary bool   `json:"primary"`
	Value   string `json:"value"`
	Type    string `json:"type,omitempty"`
}

// MeetingPreferences is the per-user identity used when creating hosted
// conferences on the user's behalf.
type MeetingPreferences struct {
	Name         string
	PrimaryEmail string
}
