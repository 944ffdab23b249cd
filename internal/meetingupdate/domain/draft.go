// Package domain holds the conversational meeting-update value types:
// the in-progress draft, the missing-fields report, the turn outcome
// union, and the pure merge logic that combines drafts turn over turn.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ConferenceApp identifies the provider backing a meeting's video link.
type ConferenceApp string

const (
	// ConferenceAppGoogle is the built-in conferencing provider.
	ConferenceAppGoogle ConferenceApp = "google"
	// ConferenceAppZoom is the third-party conferencing provider.
	ConferenceAppZoom ConferenceApp = "zoom"
)

// RecurrenceFrequency is the base unit of a recurrence rule.
type RecurrenceFrequency string

const (
	FrequencyDaily   RecurrenceFrequency = "daily"
	FrequencyWeekly  RecurrenceFrequency = "weekly"
	FrequencyMonthly RecurrenceFrequency = "monthly"
	FrequencyYearly  RecurrenceFrequency = "yearly"
)

// RecurrenceRule describes how a meeting repeats. Merged as a whole record:
// a rule without a frequency is treated as absent.
type RecurrenceRule struct {
	Frequency  RecurrenceFrequency `json:"frequency"`
	Interval   int                 `json:"interval"`
	ByWeekDay  []string            `json:"byWeekDay,omitempty"`
	ByMonthDay []int               `json:"byMonthDay,omitempty"`
	Occurrence int                 `json:"occurrence,omitempty"`
	EndDate    time.Time           `json:"endDate,omitzero"`
}

// Present reports whether the rule carries a usable frequency.
func (r *RecurrenceRule) Present() bool {
	return r != nil && r.Frequency != ""
}

// DraftAttendee is an attendee as extracted from the conversation.
// Email may be empty until contact resolution patches it in.
type DraftAttendee struct {
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	IsHost bool   `json:"isHost,omitempty"`
}

// BufferTime is the requested prep/travel padding around a meeting, in minutes.
type BufferTime struct {
	BeforeEvent int `json:"beforeEvent,omitempty"`
	AfterEvent  int `json:"afterEvent,omitempty"`
}

// TimeRange is a wall-clock range in "HH:mm" strings, timezone-relative.
type TimeRange struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// TimePreference is one preferred-time-range request, optionally fanned out
// over several days of the week.
type TimePreference struct {
	DayOfWeek []string  `json:"dayOfWeek,omitempty"`
	TimeRange TimeRange `json:"timeRange"`
}

// UpdateDraft is the meeting-update-in-progress. It is treated as an
// immutable value merged turn over turn; only a single orchestration pass
// may derive a patched copy from it.
type UpdateDraft struct {
	UserID          uuid.UUID        `json:"userId"`
	Timezone        string           `json:"timezone"`
	Title           string           `json:"title,omitempty"`
	OldTitle        string           `json:"oldTitle,omitempty"`
	Attendees       []DraftAttendee  `json:"attendees,omitempty"`
	Duration        int              `json:"duration,omitempty"`
	Description     string           `json:"description,omitempty"`
	ConferenceApp   ConferenceApp    `json:"conferenceApp,omitempty"`
	StartDate       time.Time        `json:"startDate,omitzero"`
	BufferTime      *BufferTime      `json:"bufferTime,omitempty"`
	Reminders       []int            `json:"reminders,omitempty"`
	Priority        int              `json:"priority,omitempty"`
	TimePreferences []TimePreference `json:"timePreferences,omitempty"`
	Location        string           `json:"location,omitempty"`
	Transparency    string           `json:"transparency,omitempty"`
	Visibility      string           `json:"visibility,omitempty"`
	IsFollowUp      *bool            `json:"isFollowUp,omitempty"`
	Recurrence      *RecurrenceRule  `json:"recur,omitempty"`
}

// DateSignals are the raw start-time signals extracted from a turn. The
// validator uses them to decide whether a continuation turn carries any
// resolvable time reference. Hour and minute are pointers because zero is
// a valid clock value.
type DateSignals struct {
	Year       int    `json:"year,omitempty"`
	Month      int    `json:"month,omitempty"`
	Day        int    `json:"day,omitempty"`
	ISOWeekday int    `json:"isoWeekday,omitempty"`
	Hour       *int   `json:"hour,omitempty"`
	Minute     *int   `json:"minute,omitempty"`
	StartTime  string `json:"startTime,omitempty"`
}

// HasDaySignal reports a day-of-month or day-of-week reference.
func (s DateSignals) HasDaySignal() bool {
	return s.Day != 0 || s.ISOWeekday != 0
}

// HasTimeSignal reports an hour/minute or time-of-day reference.
func (s DateSignals) HasTimeSignal() bool {
	return s.Hour != nil || s.Minute != nil || s.StartTime != ""
}

// SearchBoundary is the time window used to resolve which meeting the user
// is referring to. A zero bound falls back to the default window at
// resolution time.
type SearchBoundary struct {
	Start time.Time `json:"startDate,omitzero"`
	End   time.Time `json:"endDate,omitzero"`
}

// OrElse fills zero bounds from the fallback boundary.
func (b SearchBoundary) OrElse(fallback SearchBoundary) SearchBoundary {
	out := b
	if out.Start.IsZero() {
		out.Start = fallback.Start
	}
	if out.End.IsZero() {
		out.End = fallback.End
	}
	return out
}

// TurnExtraction is everything the extraction collaborator produced for a
// single user turn: the assembled draft, the raw date signals, the search
// boundary derived from the turn, and the raw extraction bodies that must
// be round-tripped through the continuation context unchanged.
type TurnExtraction struct {
	Draft       UpdateDraft
	Signals     DateSignals
	Boundary    SearchBoundary
	RawParams   json.RawMessage
	RawDateTime json.RawMessage
}
