// Package ports declares the narrow collaborator interfaces the
// meeting-update orchestration depends on. Implementations live in their
// own modules (extraction, contacts, googlecal, zoom, reply, search).
package ports

import (
	"context"
	"encoding/json"
	"time"

	"meeting_assistant_backend/internal/meetingupdate/domain"

	"github.com/google/uuid"
)

// ContinuationTurn carries everything the extractor needs to interpret a
// follow-up answer to a missing-fields prompt: the new utterance, the prior
// exchange, and the raw extraction bodies from the turn that triggered the
// prompt so elliptical answers ("make it 4pm instead") resolve against the
// same baseline.
type ContinuationTurn struct {
	Utterance      string
	PriorUtterance string
	PriorReply     string
	Timezone       string
	ReferenceTime  time.Time
	PriorParams    json.RawMessage
	PriorDateTime  json.RawMessage
}

// Extractor turns a free-text user turn into structured extraction output.
type Extractor interface {
	ExtractTurn(ctx context.Context, userID uuid.UUID, utterance, timezone string, referenceTime time.Time) (domain.TurnExtraction, error)
	ExtractContinuationTurn(ctx context.Context, userID uuid.UUID, turn ContinuationTurn) (domain.TurnExtraction, error)
}

// ContactEmail is one stored email address for a contact.
type ContactEmail struct {
	Primary bool
	Value   string
}

// Contact is a stored contact of the requesting user.
type Contact struct {
	ID        uuid.UUID
	Name      string
	FirstName string
	LastName  string
	Emails    []ContactEmail
}

// ContactDirectory resolves attendee names and emails against the user's
// stored contacts. Lookups return nil (not an error) when nothing matches.
type ContactDirectory interface {
	FindByName(ctx context.Context, userID uuid.UUID, name string) (*Contact, error)
	FindByEmail(ctx context.Context, userID uuid.UUID, email string) (*Contact, error)
}

// CalendarAttendee is an attendee entry on a provider-side event.
type CalendarAttendee struct {
	Email string `json:"email"`
}

// ConferencePayload is the conference linkage carried on a provider-side
// event patch.
type ConferencePayload struct {
	Type         string `json:"type"` // "hangoutsMeet" or "addOn"
	Name         string `json:"name,omitempty"`
	ConferenceID string `json:"conferenceId"`
	JoinURL      string `json:"joinUrl,omitempty"`
	RequestID    string `json:"requestId,omitempty"`
}

// ReminderOverrides is the reminder payload carried on a provider-side event.
type ReminderOverrides struct {
	Minutes    []int
	UseDefault bool
}

// EventWrite carries every field a provider-side event create or patch may
// set. Zero values are omitted from the outbound call.
type EventWrite struct {
	Summary      string
	Notes        string
	Start        time.Time
	End          time.Time
	Timezone     string
	Location     string
	Transparency string
	Visibility   string
	Attendees    []CalendarAttendee
	Conference   *ConferencePayload
	Recurrence   []string
	Reminders    *ReminderOverrides
}

// EventRef identifies a created provider-side event.
type EventRef struct {
	ID              string
	ProviderEventID string
}

// CalendarProvider is the external calendar the core pushes event changes to.
type CalendarProvider interface {
	PatchEvent(ctx context.Context, userID uuid.UUID, calendarID, providerEventID string, write EventWrite) error
	CreateEvent(ctx context.Context, userID uuid.UUID, calendarID, localID string, write EventWrite) (EventRef, error)
	DeleteEvent(ctx context.Context, userID uuid.UUID, calendarID, providerEventID string) error
}

// HostedMeetingRequest is the input to a third-party conference create/update.
type HostedMeetingRequest struct {
	Agenda         string
	StartDate      time.Time
	Timezone       string
	Duration       int
	HostName       string
	HostEmail      string
	AttendeeEmails []string
	Recurrence     *domain.RecurrenceRule
}

// HostedMeeting is the third-party provider's record of a conference.
type HostedMeeting struct {
	ID       int64
	Agenda   string
	JoinURL  string
	StartURL string
	Password string
}

// ConferenceHost is the third-party conference provider (zoom-style).
// Authorized reports whether the user has linked the provider; without
// authorization the switch falls back to the built-in provider.
type ConferenceHost interface {
	Authorized(ctx context.Context, userID uuid.UUID) (bool, error)
	CreateMeeting(ctx context.Context, userID uuid.UUID, req HostedMeetingRequest) (*HostedMeeting, error)
	UpdateMeeting(ctx context.Context, userID uuid.UUID, meetingID int64, req HostedMeetingRequest) error
	DeleteMeeting(ctx context.Context, userID uuid.UUID, meetingID int64) error
}

// Embedder turns a meeting title into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SearchIndex is the title-vector index used for natural-language lookup.
// FindByTitleVector returns the single best hit's meeting id, or "" when
// nothing matches within the window.
type SearchIndex interface {
	FindByTitleVector(ctx context.Context, userID uuid.UUID, vector []float32, boundary domain.SearchBoundary) (string, error)
	UpsertTitleEmbedding(ctx context.Context, meetingID string, vector []float32, userID uuid.UUID, startDate time.Time) error
}

// Message is one conversation history entry as seen by reply generation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ReplyGenerator produces the next assistant message for a turn outcome.
type ReplyGenerator interface {
	SuccessReply(ctx context.Context, summary string, history []Message) (string, error)
	MissingFieldsReply(ctx context.Context, report domain.MissingFieldsReport, history []Message) (string, error)
}
