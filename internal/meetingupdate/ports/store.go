package ports

import (
	"context"

	"meeting_assistant_backend/internal/meetingupdate/repository"

	"github.com/google/uuid"
)

// Store is the persistence surface the update commit runs against.
// *repository.Repository is the production implementation; tests substitute
// an in-memory one. Lookups signal absence with repository.ErrNotFound.
type Store interface {
	// AcquireMeetingLock serializes commits against one meeting. The
	// returned release func must be called once the commit finishes.
	AcquireMeetingLock(ctx context.Context, meetingID string) (release func(), err error)

	GetEvent(ctx context.Context, userID uuid.UUID, eventID string) (*repository.Event, error)
	UpsertEvent(ctx context.Context, ev *repository.Event) error
	DeleteEvent(ctx context.Context, userID uuid.UUID, eventID string) error

	MeetingPreferences(ctx context.Context, userID uuid.UUID) (repository.MeetingPreferences, error)

	GetConference(ctx context.Context, userID uuid.UUID, conferenceID string) (*repository.Conference, error)
	UpsertConference(ctx context.Context, conf *repository.Conference) error
	DeleteConference(ctx context.Context, userID uuid.UUID, conferenceID string) error

	DeleteReminders(ctx context.Context, userID uuid.UUID, eventID string) error
	InsertReminders(ctx context.Context, reminders []repository.Reminder) error
	DeletePreferredTimeRanges(ctx context.Context, userID uuid.UUID, eventID string) error
	InsertPreferredTimeRanges(ctx context.Context, ranges []repository.PreferredTimeRange) error
	InsertAttendees(ctx context.Context, attendees []repository.Attendee) error
}
