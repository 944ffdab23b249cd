package service

import (
	"context"
	"strconv"
	"time"

	"meeting_assistant_backend/internal/meetingupdate/domain"
	"meeting_assistant_backend/internal/meetingupdate/ports"
	"meeting_assistant_backend/internal/meetingupdate/repository"
	"meeting_assistant_backend/platform/apperr"

	"github.com/google/uuid"
)

// conferenceInput is everything a provider needs to create or patch a
// conference record for the meeting being updated.
type conferenceInput struct {
	userID   uuid.UUID
	agenda   string
	notes    string
	start    time.Time
	timezone string
	duration int
	prefs    repository.MeetingPreferences
	emails   []string
	rule     *domain.RecurrenceRule
}

// conferenceProvider abstracts one conferencing backend. The switch logic
// is provider-agnostic: create, update-in-place, or tear down, decided only
// by app identity.
type conferenceProvider interface {
	app() domain.ConferenceApp
	create(ctx context.Context, in conferenceInput) (*repository.Conference, error)
	update(ctx context.Context, existing *repository.Conference, in conferenceInput) (*repository.Conference, error)
	remove(ctx context.Context, userID uuid.UUID, existing *repository.Conference) error
}

// builtinProvider backs conferences with the calendar's own conferencing.
// There is no separate provider-side record: the linkage payload on the
// event patch is the whole integration, so remove has nothing to tear down.
type builtinProvider struct{}

func (builtinProvider) app() domain.ConferenceApp { return domain.ConferenceAppGoogle }

func (builtinProvider) create(_ context.Context, in conferenceInput) (*repository.Conference, error) {
	requestID := uuid.NewString()
	return &repository.Conference{
		ID:        uuid.NewString(),
		UserID:    in.userID,
		App:       domain.ConferenceAppGoogle,
		Name:      in.prefs.Name,
		Notes:     in.notes,
		IsHost:    true,
		RequestID: &requestID,
	}, nil
}

func (builtinProvider) update(_ context.Context, existing *repository.Conference, in conferenceInput) (*repository.Conference, error) {
	patched := *existing
	if in.notes != "" {
		patched.Notes = in.notes
	}
	if in.prefs.Name != "" {
		patched.Name = in.prefs.Name
	}
	return &patched, nil
}

func (builtinProvider) remove(context.Context, uuid.UUID, *repository.Conference) error {
	return nil
}

// hostedProvider backs conferences with a third-party meeting host.
type hostedProvider struct {
	host ports.ConferenceHost
}

func (hostedProvider) app() domain.ConferenceApp { return domain.ConferenceAppZoom }

func (p hostedProvider) create(ctx context.Context, in conferenceInput) (*repository.Conference, error) {
	meeting, err := p.host.CreateMeeting(ctx, in.userID, hostedRequest(in))
	if err != nil {
		return nil, err
	}
	return &repository.Conference{
		ID:       strconv.FormatInt(meeting.ID, 10),
		UserID:   in.userID,
		App:      domain.ConferenceAppZoom,
		Name:     in.prefs.Name,
		Notes:    in.notes,
		JoinURL:  optional(meeting.JoinURL),
		StartURL: optional(meeting.StartURL),
		IsHost:   true,
	}, nil
}

func (p hostedProvider) update(ctx context.Context, existing *repository.Conference, in conferenceInput) (*repository.Conference, error) {
	meetingID, err := hostedMeetingID(existing)
	if err != nil {
		return nil, err
	}
	if err := p.host.UpdateMeeting(ctx, in.userID, meetingID, hostedRequest(in)); err != nil {
		return nil, err
	}
	patched := *existing
	if in.notes != "" {
		patched.Notes = in.notes
	}
	return &patched, nil
}

func (p hostedProvider) remove(ctx context.Context, userID uuid.UUID, existing *repository.Conference) error {
	meetingID, err := hostedMeetingID(existing)
	if err != nil {
		return err
	}
	return p.host.DeleteMeeting(ctx, userID, meetingID)
}

func hostedRequest(in conferenceInput) ports.HostedMeetingRequest {
	return ports.HostedMeetingRequest{
		Agenda:         in.agenda,
		StartDate:      in.start,
		Timezone:       in.timezone,
		Duration:       in.duration,
		HostName:       in.prefs.Name,
		HostEmail:      in.prefs.PrimaryEmail,
		AttendeeEmails: in.emails,
		Recurrence:     in.rule,
	}
}

func hostedMeetingID(conf *repository.Conference) (int64, error) {
	id, err := strconv.ParseInt(conf.ID, 10, 64)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindConflict, "conference record carries a non-numeric hosted meeting id", err)
	}
	return id, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// providerFor picks the backend for the requested app. A hosted request
// without provider authorization falls back to the built-in backend.
func (s *Service) providerFor(ctx context.Context, userID uuid.UUID, app domain.ConferenceApp) (conferenceProvider, error) {
	if app == domain.ConferenceAppZoom {
		authorized, err := s.host.Authorized(ctx, userID)
		if err != nil {
			s.log.CollaboratorError("conference host", "authorization check", err)
			return nil, err
		}
		if authorized {
			return hostedProvider{host: s.host}, nil
		}
	}
	return builtinProvider{}, nil
}

func (s *Service) providerByApp(app domain.ConferenceApp) conferenceProvider {
	if app == domain.ConferenceAppZoom {
		return hostedProvider{host: s.host}
	}
	return builtinProvider{}
}

// switchConference reconciles the meeting's conference record with the
// requested app: create when none exists, patch in place when the app
// matches, otherwise create the new record first and then tear down the
// old one (including the old host's provider-side meeting). Returns the
// active record and the linkage payload for the calendar patch.
func (s *Service) switchConference(ctx context.Context, meeting *repository.Event, in conferenceInput, requestedApp domain.ConferenceApp) (*repository.Conference, *ports.ConferencePayload, error) {
	requested, err := s.providerFor(ctx, in.userID, requestedApp)
	if err != nil {
		return nil, nil, err
	}

	var existing *repository.Conference
	if meeting.ConferenceID != nil {
		existing, err = s.repo.GetConference(ctx, in.userID, *meeting.ConferenceID)
		if err == repository.ErrNotFound {
			return nil, nil, apperr.Wrap(apperr.KindConflict, "meeting references a missing conference record", err)
		}
		if err != nil {
			s.log.DatabaseError("load conference", err)
			return nil, nil, err
		}
	}

	var active *repository.Conference
	switch {
	case existing == nil:
		active, err = requested.create(ctx, in)
		if err != nil {
			s.log.CollaboratorError("conference host", "create meeting", err)
			return nil, nil, err
		}
	case existing.App == requested.app():
		active, err = requested.update(ctx, existing, in)
		if err != nil {
			s.log.CollaboratorError("conference host", "update meeting", err)
			return nil, nil, err
		}
	default:
		active, err = requested.create(ctx, in)
		if err != nil {
			s.log.CollaboratorError("conference host", "create meeting", err)
			return nil, nil, err
		}
		old := s.providerByApp(existing.App)
		if err := old.remove(ctx, in.userID, existing); err != nil {
			s.log.CollaboratorError("conference host", "delete meeting", err)
			return nil, nil, err
		}
		if err := s.repo.DeleteConference(ctx, in.userID, existing.ID); err != nil {
			s.log.DatabaseError("delete conference", err)
			return nil, nil, err
		}
	}

	active.CalendarID = meeting.CalendarID
	if err := s.repo.UpsertConference(ctx, active); err != nil {
		s.log.DatabaseError("upsert conference", err)
		return nil, nil, err
	}

	return active, conferencePayload(active), nil
}

// conferencePayload is the linkage the calendar provider needs: built-in
// conferencing is requested by type+request id, hosted conferencing is
// attached as an add-on with its join url.
func conferencePayload(conf *repository.Conference) *ports.ConferencePayload {
	payload := &ports.ConferencePayload{ConferenceID: conf.ID, Name: conf.Name}
	if conf.App == domain.ConferenceAppZoom {
		payload.Type = "addOn"
		if conf.JoinURL != nil {
			payload.JoinURL = *conf.JoinURL
		}
		return payload
	}
	payload.Type = "hangoutsMeet"
	if conf.RequestID != nil {
		payload.RequestID = *conf.RequestID
	}
	return payload
}
