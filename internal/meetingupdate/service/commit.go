package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"meeting_assistant_backend/internal/meetingupdate/domain"
	"meeting_assistant_backend/internal/meetingupdate/ports"
	"meeting_assistant_backend/internal/meetingupdate/repository"
	"meeting_assistant_backend/internal/recurrence"
	"meeting_assistant_backend/platform/apperr"

	"github.com/google/uuid"
)

type commitResult struct {
	Summary    string
	Title      string
	StartDate  time.Time
	Timezone   string
	Recurrence []string
}

// isoWeekdays maps spoken day names to ISO numbering (1=Monday..7=Sunday).
var isoWeekdays = map[string]int{
	"monday": 1, "tuesday": 2, "wednesday": 3, "thursday": 4,
	"friday": 5, "saturday": 6, "sunday": 7,
}

// commit applies a complete draft to the resolved meeting and its satellite
// records in order. Each step's failure aborts the remaining steps and
// surfaces to the caller. A per-meeting advisory lock serializes concurrent
// commits so interleaved delete/insert steps cannot mix two requests' state.
func (s *Service) commit(ctx context.Context, draft domain.UpdateDraft, meetingID string) (commitResult, error) {
	release, err := s.repo.AcquireMeetingLock(ctx, meetingID)
	if err != nil {
		s.log.DatabaseError("acquire meeting lock", err)
		return commitResult{}, err
	}
	defer release()

	// Step 1: clear satellite records the draft replaces.
	if len(draft.Reminders) > 0 {
		s.log.CommitStep(meetingID, "delete reminders")
		if err := s.repo.DeleteReminders(ctx, draft.UserID, meetingID); err != nil {
			s.log.DatabaseError("delete reminders", err)
			return commitResult{}, err
		}
	}
	if len(draft.TimePreferences) > 0 {
		s.log.CommitStep(meetingID, "delete time preferences")
		if err := s.repo.DeletePreferredTimeRanges(ctx, draft.UserID, meetingID); err != nil {
			s.log.DatabaseError("delete time preferences", err)
			return commitResult{}, err
		}
	}

	// Step 2: load the current record.
	meeting, err := s.repo.GetEvent(ctx, draft.UserID, meetingID)
	if err == repository.ErrNotFound {
		// The search index pointed at a row that no longer exists.
		return commitResult{}, apperr.Wrap(apperr.KindConflict, "resolved meeting vanished before commit", err)
	}
	if err != nil {
		s.log.DatabaseError("load event", err)
		return commitResult{}, err
	}

	// Step 3: resolve attendees to stored contact identities.
	attendees, attendeeEmails, err := s.resolveAttendeeRecords(ctx, draft, meetingID)
	if err != nil {
		return commitResult{}, err
	}

	timezone := draft.Timezone
	if timezone == "" {
		timezone = meeting.Timezone
	}
	start := draft.StartDate
	if start.IsZero() {
		start = meeting.StartDate
	}
	duration := draft.Duration
	if duration == 0 {
		duration = meeting.Duration
	}
	if duration == 0 {
		duration = int(meeting.EndDate.Sub(meeting.StartDate).Minutes())
	}
	end := start.Add(time.Duration(duration) * time.Minute)
	title := draft.Title
	if title == "" {
		title = meeting.Title
	}

	// Step 4: reconcile the conference record if an app was requested.
	var conferencePayload *ports.ConferencePayload
	if draft.ConferenceApp != "" {
		s.log.CommitStep(meetingID, "conference switch")
		prefs, err := s.repo.MeetingPreferences(ctx, draft.UserID)
		if err != nil {
			s.log.DatabaseError("load meeting preferences", err)
			return commitResult{}, err
		}
		conference, payload, err := s.switchConference(ctx, meeting, conferenceInput{
			userID:   draft.UserID,
			agenda:   title,
			notes:    draft.Description,
			start:    start,
			timezone: timezone,
			duration: duration,
			prefs:    prefs,
			emails:   attendeeEmails,
			rule:     draft.Recurrence,
		}, draft.ConferenceApp)
		if err != nil {
			return commitResult{}, err
		}
		meeting.ConferenceID = &conference.ID
		conferencePayload = payload
	}

	// Step 5: tear down buffer events the new buffer request invalidates.
	if draft.BufferTime != nil {
		if err := s.deleteBufferEvents(ctx, meeting, draft.BufferTime); err != nil {
			return commitResult{}, err
		}
	}

	// Step 6: build the updated core event.
	updated, err := s.applyDraft(meeting, draft, title, start, end, timezone, duration)
	if err != nil {
		return commitResult{}, err
	}

	// Step 7: one provider call carrying every changed field.
	s.log.CommitStep(meetingID, "patch calendar event")
	write := buildEventWrite(updated, attendeeEmails, conferencePayload)
	if err := s.calendar.PatchEvent(ctx, draft.UserID, updated.CalendarID, updated.ProviderEventID, write); err != nil {
		s.log.CollaboratorError("calendar", "patch event", err)
		return commitResult{}, err
	}

	// Step 8: create buffer events and persist the event records together.
	if draft.BufferTime != nil {
		if err := s.createBufferEvents(ctx, updated, draft.BufferTime); err != nil {
			return commitResult{}, err
		}
	}
	s.log.CommitStep(meetingID, "persist event")
	if err := s.repo.UpsertEvent(ctx, updated); err != nil {
		s.log.DatabaseError("upsert event", err)
		return commitResult{}, err
	}

	// Step 9: insert replacement satellite records.
	if len(draft.Reminders) > 0 {
		s.log.CommitStep(meetingID, "insert reminders")
		if err := s.repo.InsertReminders(ctx, reminderRows(draft, meetingID, timezone)); err != nil {
			s.log.DatabaseError("insert reminders", err)
			return commitResult{}, err
		}
	}
	if len(draft.TimePreferences) > 0 {
		s.log.CommitStep(meetingID, "insert time preferences")
		if err := s.repo.InsertPreferredTimeRanges(ctx, timeRangeRows(draft, meetingID)); err != nil {
			s.log.DatabaseError("insert time preferences", err)
			return commitResult{}, err
		}
	}

	// Step 10: refresh the title embedding when downstream prioritization
	// inputs changed.
	if len(draft.TimePreferences) > 0 || draft.Priority > meeting.Priority {
		s.log.CommitStep(meetingID, "refresh title embedding")
		vector, err := s.embedder.Embed(ctx, updated.Title)
		if err != nil {
			s.log.CollaboratorError("embedder", "embed title", err)
			return commitResult{}, err
		}
		if err := s.index.UpsertTitleEmbedding(ctx, meetingID, vector, draft.UserID, updated.StartDate); err != nil {
			s.log.CollaboratorError("search index", "upsert title embedding", err)
			return commitResult{}, err
		}
	}

	// Step 11: persist the resolved attendee records.
	if len(attendees) > 0 {
		s.log.CommitStep(meetingID, "upsert attendees")
		if err := s.repo.InsertAttendees(ctx, attendees); err != nil {
			s.log.DatabaseError("insert attendees", err)
			return commitResult{}, err
		}
	}

	return commitResult{
		Summary:    fmt.Sprintf("%s has been updated.", updated.Title),
		Title:      updated.Title,
		StartDate:  updated.StartDate,
		Timezone:   updated.Timezone,
		Recurrence: updated.Recurrence,
	}, nil
}

// resolveAttendeeRecords synthesizes attendee rows for the meeting,
// linking each to a stored contact when the email matches one.
func (s *Service) resolveAttendeeRecords(ctx context.Context, draft domain.UpdateDraft, meetingID string) ([]repository.Attendee, []string, error) {
	if len(draft.Attendees) == 0 {
		return nil, nil, nil
	}
	attendees := make([]repository.Attendee, 0, len(draft.Attendees))
	emails := make([]string, 0, len(draft.Attendees))
	for _, attendee := range draft.Attendees {
		contact, err := s.contacts.FindByEmail(ctx, draft.UserID, attendee.Email)
		if err != nil {
			s.log.CollaboratorError("contacts", "find by email", err)
			return nil, nil, err
		}
		var contactID *uuid.UUID
		name := attendee.Name
		if contact != nil {
			contactID = &contact.ID
			if name == "" {
				name = contact.Name
			}
		}
		attendees = append(attendees, repository.Attendee{
			ID:        uuid.NewString(),
			UserID:    draft.UserID,
			EventID:   meetingID,
			Name:      name,
			ContactID: contactID,
			Emails:    []repository.AttendeeEmail{{Primary: true, Value: attendee.Email}},
		})
		emails = append(emails, attendee.Email)
	}
	return attendees, emails, nil
}

// deleteBufferEvents removes the linked buffer events the new buffer
// request replaces, both the provider-side entries and the stored rows.
// Only the requested sides are torn down: asking for an after-meeting
// buffer leaves an existing pre-meeting buffer in place.
func (s *Service) deleteBufferEvents(ctx context.Context, meeting *repository.Event, buffer *domain.BufferTime) error {
	if buffer.BeforeEvent > 0 && meeting.PreEventID != nil {
		if err := s.deleteBufferEvent(ctx, meeting, *meeting.PreEventID); err != nil {
			return err
		}
		meeting.PreEventID = nil
	}
	if buffer.AfterEvent > 0 && meeting.PostEventID != nil {
		if err := s.deleteBufferEvent(ctx, meeting, *meeting.PostEventID); err != nil {
			return err
		}
		meeting.PostEventID = nil
	}
	return nil
}

func (s *Service) deleteBufferEvent(ctx context.Context, meeting *repository.Event, bufferID string) error {
	buffer, err := s.repo.GetEvent(ctx, meeting.UserID, bufferID)
	if err == repository.ErrNotFound {
		return nil
	}
	if err != nil {
		s.log.DatabaseError("load buffer event", err)
		return err
	}
	s.log.CommitStep(meeting.ID, "delete buffer event")
	if err := s.calendar.DeleteEvent(ctx, meeting.UserID, buffer.CalendarID, buffer.ProviderEventID); err != nil {
		s.log.CollaboratorError("calendar", "delete buffer event", err)
		return err
	}
	if err := s.repo.DeleteEvent(ctx, meeting.UserID, buffer.ID); err != nil {
		s.log.DatabaseError("delete buffer event", err)
		return err
	}
	return nil
}

// applyDraft folds the draft's supplied fields over the stored event and
// marks which fields the user overrode for downstream prioritization.
func (s *Service) applyDraft(meeting *repository.Event, draft domain.UpdateDraft, title string, start, end time.Time, timezone string, duration int) (*repository.Event, error) {
	updated := *meeting
	updated.Title = title
	updated.StartDate = start
	updated.EndDate = end
	updated.Timezone = timezone
	updated.Duration = duration

	if draft.Description != "" {
		updated.Notes = draft.Description
	}
	if draft.Priority > 0 {
		updated.Priority = draft.Priority
		updated.UserModifiedPriorityLevel = true
	}
	if draft.Transparency != "" {
		updated.Transparency = draft.Transparency
		updated.UserModifiedAvailability = true
	}
	if draft.Visibility != "" {
		updated.Visibility = draft.Visibility
	}
	if draft.Location != "" {
		location := draft.Location
		updated.Location = &location
	}
	if draft.IsFollowUp != nil {
		updated.IsFollowUp = *draft.IsFollowUp
	}
	if draft.Duration > 0 {
		updated.UserModifiedDuration = true
	}
	if len(draft.Reminders) > 0 {
		updated.UserModifiedReminders = true
	}
	if len(draft.TimePreferences) > 0 {
		updated.UserModifiedTimePreference = true
	}
	if draft.BufferTime != nil {
		updated.TimeBlocking = draft.BufferTime
		updated.UserModifiedTimeBlocking = true
	}
	if draft.Recurrence.Present() {
		lines, err := recurrence.Serialize(draft.Recurrence)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, "unusable recurrence rule", err)
		}
		updated.Recurrence = lines
		updated.RecurrenceRule = draft.Recurrence
	}
	return &updated, nil
}

// buildEventWrite assembles the single provider call carrying all changes.
func buildEventWrite(ev *repository.Event, attendeeEmails []string, conference *ports.ConferencePayload) ports.EventWrite {
	write := ports.EventWrite{
		Summary:      ev.Title,
		Notes:        ev.Notes,
		Start:        ev.StartDate,
		End:          ev.EndDate,
		Timezone:     ev.Timezone,
		Transparency: ev.Transparency,
		Visibility:   ev.Visibility,
		Recurrence:   ev.Recurrence,
		Conference:   conference,
	}
	if ev.Location != nil {
		write.Location = *ev.Location
	}
	for _, email := range attendeeEmails {
		write.Attendees = append(write.Attendees, ports.CalendarAttendee{Email: email})
	}
	return write
}

// createBufferEvents synthesizes before/after events from the updated core
// event, pushes them to the provider, and links their ids back.
func (s *Service) createBufferEvents(ctx context.Context, core *repository.Event, buffer *domain.BufferTime) error {
	if buffer.BeforeEvent > 0 {
		before := bufferEventFrom(core, core.StartDate.Add(-time.Duration(buffer.BeforeEvent)*time.Minute), core.StartDate, true)
		if err := s.pushBufferEvent(ctx, core, before); err != nil {
			return err
		}
		core.PreEventID = &before.ID
	}
	if buffer.AfterEvent > 0 {
		after := bufferEventFrom(core, core.EndDate, core.EndDate.Add(time.Duration(buffer.AfterEvent)*time.Minute), false)
		if err := s.pushBufferEvent(ctx, core, after); err != nil {
			return err
		}
		core.PostEventID = &after.ID
	}
	return nil
}

func bufferEventFrom(core *repository.Event, start, end time.Time, before bool) *repository.Event {
	kind := "Post-meeting buffer"
	if before {
		kind = "Pre-meeting buffer"
	}
	return &repository.Event{
		ID:          uuid.NewString(),
		UserID:      core.UserID,
		CalendarID:  core.CalendarID,
		Title:       fmt.Sprintf("%s: %s", kind, core.Title),
		StartDate:   start,
		EndDate:     end,
		Timezone:    core.Timezone,
		Duration:    int(end.Sub(start).Minutes()),
		IsPreEvent:  before,
		IsPostEvent: !before,
		Modifiable:  false,
	}
}

func (s *Service) pushBufferEvent(ctx context.Context, core, buffer *repository.Event) error {
	s.log.CommitStep(core.ID, "create buffer event")
	ref, err := s.calendar.CreateEvent(ctx, buffer.UserID, buffer.CalendarID, buffer.ID, ports.EventWrite{
		Summary:      buffer.Title,
		Start:        buffer.StartDate,
		End:          buffer.EndDate,
		Timezone:     buffer.Timezone,
		Transparency: "opaque",
		Visibility:   "private",
	})
	if err != nil {
		s.log.CollaboratorError("calendar", "create buffer event", err)
		return err
	}
	buffer.ProviderEventID = ref.ProviderEventID
	if ref.ID != "" {
		buffer.ID = ref.ID
	}
	if err := s.repo.UpsertEvent(ctx, buffer); err != nil {
		s.log.DatabaseError("upsert buffer event", err)
		return err
	}
	return nil
}

func reminderRows(draft domain.UpdateDraft, meetingID, timezone string) []repository.Reminder {
	rows := make([]repository.Reminder, 0, len(draft.Reminders))
	for _, minutes := range draft.Reminders {
		rows = append(rows, repository.Reminder{
			ID:       uuid.New(),
			UserID:   draft.UserID,
			EventID:  meetingID,
			Timezone: timezone,
			Minutes:  minutes,
		})
	}
	return rows
}

// timeRangeRows fans each preference out over its named days; a preference
// without days applies to any day (-1).
func timeRangeRows(draft domain.UpdateDraft, meetingID string) []repository.PreferredTimeRange {
	var rows []repository.PreferredTimeRange
	for _, pref := range draft.TimePreferences {
		days := make([]int, 0, len(pref.DayOfWeek))
		for _, name := range pref.DayOfWeek {
			if day, ok := isoWeekdays[strings.ToLower(name)]; ok {
				days = append(days, day)
			}
		}
		if len(days) == 0 {
			days = []int{-1}
		}
		for _, day := range days {
			rows = append(rows, repository.PreferredTimeRange{
				ID:        uuid.New(),
				UserID:    draft.UserID,
				EventID:   meetingID,
				DayOfWeek: day,
				StartTime: pref.TimeRange.StartTime,
				EndTime:   pref.TimeRange.EndTime,
			})
		}
	}
	return rows
}
