package service

import (
	"context"

	"meeting_assistant_backend/internal/meetingupdate/domain"
	"meeting_assistant_backend/internal/meetingupdate/ports"
)

// validateDraft checks a merged draft for committability and returns a
// patched copy alongside the missing-fields report. Attendee resolution
// patches emails into the returned draft rather than mutating the input;
// attendees that cannot be resolved are dropped from the accepted list for
// this pass and reported. The title requirement is appended last so it is
// reported even when attendee resolution also failed.
func (s *Service) validateDraft(ctx context.Context, draft domain.UpdateDraft, continuation bool, signals domain.DateSignals) (domain.UpdateDraft, domain.MissingFieldsReport, error) {
	patched := draft
	var report domain.MissingFieldsReport

	if len(draft.Attendees) > 0 {
		accepted := make([]domain.DraftAttendee, 0, len(draft.Attendees))
		for _, attendee := range draft.Attendees {
			if attendee.Email != "" {
				accepted = append(accepted, attendee)
				continue
			}
			if attendee.Name == "" {
				report.Required = append(report.Required, domain.Require(domain.FieldAttendeeEmail))
				continue
			}
			contact, err := s.contacts.FindByName(ctx, draft.UserID, attendee.Name)
			if err != nil {
				s.log.CollaboratorError("contacts", "find by name", err)
				return draft, report, err
			}
			email := pickEmail(contact)
			if email == "" {
				report.Required = append(report.Required, domain.Require(domain.FieldAttendeeEmail))
				continue
			}
			attendee.Email = email
			accepted = append(accepted, attendee)
		}
		patched.Attendees = accepted
	}

	// A continuation turn was prompted for concrete fields; without any
	// start-time signal the draft still cannot be anchored in time.
	if continuation && draft.StartDate.IsZero() {
		if !signals.HasDaySignal() {
			report.DateTime = append(report.DateTime, domain.Require(domain.FieldDate))
		}
		if !signals.HasTimeSignal() {
			report.DateTime = append(report.DateTime, domain.Require(domain.FieldTime))
		}
	}

	// Every update request names its meeting by title; a rename hint alone
	// is not enough to commit against.
	if draft.Title == "" {
		report.Required = append(report.Required, domain.Require(domain.FieldTitle))
	}

	return patched, report, nil
}

// pickEmail prefers the contact's primary address and falls back to the
// first stored one.
func pickEmail(contact *ports.Contact) string {
	if contact == nil {
		return ""
	}
	for _, email := range contact.Emails {
		if email.Primary && email.Value != "" {
			return email.Value
		}
	}
	for _, email := range contact.Emails {
		if email.Value != "" {
			return email.Value
		}
	}
	return ""
}
