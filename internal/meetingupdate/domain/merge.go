package domain

import "github.com/google/uuid"

// Merge combines the current turn's draft with the draft carried over from
// the previous turn. Presence resolution only, no type coercion: for every
// field the current turn's value wins when present, otherwise the prior
// turn's value is kept. Attendees and reminders are merged as whole lists
// (a non-empty current list replaces the prior list); recurrence is merged
// as a whole record keyed on the current turn supplying a frequency.
func Merge(current, prior UpdateDraft) UpdateDraft {
	merged := current

	if merged.UserID == uuid.Nil {
		merged.UserID = prior.UserID
	}
	if merged.Timezone == "" {
		merged.Timezone = prior.Timezone
	}
	if merged.Title == "" {
		merged.Title = prior.Title
	}
	if merged.OldTitle == "" {
		merged.OldTitle = prior.OldTitle
	}
	if len(merged.Attendees) == 0 {
		merged.Attendees = prior.Attendees
	}
	if merged.Duration == 0 {
		merged.Duration = prior.Duration
	}
	if merged.Description == "" {
		merged.Description = prior.Description
	}
	if merged.ConferenceApp == "" {
		merged.ConferenceApp = prior.ConferenceApp
	}
	if merged.StartDate.IsZero() {
		merged.StartDate = prior.StartDate
	}
	if merged.BufferTime == nil {
		merged.BufferTime = prior.BufferTime
	}
	if len(merged.Reminders) == 0 {
		merged.Reminders = prior.Reminders
	}
	if merged.Priority == 0 {
		merged.Priority = prior.Priority
	}
	if len(merged.TimePreferences) == 0 {
		merged.TimePreferences = prior.TimePreferences
	}
	if merged.Location == "" {
		merged.Location = prior.Location
	}
	if merged.Transparency == "" {
		merged.Transparency = prior.Transparency
	}
	if merged.Visibility == "" {
		merged.Visibility = prior.Visibility
	}
	if merged.IsFollowUp == nil {
		merged.IsFollowUp = prior.IsFollowUp
	}
	if !merged.Recurrence.Present() {
		merged.Recurrence = prior.Recurrence
	}

	return merged
}
