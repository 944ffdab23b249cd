package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMergeCurrentTurnWins(t *testing.T) {
	prior := UpdateDraft{
		Title:       "Old standup",
		OldTitle:    "standup",
		Duration:    30,
		Description: "old notes",
		Priority:    3,
	}
	current := UpdateDraft{
		Title:    "Planning",
		Duration: 60,
	}

	merged := Merge(current, prior)

	if merged.Title != "Planning" {
		t.Errorf("Title = %q, want %q", merged.Title, "Planning")
	}
	if merged.Duration != 60 {
		t.Errorf("Duration = %d, want 60", merged.Duration)
	}
	// Fields the current turn did not mention are kept from the prior turn.
	if merged.OldTitle != "standup" {
		t.Errorf("OldTitle = %q, want %q", merged.OldTitle, "standup")
	}
	if merged.Description != "old notes" {
		t.Errorf("Description = %q, want %q", merged.Description, "old notes")
	}
	if merged.Priority != 3 {
		t.Errorf("Priority = %d, want 3", merged.Priority)
	}
}

func TestMergeListsReplaceAsWholes(t *testing.T) {
	prior := UpdateDraft{
		Attendees: []DraftAttendee{{Name: "Alice", Email: "alice@example.com"}},
		Reminders: []int{10, 30},
	}
	current := UpdateDraft{
		Attendees: []DraftAttendee{{Name: "Bob", Email: "bob@example.com"}},
	}

	merged := Merge(current, prior)

	if len(merged.Attendees) != 1 || merged.Attendees[0].Name != "Bob" {
		t.Errorf("Attendees = %+v, want only Bob", merged.Attendees)
	}
	if len(merged.Reminders) != 2 {
		t.Errorf("Reminders = %v, want prior list kept", merged.Reminders)
	}
}

func TestMergeRecurrenceWholeRecord(t *testing.T) {
	prior := UpdateDraft{
		Recurrence: &RecurrenceRule{Frequency: FrequencyWeekly, Interval: 1, ByWeekDay: []string{"MO"}},
	}

	// A current rule without a frequency is treated as absent.
	merged := Merge(UpdateDraft{Recurrence: &RecurrenceRule{Interval: 2}}, prior)
	if merged.Recurrence == nil || merged.Recurrence.Frequency != FrequencyWeekly {
		t.Fatalf("Recurrence = %+v, want the prior weekly rule kept", merged.Recurrence)
	}
	if len(merged.Recurrence.ByWeekDay) != 1 || merged.Recurrence.ByWeekDay[0] != "MO" {
		t.Errorf("ByWeekDay = %v, want [MO]", merged.Recurrence.ByWeekDay)
	}

	// A current rule with a frequency replaces the prior rule entirely,
	// including fields the prior rule set.
	merged = Merge(UpdateDraft{Recurrence: &RecurrenceRule{Frequency: FrequencyDaily}}, prior)
	if merged.Recurrence.Frequency != FrequencyDaily {
		t.Errorf("Frequency = %q, want daily", merged.Recurrence.Frequency)
	}
	if len(merged.Recurrence.ByWeekDay) != 0 {
		t.Errorf("ByWeekDay = %v, want the prior rule's days gone", merged.Recurrence.ByWeekDay)
	}
}

func TestMergeIdentityAndTime(t *testing.T) {
	userID := uuid.New()
	start := time.Date(2026, 9, 3, 14, 0, 0, 0, time.UTC)
	prior := UpdateDraft{UserID: userID, Timezone: "Europe/Amsterdam", StartDate: start}

	merged := Merge(UpdateDraft{}, prior)
	if merged.UserID != userID {
		t.Errorf("UserID = %s, want %s", merged.UserID, userID)
	}
	if merged.Timezone != "Europe/Amsterdam" {
		t.Errorf("Timezone = %q, want Europe/Amsterdam", merged.Timezone)
	}
	if !merged.StartDate.Equal(start) {
		t.Errorf("StartDate = %v, want %v", merged.StartDate, start)
	}

	later := start.Add(24 * time.Hour)
	merged = Merge(UpdateDraft{StartDate: later}, prior)
	if !merged.StartDate.Equal(later) {
		t.Errorf("StartDate = %v, want the current turn's %v", merged.StartDate, later)
	}
}

func TestMergeIsFollowUpPointer(t *testing.T) {
	yes, no := true, false
	prior := UpdateDraft{IsFollowUp: &yes}

	merged := Merge(UpdateDraft{}, prior)
	if merged.IsFollowUp == nil || !*merged.IsFollowUp {
		t.Errorf("IsFollowUp = %v, want prior true kept", merged.IsFollowUp)
	}

	// An explicit false is a real value, not absence.
	merged = Merge(UpdateDraft{IsFollowUp: &no}, prior)
	if merged.IsFollowUp == nil || *merged.IsFollowUp {
		t.Errorf("IsFollowUp = %v, want current false", merged.IsFollowUp)
	}
}

func TestSearchBoundaryOrElse(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	fallback := SearchBoundary{Start: start.AddDate(0, 0, -14), End: start.AddDate(0, 0, 28)}

	got := SearchBoundary{Start: start, End: end}.OrElse(fallback)
	if !got.Start.Equal(start) || !got.End.Equal(end) {
		t.Errorf("full boundary changed by OrElse: %+v", got)
	}

	got = SearchBoundary{}.OrElse(fallback)
	if !got.Start.Equal(fallback.Start) || !got.End.Equal(fallback.End) {
		t.Errorf("empty boundary not filled: %+v", got)
	}

	got = SearchBoundary{Start: start}.OrElse(fallback)
	if !got.Start.Equal(start) || !got.End.Equal(fallback.End) {
		t.Errorf("partial boundary filled wrong: %+v", got)
	}
}

func TestDateSignals(t *testing.T) {
	zero := 0
	cases := []struct {
		name     string
		signals  DateSignals
		wantDay  bool
		wantTime bool
	}{
		{"empty", DateSignals{}, false, false},
		{"day of month", DateSignals{Day: 12}, true, false},
		{"weekday", DateSignals{ISOWeekday: 2}, true, false},
		{"hour zero is a time", DateSignals{Hour: &zero}, false, true},
		{"start time", DateSignals{StartTime: "09:30"}, false, true},
		{"year alone is not a day", DateSignals{Year: 2026}, false, false},
	}
	for _, tc := range cases {
		if got := tc.signals.HasDaySignal(); got != tc.wantDay {
			t.Errorf("%s: HasDaySignal() = %v, want %v", tc.name, got, tc.wantDay)
		}
		if got := tc.signals.HasTimeSignal(); got != tc.wantTime {
			t.Errorf("%s: HasTimeSignal() = %v, want %v", tc.name, got, tc.wantTime)
		}
	}
}
