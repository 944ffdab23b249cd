package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"meeting_assistant_backend/internal/meetingupdate/domain"
	"meeting_assistant_backend/internal/meetingupdate/repository"
	"meeting_assistant_backend/platform/events"
	"meeting_assistant_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeStore is an in-memory Store recording every write the commit makes.
type fakeStore struct {
	events      map[string]*repository.Event
	conferences map[string]*repository.Conference
	prefs       repository.MeetingPreferences

	locks             int
	unlocks           int
	eventUpserts      []repository.Event
	eventDeletes      []string
	conferenceUpserts []repository.Conference
	conferenceDeletes []string
	reminderDeletes   int
	reminderInserts   []repository.Reminder
	rangeDeletes      int
	rangeInserts      []repository.PreferredTimeRange
	attendeeInserts   []repository.Attendee
	trace             *[]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:      make(map[string]*repository.Event),
		conferences: make(map[string]*repository.Conference),
	}
}

func (f *fakeStore) mark(op string) {
	if f.trace != nil {
		*f.trace = append(*f.trace, op)
	}
}

func (f *fakeStore) AcquireMeetingLock(context.Context, string) (func(), error) {
	f.locks++
	return func() { f.unlocks++ }, nil
}

func (f *fakeStore) GetEvent(_ context.Context, _ uuid.UUID, eventID string) (*repository.Event, error) {
	ev, ok := f.events[eventID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

func (f *fakeStore) UpsertEvent(_ context.Context, ev *repository.Event) error {
	cp := *ev
	f.events[ev.ID] = &cp
	f.eventUpserts = append(f.eventUpserts, cp)
	return nil
}

func (f *fakeStore) DeleteEvent(_ context.Context, _ uuid.UUID, eventID string) error {
	delete(f.events, eventID)
	f.eventDeletes = append(f.eventDeletes, eventID)
	return nil
}

func (f *fakeStore) MeetingPreferences(context.Context, uuid.UUID) (repository.MeetingPreferences, error) {
	return f.prefs, nil
}

func (f *fakeStore) GetConference(_ context.Context, _ uuid.UUID, conferenceID string) (*repository.Conference, error) {
	conf, ok := f.conferences[conferenceID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *conf
	return &cp, nil
}

func (f *fakeStore) UpsertConference(_ context.Context, conf *repository.Conference) error {
	cp := *conf
	f.conferences[conf.ID] = &cp
	f.conferenceUpserts = append(f.conferenceUpserts, cp)
	return nil
}

func (f *fakeStore) DeleteConference(_ context.Context, _ uuid.UUID, conferenceID string) error {
	delete(f.conferences, conferenceID)
	f.conferenceDeletes = append(f.conferenceDeletes, conferenceID)
	f.mark("conference row deleted")
	return nil
}

func (f *fakeStore) DeleteReminders(context.Context, uuid.UUID, string) error {
	f.reminderDeletes++
	return nil
}

func (f *fakeStore) InsertReminders(_ context.Context, reminders []repository.Reminder) error {
	f.reminderInserts = append(f.reminderInserts, reminders...)
	return nil
}

func (f *fakeStore) DeletePreferredTimeRanges(context.Context, uuid.UUID, string) error {
	f.rangeDeletes++
	return nil
}

func (f *fakeStore) InsertPreferredTimeRanges(_ context.Context, ranges []repository.PreferredTimeRange) error {
	f.rangeInserts = append(f.rangeInserts, ranges...)
	return nil
}

func (f *fakeStore) InsertAttendees(_ context.Context, attendees []repository.Attendee) error {
	f.attendeeInserts = append(f.attendeeInserts, attendees...)
	return nil
}

func newCommitService(store *fakeStore, cal *fakeCalendar, host *fakeHost) *Service {
	log := logger.New("test")
	svc := New(store, &fakeExtractor{}, &fakeContacts{}, cal, host, fakeEmbedder{}, &fakeIndex{}, &fakeReplies{}, events.NewInMemoryBus(log), log)
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

func storedMeeting(userID uuid.UUID) *repository.Event {
	return &repository.Event{
		ID:              "mtg-1",
		UserID:          userID,
		CalendarID:      "primary",
		ProviderEventID: "prov-mtg-1",
		Title:           "budget review",
		StartDate:       time.Date(2026, 9, 3, 14, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2026, 9, 3, 15, 0, 0, 0, time.UTC),
		Timezone:        "UTC",
		Duration:        60,
		Transparency:    "opaque",
		Visibility:      "default",
		Modifiable:      true,
	}
}

func TestCommitCoreChangePatchesProviderOnce(t *testing.T) {
	userID := uuid.New()
	store := newFakeStore()
	store.events["mtg-1"] = storedMeeting(userID)
	cal := &fakeCalendar{}
	host := &fakeHost{}
	svc := newCommitService(store, cal, host)

	res, err := svc.commit(context.Background(), domain.UpdateDraft{
		UserID:    userID,
		Title:     "budget review",
		StartDate: time.Date(2026, 9, 4, 9, 0, 0, 0, time.UTC),
		Duration:  45,
	}, "mtg-1")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if len(cal.patches) != 1 || len(cal.creates) != 0 || cal.deletes != 0 {
		t.Errorf("calendar calls = %d patches, %d creates, %d deletes; want exactly one patch",
			len(cal.patches), len(cal.creates), cal.deletes)
	}
	if host.creates != 0 || host.deletes != 0 {
		t.Errorf("host touched on a core-field change: %d creates, %d deletes", host.creates, host.deletes)
	}
	if len(store.conferenceUpserts) != 0 || len(store.conferenceDeletes) != 0 {
		t.Errorf("conference rows touched on a core-field change: %+v", store.conferenceDeletes)
	}
	if len(store.eventUpserts) != 1 {
		t.Fatalf("event upserts = %d, want 1", len(store.eventUpserts))
	}
	updated := store.eventUpserts[0]
	if !updated.EndDate.Equal(time.Date(2026, 9, 4, 9, 45, 0, 0, time.UTC)) {
		t.Errorf("end = %v, want start plus the new duration", updated.EndDate)
	}
	if !updated.UserModifiedDuration {
		t.Error("an explicit duration must be flagged as user-modified")
	}
	if res.Summary != "budget review has been updated." {
		t.Errorf("summary = %q", res.Summary)
	}
	if store.locks != 1 || store.unlocks != 1 {
		t.Errorf("lock/unlock = %d/%d, want 1/1", store.locks, store.unlocks)
	}
}

func TestCommitSwitchToHostedCreatesNewThenDropsOld(t *testing.T) {
	userID := uuid.New()
	trace := []string{}
	store := newFakeStore()
	store.trace = &trace
	store.prefs = repository.MeetingPreferences{Name: "Dana Smit", PrimaryEmail: "dana@example.com"}
	requestID := "req-1"
	store.conferences["conf-google"] = &repository.Conference{
		ID:        "conf-google",
		UserID:    userID,
		App:       domain.ConferenceAppGoogle,
		RequestID: &requestID,
	}
	meeting := storedMeeting(userID)
	conferenceID := "conf-google"
	meeting.ConferenceID = &conferenceID
	store.events["mtg-1"] = meeting
	cal := &fakeCalendar{}
	host := &fakeHost{authorized: true, trace: &trace}
	svc := newCommitService(store, cal, host)

	_, err := svc.commit(context.Background(), domain.UpdateDraft{
		UserID:        userID,
		Title:         "budget review",
		ConferenceApp: domain.ConferenceAppZoom,
	}, "mtg-1")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if host.creates != 1 {
		t.Errorf("host creates = %d, want 1", host.creates)
	}
	// The old conference was the built-in one: its row goes, but there is
	// no provider-side meeting to delete.
	if host.deletes != 0 {
		t.Errorf("host deletes = %d, want 0 for a built-in predecessor", host.deletes)
	}
	if len(store.conferenceDeletes) != 1 || store.conferenceDeletes[0] != "conf-google" {
		t.Errorf("conference deletes = %v, want the old row exactly once", store.conferenceDeletes)
	}
	if len(trace) != 2 || trace[0] != "host create" || trace[1] != "conference row deleted" {
		t.Errorf("order = %v, want the new conference created before the old row goes", trace)
	}
	if len(store.conferenceUpserts) != 1 || store.conferenceUpserts[0].ID != "99887766" {
		t.Errorf("conference upserts = %+v, want the hosted record", store.conferenceUpserts)
	}
	if len(cal.patches) != 1 || cal.patches[0].Conference == nil || cal.patches[0].Conference.Type != "addOn" {
		t.Errorf("patch conference payload = %+v, want addOn linkage", cal.patches)
	}
	if cal.deletes != 0 {
		t.Errorf("calendar deletes = %d, want 0", cal.deletes)
	}
}

func TestCommitSwitchToBuiltinRemovesHostedOnce(t *testing.T) {
	userID := uuid.New()
	store := newFakeStore()
	store.conferences["12345"] = &repository.Conference{
		ID:     "12345",
		UserID: userID,
		App:    domain.ConferenceAppZoom,
	}
	meeting := storedMeeting(userID)
	conferenceID := "12345"
	meeting.ConferenceID = &conferenceID
	store.events["mtg-1"] = meeting
	cal := &fakeCalendar{}
	host := &fakeHost{authorized: true}
	svc := newCommitService(store, cal, host)

	_, err := svc.commit(context.Background(), domain.UpdateDraft{
		UserID:        userID,
		Title:         "budget review",
		ConferenceApp: domain.ConferenceAppGoogle,
	}, "mtg-1")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if host.deletes != 1 {
		t.Errorf("host deletes = %d, want the old hosted meeting removed exactly once", host.deletes)
	}
	if len(store.conferenceDeletes) != 1 || store.conferenceDeletes[0] != "12345" {
		t.Errorf("conference deletes = %v", store.conferenceDeletes)
	}
	if len(cal.patches) != 1 || cal.patches[0].Conference == nil || cal.patches[0].Conference.Type != "hangoutsMeet" {
		t.Errorf("patch conference payload = %+v, want built-in linkage", cal.patches)
	}
}

func TestCommitConferenceCreateFailureKeepsOld(t *testing.T) {
	userID := uuid.New()
	store := newFakeStore()
	requestID := "req-1"
	store.conferences["conf-google"] = &repository.Conference{
		ID:        "conf-google",
		UserID:    userID,
		App:       domain.ConferenceAppGoogle,
		RequestID: &requestID,
	}
	meeting := storedMeeting(userID)
	conferenceID := "conf-google"
	meeting.ConferenceID = &conferenceID
	store.events["mtg-1"] = meeting
	cal := &fakeCalendar{}
	hostErr := errors.New("host unreachable")
	host := &fakeHost{authorized: true, createErr: hostErr}
	svc := newCommitService(store, cal, host)

	_, err := svc.commit(context.Background(), domain.UpdateDraft{
		UserID:        userID,
		Title:         "budget review",
		ConferenceApp: domain.ConferenceAppZoom,
	}, "mtg-1")
	if !errors.Is(err, hostErr) {
		t.Fatalf("err = %v, want the host failure", err)
	}

	// The switch never tears down what it could not replace.
	if len(store.conferenceDeletes) != 0 || host.deletes != 0 {
		t.Errorf("old conference torn down after a failed create: rows %v, host deletes %d",
			store.conferenceDeletes, host.deletes)
	}
	if len(cal.patches) != 0 || len(store.eventUpserts) != 0 {
		t.Error("commit continued past a failed conference switch")
	}
	if store.unlocks != 1 {
		t.Errorf("unlocks = %d, want the lock released on failure", store.unlocks)
	}
}

func TestCommitBufferTeardownOnlyRequestedSide(t *testing.T) {
	userID := uuid.New()
	store := newFakeStore()
	meeting := storedMeeting(userID)
	preID, postID := "pre-1", "post-1"
	meeting.PreEventID = &preID
	meeting.PostEventID = &postID
	store.events["mtg-1"] = meeting
	store.events["pre-1"] = &repository.Event{
		ID: "pre-1", UserID: userID, CalendarID: "primary", ProviderEventID: "prov-pre-1", IsPreEvent: true,
	}
	store.events["post-1"] = &repository.Event{
		ID: "post-1", UserID: userID, CalendarID: "primary", ProviderEventID: "prov-post-1", IsPostEvent: true,
	}
	cal := &fakeCalendar{}
	svc := newCommitService(store, cal, &fakeHost{})

	_, err := svc.commit(context.Background(), domain.UpdateDraft{
		UserID:     userID,
		Title:      "budget review",
		BufferTime: &domain.BufferTime{AfterEvent: 15},
	}, "mtg-1")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	// Only the after-meeting side was requested; the pre-meeting buffer
	// stays linked and untouched.
	if len(store.eventDeletes) != 1 || store.eventDeletes[0] != "post-1" {
		t.Errorf("event deletes = %v, want only the old post buffer", store.eventDeletes)
	}
	if cal.deletes != 1 {
		t.Errorf("calendar deletes = %d, want 1", cal.deletes)
	}
	if len(cal.creates) != 1 {
		t.Fatalf("calendar creates = %d, want one replacement buffer", len(cal.creates))
	}

	core := store.events["mtg-1"]
	if core.PreEventID == nil || *core.PreEventID != "pre-1" {
		t.Errorf("pre link = %v, want preserved", core.PreEventID)
	}
	if core.PostEventID == nil || *core.PostEventID == "post-1" {
		t.Errorf("post link = %v, want relinked to the replacement", core.PostEventID)
	}
	replacement, ok := store.events[*core.PostEventID]
	if !ok || !replacement.IsPostEvent {
		t.Errorf("replacement buffer row missing or mis-flagged: %+v", replacement)
	}
	if !replacement.StartDate.Equal(core.EndDate) {
		t.Errorf("buffer start = %v, want the meeting end %v", replacement.StartDate, core.EndDate)
	}
}
