package service

import (
	"context"
	"testing"
	"time"

	"meeting_assistant_backend/internal/meetingupdate/domain"
	"meeting_assistant_backend/internal/meetingupdate/repository"
	"meeting_assistant_backend/platform/apperr"
	"meeting_assistant_backend/platform/events"
	"meeting_assistant_backend/platform/logger"

	"github.com/google/uuid"
)

func newConferenceService(host *fakeHost) *Service {
	log := logger.New("test")
	return New(nil, &fakeExtractor{}, &fakeContacts{}, &fakeCalendar{}, host, fakeEmbedder{}, &fakeIndex{}, &fakeReplies{}, events.NewInMemoryBus(log), log)
}

func TestProviderForFallsBackWithoutAuthorization(t *testing.T) {
	svc := newConferenceService(&fakeHost{authorized: false})

	provider, err := svc.providerFor(context.Background(), uuid.New(), domain.ConferenceAppZoom)
	if err != nil {
		t.Fatalf("providerFor: %v", err)
	}
	if provider.app() != domain.ConferenceAppGoogle {
		t.Errorf("app = %q, want fallback to the built-in provider", provider.app())
	}
}

func TestProviderForAuthorizedHost(t *testing.T) {
	svc := newConferenceService(&fakeHost{authorized: true})

	provider, err := svc.providerFor(context.Background(), uuid.New(), domain.ConferenceAppZoom)
	if err != nil {
		t.Fatalf("providerFor: %v", err)
	}
	if provider.app() != domain.ConferenceAppZoom {
		t.Errorf("app = %q, want the hosted provider", provider.app())
	}
}

func TestBuiltinProviderCreate(t *testing.T) {
	in := conferenceInput{
		userID: uuid.New(),
		notes:  "quarterly planning",
		prefs:  repository.MeetingPreferences{Name: "Dana Smit"},
	}
	conf, err := builtinProvider{}.create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if conf.App != domain.ConferenceAppGoogle {
		t.Errorf("App = %q, want google", conf.App)
	}
	if conf.RequestID == nil || *conf.RequestID == "" {
		t.Error("built-in conferences need a request id for the calendar payload")
	}
	if conf.Name != "Dana Smit" || conf.Notes != "quarterly planning" {
		t.Errorf("conf = %+v", conf)
	}
}

func TestHostedProviderCreate(t *testing.T) {
	host := &fakeHost{}
	in := conferenceInput{
		userID:   uuid.New(),
		agenda:   "quarterly planning",
		start:    time.Date(2026, 9, 3, 14, 0, 0, 0, time.UTC),
		timezone: "UTC",
		duration: 60,
	}
	conf, err := hostedProvider{host: host}.create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if host.creates != 1 {
		t.Errorf("host creates = %d, want 1", host.creates)
	}
	if conf.ID != "99887766" {
		t.Errorf("ID = %q, want the hosted meeting id as a string", conf.ID)
	}
	if conf.JoinURL == nil || *conf.JoinURL == "" {
		t.Error("hosted conference must carry its join url")
	}
}

func TestHostedProviderRejectsNonNumericID(t *testing.T) {
	bad := &repository.Conference{ID: uuid.NewString(), App: domain.ConferenceAppZoom}

	_, err := hostedProvider{host: &fakeHost{}}.update(context.Background(), bad, conferenceInput{})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("update err = %v, want a conflict", err)
	}
	if err := (hostedProvider{host: &fakeHost{}}).remove(context.Background(), uuid.New(), bad); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("remove err = %v, want a conflict", err)
	}
}

func TestBuiltinProviderRemoveIsNoOp(t *testing.T) {
	if err := (builtinProvider{}).remove(context.Background(), uuid.New(), &repository.Conference{ID: "abc"}); err != nil {
		t.Errorf("remove: %v", err)
	}
}

func TestConferencePayload(t *testing.T) {
	requestID := "req-1"
	google := conferencePayload(&repository.Conference{
		ID:        "conf-1",
		App:       domain.ConferenceAppGoogle,
		Name:      "Dana Smit",
		RequestID: &requestID,
	})
	if google.Type != "hangoutsMeet" || google.RequestID != "req-1" || google.ConferenceID != "conf-1" {
		t.Errorf("google payload = %+v", google)
	}
	if google.JoinURL != "" {
		t.Errorf("google payload carries a join url: %+v", google)
	}

	joinURL := "https://zoom.example/j/99887766"
	zoom := conferencePayload(&repository.Conference{
		ID:      "99887766",
		App:     domain.ConferenceAppZoom,
		Name:    "Dana Smit",
		JoinURL: &joinURL,
	})
	if zoom.Type != "addOn" || zoom.JoinURL != joinURL || zoom.ConferenceID != "99887766" {
		t.Errorf("zoom payload = %+v", zoom)
	}
	if zoom.RequestID != "" {
		t.Errorf("zoom payload carries a request id: %+v", zoom)
	}
}

func TestHostedRequestCarriesRecurrence(t *testing.T) {
	rule := &domain.RecurrenceRule{Frequency: domain.FrequencyWeekly}
	req := hostedRequest(conferenceInput{
		agenda: "standup",
		prefs:  repository.MeetingPreferences{Name: "Dana", PrimaryEmail: "dana@example.com"},
		emails: []string{"a@example.com", "b@example.com"},
		rule:   rule,
	})
	if req.HostEmail != "dana@example.com" || len(req.AttendeeEmails) != 2 {
		t.Errorf("req = %+v", req)
	}
	if req.Recurrence != rule {
		t.Error("recurrence rule not passed through")
	}
}
