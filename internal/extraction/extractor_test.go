package extraction

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"meeting_assistant_backend/internal/meetingupdate/ports"

	"github.com/google/uuid"
)

// scriptedModel returns a canned JSON body per system prompt.
type scriptedModel struct {
	params   string
	dateTime string
	prompts  []string
}

func (m *scriptedModel) GenerateJSON(_ context.Context, system, prompt string, out interface{}) (json.RawMessage, error) {
	m.prompts = append(m.prompts, prompt)
	body := m.params
	if system == dateTimeSystem {
		body = m.dateTime
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func TestExtractTurnAssemblesDraft(t *testing.T) {
	model := &scriptedModel{
		params:   `{"oldTitle":"standup","duration":45,"conferenceApp":"zoom"}`,
		dateTime: `{"isoWeekday":4,"startTime":"14:00"}`,
	}
	userID := uuid.New()

	got, err := New(model).ExtractTurn(context.Background(), userID, "move standup to Thursday 2pm", "UTC", reference)
	if err != nil {
		t.Fatalf("ExtractTurn: %v", err)
	}

	if got.Draft.UserID != userID {
		t.Errorf("UserID = %s, want %s", got.Draft.UserID, userID)
	}
	if got.Draft.OldTitle != "standup" || got.Draft.Duration != 45 {
		t.Errorf("draft = %+v, want oldTitle standup, duration 45", got.Draft)
	}
	// Thursday after Tuesday Sept 1 is Sept 3.
	want := time.Date(2026, 9, 3, 14, 0, 0, 0, time.UTC)
	if !got.Draft.StartDate.Equal(want) {
		t.Errorf("StartDate = %v, want %v", got.Draft.StartDate, want)
	}
	if got.Boundary.Start.IsZero() {
		t.Errorf("boundary not narrowed to the named day")
	}
	if got.Signals.ISOWeekday != 4 || got.Signals.StartTime != "14:00" {
		t.Errorf("signals = %+v", got.Signals)
	}
	if len(got.RawParams) == 0 || len(got.RawDateTime) == 0 {
		t.Errorf("raw bodies must be carried for continuation turns")
	}
}

func TestExtractTurnDurationFallsBackToDateBody(t *testing.T) {
	model := &scriptedModel{
		params:   `{"oldTitle":"standup"}`,
		dateTime: `{"day":3,"startTime":"14:00","duration":90}`,
	}

	got, err := New(model).ExtractTurn(context.Background(), uuid.New(), "standup thursday 2pm for 90 minutes", "UTC", reference)
	if err != nil {
		t.Fatalf("ExtractTurn: %v", err)
	}
	if got.Draft.Duration != 90 {
		t.Errorf("Duration = %d, want 90 from the date body", got.Draft.Duration)
	}
}

func TestExtractTurnUnknownTimezoneFallsBackToUTC(t *testing.T) {
	model := &scriptedModel{
		params:   `{"oldTitle":"standup"}`,
		dateTime: `{"day":3,"hour":9}`,
	}

	got, err := New(model).ExtractTurn(context.Background(), uuid.New(), "standup on the 3rd at 9", "Mars/Olympus", reference)
	if err != nil {
		t.Fatalf("ExtractTurn: %v", err)
	}
	if got.Draft.StartDate.Location() != time.UTC {
		t.Errorf("location = %v, want UTC fallback", got.Draft.StartDate.Location())
	}
}

func TestExtractContinuationTurnFillsPriorDates(t *testing.T) {
	// The continuation turn only answers the time; the day comes from the
	// carried prior body.
	model := &scriptedModel{
		params:   `{}`,
		dateTime: `{"hour":16}`,
	}

	got, err := New(model).ExtractContinuationTurn(context.Background(), uuid.New(), ports.ContinuationTurn{
		Utterance:     "4pm works",
		PriorReply:    "What time should it start?",
		Timezone:      "UTC",
		ReferenceTime: reference,
		PriorDateTime: json.RawMessage(`{"day":3}`),
	})
	if err != nil {
		t.Fatalf("ExtractContinuationTurn: %v", err)
	}
	want := time.Date(2026, 9, 3, 16, 0, 0, 0, time.UTC)
	if !got.Draft.StartDate.Equal(want) {
		t.Errorf("StartDate = %v, want %v", got.Draft.StartDate, want)
	}

	var merged dateTimeBody
	if err := json.Unmarshal(got.RawDateTime, &merged); err != nil {
		t.Fatalf("unmarshal carried body: %v", err)
	}
	if merged.Day == nil || *merged.Day != 3 || merged.Hour == nil || *merged.Hour != 16 {
		t.Errorf("carried body = %+v, want merged day and hour", merged)
	}
}

func TestExtractContinuationTurnCorruptPriorBody(t *testing.T) {
	model := &scriptedModel{
		params:   `{}`,
		dateTime: `{"day":5,"hour":10}`,
	}

	got, err := New(model).ExtractContinuationTurn(context.Background(), uuid.New(), ports.ContinuationTurn{
		Utterance:     "the 5th at 10",
		Timezone:      "UTC",
		ReferenceTime: reference,
		PriorDateTime: json.RawMessage(`{corrupt`),
	})
	if err != nil {
		t.Fatalf("a corrupt carried body must not fail the turn: %v", err)
	}
	want := time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC)
	if !got.Draft.StartDate.Equal(want) {
		t.Errorf("StartDate = %v, want %v", got.Draft.StartDate, want)
	}
}
