package transport

import (
	"encoding/json"
	"testing"
	"time"

	"meeting_assistant_backend/internal/meetingupdate/domain"
)

func TestFromOutcomeCommitted(t *testing.T) {
	resp := FromOutcome(domain.Committed{Summary: "Standup has been updated."}, "All set!")

	if resp.Query != "completed" {
		t.Errorf("Query = %q, want completed", resp.Query)
	}
	if resp.Reply != "All set!" {
		t.Errorf("Reply = %q", resp.Reply)
	}
	if resp.Data != "Standup has been updated." {
		t.Errorf("Data = %v, want the summary", resp.Data)
	}
	if resp.PrevData != nil || resp.PrevJSONBody != nil {
		t.Error("terminal outcomes must not carry continuation state")
	}
}

func TestFromOutcomeNotFound(t *testing.T) {
	resp := FromOutcome(domain.NotFound{}, "Sorry, I couldn't find that event.")

	if resp.Query != "event_not_found" {
		t.Errorf("Query = %q, want event_not_found", resp.Query)
	}
	if resp.Data != nil || resp.PrevData != nil {
		t.Error("not-found carries no data or continuation state")
	}
}

func TestFromOutcomeAwaitingMoreInfoRoundTrips(t *testing.T) {
	boundary := domain.SearchBoundary{
		Start: time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC),
	}
	outcome := domain.AwaitingMoreInfo{
		Missing: domain.MissingFieldsReport{
			Required: []domain.FieldRequirement{domain.Require(domain.FieldTitle)},
		},
		Draft:       domain.UpdateDraft{OldTitle: "standup", Duration: 30},
		Boundary:    boundary,
		RawParams:   json.RawMessage(`{"oldTitle":"standup"}`),
		RawDateTime: json.RawMessage(`{"day":3}`),
	}

	resp := FromOutcome(outcome, "Which meeting do you mean?")
	if resp.Query != "missing_fields" {
		t.Errorf("Query = %q, want missing_fields", resp.Query)
	}

	// Feed the response's Prev* fields back as the next request.
	next := TurnRequest{
		Message:          "the budget standup",
		Timezone:         "UTC",
		PrevData:         resp.PrevData,
		PrevDataExtra:    resp.PrevDataExtra,
		PrevJSONBody:     resp.PrevJSONBody,
		PrevDateJSONBody: resp.PrevDateJSONBody,
	}
	if !next.Continuation() {
		t.Fatal("round-tripped request must be a continuation")
	}

	ctx := next.ContinuationContext()
	if ctx == nil {
		t.Fatal("ContinuationContext() = nil")
	}
	if ctx.Draft.OldTitle != "standup" || ctx.Draft.Duration != 30 {
		t.Errorf("carried draft = %+v", ctx.Draft)
	}
	if !ctx.Boundary.Start.Equal(boundary.Start) || !ctx.Boundary.End.Equal(boundary.End) {
		t.Errorf("carried boundary = %+v, want %+v", ctx.Boundary, boundary)
	}
	if string(ctx.RawParams) != `{"oldTitle":"standup"}` || string(ctx.RawDateTime) != `{"day":3}` {
		t.Errorf("carried bodies = %s, %s", ctx.RawParams, ctx.RawDateTime)
	}
}

func TestContinuationContextFirstTurn(t *testing.T) {
	req := TurnRequest{Message: "move the standup", Timezone: "UTC"}
	if req.Continuation() {
		t.Error("a request without PrevData is not a continuation")
	}
	if req.ContinuationContext() != nil {
		t.Error("ContinuationContext() must be nil on a first turn")
	}
}

func TestHistoryMessages(t *testing.T) {
	req := TurnRequest{History: []Message{
		{Role: "user", Content: "move the standup"},
		{Role: "assistant", Content: "Which day?"},
	}}
	history := req.HistoryMessages()
	if len(history) != 2 || history[1].Role != "assistant" || history[1].Content != "Which day?" {
		t.Errorf("history = %+v", history)
	}

	if (TurnRequest{}).HistoryMessages() != nil {
		t.Error("empty history converts to nil")
	}
}

func TestTurnRequestWireShape(t *testing.T) {
	// The continuation fields use the exact wire names callers round-trip.
	raw := `{
		"message": "the 3rd at 4pm",
		"timezone": "Europe/Amsterdam",
		"prevData": {"oldTitle": "standup"},
		"prevDataExtra": {"searchBoundary": {"startDate": "2026-09-03T00:00:00Z", "endDate": "2026-09-04T00:00:00Z"}},
		"prevJsonBody": {"oldTitle": "standup"},
		"prevDateJsonBody": {"day": 3}
	}`
	var req TurnRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !req.Continuation() {
		t.Fatal("wire request with prevData must parse as a continuation")
	}
	if req.PrevData.OldTitle != "standup" {
		t.Errorf("prevData = %+v", req.PrevData)
	}
	if req.PrevDataExtra.SearchBoundary.Start.IsZero() {
		t.Error("searchBoundary.startDate not parsed")
	}
}
