// Package transport defines the wire DTOs for the meeting-update turn
// endpoint, including the continuation context that callers round-trip
// back unchanged between turns.
package transport

import (
	"encoding/json"

	"meeting_assistant_backend/internal/meetingupdate/domain"
	"meeting_assistant_backend/internal/meetingupdate/ports"
	"meeting_assistant_backend/internal/meetingupdate/service"
)

// Message is one conversation history entry.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// PrevDataExtra carries auxiliary continuation state.
type PrevDataExtra struct {
	SearchBoundary domain.SearchBoundary `json:"searchBoundary"`
}

// TurnRequest is one user turn. The Prev* fields are only present on
// continuation turns and must equal the values of the previous response.
type TurnRequest struct {
	Message          string               `json:"message" validate:"required,min=1,max=4000"`
	Timezone         string               `json:"timezone" validate:"required,max=64"`
	History          []Message            `json:"history,omitempty" validate:"dive"`
	PrevData         *domain.UpdateDraft  `json:"prevData,omitempty"`
	PrevDataExtra    *PrevDataExtra       `json:"prevDataExtra,omitempty"`
	PrevJSONBody     json.RawMessage      `json:"prevJsonBody,omitempty"`
	PrevDateJSONBody json.RawMessage      `json:"prevDateJsonBody,omitempty"`
}

// Continuation reports whether this turn answers a missing-fields prompt.
func (r TurnRequest) Continuation() bool {
	return r.PrevData != nil
}

// TurnResponse is the structured result of a turn. Query is one of
// completed, missing_fields or event_not_found. The Prev* fields are only
// set on missing_fields and must be round-tripped into the next request.
type TurnResponse struct {
	Query            string                      `json:"query"`
	Reply            string                      `json:"reply"`
	Data             interface{}                 `json:"data,omitempty"`
	PrevData         *domain.UpdateDraft         `json:"prevData,omitempty"`
	PrevDataExtra    *PrevDataExtra              `json:"prevDataExtra,omitempty"`
	PrevJSONBody     json.RawMessage             `json:"prevJsonBody,omitempty"`
	PrevDateJSONBody json.RawMessage             `json:"prevDateJsonBody,omitempty"`
}

// HistoryMessages converts the wire history to the service shape.
func (r TurnRequest) HistoryMessages() []ports.Message {
	if len(r.History) == 0 {
		return nil
	}
	history := make([]ports.Message, 0, len(r.History))
	for _, msg := range r.History {
		history = append(history, ports.Message{Role: msg.Role, Content: msg.Content})
	}
	return history
}

// ContinuationContext converts the request's Prev* fields to the service
// shape, or nil on a first pass.
func (r TurnRequest) ContinuationContext() *service.ContinuationContext {
	if !r.Continuation() {
		return nil
	}
	ctx := &service.ContinuationContext{
		Draft:       *r.PrevData,
		RawParams:   r.PrevJSONBody,
		RawDateTime: r.PrevDateJSONBody,
	}
	if r.PrevDataExtra != nil {
		ctx.Boundary = r.PrevDataExtra.SearchBoundary
	}
	return ctx
}

// FromOutcome builds the wire response for a turn outcome.
func FromOutcome(outcome domain.Outcome, reply string) TurnResponse {
	resp := TurnResponse{Query: string(outcome.State()), Reply: reply}
	switch o := outcome.(type) {
	case domain.Committed:
		resp.Data = o.Summary
	case domain.AwaitingMoreInfo:
		draft := o.Draft
		resp.Data = o.Missing
		resp.PrevData = &draft
		resp.PrevDataExtra = &PrevDataExtra{SearchBoundary: o.Boundary}
		resp.PrevJSONBody = o.RawParams
		resp.PrevDateJSONBody = o.RawDateTime
	}
	return resp
}
