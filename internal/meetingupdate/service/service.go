// Package service implements the conversational meeting-update flow: turn
// extraction, draft merging, completeness validation, meeting resolution and
// the ordered commit of all downstream changes.
package service

import (
	"context"
	"encoding/json"
	"time"

	ievents "meeting_assistant_backend/internal/events"
	"meeting_assistant_backend/internal/meetingupdate/domain"
	"meeting_assistant_backend/internal/meetingupdate/ports"
	"meeting_assistant_backend/platform/events"
	"meeting_assistant_backend/platform/logger"

	"github.com/google/uuid"
)

// notFoundReply is shown when no meeting matches the user's reference.
// Resolution failure is a terminal conversational state, not an error.
const notFoundReply = "Sorry, I couldn't find that event. Could you try again with a different title or time frame?"

type Service struct {
	repo      ports.Store
	extractor ports.Extractor
	contacts  ports.ContactDirectory
	calendar  ports.CalendarProvider
	host      ports.ConferenceHost
	embedder  ports.Embedder
	index     ports.SearchIndex
	replies   ports.ReplyGenerator
	bus       events.Bus
	log       *logger.Logger

	// now is swappable in tests.
	now func() time.Time
}

func New(
	repo ports.Store,
	extractor ports.Extractor,
	contacts ports.ContactDirectory,
	calendar ports.CalendarProvider,
	host ports.ConferenceHost,
	embedder ports.Embedder,
	index ports.SearchIndex,
	replies ports.ReplyGenerator,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		extractor: extractor,
		contacts:  contacts,
		calendar:  calendar,
		host:      host,
		embedder:  embedder,
		index:     index,
		replies:   replies,
		bus:       bus,
		log:       log,
		now:       time.Now,
	}
}

// ContinuationContext is the state carried between turns while the draft is
// incomplete. The transport layer round-trips it back unchanged.
type ContinuationContext struct {
	Draft       domain.UpdateDraft
	Boundary    domain.SearchBoundary
	RawParams   json.RawMessage
	RawDateTime json.RawMessage
}

// TurnInput is one user turn. Continuation is nil on the first pass of an
// update request and carries the prior turn's state afterwards.
type TurnInput struct {
	UserID       uuid.UUID
	Timezone     string
	Utterance    string
	History      []ports.Message
	Continuation *ContinuationContext
}

// TurnResult pairs the conversational outcome with the assistant reply to
// show the user.
type TurnResult struct {
	Outcome domain.Outcome
	Reply   string
}

// HandleTurn runs one turn of the update conversation. Validation gaps and
// resolution failure are outcomes, not errors; only collaborator failures
// surface as errors.
func (s *Service) HandleTurn(ctx context.Context, in TurnInput) (TurnResult, error) {
	referenceTime := s.now()

	var (
		extraction domain.TurnExtraction
		prior      domain.UpdateDraft
		fallback   domain.SearchBoundary
		err        error
	)
	continuation := in.Continuation != nil
	if continuation {
		priorUtterance, priorReply := lastExchange(in.History)
		extraction, err = s.extractor.ExtractContinuationTurn(ctx, in.UserID, ports.ContinuationTurn{
			Utterance:      in.Utterance,
			PriorUtterance: priorUtterance,
			PriorReply:     priorReply,
			Timezone:       in.Timezone,
			ReferenceTime:  referenceTime,
			PriorParams:    in.Continuation.RawParams,
			PriorDateTime:  in.Continuation.RawDateTime,
		})
		prior = in.Continuation.Draft
		fallback = in.Continuation.Boundary
	} else {
		extraction, err = s.extractor.ExtractTurn(ctx, in.UserID, in.Utterance, in.Timezone, referenceTime)
	}
	if err != nil {
		s.log.CollaboratorError("extractor", "extract turn", err)
		return TurnResult{}, err
	}

	merged := domain.Merge(extraction.Draft, prior)
	merged.UserID = in.UserID
	if merged.Timezone == "" {
		merged.Timezone = in.Timezone
	}

	patched, report, err := s.validateDraft(ctx, merged, continuation, extraction.Signals)
	if err != nil {
		return TurnResult{}, err
	}

	boundary := extraction.Boundary.OrElse(fallback)

	if !report.Empty() {
		reply, err := s.replies.MissingFieldsReply(ctx, report, in.History)
		if err != nil {
			s.log.CollaboratorError("replies", "missing fields reply", err)
			return TurnResult{}, err
		}
		s.log.TurnOutcome(in.UserID.String(), intent(continuation), string(domain.StateAwaitingMoreInfo), report.Count())
		return TurnResult{
			Outcome: domain.AwaitingMoreInfo{
				Missing:     report,
				Draft:       patched,
				Boundary:    boundary,
				RawParams:   extraction.RawParams,
				RawDateTime: extraction.RawDateTime,
			},
			Reply: reply,
		}, nil
	}

	meetingID, err := s.resolveMeeting(ctx, patched, boundary, referenceTime)
	if err != nil {
		return TurnResult{}, err
	}
	if meetingID == "" {
		s.log.TurnOutcome(in.UserID.String(), intent(continuation), string(domain.StateNotFound), 0)
		return TurnResult{Outcome: domain.NotFound{}, Reply: notFoundReply}, nil
	}

	committed, err := s.commit(ctx, patched, meetingID)
	if err != nil {
		return TurnResult{}, err
	}

	reply, err := s.replies.SuccessReply(ctx, committed.Summary, in.History)
	if err != nil {
		// The commit already happened; a reply failure must not mask it.
		s.log.CollaboratorError("replies", "success reply", err)
		reply = committed.Summary
	}

	s.bus.Publish(ctx, ievents.NewMeetingUpdated(
		in.UserID, meetingID, committed.Title, committed.StartDate,
		committed.Timezone, patched.Reminders, committed.Recurrence,
	))
	s.log.TurnOutcome(in.UserID.String(), intent(continuation), string(domain.StateCommitted), 0)
	return TurnResult{Outcome: domain.Committed{Summary: committed.Summary}, Reply: reply}, nil
}

func intent(continuation bool) string {
	if continuation {
		return "update_meeting_missing_fields"
	}
	return "update_meeting"
}

// lastExchange pulls the most recent user utterance and assistant reply out
// of the conversation history, skipping the current turn's own message.
func lastExchange(history []ports.Message) (priorUtterance, priorReply string) {
	for i := len(history) - 1; i >= 0; i-- {
		switch history[i].Role {
		case "assistant":
			if priorReply == "" {
				priorReply = history[i].Content
			}
		case "user":
			if priorReply != "" && priorUtterance == "" {
				priorUtterance = history[i].Content
			}
		}
		if priorUtterance != "" && priorReply != "" {
			break
		}
	}
	return priorUtterance, priorReply
}
