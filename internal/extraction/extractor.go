// Package extraction turns free-text user turns into the structured draft
// and date/time signals the update flow works with. It is the only place
// that talks to the model for field extraction; everything downstream sees
// plain data.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"meeting_assistant_backend/internal/meetingupdate/domain"
	"meeting_assistant_backend/internal/meetingupdate/ports"

	"github.com/google/uuid"
)

// jsonModel is the slice of the model client extraction needs.
type jsonModel interface {
	GenerateJSON(ctx context.Context, system, prompt string, out interface{}) (json.RawMessage, error)
}

type Extractor struct {
	model jsonModel
}

func New(model jsonModel) *Extractor {
	return &Extractor{model: model}
}

var _ ports.Extractor = (*Extractor)(nil)

const paramsSystem = `You extract meeting-update fields from a user's message.
Respond with a single JSON object using only these keys, omitting any the
message does not mention:
  title (string, the NEW title if the user renames the meeting),
  oldTitle (string, how the user refers to the existing meeting),
  attendees (array of {name, email, isHost}),
  duration (integer minutes),
  description (string),
  conferenceApp ("google" or "zoom"),
  bufferTime ({beforeEvent, afterEvent} in minutes),
  reminders (array of integer minute offsets),
  priority (integer 1-10),
  timePreferences (array of {dayOfWeek: [weekday names], timeRange: {startTime, endTime} as "HH:mm"}),
  location (string),
  transparency ("opaque" or "transparent"),
  visibility ("default", "public" or "private"),
  isFollowUp (boolean),
  recur ({frequency: "daily"|"weekly"|"monthly"|"yearly", interval, byWeekDay, byMonthDay, occurrence, endDate}).
Never invent values. Respond with JSON only.`

const dateTimeSystem = `You extract the date and time the user refers to.
Respond with a single JSON object using only these keys, omitting any the
message does not determine:
  year (integer), month (integer 1-12), day (integer day of month),
  isoWeekday (integer 1=Monday..7=Sunday),
  hour (integer 0-23), minute (integer 0-59),
  startTime ("HH:mm" if the user names a clock time),
  duration (integer minutes).
Interpret relative references ("tomorrow", "next Tuesday") against the
reference time given in the prompt. Never invent values. Respond with JSON
only.`

func (e *Extractor) ExtractTurn(ctx context.Context, userID uuid.UUID, utterance, timezone string, referenceTime time.Time) (domain.TurnExtraction, error) {
	prompt := fmt.Sprintf("Reference time: %s (timezone %s)\nUser message: %s",
		referenceTime.Format(time.RFC3339), timezone, utterance)
	return e.extract(ctx, userID, prompt, timezone, referenceTime, nil)
}

func (e *Extractor) ExtractContinuationTurn(ctx context.Context, userID uuid.UUID, turn ports.ContinuationTurn) (domain.TurnExtraction, error) {
	prompt := fmt.Sprintf(
		"Reference time: %s (timezone %s)\nEarlier user message: %s\nAssistant asked: %s\nUser's answer: %s",
		turn.ReferenceTime.Format(time.RFC3339), turn.Timezone,
		turn.PriorUtterance, turn.PriorReply, turn.Utterance)

	var priorDate *dateTimeBody
	if len(turn.PriorDateTime) > 0 {
		priorDate = &dateTimeBody{}
		if err := json.Unmarshal(turn.PriorDateTime, priorDate); err != nil {
			// A corrupt carried body only loses extrapolation context.
			priorDate = nil
		}
	}
	return e.extract(ctx, userID, prompt, turn.Timezone, turn.ReferenceTime, priorDate)
}

func (e *Extractor) extract(ctx context.Context, userID uuid.UUID, prompt, timezone string, referenceTime time.Time, priorDate *dateTimeBody) (domain.TurnExtraction, error) {
	var draft domain.UpdateDraft
	rawParams, err := e.model.GenerateJSON(ctx, paramsSystem, prompt, &draft)
	if err != nil {
		return domain.TurnExtraction{}, err
	}

	var date dateTimeBody
	if _, err := e.model.GenerateJSON(ctx, dateTimeSystem, prompt, &date); err != nil {
		return domain.TurnExtraction{}, err
	}
	if priorDate != nil {
		date.fillFrom(*priorDate)
	}
	rawDate, err := json.Marshal(date)
	if err != nil {
		return domain.TurnExtraction{}, fmt.Errorf("marshal date body: %w", err)
	}

	location, err := time.LoadLocation(timezone)
	if err != nil {
		location = time.UTC
	}

	draft.UserID = userID
	draft.Timezone = timezone
	if draft.Duration == 0 && date.Duration != nil {
		draft.Duration = *date.Duration
	}
	startDate, boundary := extrapolate(date, referenceTime, location)
	draft.StartDate = startDate

	return domain.TurnExtraction{
		Draft:       draft,
		Signals:     date.signals(),
		Boundary:    boundary,
		RawParams:   rawParams,
		RawDateTime: rawDate,
	}, nil
}
