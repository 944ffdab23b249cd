// Package repository persists meeting-update state: events, conferences,
// reminders, preferred time ranges and attendees, all keyed to the event row.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"meeting_assistant_backend/internal/meetingupdate/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("event not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `
	id, user_id, calendar_id, provider_event_id, title, start_date, end_date,
	timezone, duration, notes, priority, transparency, visibility,
	conference_id, location, pre_event_id, post_event_id, is_pre_event,
	is_post_event, is_follow_up, all_day, modifiable,
	recurrence, recurrence_rule, time_blocking,
	user_modified_availability, user_modified_time_blocking,
	user_modified_time_preference, user_modified_reminders,
	user_modified_priority_level, user_modified_duration,
	user_modified_modifiable,
	created_at, updated_at, deleted`

func scanEvent(row pgx.Row) (*Event, error) {
	var (
		ev           Event
		ruleJSON     []byte
		blockingJSON []byte
	)
	err := row.Scan(
		&ev.ID, &ev.UserID, &ev.CalendarID, &ev.ProviderEventID, &ev.Title,
		&ev.StartDate, &ev.EndDate, &ev.Timezone, &ev.Duration, &ev.Notes,
		&ev.Priority, &ev.Transparency, &ev.Visibility, &ev.ConferenceID,
		&ev.Location, &ev.PreEventID, &ev.PostEventID, &ev.IsPreEvent,
		&ev.IsPostEvent, &ev.IsFollowUp, &ev.AllDay, &ev.Modifiable,
		&ev.Recurrence, &ruleJSON, &blockingJSON,
		&ev.UserModifiedAvailability, &ev.UserModifiedTimeBlocking,
		&ev.UserModifiedTimePreference, &ev.UserModifiedReminders,
		&ev.UserModifiedPriorityLevel, &ev.UserModifiedDuration,
		&ev.UserModifiedModifiable,
		&ev.CreatedAt, &ev.UpdatedAt, &ev.Deleted,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(ruleJSON) > 0 {
		var rule domain.RecurrenceRule
		if err := json.Unmarshal(ruleJSON, &rule); err != nil {
			return nil, err
		}
		ev.RecurrenceRule = &rule
	}
	if len(blockingJSON) > 0 {
		var bt domain.BufferTime
		if err := json.Unmarshal(blockingJSON, &bt); err != nil {
			return nil, err
		}
		ev.TimeBlocking = &bt
	}
	return &ev, nil
}

// GetEvent loads one event by its app-local id, scoped to the owning user.
func (r *Repository) GetEvent(ctx context.Context, userID uuid.UUID, eventID string) (*Event, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE id = $1 AND user_id = $2 AND deleted = false
	`, eventID, userID)
	return scanEvent(row)
}

// UpsertEvent writes the full event row, inserting or replacing on id.
func (r *Repository) UpsertEvent(ctx context.Context, ev *Event) error {
	ruleJSON, blockingJSON, err := marshalEventJSON(ev)
	if err != nil {
		return err
	}
	createdAt := rowCreatedAt(ev, time.Now().UTC())
	_, err = r.pool.Exec(ctx, `
		INSERT INTO events (
			id, user_id, calendar_id, provider_event_id, title, start_date,
			end_date, timezone, duration, notes, priority, transparency,
			visibility, conference_id, location, pre_event_id, post_event_id,
			is_pre_event, is_post_event, is_follow_up, all_day,
			modifiable, recurrence, recurrence_rule, time_blocking,
			user_modified_availability, user_modified_time_blocking,
			user_modified_time_preference, user_modified_reminders,
			user_modified_priority_level, user_modified_duration,
			user_modified_modifiable, created_at, updated_at, deleted
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,
			$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,
			now(),false
		)
		ON CONFLICT (id) DO UPDATE SET
			calendar_id = EXCLUDED.calendar_id,
			provider_event_id = EXCLUDED.provider_event_id,
			title = EXCLUDED.title,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			timezone = EXCLUDED.timezone,
			duration = EXCLUDED.duration,
			notes = EXCLUDED.notes,
			priority = EXCLUDED.priority,
			transparency = EXCLUDED.transparency,
			visibility = EXCLUDED.visibility,
			conference_id = EXCLUDED.conference_id,
			location = EXCLUDED.location,
			pre_event_id = EXCLUDED.pre_event_id,
			post_event_id = EXCLUDED.post_event_id,
			is_pre_event = EXCLUDED.is_pre_event,
			is_post_event = EXCLUDED.is_post_event,
			is_follow_up = EXCLUDED.is_follow_up,
			all_day = EXCLUDED.all_day,
			modifiable = EXCLUDED.modifiable,
			recurrence = EXCLUDED.recurrence,
			recurrence_rule = EXCLUDED.recurrence_rule,
			time_blocking = EXCLUDED.time_blocking,
			user_modified_availability = EXCLUDED.user_modified_availability,
			user_modified_time_blocking = EXCLUDED.user_modified_time_blocking,
			user_modified_time_preference = EXCLUDED.user_modified_time_preference,
			user_modified_reminders = EXCLUDED.user_modified_reminders,
			user_modified_priority_level = EXCLUDED.user_modified_priority_level,
			user_modified_duration = EXCLUDED.user_modified_duration,
			user_modified_modifiable = EXCLUDED.user_modified_modifiable,
			updated_at = now(),
			deleted = false
	`,
		ev.ID, ev.UserID, ev.CalendarID, ev.ProviderEventID, ev.Title,
		ev.StartDate, ev.EndDate, ev.Timezone, ev.Duration, ev.Notes,
		ev.Priority, ev.Transparency, ev.Visibility, ev.ConferenceID,
		ev.Location, ev.PreEventID, ev.PostEventID, ev.IsPreEvent,
		ev.IsPostEvent, ev.IsFollowUp, ev.AllDay, ev.Modifiable,
		ev.Recurrence, ruleJSON, blockingJSON,
		ev.UserModifiedAvailability, ev.UserModifiedTimeBlocking,
		ev.UserModifiedTimePreference, ev.UserModifiedReminders,
		ev.UserModifiedPriorityLevel, ev.UserModifiedDuration,
		ev.UserModifiedModifiable, createdAt,
	)
	return err
}

// rowCreatedAt keeps the stored creation time on updates and stamps rows
// synthesized in-process (buffer events carry a zero CreatedAt) on insert.
func rowCreatedAt(ev *Event, now time.Time) time.Time {
	if ev.CreatedAt.IsZero() {
		return now
	}
	return ev.CreatedAt
}

func marshalEventJSON(ev *Event) (ruleJSON, blockingJSON []byte, err error) {
	if ev.RecurrenceRule != nil {
		ruleJSON, err = json.Marshal(ev.RecurrenceRule)
		if err != nil {
			return nil, nil, err
		}
	}
	if ev.TimeBlocking != nil {
		blockingJSON, err = json.Marshal(ev.TimeBlocking)
		if err != nil {
			return nil, nil, err
		}
	}
	return ruleJSON, blockingJSON, nil
}

// DeleteEvent soft-deletes an event row.
func (r *Repository) DeleteEvent(ctx context.Context, userID uuid.UUID, eventID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE events SET deleted = true, updated_at = now()
		WHERE id = $1 AND user_id = $2
	`, eventID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MeetingPreferences loads the user's conferencing identity. A user without
// a stored row falls back to zero values; callers decide what to do then.
func (r *Repository) MeetingPreferences(ctx context.Context, userID uuid.UUID) (MeetingPreferences, error) {
	var prefs MeetingPreferences
	err := r.pool.QueryRow(ctx, `
		SELECT name, primary_email
		FROM meeting_preferences
		WHERE user_id = $1
	`, userID).Scan(&prefs.Name, &prefs.PrimaryEmail)
	if errors.Is(err, pgx.ErrNoRows) {
		return MeetingPreferences{}, nil
	}
	if err != nil {
		return MeetingPreferences{}, err
	}
	return prefs, nil
}

// Touch is a connectivity probe for readiness checks.
func (r *Repository) Touch(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.pool.Ping(ctx)
}
