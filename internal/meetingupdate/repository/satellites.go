package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetConference loads a conference row by id.
func (r *Repository) GetConference(ctx context.Context, userID uuid.UUID, conferenceID string) (*Conference, error) {
	var conf Conference
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, calendar_id, app, name, notes, join_url,
		       start_url, is_host, request_id, created_at, updated_at, deleted
		FROM conferences
		WHERE id = $1 AND user_id = $2 AND deleted = false
	`, conferenceID, userID).Scan(
		&conf.ID, &conf.UserID, &conf.CalendarID, &conf.App, &conf.Name,
		&conf.Notes, &conf.JoinURL, &conf.StartURL, &conf.IsHost,
		&conf.RequestID, &conf.CreatedAt, &conf.UpdatedAt, &conf.Deleted,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conf, nil
}

// UpsertConference writes a conference row, inserting or replacing on id.
func (r *Repository) UpsertConference(ctx context.Context, conf *Conference) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO conferences (
			id, user_id, calendar_id, app, name, notes, join_url, start_url,
			is_host, request_id, created_at, updated_at, deleted
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now(),false)
		ON CONFLICT (id) DO UPDATE SET
			app = EXCLUDED.app,
			name = EXCLUDED.name,
			notes = EXCLUDED.notes,
			join_url = EXCLUDED.join_url,
			start_url = EXCLUDED.start_url,
			is_host = EXCLUDED.is_host,
			request_id = EXCLUDED.request_id,
			updated_at = now(),
			deleted = false
	`, conf.ID, conf.UserID, conf.CalendarID, conf.App, conf.Name, conf.Notes,
		conf.JoinURL, conf.StartURL, conf.IsHost, conf.RequestID, conf.CreatedAt)
	return err
}

// DeleteConference soft-deletes a conference row.
func (r *Repository) DeleteConference(ctx context.Context, userID uuid.UUID, conferenceID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE conferences SET deleted = true, updated_at = now()
		WHERE id = $1 AND user_id = $2
	`, conferenceID, userID)
	return err
}

// ListReminders returns the active reminders for an event.
func (r *Repository) ListReminders(ctx context.Context, userID uuid.UUID, eventID string) ([]Reminder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, event_id, timezone, minutes, use_default,
		       created_at, updated_at, deleted
		FROM reminders
		WHERE event_id = $1 AND user_id = $2 AND deleted = false
		ORDER BY minutes ASC
	`, eventID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Reminder, 0)
	for rows.Next() {
		var rem Reminder
		if err := rows.Scan(&rem.ID, &rem.UserID, &rem.EventID, &rem.Timezone,
			&rem.Minutes, &rem.UseDefault, &rem.CreatedAt, &rem.UpdatedAt,
			&rem.Deleted); err != nil {
			return nil, err
		}
		items = append(items, rem)
	}
	return items, rows.Err()
}

// DeleteReminders removes every reminder for the event. Replacement is
// delete-then-insert; the insert happens later in the commit pipeline.
func (r *Repository) DeleteReminders(ctx context.Context, userID uuid.UUID, eventID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM reminders WHERE event_id = $1 AND user_id = $2
	`, eventID, userID)
	return err
}

// InsertReminders appends reminder rows for an event.
func (r *Repository) InsertReminders(ctx context.Context, reminders []Reminder) error {
	for _, rem := range reminders {
		if _, err := r.pool.Exec(ctx, `
			INSERT INTO reminders (
				id, user_id, event_id, timezone, minutes, use_default,
				created_at, updated_at, deleted
			) VALUES ($1,$2,$3,$4,$5,$6,now(),now(),false)
		`, rem.ID, rem.UserID, rem.EventID, rem.Timezone, rem.Minutes,
			rem.UseDefault); err != nil {
			return err
		}
	}
	return nil
}

// DeletePreferredTimeRanges removes every stored time preference for the event.
func (r *Repository) DeletePreferredTimeRanges(ctx context.Context, userID uuid.UUID, eventID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM preferred_time_ranges WHERE event_id = $1 AND user_id = $2
	`, eventID, userID)
	return err
}

// InsertPreferredTimeRanges appends time-preference rows for an event.
func (r *Repository) InsertPreferredTimeRanges(ctx context.Context, ranges []PreferredTimeRange) error {
	for _, tr := range ranges {
		if _, err := r.pool.Exec(ctx, `
			INSERT INTO preferred_time_ranges (
				id, user_id, event_id, day_of_week, start_time, end_time,
				created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,now(),now())
		`, tr.ID, tr.UserID, tr.EventID, tr.DayOfWeek, tr.StartTime,
			tr.EndTime); err != nil {
			return err
		}
	}
	return nil
}

// ListAttendees returns the active attendees for an event.
func (r *Repository) ListAttendees(ctx context.Context, userID uuid.UUID, eventID string) ([]Attendee, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, event_id, name, contact_id, emails,
		       created_at, updated_at, deleted
		FROM attendees
		WHERE event_id = $1 AND user_id = $2 AND deleted = false
		ORDER BY created_at ASC
	`, eventID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Attendee, 0)
	for rows.Next() {
		var (
			att        Attendee
			emailsJSON []byte
		)
		if err := rows.Scan(&att.ID, &att.UserID, &att.EventID, &att.Name,
			&att.ContactID, &emailsJSON, &att.CreatedAt, &att.UpdatedAt,
			&att.Deleted); err != nil {
			return nil, err
		}
		if len(emailsJSON) > 0 {
			if err := json.Unmarshal(emailsJSON, &att.Emails); err != nil {
				return nil, err
			}
		}
		items = append(items, att)
	}
	return items, rows.Err()
}

// InsertAttendees appends attendee rows for an event.
func (r *Repository) InsertAttendees(ctx context.Context, attendees []Attendee) error {
	for _, att := range attendees {
		emailsJSON, err := json.Marshal(att.Emails)
		if err != nil {
			return err
		}
		if _, err := r.pool.Exec(ctx, `
			INSERT INTO attendees (
				id, user_id, event_id, name, contact_id, emails,
				created_at, updated_at, deleted
			) VALUES ($1,$2,$3,$4,$5,$6,now(),now(),false)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				contact_id = EXCLUDED.contact_id,
				emails = EXCLUDED.emails,
				updated_at = now(),
				deleted = false
		`, att.ID, att.UserID, att.EventID, att.Name, att.ContactID,
			emailsJSON); err != nil {
			return err
		}
	}
	return nil
}
