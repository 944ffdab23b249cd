// Package contacts resolves attendee names and emails against the user's
// stored address book.
package contacts

import (
	"context"
	"encoding/json"
	"errors"

	"meeting_assistant_backend/internal/meetingupdate/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const contactColumns = `id, name, first_name, last_name, emails`

func scanContact(row pgx.Row) (*ports.Contact, error) {
	var (
		contact    ports.Contact
		emailsJSON []byte
	)
	err := row.Scan(&contact.ID, &contact.Name, &contact.FirstName,
		&contact.LastName, &emailsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(emailsJSON) > 0 {
		if err := json.Unmarshal(emailsJSON, &contact.Emails); err != nil {
			return nil, err
		}
	}
	return &contact, nil
}

// FindByName returns the best name match for the user, or nil when none
// exists. Matching is case-insensitive over full, first and last name.
func (r *Repository) FindByName(ctx context.Context, userID uuid.UUID, name string) (*ports.Contact, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE user_id = $1
		  AND (name ILIKE '%' || $2 || '%'
		       OR first_name ILIKE $2
		       OR last_name ILIKE $2)
		ORDER BY (name ILIKE $2) DESC, name ASC
		LIMIT 1
	`, userID, name)
	return scanContact(row)
}

// FindByEmail returns the contact owning the given address, or nil.
func (r *Repository) FindByEmail(ctx context.Context, userID uuid.UUID, email string) (*ports.Contact, error) {
	match, err := json.Marshal([]map[string]string{{"value": email}})
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE user_id = $1 AND emails @> $2::jsonb
		LIMIT 1
	`, userID, match)
	return scanContact(row)
}

var _ ports.ContactDirectory = (*Repository)(nil)
