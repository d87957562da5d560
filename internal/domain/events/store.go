package events

import (
	"context"
	"errors"
	"fmt"

	"gamehub/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	List(ctx context.Context) ([]Event, error)
	Update(ctx context.Context, id int64, patch Patch) (*Event, error)
	Delete(ctx context.Context, id int64) error
	Attend(ctx context.Context, eventID, userID int64) error
	ListAttendees(ctx context.Context, eventID int64) ([]Attendee, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

const eventColumns = `id, name, description, date, image_url, created_at`

func scanEvent(row pgx.Row, event *Event) error {
	return row.Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Date,
		&event.ImageURL,
		&event.CreatedAt,
	)
}

func (r *Repository) Create(ctx context.Context, event *Event) error {
	query := `
		INSERT INTO events (name, description, date, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := r.db.QueryRow(ctx, query, event.Name, event.Description, event.Date, event.ImageURL).
		Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var event Event
	if err := scanEvent(r.db.QueryRow(ctx, query, id), &event); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event %d: %w", id, err)
	}
	return &event, nil
}

func (r *Repository) List(ctx context.Context) ([]Event, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	list := []Event{}
	for rows.Next() {
		var event Event
		if err := scanEvent(rows, &event); err != nil {
			return nil, err
		}
		list = append(list, event)
	}
	return list, rows.Err()
}

func (r *Repository) Update(ctx context.Context, id int64, patch Patch) (*Event, error) {
	query := `
		UPDATE events
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    date = COALESCE($4, date),
		    image_url = COALESCE($5, image_url)
		WHERE id = $1
		RETURNING ` + eventColumns

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var event Event
	row := r.db.QueryRow(ctx, query, id, patch.Name, patch.Description, patch.Date, patch.ImageURL)
	if err := scanEvent(row, &event); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update event %d: %w", id, err)
	}
	return &event, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Attend adds userID to the attendees of eventID. The existence check and the
// insert share one transaction, and the (event_id, user_id) primary key makes
// the insert a test-and-set: of two concurrent calls exactly one succeeds and
// the other gets ErrAlreadyAttending.
func (r *Repository) Attend(ctx context.Context, eventID, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return dbx.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx, `SELECT id FROM events WHERE id = $1 FOR SHARE`, eventID).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock event %d: %w", eventID, err)
		}

		tag, err := tx.Exec(ctx, `
			INSERT INTO event_attendees (event_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (event_id, user_id) DO NOTHING
		`, eventID, userID)
		if err != nil {
			if dbx.IsForeignKeyViolation(err, "event_attendees_user_id_fkey") {
				return ErrUnknownAttendee
			}
			return fmt.Errorf("attend event %d: %w", eventID, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrAlreadyAttending
		}
		return nil
	})
}

func (r *Repository) ListAttendees(ctx context.Context, eventID int64) ([]Attendee, error) {
	if _, err := r.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	query := `
		SELECT u.id, u.username, u.profile_image, ea.joined_at
		FROM event_attendees ea
		JOIN users u ON u.id = ea.user_id
		WHERE ea.event_id = $1
		ORDER BY ea.joined_at, u.id
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees of event %d: %w", eventID, err)
	}
	defer rows.Close()

	list := []Attendee{}
	for rows.Next() {
		var a Attendee
		if err := rows.Scan(&a.UserID, &a.Username, &a.ProfileImage, &a.JoinedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
