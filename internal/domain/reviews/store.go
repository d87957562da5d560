package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Create(ctx context.Context, review *Review) error
	GetByID(ctx context.Context, id int64) (*Review, error)
	ListByGame(ctx context.Context, gameID int64) ([]Review, error)
	ListByUser(ctx context.Context, userID int64) ([]Review, error)
	Update(ctx context.Context, id int64, patch Patch) (*Review, error)
	Delete(ctx context.Context, id int64) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

const reviewColumns = `id, game_id, title, comment, user_id, created_at`

func scanReview(row pgx.Row, review *Review) error {
	return row.Scan(
		&review.ID,
		&review.GameID,
		&review.Title,
		&review.Comment,
		&review.UserID,
		&review.CreatedAt,
	)
}

func (r *Repository) Create(ctx context.Context, review *Review) error {
	query := `
		INSERT INTO reviews (game_id, title, comment, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := r.db.QueryRow(ctx, query, review.GameID, review.Title, review.Comment, review.UserID).
		Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var review Review
	if err := scanReview(r.db.QueryRow(ctx, query, id), &review); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get review %d: %w", id, err)
	}
	return &review, nil
}

func (r *Repository) ListByGame(ctx context.Context, gameID int64) ([]Review, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE game_id = $1 ORDER BY id`, gameID)
}

func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]Review, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *Repository) list(ctx context.Context, query string, arg int64) ([]Review, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	list := []Review{}
	for rows.Next() {
		var review Review
		if err := scanReview(rows, &review); err != nil {
			return nil, err
		}
		list = append(list, review)
	}
	return list, rows.Err()
}

// Update merges patch into the stored review in a single statement.
func (r *Repository) Update(ctx context.Context, id int64, patch Patch) (*Review, error) {
	query := `
		UPDATE reviews
		SET title = COALESCE($2, title),
		    comment = COALESCE($3, comment)
		WHERE id = $1
		RETURNING ` + reviewColumns

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var review Review
	if err := scanReview(r.db.QueryRow(ctx, query, id, patch.Title, patch.Comment), &review); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update review %d: %w", id, err)
	}
	return &review, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
