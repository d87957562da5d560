package comments

import (
	"context"
	"errors"
	"fmt"

	"gamehub/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Create(ctx context.Context, comment *Comment) error
	GetByID(ctx context.Context, id int64) (*Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]Comment, error)
	Update(ctx context.Context, id int64, patch Patch) (*Comment, error)
	Delete(ctx context.Context, id int64) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

const commentColumns = `id, content, user_id, post_id, created_at`

func scanComment(row pgx.Row, c *Comment) error {
	return row.Scan(&c.ID, &c.Content, &c.UserID, &c.PostID, &c.CreatedAt)
}

// Create locks the parent post for the duration of the insert so a concurrent
// delete of the post cannot leave the comment orphaned.
func (r *Repository) Create(ctx context.Context, comment *Comment) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return dbx.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var postID int64
		err := tx.QueryRow(ctx, `SELECT id FROM posts WHERE id = $1 FOR SHARE`, comment.PostID).Scan(&postID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrPostNotFound
			}
			return fmt.Errorf("lock post %d: %w", comment.PostID, err)
		}

		query := `
			INSERT INTO comments (content, user_id, post_id)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`
		err = tx.QueryRow(ctx, query, comment.Content, comment.UserID, comment.PostID).
			Scan(&comment.ID, &comment.CreatedAt)
		if err != nil {
			switch {
			case dbx.IsForeignKeyViolation(err, "comments_user_id_fkey"):
				return ErrAuthorNotFound
			case dbx.IsForeignKeyViolation(err, "comments_post_id_fkey"):
				return ErrPostNotFound
			}
			return fmt.Errorf("create comment: %w", err)
		}
		return nil
	})
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var c Comment
	err := scanComment(r.db.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id), &c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get comment %d: %w", id, err)
	}
	return &c, nil
}

// ListByPost returns an empty list for posts without comments, including
// posts that do not exist.
func (r *Repository) ListByPost(ctx context.Context, postID int64) ([]Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+commentColumns+` FROM comments WHERE post_id = $1 ORDER BY created_at, id`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments of post %d: %w", postID, err)
	}
	defer rows.Close()

	list := []Comment{}
	for rows.Next() {
		var c Comment
		if err := scanComment(rows, &c); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *Repository) Update(ctx context.Context, id int64, patch Patch) (*Comment, error) {
	query := `
		UPDATE comments
		SET content = COALESCE($2, content)
		WHERE id = $1
		RETURNING ` + commentColumns

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var c Comment
	if err := scanComment(r.db.QueryRow(ctx, query, id, patch.Content), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update comment %d: %w", id, err)
	}
	return &c, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
