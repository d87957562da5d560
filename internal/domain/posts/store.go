package posts

import (
	"context"
	"errors"
	"fmt"

	"gamehub/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id int64) (*Post, error)
	List(ctx context.Context) ([]Post, error)
	Update(ctx context.Context, id int64, patch Patch) (*Post, error)
	Delete(ctx context.Context, id int64) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

const postColumns = `id, title, content, image_url, user_id, created_at`

func scanPost(row pgx.Row, post *Post) error {
	return row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.ImageURL,
		&post.UserID,
		&post.CreatedAt,
	)
}

// Create resolves the author and inserts the post in one transaction, so a
// post is never stored for a user that was deleted in between.
func (r *Repository) Create(ctx context.Context, post *Post) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return dbx.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var authorID int64
		err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR SHARE`, post.UserID).Scan(&authorID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrAuthorNotFound
			}
			return fmt.Errorf("lock post author %d: %w", post.UserID, err)
		}

		query := `
			INSERT INTO posts (title, content, image_url, user_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`
		err = tx.QueryRow(ctx, query, post.Title, post.Content, post.ImageURL, post.UserID).
			Scan(&post.ID, &post.CreatedAt)
		if err != nil {
			if dbx.IsForeignKeyViolation(err, "posts_user_id_fkey") {
				return ErrAuthorNotFound
			}
			return fmt.Errorf("create post: %w", err)
		}
		return nil
	})
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Post, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var post Post
	err := scanPost(r.db.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id), &post)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	return &post, nil
}

func (r *Repository) List(ctx context.Context) ([]Post, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	list := []Post{}
	for rows.Next() {
		var post Post
		if err := scanPost(rows, &post); err != nil {
			return nil, err
		}
		list = append(list, post)
	}
	return list, rows.Err()
}

func (r *Repository) Update(ctx context.Context, id int64, patch Patch) (*Post, error) {
	query := `
		UPDATE posts
		SET title = COALESCE($2, title),
		    content = COALESCE($3, content),
		    image_url = COALESCE($4, image_url)
		WHERE id = $1
		RETURNING ` + postColumns

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var post Post
	if err := scanPost(r.db.QueryRow(ctx, query, id, patch.Title, patch.Content, patch.ImageURL), &post); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update post %d: %w", id, err)
	}
	return &post, nil
}

// Delete removes the post; its comments go with it (ON DELETE CASCADE).
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
