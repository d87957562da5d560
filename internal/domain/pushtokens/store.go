package pushtokens

import (
	"context"
	"fmt"
	"time"

	"gamehub/internal/infra/dbx"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Add(ctx context.Context, userID int64, token string, deviceInfo []byte) error
	Remove(ctx context.Context, userID int64, token string) error
	RemoveTokens(ctx context.Context, tokens []string) error
	ListAll(ctx context.Context) ([]string, error)
	PruneStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

// Add upserts token and device info and bumps last_updated.
func (r *Repository) Add(ctx context.Context, userID int64, token string, deviceInfo []byte) error {
	if !ValidToken(token) {
		return ErrInvalidToken
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	q := `
		INSERT INTO user_push_tokens (user_id, expo_push_token, device_info, last_updated)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, expo_push_token)
		DO UPDATE SET device_info = EXCLUDED.device_info, last_updated = NOW()
	`
	if len(deviceInfo) == 0 {
		deviceInfo = nil
	}
	if _, err := r.db.Exec(ctx, q, userID, token, deviceInfo); err != nil {
		if dbx.IsForeignKeyViolation(err, "user_push_tokens_user_id_fkey") {
			return ErrUserNotFound
		}
		return fmt.Errorf("add push token: %w", err)
	}
	return nil
}

func (r *Repository) Remove(ctx context.Context, userID int64, token string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM user_push_tokens WHERE user_id = $1 AND expo_push_token = $2`, userID, token)
	if err != nil {
		return fmt.Errorf("remove push token: %w", err)
	}
	return nil
}

// RemoveTokens deletes every row holding one of tokens, whichever user owns it.
// The Expo broadcaster calls it for devices reported as DeviceNotRegistered.
func (r *Repository) RemoveTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM user_push_tokens WHERE expo_push_token = ANY($1)`, tokens)
	if err != nil {
		return fmt.Errorf("remove push tokens: %w", err)
	}
	return nil
}

// ListAll returns every distinct registered token.
func (r *Repository) ListAll(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT DISTINCT expo_push_token FROM user_push_tokens ORDER BY expo_push_token`)
	if err != nil {
		return nil, fmt.Errorf("list push tokens: %w", err)
	}
	defer rows.Close()

	tokens := []string{}
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// PruneStale deletes tokens not refreshed within olderThan and reports how
// many were removed.
func (r *Repository) PruneStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	interval := fmt.Sprintf("%d seconds", int64(olderThan.Seconds()))
	tag, err := r.db.Exec(ctx, `DELETE FROM user_push_tokens WHERE last_updated < NOW() - $1::interval`, interval)
	if err != nil {
		return 0, fmt.Errorf("prune push tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
