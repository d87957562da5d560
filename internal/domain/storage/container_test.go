package storage_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"gamehub/internal/db"
	"gamehub/internal/domain/comments"
	"gamehub/internal/domain/events"
	"gamehub/internal/domain/posts"
	"gamehub/internal/domain/reviews"
	"gamehub/internal/domain/storage"
	"gamehub/internal/domain/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *storage.Container {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:15",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "testuser",
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, pgC)

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	addr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())
	pool, err := db.New(addr, 10, "1m")
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	applied, err := db.Migrate(ctx, pool)
	require.NoError(t, err)
	require.Positive(t, applied)

	again, err := db.Migrate(ctx, pool)
	require.NoError(t, err)
	require.Zero(t, again, "migrations must be idempotent")

	store := storage.NewContainer(pool)
	require.NoError(t, store.Ping(ctx))
	return store
}

func createUser(t *testing.T, store *storage.Container, email, username string) *users.User {
	t.Helper()
	u := &users.User{Email: email}
	if username != "" {
		u.Username = &username
	}
	require.NoError(t, u.Password.Set("secret"))
	require.NoError(t, store.Users.Create(context.Background(), u))
	return u
}

func ptr[T any](v T) *T { return &v }

func TestRepositories(t *testing.T) {
	store := startPostgres(t)
	ctx := context.Background()

	alice := createUser(t, store, "alice@example.com", "alice")
	bob := createUser(t, store, "bob@example.com", "")

	t.Run("users", func(t *testing.T) {
		assert.Equal(t, int64(1), alice.ID)

		dup := &users.User{Email: "alice@example.com"}
		require.NoError(t, dup.Password.Set("x"))
		assert.ErrorIs(t, store.Users.Create(ctx, dup), users.ErrDuplicateEmail)

		dup = &users.User{Email: "other@example.com", Username: ptr("alice")}
		require.NoError(t, dup.Password.Set("x"))
		assert.ErrorIs(t, store.Users.Create(ctx, dup), users.ErrDuplicateUsername)

		got, err := store.Users.Authenticate(ctx, "alice@example.com", "secret")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)

		_, err = store.Users.Authenticate(ctx, "alice@example.com", "wrong")
		assert.ErrorIs(t, err, users.ErrInvalidCredentials)
		_, err = store.Users.Authenticate(ctx, "nobody@example.com", "secret")
		assert.ErrorIs(t, err, users.ErrInvalidCredentials)

		updated, err := store.Users.SetProfileImage(ctx, bob.ID, "https://img/bob.png")
		require.NoError(t, err)
		assert.Equal(t, "https://img/bob.png", *updated.ProfileImage)

		_, err = store.Users.SetProfileImage(ctx, 9999, "x")
		assert.ErrorIs(t, err, users.ErrNotFound)
	})

	t.Run("reviews", func(t *testing.T) {
		r := &reviews.Review{GameID: 42, Title: "Great", Comment: "Loved it", UserID: &alice.ID}
		require.NoError(t, store.Reviews.Create(ctx, r))

		byGame, err := store.Reviews.ListByGame(ctx, 42)
		require.NoError(t, err)
		require.Len(t, byGame, 1)

		updated, err := store.Reviews.Update(ctx, r.ID, reviews.Patch{Title: ptr("Greater")})
		require.NoError(t, err)
		assert.Equal(t, "Greater", updated.Title)
		assert.Equal(t, "Loved it", updated.Comment)

		unchanged, err := store.Reviews.Update(ctx, r.ID, reviews.Patch{})
		require.NoError(t, err)
		assert.Equal(t, updated, unchanged)

		require.NoError(t, store.Reviews.Delete(ctx, r.ID))
		assert.ErrorIs(t, store.Reviews.Delete(ctx, r.ID), reviews.ErrNotFound)
	})

	t.Run("events and attendance", func(t *testing.T) {
		e := &events.Event{Name: "LAN", Description: "bring a PC", Date: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)}
		require.NoError(t, store.Events.Create(ctx, e))

		require.NoError(t, store.Events.Attend(ctx, e.ID, alice.ID))
		assert.ErrorIs(t, store.Events.Attend(ctx, e.ID, alice.ID), events.ErrAlreadyAttending)
		assert.ErrorIs(t, store.Events.Attend(ctx, 9999, alice.ID), events.ErrNotFound)
		assert.ErrorIs(t, store.Events.Attend(ctx, e.ID, 9999), events.ErrUnknownAttendee)

		attendees, err := store.Events.ListAttendees(ctx, e.ID)
		require.NoError(t, err)
		require.Len(t, attendees, 1)
		assert.Equal(t, alice.ID, attendees[0].UserID)

		_, err = store.Events.ListAttendees(ctx, 9999)
		assert.ErrorIs(t, err, events.ErrNotFound)
	})

	t.Run("concurrent attend admits one", func(t *testing.T) {
		e := &events.Event{Name: "Race", Description: "", Date: time.Now().UTC()}
		require.NoError(t, store.Events.Create(ctx, e))

		const n = 8
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = store.Events.Attend(ctx, e.ID, bob.ID)
			}()
		}
		wg.Wait()

		ok, dup := 0, 0
		for _, err := range errs {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, events.ErrAlreadyAttending):
				dup++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, ok)
		assert.Equal(t, n-1, dup)
	})

	t.Run("posts and comments", func(t *testing.T) {
		p := &posts.Post{Title: "Hi", Content: "first", UserID: alice.ID}
		require.NoError(t, store.Posts.Create(ctx, p))
		assert.NotZero(t, p.ID)

		orphan := &posts.Post{Title: "x", Content: "y", UserID: 9999}
		assert.ErrorIs(t, store.Posts.Create(ctx, orphan), posts.ErrAuthorNotFound)

		c := &comments.Comment{Content: "nice", UserID: bob.ID, PostID: p.ID}
		require.NoError(t, store.Comments.Create(ctx, c))

		missing := &comments.Comment{Content: "nice", UserID: bob.ID, PostID: 9999}
		assert.ErrorIs(t, store.Comments.Create(ctx, missing), comments.ErrPostNotFound)

		updated, err := store.Comments.Update(ctx, c.ID, comments.Patch{Content: ptr("nicer")})
		require.NoError(t, err)
		assert.Equal(t, "nicer", updated.Content)

		require.NoError(t, store.Posts.Delete(ctx, p.ID))
		_, err = store.Comments.GetByID(ctx, c.ID)
		assert.ErrorIs(t, err, comments.ErrNotFound, "comments are removed with their post")

		list, err := store.Comments.ListByPost(ctx, p.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.NotNil(t, list)
	})

	t.Run("push tokens", func(t *testing.T) {
		token := "ExponentPushToken[abc]"
		require.NoError(t, store.PushTokens.Add(ctx, alice.ID, token, []byte(`{"os":"ios"}`)))
		require.NoError(t, store.PushTokens.Add(ctx, bob.ID, token, nil))

		tokens, err := store.PushTokens.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{token}, tokens)

		pruned, err := store.PushTokens.PruneStale(ctx, time.Hour)
		require.NoError(t, err)
		assert.Zero(t, pruned)

		require.NoError(t, store.PushTokens.RemoveTokens(ctx, []string{token}))
		tokens, err = store.PushTokens.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, tokens)
	})
}
