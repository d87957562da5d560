package main

import (
	"net/http"
	"testing"

	"gamehub/internal/domain/reviews"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviews(t *testing.T) {
	db := newMemDB()
	app := newTestApplication(t, db)
	mux := app.mount()

	aliceID, alice := signupAndLogin(t, mux, "alice", "alice@example.com", "pw")
	_, bob := signupAndLogin(t, mux, "bob", "bob@example.com", "pw")

	rr := do(t, mux, request{method: http.MethodPost, path: "/api/reviews/3498", token: alice, body: map[string]string{
		"title":   "Masterpiece",
		"comment": "Played it twice",
	}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	review := decode[reviews.Review](t, rr)
	assert.EqualValues(t, 3498, review.GameID)
	require.NotNil(t, review.UserID)
	assert.Equal(t, aliceID, *review.UserID)

	do(t, mux, request{method: http.MethodPost, path: "/api/reviews/12", token: bob, body: map[string]string{
		"title":   "Meh",
		"comment": "Too short",
	}})

	t.Run("create rejects", func(t *testing.T) {
		tests := []struct {
			name    string
			token   string
			body    map[string]string
			want    int
			message string
		}{
			{"missing title", alice, map[string]string{"comment": "c"}, http.StatusBadRequest, "title is required"},
			{"missing comment", alice, map[string]string{"title": "t"}, http.StatusBadRequest, "comment is required"},
			{"anonymous", "", map[string]string{"title": "t", "comment": "c"}, http.StatusUnauthorized, "unauthorized"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rr := do(t, mux, request{method: http.MethodPost, path: "/api/reviews/3498", token: tt.token, body: tt.body})
				require.Equal(t, tt.want, rr.Code, rr.Body.String())
				assert.Equal(t, tt.message, decode[errorBody](t, rr).Message)
			})
		}
	})

	t.Run("list by game", func(t *testing.T) {
		rr := do(t, mux, request{method: http.MethodGet, path: "/api/reviews/3498"})
		require.Equal(t, http.StatusOK, rr.Code)
		list := decode[[]reviews.Review](t, rr)
		require.Len(t, list, 1)
		assert.Equal(t, "Masterpiece", list[0].Title)

		rr = do(t, mux, request{method: http.MethodGet, path: "/api/reviews/x"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("list mine", func(t *testing.T) {
		rr := do(t, mux, request{method: http.MethodGet, path: "/api/reviews", token: bob})
		require.Equal(t, http.StatusOK, rr.Code)
		list := decode[[]reviews.Review](t, rr)
		require.Len(t, list, 1)
		assert.Equal(t, "Meh", list[0].Title)

		rr = do(t, mux, request{method: http.MethodGet, path: "/api/reviews"})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("update", func(t *testing.T) {
		rr := do(t, mux, request{method: http.MethodPut, path: "/api/reviews/1", body: map[string]any{}})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, review.Title, decode[reviews.Review](t, rr).Title)

		rr = do(t, mux, request{method: http.MethodPut, path: "/api/reviews/1", body: map[string]string{"title": "Still a masterpiece"}})
		require.Equal(t, http.StatusOK, rr.Code)
		updated := decode[reviews.Review](t, rr)
		assert.Equal(t, "Still a masterpiece", updated.Title)
		assert.Equal(t, "Played it twice", updated.Comment)
	})

	t.Run("delete", func(t *testing.T) {
		rr := do(t, mux, request{method: http.MethodDelete, path: "/api/reviews/1"})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Review deleted successfully", decode[map[string]string](t, rr)["message"])

		_, err := app.store.Reviews.GetByID(t.Context(), review.ID)
		assert.ErrorIs(t, err, reviews.ErrNotFound)
	})

	t.Run("user delete cascades", func(t *testing.T) {
		rr := do(t, mux, request{method: http.MethodPost, path: "/api/reviews/12", token: alice, body: map[string]string{
			"title":   "Loved it",
			"comment": "Short but sweet",
		}})
		require.Equal(t, http.StatusCreated, rr.Code)

		db.deleteUser(aliceID)

		rr = do(t, mux, request{method: http.MethodGet, path: "/api/reviews/12"})
		require.Equal(t, http.StatusOK, rr.Code)
		list := decode[[]reviews.Review](t, rr)
		require.Len(t, list, 1)
		assert.Equal(t, "Meh", list[0].Title)
	})
}

func TestReviewsGameIDZero(t *testing.T) {
	app := newTestApplication(t, newMemDB())
	mux := app.mount()

	_, alice := signupAndLogin(t, mux, "alice", "alice@example.com", "pw")

	rr := do(t, mux, request{method: http.MethodGet, path: "/api/reviews/0"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Empty(t, decode[[]reviews.Review](t, rr))

	rr = do(t, mux, request{method: http.MethodPost, path: "/api/reviews/0", token: alice, body: map[string]string{
		"title":   "Untitled",
		"comment": "Catalogue entry zero",
	}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Zero(t, decode[reviews.Review](t, rr).GameID)

	rr = do(t, mux, request{method: http.MethodGet, path: "/api/reviews/0"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]reviews.Review](t, rr), 1)

	rr = do(t, mux, request{method: http.MethodGet, path: "/api/reviews/-1"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid game id", decode[errorBody](t, rr).Message)

	// review ids still start at 1
	rr = do(t, mux, request{method: http.MethodDelete, path: "/api/reviews/0", token: alice})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteMissingResource(t *testing.T) {
	db := newMemDB()
	app := newTestApplication(t, db)
	mux := app.mount()

	_, token := signupAndLogin(t, mux, "alice", "alice@example.com", "pw")
	createPost(t, mux, token, map[string]string{"title": "t", "content": "c"})
	createEvent(t, mux, map[string]string{"name": "n", "description": "d", "date": "2026-12-05"})

	for _, path := range []string{
		"/api/reviews/77",
		"/api/events/77",
		"/api/posts/77",
		"/api/comments/77",
	} {
		t.Run(path, func(t *testing.T) {
			rr := do(t, mux, request{method: http.MethodDelete, path: path, token: token})
			require.Equal(t, http.StatusNotFound, rr.Code, rr.Body.String())
			assert.Equal(t, http.StatusNotFound, decode[errorBody](t, rr).Status)
		})
	}

	postList, err := app.store.Posts.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, postList, 1)
	eventList, err := app.store.Events.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, eventList, 1)
}
