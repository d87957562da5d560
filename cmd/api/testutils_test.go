package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"gamehub/internal/auth"
	"gamehub/internal/domain/comments"
	"gamehub/internal/domain/events"
	"gamehub/internal/domain/posts"
	"gamehub/internal/domain/pushtokens"
	"gamehub/internal/domain/reviews"
	"gamehub/internal/domain/storage"
	"gamehub/internal/domain/users"
	"gamehub/internal/notifications"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memDB backs the in-memory stores. The stores share it so that foreign keys
// and cascades behave like the database does.
type memDB struct {
	mu        sync.Mutex
	seq       map[string]int64
	users     map[int64]users.User
	reviews   map[int64]reviews.Review
	events    map[int64]events.Event
	attendees map[int64][]events.Attendee
	posts     map[int64]posts.Post
	comments  map[int64]comments.Comment
	tokens    map[string]int64
}

func newMemDB() *memDB {
	return &memDB{
		seq:       map[string]int64{},
		users:     map[int64]users.User{},
		reviews:   map[int64]reviews.Review{},
		events:    map[int64]events.Event{},
		attendees: map[int64][]events.Attendee{},
		posts:     map[int64]posts.Post{},
		comments:  map[int64]comments.Comment{},
		tokens:    map[string]int64{},
	}
}

func (db *memDB) next(table string) int64 {
	db.seq[table]++
	return db.seq[table]
}

func (db *memDB) container() *storage.Container {
	return &storage.Container{
		Users:      &memUsers{db},
		Reviews:    &memReviews{db},
		Events:     &memEvents{db},
		Posts:      &memPosts{db},
		Comments:   &memComments{db},
		PushTokens: &memPushTokens{db},
	}
}

type memUsers struct{ db *memDB }

func (s *memUsers) Create(_ context.Context, user *users.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, u := range s.db.users {
		if u.Email == user.Email {
			return users.ErrDuplicateEmail
		}
		if u.Username != nil && user.Username != nil && *u.Username == *user.Username {
			return users.ErrDuplicateUsername
		}
	}
	user.ID = s.db.next("users")
	user.CreatedAt = time.Now()
	s.db.users[user.ID] = *user
	return nil
}

func (s *memUsers) GetByID(_ context.Context, id int64) (*users.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return &u, nil
}

func (s *memUsers) GetByEmail(_ context.Context, email string) (*users.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, u := range s.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (s *memUsers) List(context.Context) ([]users.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	list := []users.User{}
	for _, u := range s.db.users {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (s *memUsers) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, users.ErrInvalidCredentials
	}
	if err := u.Password.Compare(password); err != nil {
		return nil, users.ErrInvalidCredentials
	}
	return u, nil
}

func (s *memUsers) SetProfileImage(_ context.Context, id int64, url string) (*users.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	u.ProfileImage = &url
	s.db.users[id] = u
	return &u, nil
}

// deleteUser drops a user and everything that cascades from it.
func (db *memDB) deleteUser(id int64) {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.users, id)
	for rid, r := range db.reviews {
		if r.UserID != nil && *r.UserID == id {
			delete(db.reviews, rid)
		}
	}
	for pid, p := range db.posts {
		if p.UserID == id {
			delete(db.posts, pid)
		}
	}
	for cid, c := range db.comments {
		if c.UserID == id || db.posts[c.PostID].ID == 0 {
			delete(db.comments, cid)
		}
	}
}

type memReviews struct{ db *memDB }

func (s *memReviews) Create(_ context.Context, review *reviews.Review) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	review.ID = s.db.next("reviews")
	review.CreatedAt = time.Now()
	s.db.reviews[review.ID] = *review
	return nil
}

func (s *memReviews) GetByID(_ context.Context, id int64) (*reviews.Review, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	r, ok := s.db.reviews[id]
	if !ok {
		return nil, reviews.ErrNotFound
	}
	return &r, nil
}

func (s *memReviews) list(keep func(reviews.Review) bool) []reviews.Review {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	list := []reviews.Review{}
	for _, r := range s.db.reviews {
		if keep(r) {
			list = append(list, r)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (s *memReviews) ListByGame(_ context.Context, gameID int64) ([]reviews.Review, error) {
	return s.list(func(r reviews.Review) bool { return r.GameID == gameID }), nil
}

func (s *memReviews) ListByUser(_ context.Context, userID int64) ([]reviews.Review, error) {
	return s.list(func(r reviews.Review) bool { return r.UserID != nil && *r.UserID == userID }), nil
}

func (s *memReviews) Update(_ context.Context, id int64, patch reviews.Patch) (*reviews.Review, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	r, ok := s.db.reviews[id]
	if !ok {
		return nil, reviews.ErrNotFound
	}
	patch.Apply(&r)
	s.db.reviews[id] = r
	return &r, nil
}

func (s *memReviews) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.reviews[id]; !ok {
		return reviews.ErrNotFound
	}
	delete(s.db.reviews, id)
	return nil
}

type memEvents struct{ db *memDB }

func (s *memEvents) Create(_ context.Context, event *events.Event) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	event.ID = s.db.next("events")
	event.CreatedAt = time.Now()
	s.db.events[event.ID] = *event
	return nil
}

func (s *memEvents) GetByID(_ context.Context, id int64) (*events.Event, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	e, ok := s.db.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	return &e, nil
}

func (s *memEvents) List(context.Context) ([]events.Event, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	list := []events.Event{}
	for _, e := range s.db.events {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Date.Equal(list[j].Date) {
			return list[i].ID < list[j].ID
		}
		return list[i].Date.Before(list[j].Date)
	})
	return list, nil
}

func (s *memEvents) Update(_ context.Context, id int64, patch events.Patch) (*events.Event, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	e, ok := s.db.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	patch.Apply(&e)
	s.db.events[id] = e
	return &e, nil
}

func (s *memEvents) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.events[id]; !ok {
		return events.ErrNotFound
	}
	delete(s.db.events, id)
	delete(s.db.attendees, id)
	return nil
}

func (s *memEvents) Attend(_ context.Context, eventID, userID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.events[eventID]; !ok {
		return events.ErrNotFound
	}
	u, ok := s.db.users[userID]
	if !ok {
		return events.ErrUnknownAttendee
	}
	for _, a := range s.db.attendees[eventID] {
		if a.UserID == userID {
			return events.ErrAlreadyAttending
		}
	}
	s.db.attendees[eventID] = append(s.db.attendees[eventID], events.Attendee{
		UserID:       userID,
		Username:     u.Username,
		ProfileImage: u.ProfileImage,
		JoinedAt:     time.Now(),
	})
	return nil
}

func (s *memEvents) ListAttendees(_ context.Context, eventID int64) ([]events.Attendee, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.events[eventID]; !ok {
		return nil, events.ErrNotFound
	}
	return append([]events.Attendee{}, s.db.attendees[eventID]...), nil
}

type memPosts struct{ db *memDB }

func (s *memPosts) Create(_ context.Context, post *posts.Post) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[post.UserID]; !ok {
		return posts.ErrAuthorNotFound
	}
	post.ID = s.db.next("posts")
	post.CreatedAt = time.Now()
	s.db.posts[post.ID] = *post
	return nil
}

func (s *memPosts) GetByID(_ context.Context, id int64) (*posts.Post, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.posts[id]
	if !ok {
		return nil, posts.ErrNotFound
	}
	return &p, nil
}

func (s *memPosts) List(context.Context) ([]posts.Post, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	list := []posts.Post{}
	for _, p := range s.db.posts {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (s *memPosts) Update(_ context.Context, id int64, patch posts.Patch) (*posts.Post, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.posts[id]
	if !ok {
		return nil, posts.ErrNotFound
	}
	patch.Apply(&p)
	s.db.posts[id] = p
	return &p, nil
}

func (s *memPosts) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.posts[id]; !ok {
		return posts.ErrNotFound
	}
	delete(s.db.posts, id)
	for cid, c := range s.db.comments {
		if c.PostID == id {
			delete(s.db.comments, cid)
		}
	}
	return nil
}

type memComments struct{ db *memDB }

func (s *memComments) Create(_ context.Context, comment *comments.Comment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.posts[comment.PostID]; !ok {
		return comments.ErrPostNotFound
	}
	if _, ok := s.db.users[comment.UserID]; !ok {
		return comments.ErrAuthorNotFound
	}
	comment.ID = s.db.next("comments")
	comment.CreatedAt = time.Now()
	s.db.comments[comment.ID] = *comment
	return nil
}

func (s *memComments) GetByID(_ context.Context, id int64) (*comments.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	c, ok := s.db.comments[id]
	if !ok {
		return nil, comments.ErrNotFound
	}
	return &c, nil
}

func (s *memComments) ListByPost(_ context.Context, postID int64) ([]comments.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	list := []comments.Comment{}
	for _, c := range s.db.comments {
		if c.PostID == postID {
			list = append(list, c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (s *memComments) Update(_ context.Context, id int64, patch comments.Patch) (*comments.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	c, ok := s.db.comments[id]
	if !ok {
		return nil, comments.ErrNotFound
	}
	patch.Apply(&c)
	s.db.comments[id] = c
	return &c, nil
}

func (s *memComments) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.comments[id]; !ok {
		return comments.ErrNotFound
	}
	delete(s.db.comments, id)
	return nil
}

type memPushTokens struct{ db *memDB }

func (s *memPushTokens) Add(_ context.Context, userID int64, token string, _ []byte) error {
	if !pushtokens.ValidToken(token) {
		return pushtokens.ErrInvalidToken
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[userID]; !ok {
		return pushtokens.ErrUserNotFound
	}
	s.db.tokens[token] = userID
	return nil
}

func (s *memPushTokens) Remove(_ context.Context, userID int64, token string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if s.db.tokens[token] == userID {
		delete(s.db.tokens, token)
	}
	return nil
}

func (s *memPushTokens) RemoveTokens(_ context.Context, tokens []string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, t := range tokens {
		delete(s.db.tokens, t)
	}
	return nil
}

func (s *memPushTokens) ListAll(context.Context) ([]string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	list := []string{}
	for t := range s.db.tokens {
		list = append(list, t)
	}
	sort.Strings(list)
	return list, nil
}

func (s *memPushTokens) PruneStale(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []notifications.Notification
}

func (p *recordingPublisher) Notify(n notifications.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
}

func (p *recordingPublisher) notifications() []notifications.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notifications.Notification{}, p.sent...)
}

const testSecret = "test-secret"

func newTestApplication(t *testing.T, db *memDB) *application {
	t.Helper()

	cfg := config{
		Env: "test",
		Auth: authConfig{
			Basic: basicConfig{User: "admin", Pass: "secret"},
			Token: tokenConfig{Secret: testSecret, Exp: time.Hour, Iss: "gamehub"},
		},
	}

	return &application{
		config:        cfg,
		store:         db.container(),
		logger:        zap.NewNop().Sugar(),
		authenticator: auth.NewJWTAuthenticator(testSecret, "gamehub", "gamehub", time.Hour),
		notifier:      notifications.NopPublisher{},
	}
}

// request is one call against the mounted router.
type request struct {
	method string
	path   string
	body   any
	token  string
}

func do(t *testing.T, mux http.Handler, req request) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if req.body != nil {
		switch b := req.body.(type) {
		case string:
			body.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&body).Encode(b))
		}
	}

	r := httptest.NewRequest(req.method, req.path, &body)
	r.Header.Set("Content-Type", "application/json")
	if req.token != "" {
		r.Header.Set("Authorization", "Bearer "+req.token)
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, r)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// signupAndLogin registers a user and returns its id and access token.
func signupAndLogin(t *testing.T, mux http.Handler, username, email, password string) (int64, string) {
	t.Helper()

	rr := do(t, mux, request{method: http.MethodPost, path: "/api/signup", body: map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	signup := decode[SignupResponse](t, rr)

	rr = do(t, mux, request{method: http.MethodPost, path: "/api/login", body: map[string]string{
		"email":    email,
		"password": password,
	}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	token := decode[TokenResponse](t, rr)
	require.NotEmpty(t, token.AccessToken)

	return signup.User.ID, token.AccessToken
}
