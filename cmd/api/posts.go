package main

import (
	"errors"
	"net/http"

	"gamehub/internal/access"
	"gamehub/internal/domain/posts"
	"gamehub/internal/notifications"
)

type CreatePostPayload struct {
	Title    string  `json:"title" validate:"required,max=120"`
	Content  string  `json:"content" validate:"required"`
	ImageURL *string `json:"image_url" validate:"omitempty,max=255"`
}

type UpdatePostPayload struct {
	Title    *string `json:"title" validate:"omitempty,max=120"`
	Content  *string `json:"content"`
	ImageURL *string `json:"image_url" validate:"omitempty,max=255"`
}

// listPostsHandler godoc
//
//	@Summary	List posts
//	@Tags		posts
//	@Produce	json
//	@Success	200	{array}	posts.Post
//	@Router		/posts [get]
func (app *application) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.store.Posts.List(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getPostHandler godoc
//
//	@Summary	Get a post
//	@Tags		posts
//	@Produce	json
//	@Param		postID	path		int	true	"Post ID"
//	@Success	200		{object}	posts.Post
//	@Failure	404		{object}	error
//	@Router		/posts/{postID} [get]
func (app *application) getPostHandler(w http.ResponseWriter, r *http.Request) {
	post, ok := app.loadPost(w, r)
	if !ok {
		return
	}

	if err := writeJSON(w, http.StatusOK, post); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createPostHandler godoc
//
//	@Summary		Create a post
//	@Description	Creates a post owned by the caller and broadcasts it to subscribers
//	@Tags			posts
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreatePostPayload	true	"Post"
//	@Success		201		{object}	posts.Post
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		401		{object}	error
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/posts [post]
func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		app.unauthorizedErrorResponse(w, r, access.ErrUnauthenticated)
		return
	}

	var payload CreatePostPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	post := &posts.Post{
		Title:    payload.Title,
		Content:  payload.Content,
		ImageURL: payload.ImageURL,
		UserID:   userID,
	}
	if err := app.store.Posts.Create(r.Context(), post); err != nil {
		switch {
		case errors.Is(err, posts.ErrAuthorNotFound):
			app.unauthorizedErrorResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.notifier.Notify(notifications.PostCreated(post))

	if err := writeJSON(w, http.StatusCreated, post); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updatePostHandler godoc
//
//	@Summary		Update a post
//	@Description	Owner only. Partial update: absent or null fields are left unchanged.
//	@Tags			posts
//	@Accept			json
//	@Produce		json
//	@Param			postID	path		int					true	"Post ID"
//	@Param			payload	body		UpdatePostPayload	true	"Fields to change"
//	@Success		200		{object}	posts.Post
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		401		{object}	error
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/posts/{postID} [put]
func (app *application) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	post, ok := app.loadPost(w, r)
	if !ok {
		return
	}

	if !app.authorize(w, r, access.KindPost, post) {
		return
	}

	var payload UpdatePostPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	updated, err := app.store.Posts.Update(r.Context(), post.ID, posts.Patch{
		Title:    payload.Title,
		Content:  payload.Content,
		ImageURL: payload.ImageURL,
	})
	if err != nil {
		app.postError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, updated); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deletePostHandler godoc
//
//	@Summary		Delete a post
//	@Description	Owner only. The post's comments are deleted with it.
//	@Tags			posts
//	@Produce		json
//	@Param			postID	path		int	true	"Post ID"
//	@Success		200		{object}	MessageResponse
//	@Failure		401		{object}	error
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/posts/{postID} [delete]
func (app *application) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	post, ok := app.loadPost(w, r)
	if !ok {
		return
	}

	if !app.authorize(w, r, access.KindPost, post) {
		return
	}

	if err := app.store.Posts.Delete(r.Context(), post.ID); err != nil {
		app.postError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, MessageResponse{Message: "Post deleted successfully"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) loadPost(w http.ResponseWriter, r *http.Request) (*posts.Post, bool) {
	id, err := idParam(r, "postID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return nil, false
	}

	post, err := app.store.Posts.GetByID(r.Context(), id)
	if err != nil {
		app.postError(w, r, err)
		return nil, false
	}
	return post, true
}

func (app *application) postError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, posts.ErrNotFound):
		app.notFoundResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}
