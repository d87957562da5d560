package main

import (
	"errors"
	"net/http"

	"gamehub/internal/access"
	"gamehub/internal/domain/comments"
)

type CommentPayload struct {
	Content *string `json:"content"`
}

// listCommentsHandler godoc
//
//	@Summary		List comments of a post
//	@Description	Returns an empty list when the post has no comments or does not exist
//	@Tags			comments
//	@Produce		json
//	@Param			postID	path	int	true	"Post ID"
//	@Success		200		{array}	comments.Comment
//	@Router			/posts/{postID}/comments [get]
func (app *application) listCommentsHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := idParam(r, "postID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	list, err := app.store.Comments.ListByPost(r.Context(), postID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createCommentHandler godoc
//
//	@Summary	Comment on a post
//	@Tags		comments
//	@Accept		json
//	@Produce	json
//	@Param		postID	path		int				true	"Post ID"
//	@Param		payload	body		CommentPayload	true	"Comment"
//	@Success	201		{object}	comments.Comment
//	@Failure	400		{object}	ErrorBadRequestResponse
//	@Failure	401		{object}	error
//	@Failure	404		{object}	error	"Post not found"
//	@Security	ApiKeyAuth
//	@Router		/posts/{postID}/comments [post]
func (app *application) createCommentHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := idParam(r, "postID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	userID, ok := callerID(r)
	if !ok {
		app.unauthorizedErrorResponse(w, r, access.ErrUnauthenticated)
		return
	}

	var payload CommentPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if payload.Content == nil || *payload.Content == "" {
		app.badRequestResponse(w, r, errors.New("content is required"))
		return
	}

	comment := &comments.Comment{
		Content: *payload.Content,
		UserID:  userID,
		PostID:  postID,
	}
	if err := app.store.Comments.Create(r.Context(), comment); err != nil {
		switch {
		case errors.Is(err, comments.ErrPostNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, comments.ErrAuthorNotFound):
			app.unauthorizedErrorResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := writeJSON(w, http.StatusCreated, comment); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getCommentHandler godoc
//
//	@Summary	Get a comment
//	@Tags		comments
//	@Produce	json
//	@Param		commentID	path		int	true	"Comment ID"
//	@Success	200			{object}	comments.Comment
//	@Failure	404			{object}	error
//	@Router		/comments/{commentID} [get]
func (app *application) getCommentHandler(w http.ResponseWriter, r *http.Request) {
	comment, ok := app.loadComment(w, r)
	if !ok {
		return
	}

	if err := writeJSON(w, http.StatusOK, comment); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateCommentHandler godoc
//
//	@Summary		Update a comment
//	@Description	Owner only. A missing or null content leaves the comment unchanged.
//	@Tags			comments
//	@Accept			json
//	@Produce		json
//	@Param			commentID	path		int				true	"Comment ID"
//	@Param			payload		body		CommentPayload	true	"New content"
//	@Success		200			{object}	comments.Comment
//	@Failure		401			{object}	error
//	@Failure		403			{object}	error
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/comments/{commentID} [put]
func (app *application) updateCommentHandler(w http.ResponseWriter, r *http.Request) {
	comment, ok := app.loadComment(w, r)
	if !ok {
		return
	}

	if !app.authorize(w, r, access.KindComment, comment) {
		return
	}

	var payload CommentPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	updated, err := app.store.Comments.Update(r.Context(), comment.ID, comments.Patch{Content: payload.Content})
	if err != nil {
		app.commentError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, updated); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteCommentHandler godoc
//
//	@Summary	Delete a comment
//	@Tags		comments
//	@Produce	json
//	@Param		commentID	path		int	true	"Comment ID"
//	@Success	200			{object}	MessageResponse
//	@Failure	401			{object}	error
//	@Failure	403			{object}	error
//	@Failure	404			{object}	error
//	@Security	ApiKeyAuth
//	@Router		/comments/{commentID} [delete]
func (app *application) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	comment, ok := app.loadComment(w, r)
	if !ok {
		return
	}

	if !app.authorize(w, r, access.KindComment, comment) {
		return
	}

	if err := app.store.Comments.Delete(r.Context(), comment.ID); err != nil {
		app.commentError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, MessageResponse{Message: "Comment deleted successfully"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) loadComment(w http.ResponseWriter, r *http.Request) (*comments.Comment, bool) {
	id, err := idParam(r, "commentID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return nil, false
	}

	comment, err := app.store.Comments.GetByID(r.Context(), id)
	if err != nil {
		app.commentError(w, r, err)
		return nil, false
	}
	return comment, true
}

func (app *application) commentError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, comments.ErrNotFound):
		app.notFoundResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}
