package main

import (
	"errors"
	"net/http"

	"gamehub/internal/access"
	"gamehub/internal/domain/reviews"
)

type CreateReviewPayload struct {
	Title   *string `json:"title" validate:"required,max=120"`
	Comment *string `json:"comment" validate:"required"`
}

type UpdateReviewPayload struct {
	Title   *string `json:"title" validate:"omitempty,max=120"`
	Comment *string `json:"comment"`
}

// listMyReviewsHandler godoc
//
//	@Summary	List the caller's reviews
//	@Tags		reviews
//	@Produce	json
//	@Success	200	{array}		reviews.Review
//	@Failure	401	{object}	error
//	@Security	ApiKeyAuth
//	@Router		/reviews [get]
func (app *application) listMyReviewsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := app.loadCaller(w, r)
	if !ok {
		return
	}

	list, err := app.store.Reviews.ListByUser(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listGameReviewsHandler godoc
//
//	@Summary	List reviews of a game
//	@Tags		reviews
//	@Produce	json
//	@Param		id	path		int	true	"Game ID"
//	@Success	200	{array}		reviews.Review
//	@Failure	400	{object}	ErrorBadRequestResponse
//	@Router		/reviews/{id} [get]
func (app *application) listGameReviewsHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	list, err := app.store.Reviews.ListByGame(r.Context(), gameID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createReviewHandler godoc
//
//	@Summary	Review a game
//	@Tags		reviews
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int					true	"Game ID"
//	@Param		payload	body		CreateReviewPayload	true	"Review"
//	@Success	201		{object}	reviews.Review
//	@Failure	400		{object}	ErrorBadRequestResponse	"title or comment missing"
//	@Failure	401		{object}	error
//	@Security	ApiKeyAuth
//	@Router		/reviews/{id} [post]
func (app *application) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, ok := app.loadCaller(w, r)
	if !ok {
		return
	}

	var payload CreateReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	switch {
	case payload.Title == nil:
		app.badRequestResponse(w, r, errors.New("title is required"))
		return
	case payload.Comment == nil:
		app.badRequestResponse(w, r, errors.New("comment is required"))
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	review := &reviews.Review{
		GameID:  gameID,
		Title:   *payload.Title,
		Comment: *payload.Comment,
		UserID:  &user.ID,
	}
	if err := app.store.Reviews.Create(r.Context(), review); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, review); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateReviewHandler godoc
//
//	@Summary		Update a review
//	@Description	Partial update: absent or null fields are left unchanged
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Review ID"
//	@Param			payload	body		UpdateReviewPayload	true	"Fields to change"
//	@Success		200		{object}	reviews.Review
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		404		{object}	error
//	@Router			/reviews/{id} [put]
func (app *application) updateReviewHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if !app.authorize(w, r, access.KindReview, nil) {
		return
	}

	review, err := app.store.Reviews.Update(r.Context(), id, reviews.Patch{Title: payload.Title, Comment: payload.Comment})
	if err != nil {
		app.reviewError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, review); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteReviewHandler godoc
//
//	@Summary	Delete a review
//	@Tags		reviews
//	@Produce	json
//	@Param		id	path		int	true	"Review ID"
//	@Success	200	{object}	map[string]string
//	@Failure	404	{object}	error
//	@Router		/reviews/{id} [delete]
func (app *application) deleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if !app.authorize(w, r, access.KindReview, nil) {
		return
	}

	if err := app.store.Reviews.Delete(r.Context(), id); err != nil {
		app.reviewError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, map[string]string{"message": "Review deleted successfully"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) reviewError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, reviews.ErrNotFound):
		app.notFoundResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}
