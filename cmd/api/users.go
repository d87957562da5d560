package main

import (
	"errors"
	"net/http"

	"gamehub/internal/domain/users"
)

// listUsersHandler godoc
//
//	@Summary	List users
//	@Tags		users
//	@Produce	json
//	@Success	200	{array}		users.User
//	@Failure	500	{object}	ErrorInternalServerResponse
//	@Router		/users [get]
func (app *application) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.store.Users.List(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateAvatarPayload struct {
	Avatar string `json:"avatar" validate:"required,max=255"`
}

// updateAvatarHandler godoc
//
//	@Summary		Update avatar URL
//	@Description	Sets the caller's profile image to an already hosted image URL
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		UpdateAvatarPayload	true	"Image URL"
//	@Success		200		{object}	users.User
//	@Failure		400		{object}	ErrorBadRequestResponse	"No image URL provided"
//	@Failure		401		{object}	error
//	@Failure		404		{object}	error	"User not found"
//	@Security		ApiKeyAuth
//	@Router			/update-avatar [put]
func (app *application) updateAvatarHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := callerID(r)

	var payload UpdateAvatarPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, errors.New("no image URL provided"))
		return
	}

	app.setAvatar(w, r, id, payload.Avatar)
}

// uploadAvatarHandler godoc
//
//	@Summary		Upload avatar
//	@Description	Uploads an image to Cloudinary and sets it as the caller's profile image
//	@Tags			users
//	@Accept			mpfd
//	@Produce		json
//	@Param			avatar	formData	file	true	"JPEG or PNG, at most 2MB"
//	@Success		200		{object}	users.User
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		401		{object}	error
//	@Failure		404		{object}	error	"User not found"
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/update-avatar/upload [post]
func (app *application) uploadAvatarHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := callerID(r)

	if err := r.ParseMultipartForm(2 << 20); err != nil {
		app.badRequestResponse(w, r, errors.New("unable to parse form, file size limit is 2MB"))
		return
	}

	file, fileHeader, err := r.FormFile("avatar")
	if err != nil {
		app.badRequestResponse(w, r, errors.New("unable to retrieve file"))
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" {
		app.badRequestResponse(w, r, errors.New("only JPEG and PNG images are allowed"))
		return
	}

	if _, err := app.store.Users.GetByID(r.Context(), id); err != nil {
		app.userLookupError(w, r, err)
		return
	}

	url, err := app.avatars.UploadAvatar(r.Context(), id, file)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.setAvatar(w, r, id, url)
}

func (app *application) setAvatar(w http.ResponseWriter, r *http.Request, userID int64, url string) {
	user, err := app.store.Users.SetProfileImage(r.Context(), userID, url)
	if err != nil {
		app.userLookupError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, user); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) userLookupError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, users.ErrNotFound):
		app.notFoundResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}
