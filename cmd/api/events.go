package main

import (
	"errors"
	"net/http"

	"gamehub/internal/access"
	"gamehub/internal/domain/events"
)

type CreateEventPayload struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description string  `json:"description" validate:"required"`
	Date        string  `json:"date" validate:"required"`
	ImageURL    *string `json:"image_url" validate:"omitempty,max=255"`
}

// UpdateEventPayload accepts a whole event as sent back by clients; id and
// created_at are ignored.
type UpdateEventPayload struct {
	Name        *string `json:"name" validate:"omitempty,max=120"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	ImageURL    *string `json:"image_url" validate:"omitempty,max=255"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// listEventsHandler godoc
//
//	@Summary	List events
//	@Tags		events
//	@Produce	json
//	@Success	200	{array}	events.Event
//	@Router		/events [get]
func (app *application) listEventsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.store.Events.List(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createEventHandler godoc
//
//	@Summary	Create an event
//	@Tags		events
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		CreateEventPayload	true	"Event"
//	@Success	201		{object}	events.Event
//	@Failure	400		{object}	ErrorBadRequestResponse
//	@Router		/events [post]
func (app *application) createEventHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateEventPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	date, err := parseEventDate(payload.Date)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if !app.authorize(w, r, access.KindEvent, nil) {
		return
	}

	event := &events.Event{
		Name:        payload.Name,
		Description: payload.Description,
		Date:        date,
		ImageURL:    payload.ImageURL,
	}
	if err := app.store.Events.Create(r.Context(), event); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, event); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getEventHandler godoc
//
//	@Summary	Get an event
//	@Tags		events
//	@Produce	json
//	@Param		eventID	path		int	true	"Event ID"
//	@Success	200		{object}	events.Event
//	@Failure	404		{object}	error
//	@Router		/events/{eventID} [get]
func (app *application) getEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "eventID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	event, err := app.store.Events.GetByID(r.Context(), id)
	if err != nil {
		app.eventError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, event); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateEventHandler godoc
//
//	@Summary		Update an event
//	@Description	Partial update: absent or null fields are left unchanged
//	@Tags			events
//	@Accept			json
//	@Produce		json
//	@Param			eventID	path		int					true	"Event ID"
//	@Param			payload	body		UpdateEventPayload	true	"Fields to change"
//	@Success		200		{object}	events.Event
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		404		{object}	error
//	@Router			/events/{eventID} [put]
func (app *application) updateEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "eventID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateEventPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	patch := events.Patch{
		Name:        payload.Name,
		Description: payload.Description,
		ImageURL:    payload.ImageURL,
	}
	if payload.Date != nil {
		date, err := parseEventDate(*payload.Date)
		if err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
		patch.Date = &date
	}

	if !app.authorize(w, r, access.KindEvent, nil) {
		return
	}

	event, err := app.store.Events.Update(r.Context(), id, patch)
	if err != nil {
		app.eventError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, event); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteEventHandler godoc
//
//	@Summary	Delete an event
//	@Tags		events
//	@Produce	json
//	@Param		eventID	path		int	true	"Event ID"
//	@Success	200		{object}	MessageResponse
//	@Failure	404		{object}	error
//	@Router		/events/{eventID} [delete]
func (app *application) deleteEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "eventID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if !app.authorize(w, r, access.KindEvent, nil) {
		return
	}

	if err := app.store.Events.Delete(r.Context(), id); err != nil {
		app.eventError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, MessageResponse{Message: "Event deleted successfully"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// attendEventHandler godoc
//
//	@Summary		Attend an event
//	@Description	Adds the caller to the attendees. Joining twice is rejected.
//	@Tags			events
//	@Produce		json
//	@Param			eventID	path		int	true	"Event ID"
//	@Success		200		{object}	MessageResponse
//	@Failure		400		{object}	ErrorBadRequestResponse	"Already attending"
//	@Failure		401		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/events/{eventID}/attend [post]
func (app *application) attendEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "eventID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	userID, ok := callerID(r)
	if !ok {
		app.unauthorizedErrorResponse(w, r, access.ErrUnauthenticated)
		return
	}

	if err := app.store.Events.Attend(r.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, events.ErrAlreadyAttending):
			app.badRequestResponse(w, r, err)
		case errors.Is(err, events.ErrUnknownAttendee):
			app.unauthorizedErrorResponse(w, r, err)
		default:
			app.eventError(w, r, err)
		}
		return
	}

	if err := writeJSON(w, http.StatusOK, MessageResponse{Message: "Attendance registered"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listAttendeesHandler godoc
//
//	@Summary	List attendees of an event
//	@Tags		events
//	@Produce	json
//	@Param		eventID	path		int	true	"Event ID"
//	@Success	200		{array}		events.Attendee
//	@Failure	404		{object}	error
//	@Router		/events/{eventID}/attendees [get]
func (app *application) listAttendeesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "eventID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	list, err := app.store.Events.ListAttendees(r.Context(), id)
	if err != nil {
		app.eventError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) eventError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, events.ErrNotFound):
		app.notFoundResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}
