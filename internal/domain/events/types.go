package events

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("event not found")
	ErrAlreadyAttending  = errors.New("you are already attending this event")
	ErrUnknownAttendee   = errors.New("attendee does not exist")
	QueryTimeoutDuration = time.Second * 5
)

type Event struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// Patch holds the fields of a partial update; nil fields keep their value.
type Patch struct {
	Name        *string
	Description *string
	Date        *time.Time
	ImageURL    *string
}

// Apply is the in-memory form of the COALESCE merge in Repository.Update.
func (p Patch) Apply(e *Event) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.ImageURL != nil {
		e.ImageURL = p.ImageURL
	}
}

type Attendee struct {
	UserID       int64     `json:"user_id"`
	Username     *string   `json:"username"`
	ProfileImage *string   `json:"profile_image"`
	JoinedAt     time.Time `json:"joined_at"`
}
