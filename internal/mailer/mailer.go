package mailer

import (
	"embed"
	"errors"
)

const (
	FromName            = "GameHub"
	maxRetries          = 3
	UserWelcomeTemplate = "user_welcome.tmpl"
)

//go:embed "templates"
var FS embed.FS

var ErrNotConfigured = errors.New("mailer is not configured")

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
