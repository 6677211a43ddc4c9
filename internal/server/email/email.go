// Package email delivers messages to users over SMTP or the SendGrid API.
package email

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("email sending not configured")

// Message is a single email sent to one recipient. The sender comes from the
// Mailer.
type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	PlainBody []byte
	HTMLBody  []byte
}

// Mailer sends messages. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type Config struct {
	FromAddress string
	FromName    string

	SMTPServer   string
	SMTPUsername string
	SMTPPassword string

	SendgridAPIKey string
}

// NewMailer returns the Mailer selected by cfg. The SendGrid API is preferred
// when a key is configured, then SMTP. When neither is configured messages are
// written to the log.
func NewMailer(cfg Config) Mailer {
	switch {
	case cfg.SendgridAPIKey != "":
		return &SendgridMailer{
			APIKey:      cfg.SendgridAPIKey,
			FromAddress: cfg.FromAddress,
			FromName:    cfg.FromName,
		}
	case cfg.SMTPServer != "":
		return &SMTPMailer{
			Server:      cfg.SMTPServer,
			Username:    cfg.SMTPUsername,
			Password:    cfg.SMTPPassword,
			FromAddress: cfg.FromAddress,
			FromName:    cfg.FromName,
		}
	default:
		return LogMailer{}
	}
}
