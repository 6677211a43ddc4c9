package email

import (
	"context"

	"github.com/askhq/ask/internal/logging"
)

// LogMailer writes messages to the log instead of sending them. It is used
// when no email transport is configured. The body can contain a password
// reset link, so it is only logged at debug level.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	logging.L.Info().
		Str("to", msg.ToAddress).
		Str("subject", msg.Subject).
		Msg("email not sent, no transport configured")
	logging.L.Debug().
		Str("to", msg.ToAddress).
		Str("body", string(msg.PlainBody)).
		Msg("email body")
	return nil
}
