package email

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/askhq/ask/internal/logging"
)

// SendgridMailer sends messages with the SendGrid v3 mail API.
type SendgridMailer struct {
	APIKey      string
	FromAddress string
	FromName    string
	// Host defaults to https://api.sendgrid.com
	Host string
}

func (m *SendgridMailer) Send(ctx context.Context, msg Message) error {
	if m.APIKey == "" {
		return ErrNotConfigured
	}

	v3 := mail.NewV3Mail()
	v3.SetFrom(mail.NewEmail(m.FromName, m.FromAddress))
	v3.Subject = msg.Subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(msg.ToName, msg.ToAddress))
	v3.AddPersonalizations(p)

	v3.AddContent(mail.NewContent("text/plain", string(msg.PlainBody)))
	if len(msg.HTMLBody) > 0 {
		v3.AddContent(mail.NewContent("text/html", string(msg.HTMLBody)))
	}

	request := sendgrid.GetRequest(m.APIKey, "/v3/mail/send", m.Host)
	request.Method = rest.Post
	request.Body = mail.GetRequestBody(v3)

	response, err := rest.SendWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}

	if response.StatusCode >= http.StatusMultipleChoices {
		logging.Debugf("sendgrid api responded with status code %d: %s", response.StatusCode, response.Body)
		return fmt.Errorf("sendgrid: unexpected status code %d", response.StatusCode)
	}
	return nil
}
