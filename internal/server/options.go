package server

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goware/urlx"

	"github.com/askhq/ask/internal/server/email"
)

type Options struct {
	// SecretKey signs password reset tokens. Changing it invalidates every
	// reset link that has already been sent.
	SecretKey string `validate:"required"`

	// BaseURL is the externally visible address of the server. It is used to
	// build the links sent by email.
	BaseURL string `default:"http://localhost:5000" validate:"required"`

	SessionDuration time.Duration `default:"12h" validate:"gt=0"`
	ResetTokenTTL   time.Duration `default:"1h" validate:"gt=0"`
	BcryptCost      int           `default:"10" validate:"gte=4,lte=31"`

	DBFile             string
	DBConnectionString string

	// EnableLogSampling indicates whether or not to sample HTTP access logs.
	// When true, non-error HTTP GET logs will sampled down to 1 every 7 seconds
	// grouped by the request path.
	EnableLogSampling bool `default:"true"`

	// TrustProxyHeaders uses X-Forwarded-For and X-Forwarded-Proto to set the
	// remote address and scheme of requests. Only enable it behind a proxy
	// that sets those headers.
	TrustProxyHeaders bool

	// SentryDSN enables crash reporting when set.
	SentryDSN string

	RequestTimeout time.Duration `default:"1m" validate:"gt=0"`

	Addr  ListenerOptions
	Email EmailOptions
}

type ListenerOptions struct {
	HTTP    string `default:":5000"`
	Metrics string `default:":9090"`
}

type EmailOptions struct {
	FromAddress    string `validate:"omitempty,email"`
	FromName       string `default:"Ask"`
	SMTPServer     string `validate:"omitempty,hostname_port"`
	SMTPUsername   string
	SMTPPassword   string
	SendgridAPIKey string
}

func (o EmailOptions) config() email.Config {
	return email.Config{
		FromAddress:    o.FromAddress,
		FromName:       o.FromName,
		SMTPServer:     o.SMTPServer,
		SMTPUsername:   o.SMTPUsername,
		SMTPPassword:   o.SMTPPassword,
		SendgridAPIKey: o.SendgridAPIKey,
	}
}

var validateOptions = validator.New()

func (o *Options) validate() error {
	if err := validateOptions.Struct(o); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	u, err := urlx.Parse(o.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", o.BaseURL, err)
	}
	o.BaseURL, err = urlx.Normalize(u)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", o.BaseURL, err)
	}
	return nil
}
