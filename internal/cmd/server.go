package cmd

import (
	"context"
	"fmt"

	"github.com/mcuadros/go-defaults"
	"github.com/spf13/cobra"

	"github.com/askhq/ask/internal/logging"
	"github.com/askhq/ask/internal/server"
)

func newServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the ask web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.SetServerLogger()

			options := defaultServerOptions()
			if err := parseOptions(cmd, &options, envPrefix); err != nil {
				return err
			}

			dbFile, err := canonicalPath(options.DBFile)
			if err != nil {
				return err
			}
			options.DBFile = dbFile

			srv, err := server.New(options)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			return runServer(cmd.Context(), srv)
		},
	}

	d := defaultServerOptions()
	flags := cmd.Flags()
	flags.StringP("config-file", "f", "", "Server configuration file (yaml, json, or toml)")
	flags.String("secret-key", "", "Key used to sign password reset links (secret)")
	flags.String("base-url", d.BaseURL, "URL of the server used in links sent by email")
	flags.Duration("session-duration", d.SessionDuration, "User session duration")
	flags.Duration("reset-token-ttl", d.ResetTokenTTL, "How long a password reset link can be used")
	flags.Int("bcrypt-cost", d.BcryptCost, "Cost of the bcrypt password hash")
	flags.String("db-file", d.DBFile, "Path to SQLite 3 database")
	flags.String("db-connection-string", "", "PostgreSQL connection string, used instead of db-file (secret)")
	flags.Bool("enable-log-sampling", d.EnableLogSampling, "Sample HTTP access logs")
	flags.Bool("trust-proxy-headers", false, "Use X-Forwarded-For and X-Forwarded-Proto headers from a reverse proxy")
	flags.String("sentry-dsn", "", "Send crash reports to this Sentry DSN")
	flags.Duration("request-timeout", d.RequestTimeout, "Maximum duration of a request")
	flags.String("addr-http", d.Addr.HTTP, "Address to listen on for HTTP requests")
	flags.String("addr-metrics", d.Addr.Metrics, "Address to listen on for metrics requests")
	flags.String("email-from-address", "", "Sender address of emails")
	flags.String("email-from-name", d.Email.FromName, "Sender name of emails")
	flags.String("email-smtp-server", "", "SMTP server host:port used to send emails")
	flags.String("email-smtp-username", "", "SMTP username")
	flags.String("email-smtp-password", "", "SMTP password (secret)")
	flags.String("email-sendgrid-api-key", "", "SendGrid API key, used instead of SMTP (secret)")

	return cmd
}

func defaultServerOptions() server.Options {
	var options server.Options
	defaults.SetDefaults(&options)
	options.DBFile = "$HOME/.ask/sqlite3.db"
	return options
}

// shim for testing
var runServer = func(ctx context.Context, srv *server.Server) error {
	return srv.Run(ctx)
}
