package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/askhq/ask/internal"
	"github.com/askhq/ask/internal/access"
	"github.com/askhq/ask/internal/logging"
	"github.com/askhq/ask/internal/server/data"
	"github.com/askhq/ask/internal/server/email"
	"github.com/askhq/ask/metrics"
)

type Server struct {
	options         Options
	db              *gorm.DB
	mailer          email.Mailer
	auth            *access.Authenticator
	sentryHub       *sentry.Hub
	Addrs           Addrs
	routines        []routine
	metricsRegistry *prometheus.Registry
}

type Addrs struct {
	HTTP    net.Addr
	Metrics net.Addr
}

// newServer creates a Server with base dependencies initialized to zero values.
func newServer(options Options) *Server {
	return &Server{options: options}
}

// New creates a Server, and initializes it. The returned Server is ready to run.
func New(options Options) (*Server, error) {
	if err := options.validate(); err != nil {
		return nil, err
	}

	server := newServer(options)

	driver, err := getDatabaseDriver(options)
	if err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}

	db, err := data.NewDB(driver)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	server.db = db
	server.mailer = email.NewMailer(options.Email.config())

	if options.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              options.SentryDSN,
			Release:          internal.FullVersion(),
			AttachStacktrace: true,
		})
		if err != nil {
			return nil, fmt.Errorf("crash reporting: %w", err)
		}
		server.sentryHub = newSentryHub("server")
	}

	if err := server.setup(); err != nil {
		server.close()
		return nil, err
	}

	if err := server.listen(); err != nil {
		server.close()
		return nil, fmt.Errorf("listening: %w", err)
	}

	return server, nil
}

// close releases the listeners and the database of a server that will not
// be run.
func (s *Server) close() {
	for i := range s.routines {
		s.routines[i].stop()
	}
	s.routines = nil

	if s.db == nil {
		return
	}
	if err := data.Close(s.db); err != nil {
		logging.L.Warn().Err(err).Msg("failed to close database connection")
	}
}

func getDatabaseDriver(options Options) (gorm.Dialector, error) {
	if options.DBConnectionString != "" {
		return data.NewPostgresDriver(options.DBConnectionString)
	}
	if options.DBFile == "" {
		return nil, fmt.Errorf("one of dbFile or dbConnectionString is required")
	}
	return data.NewSQLiteDriver(options.DBFile)
}

// setup creates the components that depend on the database and the mailer.
func (s *Server) setup() error {
	auth, err := access.NewAuthenticator(
		data.UserStore{DB: s.db},
		data.SessionStore{DB: s.db},
		s.mailer,
		access.Config{
			SecretKey:       s.options.SecretKey,
			BaseURL:         s.options.BaseURL,
			ResetTokenTTL:   s.options.ResetTokenTTL,
			SessionDuration: s.options.SessionDuration,
			BcryptCost:      s.options.BcryptCost,
		})
	if err != nil {
		return fmt.Errorf("authenticator: %w", err)
	}
	s.auth = auth
	s.metricsRegistry = setupMetrics(s.db)
	return nil
}

// DB returns the database connection pool used by the server.
// It is primarily used by tests to create fixture data.
func (s *Server) DB() *gorm.DB {
	return s.db
}

func (s *Server) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	s.setupBackgroundJobs(ctx)

	for i := range s.routines {
		group.Go(s.routines[i].run)
	}

	logging.Infof("starting ask server (%s) - http:%s metrics:%s",
		internal.FullVersion(), s.Addrs.HTTP, s.Addrs.Metrics)

	<-ctx.Done()
	for i := range s.routines {
		s.routines[i].stop()
	}

	err := group.Wait()

	if err := data.Close(s.db); err != nil {
		logging.L.Warn().Err(err).Msg("failed to close database connection")
	}

	if s.sentryHub != nil {
		sentry.Flush(5 * time.Second)
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Server) listen() error {
	setGinMode()
	handler := s.GenerateRoutes()

	metricsServer := &http.Server{
		ReadHeaderTimeout: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
		Addr:              s.options.Addr.Metrics,
		Handler:           metrics.NewHandler(s.metricsRegistry),
	}

	var err error
	s.Addrs.Metrics, err = s.setupServer(metricsServer)
	if err != nil {
		return err
	}

	plaintextServer := &http.Server{
		ReadHeaderTimeout: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
		Addr:              s.options.Addr.HTTP,
		Handler:           handler,
	}
	s.Addrs.HTTP, err = s.setupServer(plaintextServer)
	if err != nil {
		return err
	}
	return nil
}

func (s *Server) setupServer(server *http.Server) (net.Addr, error) {
	if server.Addr == "" {
		server.Addr = "127.0.0.1:"
	}
	l, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return nil, err
	}
	logging.Infof("listening on %s", l.Addr().String())

	s.routines = append(s.routines, routine{
		run: func() error {
			err := server.Serve(l)
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
		// the listener is only closed by server.Close once Serve has started
		stop: func() {
			_ = server.Close()
			_ = l.Close()
		},
	})
	return l.Addr(), nil
}

type routine struct {
	run  func() error
	stop func()
}
