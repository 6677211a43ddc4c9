package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"

	"github.com/askhq/ask/internal"
	"github.com/askhq/ask/internal/access"
	"github.com/askhq/ask/internal/logging"
	"github.com/askhq/ask/internal/server/models"
)

// TimeoutMiddleware adds a timeout to the request context within the Gin context.
// To correctly abort long-running requests, this depends on the users of the context to
// stop working when the context cancels.
// Note: The goroutine for the request is never halted; if the context is not
// passed down to lower packages and long-running tasks, then the app will not
// magically stop working on the request. No effort should be made to write
// an early http response here; it's up to the users of the context to watch for
// c.Request.Context().Err() or <-c.Request.Context().Done()
func TimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

const sessionContextKey = "session"

// AuthenticationMiddleware resolves the session cookie into a session and
// stores it in the gin context. Requests without a valid session continue
// as anonymous requests, and an invalid cookie is removed.
func AuthenticationMiddleware(auth *access.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := getCookie(c.Request, CookieSessionName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		session, err := auth.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(sessionContextKey, session)
			c.Set(logging.UserIDKey, session.UserID.String())
		case errors.Is(err, internal.ErrUnauthorized):
			logging.L.Debug().Err(err).Msg("ignoring session cookie")
			deleteSessionCookie(c)
		default:
			sendPageError(c, err)
			return
		}
		c.Next()
	}
}

// currentSession returns the session stored by AuthenticationMiddleware, or
// nil for anonymous requests.
func currentSession(c *gin.Context) *models.Session {
	raw, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	session, _ := raw.(*models.Session)
	return session
}

func currentUser(c *gin.Context) *models.User {
	if session := currentSession(c); session != nil {
		return session.User
	}
	return nil
}

// RequireLogin redirects anonymous requests to the login page.
func RequireLogin(auth *access.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.IsAuthenticated(currentSession(c)) {
			c.Next()
			return
		}
		setFlash(c, MessageLoginRequired)
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
	}
}

// RecoveryMiddleware renders the error page when a handler panics. When
// crash reporting is enabled the panic is also sent to sentry, and the hub is
// stored in the gin context for sendPageError.
func RecoveryMiddleware(hub *sentry.Hub) gin.HandlerFunc {
	recovery := gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		if hub != nil {
			hub.Recover(recovered)
		}
		logging.L.Error().Interface("panic", recovered).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("recovered from panic")
		renderError(c, http.StatusInternalServerError)
		c.Abort()
	})

	return func(c *gin.Context) {
		if hub != nil {
			c.Set(sentryHubContextKey, hub)
		}
		recovery(c)
	}
}

func newSentryHub(name string) *sentry.Hub {
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("goroutine", name)
	})

	return hub
}
