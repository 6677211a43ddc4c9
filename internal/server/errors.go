package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"

	"github.com/askhq/ask/internal"
	"github.com/askhq/ask/internal/logging"
)

const sentryHubContextKey = "sentryHub"

// sendPageError translates err into the appropriate HTTP status code, and
// renders the error page with that status. The error text is never shown to
// the user.
func sendPageError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	log := logging.L.Debug()

	switch {
	case errors.Is(err, internal.ErrUnauthorized):
		status = http.StatusUnauthorized
		log = logging.L.Info()

	case errors.Is(err, internal.ErrNotFound):
		status = http.StatusNotFound

	case errors.Is(err, internal.ErrBadRequest):
		status = http.StatusBadRequest

	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout // not ideal, but StatusRequestTimeout isn't intended for this.
		log = logging.L.Warn()

	default:
		log = logging.L.Error()
		if hub, ok := c.Value(sentryHubContextKey).(*sentry.Hub); ok {
			hub.CaptureException(err)
		}
	}

	log.CallerSkipFrame(1).
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("statusCode", status).
		Str("remoteAddr", c.Request.RemoteAddr).
		Msg("page request error")

	renderError(c, status)
	c.Abort()
}
