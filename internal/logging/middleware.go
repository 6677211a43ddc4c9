package logging

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// UserIDKey is the gin context key that holds the ID of the signed in user.
// When set, the value is added to the access log for the request.
const UserIDKey = "userID"

type Sampler struct {
	fn       func() zerolog.Sampler
	samplers sync.Map
}

func NewSampler(fn func() zerolog.Sampler) *Sampler {
	return &Sampler{fn: fn}
}

func (c *Sampler) Get(fields ...string) zerolog.Sampler {
	key := strings.Join(fields, "-")
	raw, ok := c.samplers.Load(key)
	if !ok {
		// Only use LoadOrStore on a failed load, to avoid creating unnecessary samplers
		raw, _ = c.samplers.LoadOrStore(key, c.fn())
	}

	return raw.(zerolog.Sampler) // nolint:forcetypeassert
}

// Middleware writes an access log entry for every request. When enableSampling
// is true, successful GET requests are sampled down to one entry every 7
// seconds for each route.
func Middleware(enableSampling bool) gin.HandlerFunc {
	sampler := NewSampler(func() zerolog.Sampler {
		return &zerolog.BurstSampler{
			Burst:  1,
			Period: 7 * time.Second,
		}
	})

	return func(c *gin.Context) {
		begin := time.Now()
		c.Next()

		method := c.Request.Method
		status := c.Writer.Status()
		logger := L.Logger

		if enableSampling && status < 400 && method == http.MethodGet && logger.GetLevel() >= zerolog.InfoLevel {
			logger = logger.Sample(sampler.Get(method, c.FullPath()))
		}

		event := logger.Info()
		if len(c.Errors) > 0 {
			event = logger.Error().Strs("errors", c.Errors.Errors())
		}

		event = event.
			Str("method", method).
			Str("path", c.Request.URL.Path).
			Str("remoteAddr", c.ClientIP()).
			Str("userAgent", c.Request.UserAgent())

		if c.Request.ContentLength > 0 {
			event = event.Int64("contentLength", c.Request.ContentLength)
		}

		if userID := c.GetString(UserIDKey); userID != "" {
			event = event.Str("userID", userID)
		}

		event.Dur("elapsed", time.Since(begin)).
			Int("statusCode", status).
			Int("size", c.Writer.Size()).
			Msg("request completed")
	}
}
