package server

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gotest.tools/v3/assert"
)

func TestSetSessionCookie(t *testing.T) {
	t.Run("http", func(t *testing.T) {
		resp := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(resp)
		c.Request = httptest.NewRequest(http.MethodPost, "/login", nil)

		setSessionCookie(c, "key.secret", time.Now().Add(time.Hour))

		cookies := resp.Result().Cookies()
		assert.Equal(t, len(cookies), 1)
		cookie := cookies[0]
		assert.Equal(t, cookie.Name, "session")
		assert.Equal(t, cookie.Value, "key.secret")
		assert.Equal(t, cookie.Path, "/")
		assert.Assert(t, cookie.HttpOnly)
		assert.Assert(t, !cookie.Secure)
		assert.Equal(t, cookie.SameSite, http.SameSiteLaxMode)
		assert.Assert(t, cookie.MaxAge > 3500 && cookie.MaxAge <= 3600, cookie.MaxAge)
	})

	t.Run("https", func(t *testing.T) {
		resp := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(resp)
		c.Request = httptest.NewRequest(http.MethodPost, "/login", nil)
		c.Request.TLS = &tls.ConnectionState{}

		setSessionCookie(c, "key.secret", time.Now().Add(time.Hour))

		cookies := resp.Result().Cookies()
		assert.Equal(t, len(cookies), 1)
		assert.Assert(t, cookies[0].Secure)
	})
}

func TestFlash(t *testing.T) {
	message := "Contraseña actualizada, iniciá sesión"

	resp := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(resp)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	setFlash(c, message)

	cookies := resp.Result().Cookies()
	assert.Equal(t, len(cookies), 1)

	t.Run("pop returns the message and removes it", func(t *testing.T) {
		resp := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(resp)
		c.Request = httptest.NewRequest(http.MethodGet, "/login", nil)
		c.Request.AddCookie(cookies[0])

		assert.Equal(t, popFlash(c), message)

		removed := resp.Result().Cookies()
		assert.Equal(t, len(removed), 1)
		assert.Equal(t, removed[0].Name, CookieFlashName)
		assert.Assert(t, removed[0].MaxAge < 0)
	})

	t.Run("no flash", func(t *testing.T) {
		resp := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(resp)
		c.Request = httptest.NewRequest(http.MethodGet, "/login", nil)

		assert.Equal(t, popFlash(c), "")
		assert.Equal(t, len(resp.Result().Cookies()), 0)
	})
}
