package server

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	CookieSessionName = "session"
	CookieFlashName   = "flash"
	CookieDomain      = ""
	CookiePath        = "/"
	// while these vars look goofy, they avoid "magic number" arguments to SetCookie
	CookieHTTPOnlyNotJavascriptAccessible = true    // setting HttpOnly to true means JS can't access it.
	CookieSecureHTTPSOnly                 = true    // setting Secure to true means the cookie is only sent over https connections
	CookieMaxAgeDeleteImmediately         = int(-1) // <0: delete immediately
	CookieMaxAgeNoExpiry                  = int(0)  // zero has special meaning of "no expiry"
)

// isSecure reports whether cookies set in response to this request should be
// restricted to https.
func isSecure(c *gin.Context) bool {
	if c.Request.TLS == nil && c.Request.URL.Scheme != "https" {
		// if the request came over HTTP, then the cookie will need to be sent unsecured
		return false
	}
	return CookieSecureHTTPSOnly
}

func setSessionCookie(c *gin.Context, token string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge == CookieMaxAgeNoExpiry {
		maxAge = CookieMaxAgeDeleteImmediately
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieSessionName, token, maxAge, CookiePath, CookieDomain, isSecure(c), CookieHTTPOnlyNotJavascriptAccessible)
}

func deleteSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieSessionName, "", CookieMaxAgeDeleteImmediately, CookiePath, CookieDomain, isSecure(c), CookieHTTPOnlyNotJavascriptAccessible)
}

// setFlash stores a message that is shown on the next page rendered for this
// client. Only one message is kept.
func setFlash(c *gin.Context, message string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieFlashName, message, CookieMaxAgeNoExpiry, CookiePath, CookieDomain, isSecure(c), CookieHTTPOnlyNotJavascriptAccessible)
}

// popFlash returns the message stored by setFlash, and removes it so that it
// is only shown once.
func popFlash(c *gin.Context) string {
	message, err := getCookie(c.Request, CookieFlashName)
	if err != nil || message == "" {
		return ""
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieFlashName, "", CookieMaxAgeDeleteImmediately, CookiePath, CookieDomain, isSecure(c), CookieHTTPOnlyNotJavascriptAccessible)
	return message
}

// getCookie returns the unescaped value of the named cookie.
func getCookie(req *http.Request, name string) (string, error) {
	cookie, err := req.Cookie(name)
	if err != nil {
		return "", err
	}
	return url.QueryUnescape(cookie.Value)
}
