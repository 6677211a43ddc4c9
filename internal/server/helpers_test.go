package server

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"

	"github.com/mcuadros/go-defaults"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gotest.tools/v3/assert"

	"github.com/askhq/ask/internal/logging"
	"github.com/askhq/ask/internal/server/data"
	"github.com/askhq/ask/internal/server/email"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	logging.PatchLogger(t, zerolog.NewTestWriter(t))

	driver, err := data.NewSQLiteDriver("file::memory:")
	assert.NilError(t, err)

	db, err := data.NewDB(driver)
	assert.NilError(t, err)
	t.Cleanup(func() {
		assert.NilError(t, data.Close(db))
	})
	return db
}

// setupServer returns a Server with an in-memory database and an
// email.Recorder for a mailer. The server is not listening.
func setupServer(t *testing.T, ops ...func(*testing.T, *Options)) *Server {
	t.Helper()
	options := Options{SecretKey: "not-a-secret"}
	defaults.SetDefaults(&options)
	options.BcryptCost = bcrypt.MinCost
	for _, op := range ops {
		op(t, &options)
	}
	assert.NilError(t, options.validate())

	s := newServer(options)
	s.db = setupDB(t)
	s.mailer = &email.Recorder{}
	assert.NilError(t, s.setup())
	return s
}

func sentEmails(t *testing.T, s *Server) []email.Message {
	t.Helper()
	recorder, ok := s.mailer.(*email.Recorder)
	assert.Assert(t, ok, "mailer is %T", s.mailer)
	return recorder.Sent()
}

var resetLinkPattern = regexp.MustCompile(`/reset/([A-Za-z0-9_\-.]+)`)

func resetTokenFromEmail(t *testing.T, msg email.Message) string {
	t.Helper()
	match := resetLinkPattern.FindStringSubmatch(string(msg.PlainBody))
	assert.Assert(t, len(match) == 2, "no reset link in %q", msg.PlainBody)
	return match[1]
}

// testClient sends requests to the routes of a server, keeping cookies
// between requests like a browser. Redirects are not followed.
type testClient struct {
	t      *testing.T
	url    string
	client *http.Client
}

type testResponse struct {
	Code     int
	Location string
	Body     string
	Header   http.Header
}

func newTestClient(t *testing.T, s *Server) *testClient {
	t.Helper()
	ts := httptest.NewServer(s.GenerateRoutes())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	assert.NilError(t, err)

	return &testClient{
		t:   t,
		url: ts.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// anonymous returns a new client for the same server, with no cookies.
func (c *testClient) anonymous() *testClient {
	jar, err := cookiejar.New(nil)
	assert.NilError(c.t, err)
	client := *c.client
	client.Jar = jar
	return &testClient{t: c.t, url: c.url, client: &client}
}

func (c *testClient) get(path string) testResponse {
	c.t.Helper()
	resp, err := c.client.Get(c.url + path)
	assert.NilError(c.t, err)
	return c.read(resp)
}

func (c *testClient) post(path string, values url.Values) testResponse {
	c.t.Helper()
	resp, err := c.client.PostForm(c.url+path, values)
	assert.NilError(c.t, err)
	return c.read(resp)
}

func (c *testClient) read(resp *http.Response) testResponse {
	c.t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	assert.NilError(c.t, err)
	return testResponse{
		Code:     resp.StatusCode,
		Location: resp.Header.Get("Location"),
		Body:     string(body),
		Header:   resp.Header,
	}
}

// followRedirect asserts that resp redirects, and returns the page it
// redirects to.
func (c *testClient) followRedirect(resp testResponse, location string) testResponse {
	c.t.Helper()
	assert.Equal(c.t, resp.Code, http.StatusSeeOther, "body: %s", resp.Body)
	assert.Equal(c.t, resp.Location, location)
	return c.get(location)
}

func (c *testClient) login(username, password string) {
	c.t.Helper()
	resp := c.post("/login", url.Values{"username": {username}, "password": {password}})
	assert.Equal(c.t, resp.Code, http.StatusSeeOther, "body: %s", resp.Body)
	assert.Equal(c.t, resp.Location, "/")
}

func (c *testClient) register(username, emailAddr, password string) {
	c.t.Helper()
	resp := c.post("/register", url.Values{
		"username": {username},
		"email":    {emailAddr},
		"password": {password},
	})
	assert.Equal(c.t, resp.Code, http.StatusSeeOther, "body: %s", resp.Body)
	assert.Equal(c.t, resp.Location, "/login")
}

// runStep runs fn as a subtest, and stops the parent test when the step fails.
func runStep(t *testing.T, name string, fn func(t *testing.T)) {
	t.Helper()
	if !t.Run(name, fn) {
		t.FailNow()
	}
}
