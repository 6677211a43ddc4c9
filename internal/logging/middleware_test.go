package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gotest.tools/v3/assert"
)

func TestMiddleware(t *testing.T) {
	setup := func(t *testing.T, writer io.Writer) *gin.Engine {
		PatchLogger(t, writer)

		router := gin.New()
		router.Use(Middleware(true))

		router.GET("/good/:id", func(c *gin.Context) {})
		router.POST("/good/:id", func(c *gin.Context) {})
		router.GET("/gooder/", func(c *gin.Context) {})
		router.GET("/bad/:id", func(c *gin.Context) {
			c.Status(http.StatusBadRequest)
		})
		router.GET("/broken", func(c *gin.Context) {
			_ = c.Error(errors.New("it broke"))
			c.Status(http.StatusInternalServerError)
		})
		router.GET("/authned", func(c *gin.Context) {
			c.Set(UserIDKey, "2Xv8kQ")
		})

		return router
	}

	t.Run("identical requests are sampled", func(t *testing.T) {
		b := &bytes.Buffer{}
		router := setup(t, b)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest("GET", "/good/1", nil))
		router.ServeHTTP(resp, httptest.NewRequest("GET", "/good/2", nil))
		router.ServeHTTP(resp, httptest.NewRequest("GET", "/good/3", nil))
		router.ServeHTTP(resp, httptest.NewRequest("GET", "/gooder/", nil))
		router.ServeHTTP(resp, httptest.NewRequest("GET", "/good/4", nil))
		router.ServeHTTP(resp, httptest.NewRequest("POST", "/good/1", nil))
		router.ServeHTTP(resp, httptest.NewRequest("POST", "/good/2", nil))

		actual := decodeLogs(t, b)
		expected := []logEntry{
			{Method: "GET", Path: "/good/1", StatusCode: 200, Level: "info"},
			{Method: "GET", Path: "/gooder/", StatusCode: 200, Level: "info"},
			{Method: "POST", Path: "/good/1", StatusCode: 200, Level: "info"},
			{Method: "POST", Path: "/good/2", StatusCode: 200, Level: "info"},
		}
		assert.DeepEqual(t, actual, expected)
	})

	t.Run("non-200 status responses are never sampled", func(t *testing.T) {
		b := &bytes.Buffer{}
		router := setup(t, b)
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/bad/1", nil))
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/bad/1", nil))
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/broken", nil))
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/broken", nil))

		actual := decodeLogs(t, b)
		expected := []logEntry{
			{Method: "GET", Path: "/bad/1", StatusCode: 400, Level: "info"},
			{Method: "GET", Path: "/bad/1", StatusCode: 400, Level: "info"},
			{Method: "GET", Path: "/broken", StatusCode: 500, Level: "error", Errors: []string{"it broke"}},
			{Method: "GET", Path: "/broken", StatusCode: 500, Level: "error", Errors: []string{"it broke"}},
		}
		assert.DeepEqual(t, actual, expected)
	})

	t.Run("with userID", func(t *testing.T) {
		b := &bytes.Buffer{}
		router := setup(t, b)
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/authned", nil))

		actual := decodeLogs(t, b)
		expected := []logEntry{
			{Method: "GET", Path: "/authned", StatusCode: 200, Level: "info", UserID: "2Xv8kQ"},
		}
		assert.DeepEqual(t, actual, expected)
	})
}

func decodeLogs(t *testing.T, input io.Reader) []logEntry {
	const maxLogs = 15
	logs := make([]logEntry, maxLogs)
	dec := json.NewDecoder(input)
	for i := 0; i < cap(logs); i++ {
		err := dec.Decode(&logs[i])
		if errors.Is(err, io.EOF) {
			return logs[:i]
		}
		assert.NilError(t, err)
	}
	t.Errorf("more than %d logs, some were not decoded", maxLogs)
	return logs
}

type logEntry struct {
	Method     string   `json:"method"`
	Path       string   `json:"path"`
	StatusCode int      `json:"statusCode"`
	Level      string   `json:"level"`
	UserID     string   `json:"userID"`
	Errors     []string `json:"errors"`
}
