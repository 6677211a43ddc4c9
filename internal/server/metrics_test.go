package server

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"
	"gotest.tools/v3/assert"

	"github.com/askhq/ask/internal"
	"github.com/askhq/ask/internal/server/data"
	"github.com/askhq/ask/internal/server/models"
	"github.com/askhq/ask/metrics"
)

func patchVersion(t *testing.T, version string) {
	original := []string{internal.Version, internal.Metadata}
	t.Cleanup(func() {
		internal.Version, internal.Metadata = original[0], original[1]
	})
	internal.Version = version
	internal.Metadata = ""
}

func TestMetrics(t *testing.T) {
	run := func(db *gorm.DB, s string) string {
		patchVersion(t, "9.9.9")
		registry := setupMetrics(db)

		filename := filepath.Join(t.TempDir(), "metrics.txt")
		err := prometheus.WriteToTextfile(filename, registry)
		assert.NilError(t, err)

		bts, err := os.ReadFile(filename)
		assert.NilError(t, err)
		assert.Assert(t, len(bts) > 0)

		re := regexp.MustCompile(s)
		return string(bytes.Join(re.FindAll(bts, -1), []byte("\n")))
	}

	t.Run("build info", func(t *testing.T) {
		db := setupDB(t)
		actual := run(db, `build_info({.*})? \d+`)
		expected := `build_info{branch="main",commit="",date="",version="9.9.9"} 1`
		assert.Equal(t, actual, expected)
	})

	t.Run("ask users", func(t *testing.T) {
		db := setupDB(t)
		for _, name := range []string{"alice", "bob", "carol"} {
			user := &models.User{Username: name, Email: name + "@example.com", PasswordHash: []byte("hash")}
			assert.NilError(t, data.CreateUser(db, user))
		}

		actual := run(db, `ask_users({.*})? \d+`)
		assert.Equal(t, actual, "ask_users 3")
	})

	t.Run("ask questions and answers", func(t *testing.T) {
		db := setupDB(t)
		user := &models.User{Username: "alice", Email: "a@x.com", PasswordHash: []byte("hash")}
		assert.NilError(t, data.CreateUser(db, user))

		question := &models.Question{Title: "why?", AuthorID: user.ID}
		assert.NilError(t, data.CreateQuestion(db, question))
		for i := 0; i < 2; i++ {
			answer := &models.Answer{Content: "because", AuthorID: user.ID, QuestionID: question.ID}
			assert.NilError(t, data.CreateAnswer(db, answer))
		}

		assert.Equal(t, run(db, `ask_questions({.*})? \d+`), "ask_questions 1")
		assert.Equal(t, run(db, `ask_answers({.*})? \d+`), "ask_answers 2")
		assert.Equal(t, run(db, `ask_sessions({.*})? \d+`), "ask_sessions 0")
	})
}

func TestRecordAuthEvent(t *testing.T) {
	counter := func(event, outcome string) float64 {
		registry := prometheus.NewRegistry()
		metrics.Middleware(registry)
		mfs, err := registry.Gather()
		assert.NilError(t, err)

		for _, mf := range mfs {
			if mf.GetName() != "ask_auth_events_total" {
				continue
			}
			for _, m := range mf.GetMetric() {
				labels := map[string]string{}
				for _, pair := range m.GetLabel() {
					labels[pair.GetName()] = pair.GetValue()
				}
				if labels["event"] == event && labels["outcome"] == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
		return 0
	}

	failures := counter("test_event", "failure")
	successes := counter("test_event", "success")
	metrics.RecordAuthEvent("test_event", errors.New("failed"))
	metrics.RecordAuthEvent("test_event", nil)
	metrics.RecordAuthEvent("test_event", errors.New("failed again"))

	assert.Equal(t, counter("test_event", "failure")-failures, float64(2))
	assert.Equal(t, counter("test_event", "success")-successes, float64(1))
}

func TestRequestMetrics(t *testing.T) {
	srv := setupServer(t)
	client := newTestClient(t, srv)

	client.get("/login")
	client.get("/does/not/exist")

	count, err := testutil.GatherAndCount(srv.metricsRegistry, "http_request_duration_seconds")
	assert.NilError(t, err)
	assert.Assert(t, count >= 2, "count=%d", count)
}
