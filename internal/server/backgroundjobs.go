package server

import (
	"context"
	"reflect"
	"runtime"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/askhq/ask/internal/logging"
	"github.com/askhq/ask/internal/server/data"
)

// BackgroundJobFunc is the interface for implementing a new background job.
//
// lastRunAt is the time the job last completed without error, and is the zero
// value on the first run. currentTime is the time the job was invoked at.
//
// Errors are logged but will not cause the server to stop. Panics are
// recovered and logged.
//
// Jobs should return early when ctx is cancelled.
type BackgroundJobFunc func(ctx context.Context, db *gorm.DB, lastRunAt, currentTime time.Time) error

func (s *Server) setupBackgroundJobs(ctx context.Context) {
	s.registerJob(ctx, removeExpiredSessions, time.Hour)
}

func (s *Server) registerJob(ctx context.Context, job BackgroundJobFunc, every time.Duration) {
	s.routines = append(s.routines, routine{
		run:  backgroundJob(ctx, s.db, job, every),
		stop: func() {}, // uses the context to stop
	})
}

func removeExpiredSessions(_ context.Context, db *gorm.DB, _, currentTime time.Time) error {
	return data.RemoveExpiredSessions(db, currentTime)
}

// backgroundJob returns a function that runs job once immediately, and then
// every interval until ctx is cancelled.
func backgroundJob(ctx context.Context, db *gorm.DB, job BackgroundJobFunc, every time.Duration) func() error {
	db = db.WithContext(ctx)
	name := getFuncName(job)

	return func() error { // jobs never return errors, the signature matches routine.run
		t := time.NewTicker(every)
		defer t.Stop()
		lastRunAt := time.Time{}

		jobWithRescue := func() {
			if ctx.Err() != nil {
				return
			}
			defer func() {
				if err := recover(); err != nil {
					logging.Errorf("background job %s panic: %s", name, err)
				}
			}()

			startAt := time.Now().UTC()
			logging.Debugf("background job %s starting", name)

			if err := job(ctx, db, lastRunAt, startAt); err != nil {
				logging.Errorf("background job %s error: %s", name, err.Error())
				return
			}
			logging.Debugf("background job %s successful, elapsed: %s", name, time.Since(startAt))
			lastRunAt = startAt
		}

		jobWithRescue()
		for {
			select {
			case <-t.C:
				jobWithRescue()
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func getFuncName(i interface{}) string {
	name := runtime.FuncForPC(reflect.ValueOf(i).Pointer()).Name()
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

