package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCancelAndWait(t *testing.T) {
	t.Run("finishes fast enough", func(t *testing.T) {
		testJobs := Jobs{
			FakeJob("session cleanup", time.Millisecond*100),
			FakeJob("studio flush", time.Millisecond*200),
		}

		before := time.Now()
		unfinished := testJobs.CancelAndWait(time.Second * 1)
		after := time.Now()
		assert.WithinDuration(t, after, before, time.Millisecond*500, "jobs did not finish fast enough")
		assert.Len(t, unfinished, 0)
	})
	t.Run("reports unfinished jobs", func(t *testing.T) {
		testJobs := Jobs{
			FakeJob("session cleanup", time.Millisecond*100),
			FakeJob("studio flush", time.Second*10),
		}

		unfinished := testJobs.CancelAndWait(time.Second * 1)
		assert.Equal(t, []string{"studio flush"}, unfinished)
	})
}

func TestGo(t *testing.T) {
	t.Run("finishes when the function returns", func(t *testing.T) {
		job := Go("quick", func(ctx context.Context) error {
			return errors.New("logged, not fatal")
		})
		select {
		case <-job.Finished():
		case <-time.After(time.Second):
			t.Fatal("job never finished")
		}
	})
	t.Run("sees cancellation", func(t *testing.T) {
		job := Go("waits", func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		})
		assert.Empty(t, Jobs{job}.CancelAndWait(time.Second))
	})
	t.Run("survives panics", func(t *testing.T) {
		job := Go("explodes", func(ctx context.Context) error {
			panic("kaboom")
		})
		select {
		case <-job.Finished():
		case <-time.After(time.Second):
			t.Fatal("job never finished")
		}
	})
}

func TestNoop(t *testing.T) {
	job := Noop()
	assert.Empty(t, Jobs{job}.ListUnfinished())
	job.Finish()
}

func FakeJob(name string, timeout time.Duration) *Job {
	job := New(name)
	go func() {
		<-job.Ctx.Done()
		timer := time.NewTimer(timeout)
		<-timer.C
		job.Finish()
	}()
	return job
}
