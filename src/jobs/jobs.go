package jobs

import (
	"context"
	"sync"
	"time"

	"git.nurpath.academy/nurpath/portal/src/logging"
	"github.com/rs/zerolog"
)

/*
 * Background work in the portal (session cleanup, the perf collector, the
 * studio document flusher, the local S3 server) runs as Jobs. A Job pairs a
 * cancelable context with a done channel, so the server can cancel everything
 * on shutdown and wait for it all to wrap up.
 */

type Job struct {
	Name   string
	Ctx    context.Context
	Logger zerolog.Logger
	cancel func()
	done   chan struct{}
	once   sync.Once
}

func New(name string) *Job {
	logger := logging.With().Str("job", name).Logger()
	ctx, cancel := context.WithCancel(context.Background())
	ctx = logging.AttachLoggerToContext(&logger, ctx)
	return &Job{
		Name:   name,
		Ctx:    ctx,
		Logger: logger,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Starts fn in a goroutine as a new Job. The job finishes when fn returns;
// a returned error or panic is logged.
func Go(name string, fn func(ctx context.Context) error) *Job {
	job := New(name)
	go func() {
		defer job.Finish()
		defer logging.LogPanics(&job.Logger)
		if err := fn(job.Ctx); err != nil {
			job.Logger.Error().Err(err).Msg("job failed")
		}
	}()
	return job
}

// A Job that is already finished, for features that are switched off.
func Noop() *Job {
	return New("noop").Finish()
}

// Sends a cancel signal to the Job. Internally, this cancels the Job's
// context. Expected to be called from outside the job, e.g. on shutdown.
func (j *Job) Cancel() {
	j.cancel()
}

// Returns a channel that closes when Cancel has been called.
func (j *Job) Canceled() <-chan struct{} {
	return j.Ctx.Done()
}

// Marks the Job as finished. Safe to call more than once.
func (j *Job) Finish() *Job {
	j.once.Do(func() {
		close(j.done)
	})
	return j
}

// Returns a channel that closes when the Job is finished.
func (j *Job) Finished() <-chan struct{} {
	return j.done
}

// A utility for running and canceling multiple jobs at once. Because this type
// is simply a slice of Jobs, you can construct it using normal slice syntax.
type Jobs []*Job

// Cancels all tracked jobs, giving them a chance to finish gracefully. Will
// return when all jobs finish or when the timeout expires, whichever comes
// first. Returns a list of all jobs that did not finish on time.
func (jobs Jobs) CancelAndWait(timeout time.Duration) []string {
	allDoneChan := make(chan struct{})
	for _, job := range jobs {
		job.Cancel()
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	go func() {
		for _, job := range jobs {
			<-job.Finished()
		}
		close(allDoneChan)
	}()

	select {
	case <-timer.C:
		return jobs.ListUnfinished()
	case <-allDoneChan:
		return nil
	}
}

func (jobs Jobs) ListUnfinished() []string {
	unfinished := []string{}
	for _, job := range jobs {
		select {
		case <-job.Finished():
			continue
		default:
			unfinished = append(unfinished, job.Name)
		}
	}
	return unfinished
}
