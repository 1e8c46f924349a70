package downloader

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"igsaved/pkg/logger"
	"igsaved/pkg/models"
)

// Job is one post queued for download
type Job struct {
	// Index is the 1-based position of the post in the work set
	Index int
	Post  models.Post
}

// Outcome is what a successful ProcessFunc reports
type Outcome struct {
	Path  string
	Files int
	Bytes int64
}

// Result represents the result of a download job. A Result with Started set
// announces a job about to be processed and carries no outcome; it is always
// followed by that job's final Result.
type Result struct {
	Job      Job
	Started  bool
	Outcome  Outcome
	Err      error
	Panicked bool
	Duration time.Duration
}

// Success reports whether the job completed without error
func (r Result) Success() bool {
	return !r.Started && r.Err == nil
}

// ProcessFunc downloads a single post
type ProcessFunc func(ctx context.Context, post models.Post) (Outcome, error)

// PanicError wraps a value recovered while processing a job
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic while processing post: %v", e.Value)
}

// Worker processes posts strictly one at a time
type Worker struct {
	process ProcessFunc
	logger  logger.Logger
}

// NewWorker creates a sequential download worker
func NewWorker(process ProcessFunc, log logger.Logger) *Worker {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Worker{
		process: process,
		logger:  log.WithField("component", "downloader"),
	}
}

// Start processes posts in order on a single goroutine and streams, per
// attempted post, a Started notice followed by its final Result, so a single
// reader sees them strictly paired. The context is checked before each post;
// once it is done no further posts are started. The post in flight is handed a
// context without cancellation and always finishes. The channel is closed when
// the worker stops and must be drained by the caller.
func (w *Worker) Start(ctx context.Context, posts []models.Post) <-chan Result {
	results := make(chan Result, 1)

	go func() {
		defer close(results)

		total := len(posts)
		w.logger.DebugWithFields("worker started", map[string]interface{}{"total": total})

		for i, post := range posts {
			if err := ctx.Err(); err != nil {
				w.logger.InfoWithFields("worker stopping, context cancelled", map[string]interface{}{
					"processed": i,
					"remaining": total - i,
				})
				return
			}

			job := Job{Index: i + 1, Post: post}
			results <- Result{Job: job, Started: true}
			results <- w.processJob(context.WithoutCancel(ctx), job)
		}

		w.logger.Debug("worker finished")
	}()

	return results
}

// processJob handles a single job, turning a panic into a failed result
func (w *Worker) processJob(ctx context.Context, job Job) (result Result) {
	start := time.Now()
	result.Job = job

	fields := map[string]interface{}{
		"post_id": job.Post.ID,
		"index":   job.Index,
	}

	defer func() {
		if v := recover(); v != nil {
			result.Err = &PanicError{Value: v, Stack: debug.Stack()}
			result.Panicked = true
			w.logger.WithError(result.Err).ErrorWithFields("recovered panic while processing post", fields)
		}
		result.Duration = time.Since(start)
	}()

	w.logger.DebugWithFields("processing post", fields)

	outcome, err := w.process(ctx, job.Post)
	if err != nil {
		result.Err = err
		return result
	}
	result.Outcome = outcome
	return result
}
