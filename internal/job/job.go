// Package job tracks extraction jobs started over the HTTP API.
package job

import (
	"context"
	"sync"

	"dialogue-ocr/internal/dialogue"
	"dialogue-ocr/internal/pipeline"

	"golang.org/x/time/rate"
)

// Status is the lifecycle state of a job.
type Status string

// Job states. StatusDone and StatusFailed are terminal.
const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "error"
)

// updateBuffer is how many progress notifications may queue up for a slow
// reader before new ones are dropped.
const updateBuffer = 64

// Job is one extraction run. Progress notifications are advisory and may be
// dropped; the final outcome is always available once Done is closed.
type Job struct {
	ID        string `json:"job_id"`
	VideoPath string `json:"video_path"`
	Lang      string `json:"lang"`
	CropDir   string `json:"-"`

	updates chan pipeline.Progress
	done    chan struct{}
	limiter *rate.Limiter
	cancel  context.CancelFunc

	mu      sync.Mutex
	status  Status
	results []dialogue.Result
	err     error
}

// newLimiter returns a limiter allowing perSecond notifications, or nil when
// perSecond is not positive.
func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

func newJob(id, videoPath, lang, cropDir string, limiter *rate.Limiter) *Job {
	return &Job{
		ID:        id,
		VideoPath: videoPath,
		Lang:      lang,
		CropDir:   cropDir,
		updates:   make(chan pipeline.Progress, updateBuffer),
		done:      make(chan struct{}),
		limiter:   limiter,
		status:    StatusRunning,
	}
}

// Updates returns the progress stream. It is meant for a single reader.
func (j *Job) Updates() <-chan pipeline.Progress {
	return j.updates
}

// Done is closed when the job has completed or failed.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Status returns the current lifecycle state.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Outcome returns the results and error of a finished job.
func (j *Job) Outcome() ([]dialogue.Result, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.results, j.err
}

// publish queues a progress notification without blocking. Scan progress is
// throttled; the last frame of the scan and every recognition update bypass
// the limiter.
func (j *Job) publish(p pipeline.Progress) {
	if p.Phase == pipeline.PhaseScan && p.Current != p.Total && j.limiter != nil && !j.limiter.Allow() {
		return
	}
	select {
	case j.updates <- p:
	default:
	}
}

func (j *Job) finish(results []dialogue.Result, err error) {
	j.mu.Lock()
	if err != nil {
		j.status = StatusFailed
		j.err = err
	} else {
		j.status = StatusDone
		j.results = results
	}
	j.mu.Unlock()
	close(j.done)
}
