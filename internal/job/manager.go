package job

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"dialogue-ocr/internal/dialogue"
	"dialogue-ocr/internal/metrics"
	"dialogue-ocr/internal/pipeline"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// ErrNotFound is returned for unknown or expired job ids.
var ErrNotFound = errors.New("job not found")

var idPattern = regexp.MustCompile(`^[0-9a-f]{12}$`)

// Runner performs the extraction for a job, reporting progress as it goes.
type Runner func(ctx context.Context, j *Job, progress pipeline.ProgressFunc) ([]dialogue.Result, error)

// PipelineRunner returns a Runner that saves crops into the job's crop
// directory and runs a pipeline.Driver built with opts.
func PipelineRunner(opts ...pipeline.Option) Runner {
	return func(ctx context.Context, j *Job, progress pipeline.ProgressFunc) ([]dialogue.Result, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		store, err := pipeline.NewDirCropStore(j.CropDir)
		if err != nil {
			return nil, err
		}
		return pipeline.NewDriver(store, opts...).Run(ctx, j.VideoPath, j.Lang, progress)
	}
}

// Options configures a Manager.
type Options struct {
	// CropRoot is the directory job crop directories are created under.
	CropRoot string
	// TTL is how long a finished job stays queryable.
	TTL time.Duration
	// ProgressRate caps scan progress notifications per second. Zero disables
	// throttling.
	ProgressRate float64
}

// Manager owns the job table. Jobs move from running to done or error, and
// are removed by Delete or by expiry after TTL.
type Manager struct {
	opts Options
	run  Runner
	log  *zap.Logger
	jobs *cache.Cache

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a manager. A nil logger disables logging.
func NewManager(opts Options, run Runner, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		opts:   opts,
		run:    run,
		log:    log,
		jobs:   cache.New(opts.TTL, opts.TTL/2),
		ctx:    ctx,
		cancel: cancel,
	}
	m.jobs.OnEvicted(func(id string, v interface{}) {
		if j, ok := v.(*Job); ok {
			m.removeCrops(j.CropDir)
		}
	})
	return m
}

// NewID returns a fresh 12 character hex job id.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// ValidID reports whether id has the shape produced by NewID.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// Start registers a job and runs it in the background.
func (m *Manager) Start(videoPath, lang string) (*Job, error) {
	if err := m.ctx.Err(); err != nil {
		return nil, fmt.Errorf("manager stopped: %w", err)
	}

	id := NewID()
	j := newJob(id, videoPath, lang, filepath.Join(m.opts.CropRoot, id), newLimiter(m.opts.ProgressRate))

	ctx, cancel := context.WithCancel(m.ctx)
	j.cancel = cancel

	// Running jobs never expire.
	m.jobs.Set(id, j, cache.NoExpiration)
	metrics.ActiveJobs.Inc()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer cancel()
		m.execute(ctx, j)
	}()

	m.log.Info("job started", zap.String("job_id", id), zap.String("video", videoPath), zap.String("lang", lang))
	return j, nil
}

func (m *Manager) execute(ctx context.Context, j *Job) {
	start := time.Now()
	results, err := m.run(ctx, j, j.publish)
	j.finish(results, err)
	metrics.ActiveJobs.Dec()

	if err != nil {
		metrics.JobsTotal.WithLabelValues(string(StatusFailed)).Inc()
		m.log.Error("job failed", zap.String("job_id", j.ID), zap.Error(err))
	} else {
		metrics.JobsTotal.WithLabelValues(string(StatusDone)).Inc()
		m.log.Info("job finished",
			zap.String("job_id", j.ID),
			zap.Int("dialogues", len(results)),
			zap.Duration("elapsed", time.Since(start)))
	}

	// Start the expiry clock. Replace fails if the job was deleted while it
	// ran; crops written after the delete are removed here.
	if err := m.jobs.Replace(j.ID, j, cache.DefaultExpiration); err != nil {
		m.removeCrops(j.CropDir)
	}
}

// Get returns a job by id.
func (m *Manager) Get(id string) (*Job, error) {
	v, ok := m.jobs.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return v.(*Job), nil
}

// CropPath resolves a crop file of a job. Only the base name of filename is
// used.
func (m *Manager) CropPath(id, filename string) (string, error) {
	if !ValidID(id) {
		return "", ErrNotFound
	}
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		return "", ErrNotFound
	}
	path := filepath.Join(m.opts.CropRoot, id, name)
	if _, err := os.Stat(path); err != nil {
		return "", ErrNotFound
	}
	return path, nil
}

// Delete cancels the job if it is running and removes it with its crops.
func (m *Manager) Delete(id string) error {
	if !ValidID(id) {
		return ErrNotFound
	}

	dir := filepath.Join(m.opts.CropRoot, id)
	if v, ok := m.jobs.Get(id); ok {
		j := v.(*Job)
		if j.cancel != nil {
			j.cancel()
		}
		// Eviction removes the crop directory.
		m.jobs.Delete(id)
		m.log.Info("job deleted", zap.String("job_id", id))
		return nil
	}

	if _, err := os.Stat(dir); err != nil {
		return ErrNotFound
	}
	m.removeCrops(dir)
	return nil
}

func (m *Manager) removeCrops(dir string) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		m.log.Warn("failed to remove crops", zap.String("dir", dir), zap.Error(err))
	}
}

// Shutdown cancels every running job and waits for them to stop or for ctx
// to expire.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.cancel()

	stopped := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
