package jobs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"learnhub/internal/ai"
	"learnhub/internal/pkg/logger"
)

// Runner accepts transcription uploads and runs the actual transcription on
// a worker pool so status/result endpoints stay responsive. Once scheduled a
// job runs to completion or failure; there is no cancellation or retry.
type Runner struct {
	store  Store
	engine ai.Transcriber
	pool   *ants.Pool
	dir    string
	log    *logger.Logger
}

func NewRunner(store Store, engine ai.Transcriber, poolSize int, uploadDir string, log *logger.Logger) (*Runner, error) {
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("create job pool failed: %w", err)
	}
	return &Runner{
		store:  store,
		engine: engine,
		pool:   pool,
		dir:    uploadDir,
		log:    log,
	}, nil
}

func (r *Runner) Release() {
	r.pool.Release()
}

// Submit validates the filename, persists the payload, registers a queued
// job and schedules background processing. It never blocks on transcription.
// The extension check runs before anything touches disk.
func (r *Runner) Submit(ctx context.Context, filename string, src io.Reader) (*Job, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if err := validateExtension(ext); err != nil {
		return nil, err
	}

	jobID := uuid.NewString()
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir failed: %w", err)
	}
	path := filepath.Join(r.dir, jobID+ext)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("save upload failed: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return nil, fmt.Errorf("save upload failed: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("save upload failed: %w", err)
	}

	job := &Job{
		ID:             jobID,
		SourceFilename: filename,
		Status:         StatusQueued,
		Progress:       0,
	}
	if err := r.store.Create(job); err != nil {
		return nil, fmt.Errorf("register job failed: %w", err)
	}

	if err := r.pool.Submit(func() { r.process(jobID, path) }); err != nil {
		_ = r.store.Update(jobID, func(j *Job) {
			j.Status = StatusFailed
			j.Error = "scheduling failed: " + err.Error()
		})
		return nil, fmt.Errorf("schedule job failed: %w", err)
	}

	return job, nil
}

// Status returns the current job snapshot.
func (r *Runner) Status(id string) (*Job, error) {
	return r.store.Get(id)
}

// Result returns the transcript once the job has completed.
func (r *Runner) Result(id string) (*ai.Transcript, error) {
	job, err := r.store.Get(id)
	if err != nil {
		return nil, err
	}
	if job.Status != StatusCompleted {
		return nil, fmt.Errorf("%w: current status %s", ErrJobNotReady, job.Status)
	}
	return job.Result, nil
}

// process is the single background task owning the job's state transitions.
func (r *Runner) process(jobID, path string) {
	_ = r.store.Update(jobID, func(j *Job) {
		j.Status = StatusProcessing
		j.Progress = 10
	})

	transcript, err := r.engine.Transcribe(context.Background(), path, "")
	if err != nil {
		r.log.Error("transcription job failed", "job_id", jobID, "path", path, "error", err)
		_ = r.store.Update(jobID, func(j *Job) {
			j.Status = StatusFailed
			j.Progress = 0
			j.Error = err.Error()
		})
		return
	}

	_ = r.store.Update(jobID, func(j *Job) {
		j.Status = StatusCompleted
		j.Progress = 100
		j.Result = transcript
	})
	// The uploaded file is intentionally retained; operators reap the
	// directory out of band.
	r.log.Info("transcription job completed", "job_id", jobID, "retained_file", path)
}
