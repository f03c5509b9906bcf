// Package worker polls for pending ingestion jobs and runs them.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/calvares/digger/internal/app"
	"github.com/calvares/digger/internal/constants"
	"github.com/calvares/digger/internal/domain"
	"github.com/calvares/digger/internal/logger"
	"github.com/calvares/digger/internal/store"
)

type Worker struct {
	Repo     *store.DB
	Ingestor *app.Ingestor
	Logger   *logger.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewWorker(repo *store.DB, ingestor *app.Ingestor, log *logger.Logger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		Repo:     repo,
		Ingestor: ingestor,
		Logger:   log.WithComponent("worker"),
		ctx:      ctx,
		cancel:   cancel,
		inFlight: make(map[string]struct{}),
	}
}

func (w *Worker) Start() {
	w.Logger.Info("Starting worker")

	// Jobs stranded in processing by a crashed process go back to pending
	// and resume on the next poll.
	if n, err := w.Repo.ResetStuckJobs(); err != nil {
		w.Logger.Error("Failed to reset stuck jobs", "error", err)
	} else if n > 0 {
		w.Logger.Info("Reset stuck jobs", "count", n)
	}

	if err := w.Repo.CleanupOldJobs(constants.JobRetentionDays * 24 * time.Hour); err != nil {
		w.Logger.Error("Failed to clean up old jobs", "error", err)
	}

	w.wg.Add(1)
	go w.poll()
}

func (w *Worker) Stop() {
	w.Logger.Info("Stopping worker")
	w.cancel()
	w.wg.Wait()
}

func (w *Worker) poll() {
	defer w.wg.Done()
	ticker := time.NewTicker(constants.DefaultPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			jobs, err := w.Repo.ListPendingJobs()
			if err != nil {
				w.Logger.Error("Failed to list pending jobs", "error", err)
				continue
			}
			for _, job := range jobs {
				w.dispatch(job)
			}
		}
	}
}

// dispatch launches one goroutine per job. Each seller has at most one
// non-terminal job, so distinct workers never touch the same seller's rows.
func (w *Worker) dispatch(job *domain.Job) {
	w.mu.Lock()
	if _, running := w.inFlight[job.ID]; running {
		w.mu.Unlock()
		return
	}
	w.inFlight[job.ID] = struct{}{}
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			delete(w.inFlight, job.ID)
			w.mu.Unlock()
		}()
		defer func() {
			if r := recover(); r != nil {
				w.Logger.Error("Panic in job", "job_id", job.ID, "panic", r)
				status := domain.JobStatusError
				msg := fmt.Sprintf("panic: %v", r)
				if err := w.Repo.UpdateJob(job.ID, store.JobUpdate{Status: &status, ErrorMessage: &msg}); err != nil {
					w.Logger.Error("Failed to record panic", "job_id", job.ID, "error", err)
				}
			}
		}()

		w.Ingestor.Run(w.ctx, job)
	}()
}
