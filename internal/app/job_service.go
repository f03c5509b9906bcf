package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/calvares/digger/internal/domain"
	"github.com/calvares/digger/internal/logger"
	"github.com/calvares/digger/internal/store"
	"github.com/google/uuid"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrJobFinished = errors.New("job already finished")
)

type JobService struct {
	Repo   *store.DB
	Logger *logger.Logger
}

func NewJobService(repo *store.DB, log *logger.Logger) *JobService {
	return &JobService{Repo: repo, Logger: log}
}

// EnqueueJob creates a pending ingestion job for the seller. If the seller
// already has a pending or processing job, that job is returned instead of
// starting a second run.
func (s *JobService) EnqueueJob(seller string) (*domain.Job, error) {
	if seller == "" {
		return nil, fmt.Errorf("seller username is required")
	}

	existing, err := s.Repo.GetActiveJobForSeller(seller)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing job: %w", err)
	}
	if existing != nil {
		s.Logger.Info("Job already active", "job_id", existing.ID, "seller", seller)
		return existing, nil
	}

	job := &domain.Job{
		ID:        uuid.New().String(),
		Seller:    seller,
		Status:    domain.JobStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.Repo.CreateJob(job); err != nil {
		return nil, err
	}
	s.Logger.Info("Job enqueued", "job_id", job.ID, "seller", seller)
	return job, nil
}

func (s *JobService) GetJob(id string) (*domain.Job, error) {
	return s.Repo.GetJob(id)
}

func (s *JobService) ListRecentJobs(limit int) ([]*domain.Job, error) {
	return s.Repo.ListRecentJobs(limit)
}

// CancelJob marks a pending or processing job as cancelled. The running
// worker observes the new status at its next item boundary; in-flight
// requests are not preempted.
func (s *JobService) CancelJob(id string) error {
	job, err := s.Repo.GetJob(id)
	if err != nil {
		return fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return ErrJobNotFound
	}
	if job.Status.Terminal() {
		return ErrJobFinished
	}

	status := domain.JobStatusCancelled
	step := "Cancelled by user"
	if err := s.Repo.UpdateJob(id, store.JobUpdate{Status: &status, CurrentStep: &step}); err != nil {
		return err
	}
	s.Logger.Info("Job cancelled", "job_id", id, "seller", job.Seller)
	return nil
}
