package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/calvares/digger/internal/domain"
	"github.com/calvares/digger/internal/logger"
	"github.com/calvares/digger/internal/store"
)

// errCancelled aborts a run when the job was cancelled from the outside.
// The job record already carries the cancelled status at that point.
var errCancelled = errors.New("job cancelled")

// Ingestor runs one ingestion job end to end: scan the inventory, enrich
// every release not yet stored, and finalize the seller snapshot.
type Ingestor struct {
	Repo     *store.DB
	Scanner  *Scanner
	Enricher *Enricher
	Logger   *logger.Logger
}

func NewIngestor(repo *store.DB, scanner *Scanner, enricher *Enricher, log *logger.Logger) *Ingestor {
	return &Ingestor{Repo: repo, Scanner: scanner, Enricher: enricher, Logger: log}
}

// Run processes the job and owns every job status transition except
// cancellation, which it only observes. A failed run leaves partial store
// data in place so the next run resumes instead of restarting.
func (in *Ingestor) Run(ctx context.Context, job *domain.Job) {
	log := in.Logger.WithJob(job.ID, job.Seller)

	if in.cancelled(job.ID) {
		log.Info("Job cancelled before start")
		return
	}

	in.setStep(job.ID, domain.JobStatusProcessing, "Scanning inventory")
	log.Info("Ingestion started")

	candidates, err := in.Scanner.Scan(ctx, job.Seller, func(page, pages int) error {
		if in.cancelled(job.ID) {
			return errCancelled
		}
		step := fmt.Sprintf("Scanning inventory page %d/%d", page, pages)
		return in.Repo.UpdateJob(job.ID, store.JobUpdate{CurrentStep: &step})
	})
	if err != nil {
		if errors.Is(err, errCancelled) {
			log.Info("Ingestion cancelled during scan")
			return
		}
		in.fail(job.ID, log, err)
		return
	}

	existing, err := in.Repo.ExistingReleases(job.Seller)
	if err != nil {
		in.fail(job.ID, log, fmt.Errorf("failed to load stored releases: %w", err))
		return
	}

	total := len(candidates)
	progress := 0
	if err := in.Repo.UpdateJob(job.ID, store.JobUpdate{Progress: &progress, Total: &total}); err != nil {
		in.fail(job.ID, log, err)
		return
	}
	log.Info("Inventory scanned", "unique_releases", total, "already_stored", len(existing))

	final := make([]domain.Release, 0, total)
	for _, cand := range candidates {
		if in.cancelled(job.ID) {
			log.Info("Ingestion cancelled", "progress", progress, "total", total)
			return
		}

		if stored, ok := existing[cand.ID]; ok {
			final = append(final, stored)
			progress++
			in.advance(job.ID, progress, "")
			continue
		}

		release, err := in.Enricher.Enrich(ctx, cand)
		if err != nil {
			log.Warn("Skipping release", "release_id", cand.ID, "error", err)
			progress++
			in.advance(job.ID, progress, "")
			continue
		}

		if err := in.Repo.UpsertRelease(job.Seller, release); err != nil {
			in.fail(job.ID, log, fmt.Errorf("failed to store release %d: %w", cand.ID, err))
			return
		}
		final = append(final, *release)
		progress++
		in.advance(job.ID, progress, release.ArtistTitle)
	}

	if err := in.Repo.ReplaceSellerData(job.Seller, final, domain.SellerStatusComplete); err != nil {
		in.fail(job.ID, log, fmt.Errorf("failed to finalize seller data: %w", err))
		return
	}

	in.setStep(job.ID, domain.JobStatusComplete, "Complete")
	log.Info("Ingestion complete", "releases", len(final))
}

func (in *Ingestor) cancelled(jobID string) bool {
	job, err := in.Repo.GetJob(jobID)
	if err != nil {
		return false
	}
	// A missing row means the job history was purged out from under the
	// run; stop before repopulating a cleared seller.
	if job == nil {
		return true
	}
	return job.Status == domain.JobStatusCancelled
}

func (in *Ingestor) setStep(jobID string, status domain.JobStatus, step string) {
	if err := in.Repo.UpdateJob(jobID, store.JobUpdate{Status: &status, CurrentStep: &step}); err != nil {
		in.Logger.Error("Failed to update job", "job_id", jobID, "error", err)
	}
}

func (in *Ingestor) advance(jobID string, progress int, artistTitle string) {
	upd := store.JobUpdate{Progress: &progress}
	if artistTitle != "" {
		step := fmt.Sprintf("Processed %s", artistTitle)
		upd.CurrentStep = &step
	}
	if err := in.Repo.UpdateJob(jobID, upd); err != nil {
		in.Logger.Error("Failed to update job progress", "job_id", jobID, "error", err)
	}
}

func (in *Ingestor) fail(jobID string, log *logger.Logger, cause error) {
	log.Error("Ingestion failed", "error", cause)
	status := domain.JobStatusError
	msg := cause.Error()
	step := "Failed"
	upd := store.JobUpdate{Status: &status, ErrorMessage: &msg, CurrentStep: &step}
	if err := in.Repo.UpdateJob(jobID, upd); err != nil {
		log.Error("Failed to record job error", "error", err)
	}
}
