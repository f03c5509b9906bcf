package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/calvares/digger/internal/domain"
)

// CreateJob inserts a job record. Reusing an existing job id resets the
// record to a fresh pending state.
func (db *DB) CreateJob(job *domain.Job) error {
	query := `INSERT INTO jobs (job_id, seller_username, status, progress, total, current_step, created_at, updated_at)
		VALUES (:job_id, :seller_username, :status, :progress, :total, :current_step, :created_at, :updated_at)
		ON CONFLICT(job_id) DO UPDATE SET
			seller_username = excluded.seller_username,
			status = excluded.status,
			progress = excluded.progress,
			total = excluded.total,
			current_step = excluded.current_step,
			error_message = NULL,
			updated_at = excluded.updated_at`

	_, err := db.NamedExec(query, job)
	return err
}

func (db *DB) GetJob(id string) (*domain.Job, error) {
	query := `SELECT job_id, seller_username, status, progress, total, current_step, error_message, created_at, updated_at
		FROM jobs WHERE job_id = ?`

	job := &domain.Job{}
	err := db.Get(job, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// JobUpdate is a partial update; nil fields are left unchanged.
type JobUpdate struct {
	Status       *domain.JobStatus
	Progress     *int
	Total        *int
	CurrentStep  *string
	ErrorMessage *string
}

// UpdateJob applies the non-nil fields of upd and refreshes updated_at.
// Status changes on a job already in a terminal state are silently dropped:
// terminal states have no outgoing transitions.
func (db *DB) UpdateJob(id string, upd JobUpdate) error {
	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now()}

	guarded := false
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
		guarded = true
	}
	if upd.Progress != nil {
		sets = append(sets, "progress = ?")
		args = append(args, *upd.Progress)
	}
	if upd.Total != nil {
		sets = append(sets, "total = ?")
		args = append(args, *upd.Total)
	}
	if upd.CurrentStep != nil {
		sets = append(sets, "current_step = ?")
		args = append(args, *upd.CurrentStep)
	}
	if upd.ErrorMessage != nil {
		sets = append(sets, "error_message = ?")
		args = append(args, *upd.ErrorMessage)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE jobs SET %s WHERE job_id = ?", strings.Join(sets, ", "))
	if guarded {
		query += " AND status NOT IN ('complete', 'error', 'cancelled')"
	}
	_, err := db.Exec(query, args...)
	return err
}

// GetActiveJobForSeller returns the most recently created pending or
// processing job for the seller, or nil. This backs the one-active-job-per-
// seller invariant.
func (db *DB) GetActiveJobForSeller(seller string) (*domain.Job, error) {
	query := `SELECT job_id, seller_username, status, progress, total, current_step, error_message, created_at, updated_at
		FROM jobs
		WHERE seller_username = ? AND status IN ('pending', 'processing')
		ORDER BY created_at DESC
		LIMIT 1`

	job := &domain.Job{}
	err := db.Get(job, query, seller)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// ListPendingJobs returns pending jobs oldest first, for the worker poll loop.
func (db *DB) ListPendingJobs() ([]*domain.Job, error) {
	query := `SELECT job_id, seller_username, status, progress, total, current_step, error_message, created_at, updated_at
		FROM jobs WHERE status = 'pending' ORDER BY created_at ASC`

	var jobs []*domain.Job
	err := db.Select(&jobs, query)
	return jobs, err
}

// ListRecentJobs returns the newest jobs regardless of status.
func (db *DB) ListRecentJobs(limit int) ([]*domain.Job, error) {
	query := `SELECT job_id, seller_username, status, progress, total, current_step, error_message, created_at, updated_at
		FROM jobs ORDER BY created_at DESC LIMIT ?`

	var jobs []*domain.Job
	err := db.Select(&jobs, query, limit)
	return jobs, err
}

// ResetStuckJobs returns jobs stranded in processing by a previous process
// to pending so they get picked up and resumed.
func (db *DB) ResetStuckJobs() (int64, error) {
	res, err := db.Exec(`UPDATE jobs SET status = 'pending', updated_at = ? WHERE status = 'processing'`, time.Now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CleanupOldJobs deletes terminal jobs older than the retention window.
func (db *DB) CleanupOldJobs(retention time.Duration) error {
	_, err := db.Exec(`DELETE FROM jobs WHERE status IN ('complete', 'error', 'cancelled') AND created_at < ?`,
		time.Now().Add(-retention))
	return err
}
