package httpapp

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/calvares/digger/internal/app"
	"github.com/calvares/digger/internal/constants"
	"github.com/go-chi/chi/v5"
)

// GetSeller returns cached inventory for a seller, or starts a background
// ingestion job when no fresh data exists. An active job is reported instead
// of starting a second one.
func (h *Handler) GetSeller(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	forceRefresh := r.URL.Query().Get("force_refresh") == "true"

	maxAge := h.MaxAge
	if raw := r.URL.Query().Get("max_age_hours"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours < 0 {
			h.writeError(w, http.StatusBadRequest, "invalid max_age_hours")
			return
		}
		maxAge = time.Duration(hours) * time.Hour
	}

	active, err := h.Repo.GetActiveJobForSeller(username)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if active != nil {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "processing",
			"job":    active,
			"data":   nil,
		})
		return
	}

	if !forceRefresh {
		snap, err := h.Repo.GetSellerSnapshot(username, maxAge)
		if err != nil {
			h.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if snap != nil {
			h.writeJSON(w, http.StatusOK, map[string]interface{}{
				"status": "cached",
				"job":    nil,
				"data":   snap,
			})
			return
		}
	}

	job, err := h.JobService.EnqueueJob(username)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "started",
		"job":    job,
		"data":   nil,
	})
}

// GetJobStatus returns the job together with whatever data is already
// stored, so a poller can render partial results while the run progresses.
func (h *Handler) GetJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := h.JobService.GetJob(jobID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if job == nil {
		h.writeError(w, http.StatusNotFound, "Job not found")
		return
	}

	snap, err := h.Repo.GetSellerSnapshot(job.Seller, 365*24*time.Hour)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"job":  job,
		"data": snap,
	})
}

func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	err := h.JobService.CancelJob(jobID)
	switch {
	case errors.Is(err, app.ErrJobNotFound):
		h.writeError(w, http.StatusNotFound, "Job not found")
	case errors.Is(err, app.ErrJobFinished):
		h.writeError(w, http.StatusBadRequest, "Job is not running")
	case err != nil:
		h.writeError(w, http.StatusInternalServerError, err.Error())
	default:
		h.writeJSON(w, http.StatusOK, map[string]string{
			"status":  "cancelled",
			"message": "Job cancelled successfully",
		})
	}
}

// ClearSeller cancels any active job and purges everything stored for the
// seller.
func (h *Handler) ClearSeller(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	active, err := h.Repo.GetActiveJobForSeller(username)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if active != nil {
		if err := h.JobService.CancelJob(active.ID); err != nil {
			h.Logger.Warn("Failed to cancel job during clear", "job_id", active.ID, "error", err)
		}
	}

	if err := h.Repo.DeleteSellerData(username); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Health doubles as the job garbage collector, pruning old terminal jobs on
// every probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.CleanupOldJobs(constants.JobRetentionDays * 24 * time.Hour); err != nil {
		h.Logger.Warn("Failed to clean up old jobs", "error", err)
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) DebugJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.JobService.ListRecentJobs(10)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sellers, err := h.Repo.ListSellers()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	count, err := h.Repo.CountReleases()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":           jobs,
		"sellers":        sellers,
		"total_releases": count,
	})
}
