// Package httpapp exposes the JSON API and the embedded frontend.
package httpapp

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/calvares/digger/internal/app"
	"github.com/calvares/digger/internal/logger"
	"github.com/calvares/digger/internal/store"
	"github.com/calvares/digger/web"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	JobService *app.JobService
	Repo       *store.DB
	Logger     *logger.Logger
	MaxAge     time.Duration
}

func NewHandler(js *app.JobService, repo *store.DB, log *logger.Logger, maxAge time.Duration) *Handler {
	return &Handler{
		JobService: js,
		Repo:       repo,
		Logger:     log.WithComponent("http"),
		MaxAge:     maxAge,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.IndexPage)
	r.Get("/static/*", h.StaticFile)

	r.Get("/api/seller/{username}", h.GetSeller)
	r.Post("/api/seller/{username}/clear", h.ClearSeller)
	r.Get("/api/job/{jobID}", h.GetJobStatus)
	r.Post("/api/job/{jobID}/cancel", h.CancelJob)
	r.Get("/api/health", h.Health)
	r.Get("/api/debug/jobs", h.DebugJobs)
}

func (h *Handler) IndexPage(w http.ResponseWriter, r *http.Request) {
	data, err := web.Files.ReadFile("static/index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

func (h *Handler) StaticFile(w http.ResponseWriter, r *http.Request) {
	path := "static/" + chi.URLParam(r, "*")
	data, err := web.Files.ReadFile(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	contentType := "application/octet-stream"
	switch {
	case strings.HasSuffix(path, ".html"):
		contentType = "text/html; charset=utf-8"
	case strings.HasSuffix(path, ".css"):
		contentType = "text/css"
	case strings.HasSuffix(path, ".js"):
		contentType = "application/javascript"
	case strings.HasSuffix(path, ".svg"):
		contentType = "image/svg+xml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
