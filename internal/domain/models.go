package domain

import (
	"fmt"
	"time"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusComplete   JobStatus = "complete"
	JobStatusError      JobStatus = "error"
	JobStatusCancelled  JobStatus = "cancelled"
)

// ParseJobStatus validates a raw status value at the boundary.
func ParseJobStatus(s string) (JobStatus, error) {
	switch JobStatus(s) {
	case JobStatusPending, JobStatusProcessing, JobStatusComplete, JobStatusError, JobStatusCancelled:
		return JobStatus(s), nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// Terminal reports whether the status has no outgoing transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusComplete || s == JobStatusError || s == JobStatusCancelled
}

// Job tracks one ingestion run for a seller.
type Job struct {
	ID           string    `json:"job_id" db:"job_id"`
	Seller       string    `json:"seller_username" db:"seller_username"`
	Status       JobStatus `json:"status" db:"status"`
	Progress     int       `json:"progress" db:"progress"`
	Total        int       `json:"total" db:"total"`
	CurrentStep  string    `json:"current_step" db:"current_step"`
	ErrorMessage *string   `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type SellerStatus string

const (
	SellerStatusProcessing SellerStatus = "processing"
	SellerStatusComplete   SellerStatus = "complete"
)

// Seller is one cached seller inventory.
type Seller struct {
	Username      string       `json:"username" db:"username"`
	LastUpdated   time.Time    `json:"last_updated" db:"last_updated"`
	TotalReleases int          `json:"total_releases" db:"total_releases"`
	Status        SellerStatus `json:"status" db:"status"`
}

// Release is one catalog entry in a seller's inventory, enriched with
// community rating data and a confidence-adjusted score.
type Release struct {
	ID             int         `json:"id" db:"id"`
	Seller         string      `json:"seller_username" db:"seller_username"`
	ArtistTitle    string      `json:"artist_title" db:"artist_title"`
	Artist         string      `json:"artist" db:"artist"`
	Title          string      `json:"title" db:"title"`
	Label          string      `json:"label" db:"label"`
	Year           int         `json:"year" db:"year"`
	Genres         StringSlice `json:"genres" db:"genres"`
	Styles         StringSlice `json:"styles" db:"styles"`
	AvgRating      float64     `json:"avg_rating" db:"avg_rating"`
	NumRatings     int         `json:"num_ratings" db:"num_ratings"`
	Score          float64     `json:"bayesian_score" db:"bayesian_score"`
	Price          float64     `json:"price" db:"price"` // lowest observed, 0 means unknown
	HaveCount      int         `json:"have_count" db:"have_count"`
	WantCount      int         `json:"want_count" db:"want_count"`
	YouTubeVideoID string      `json:"youtube_video_id,omitempty" db:"youtube_video_id"`
	Videos         VideoLinks  `json:"videos,omitempty" db:"video_urls"`
	URL            string      `json:"url" db:"url"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}

// VideoLink is one media link embedded in a release's detail page.
type VideoLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// SellerSnapshot is a seller record together with its score-ordered releases.
type SellerSnapshot struct {
	Seller
	Releases []Release `json:"releases"`
}
