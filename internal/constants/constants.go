// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort         = "5001"
	DefaultDBPath       = "digger.db"
	DefaultUserAgent    = "Digger/1.0 (DiscogsBestRated)"
	DefaultDiscogsURL   = "https://api.discogs.com"
	DefaultYouTubeURL   = "https://www.googleapis.com/youtube/v3"
	DefaultPollInterval = 2 * time.Second
	DefaultHTTPTimeout  = 30 * time.Second
	YouTubeHTTPTimeout  = 5 * time.Second
)

// Rate limiting and retries
const (
	// DefaultRetryCount bounds total attempts per request, throttled or not.
	DefaultRetryCount = 3
	// DefaultRequestInterval is the conservative pacing before the first
	// rate-limit headers arrive.
	DefaultRequestInterval = 1 * time.Second
	// DefaultRetryAfter applies when a 429 carries no Retry-After header.
	DefaultRetryAfter = 60 * time.Second
	// RateLimitWindow is the Discogs quota window the telemetry headers describe.
	RateLimitWindow = 60 * time.Second
	// RateLimitLowWater is the remaining-quota mark below which pacing doubles.
	RateLimitLowWater = 10
	// RateLimitBuffer pads the computed interval to stay under the quota.
	RateLimitBuffer = 1.1
)

// Ingestion
const (
	InventoryPerPage    = 100
	DefaultMaxAgeHours  = 24
	JobRetentionDays    = 7
	ProgressLogInterval = 10
)

// Scoring
const (
	ScorePriorMean  = 2.5
	ScoreMinRatings = 10
)

// Sentinels for missing catalog metadata
const (
	UnknownArtist = "Unknown Artist"
	UnknownTitle  = "Unknown Title"
)

// ReleaseURLPrefix is the canonical public page for a release id.
const ReleaseURLPrefix = "https://www.discogs.com/release/"
