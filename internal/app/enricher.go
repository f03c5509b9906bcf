package app

import (
	"context"
	"fmt"

	"github.com/calvares/digger/internal/constants"
	"github.com/calvares/digger/internal/discogs"
	"github.com/calvares/digger/internal/domain"
	"github.com/calvares/digger/internal/logger"
	"github.com/calvares/digger/internal/rating"
	"github.com/calvares/digger/internal/youtube"
)

// Enricher turns an inventory candidate into a full release record: it pulls
// community rating data from the release endpoint, scores it, and looks up a
// playable video.
type Enricher struct {
	discogs discogs.ClientInterface
	youtube youtube.ClientInterface
	logger  *logger.Logger
}

func NewEnricher(dc discogs.ClientInterface, yt youtube.ClientInterface, log *logger.Logger) *Enricher {
	return &Enricher{discogs: dc, youtube: yt, logger: log.WithComponent("enricher")}
}

func (e *Enricher) Enrich(ctx context.Context, cand Candidate) (*domain.Release, error) {
	details, err := e.discogs.GetReleaseDetails(ctx, cand.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release %d: %w", cand.ID, err)
	}

	artist := details.Artist
	if artist == constants.UnknownArtist && cand.Artist != "" {
		artist = cand.Artist
	}
	title := details.Title
	if title == constants.UnknownTitle && cand.Title != "" {
		title = cand.Title
	}
	year := details.Year
	if year == 0 {
		year = cand.Year
	}

	release := &domain.Release{
		ID:          cand.ID,
		ArtistTitle: fmt.Sprintf("%s - %s", artist, title),
		Artist:      artist,
		Title:       title,
		Label:       details.Label,
		Year:        year,
		Genres:      details.Genres,
		Styles:      details.Styles,
		AvgRating:   details.AvgRating,
		NumRatings:  details.NumRatings,
		Score:       rating.Score(details.AvgRating, details.NumRatings),
		Price:       cand.Price,
		HaveCount:   details.HaveCount,
		WantCount:   details.WantCount,
		Videos:      details.Videos,
		URL:         fmt.Sprintf("%s%d", constants.ReleaseURLPrefix, cand.ID),
	}

	// Video lookup is best-effort; a missing video never fails the item.
	videoID, err := e.youtube.SearchVideo(ctx, artist, title)
	if err != nil {
		e.logger.WithRelease(cand.ID, release.ArtistTitle).Debug("Video lookup failed", "error", err)
	} else {
		release.YouTubeVideoID = videoID
	}

	return release, nil
}
