package app

import (
	"context"
	"testing"
	"time"

	"github.com/calvares/digger/internal/discogs"
	"github.com/calvares/digger/internal/domain"
	"github.com/calvares/digger/internal/logger"
	"github.com/calvares/digger/internal/store"
)

func details(artist, title string) *discogs.ReleaseDetails {
	return &discogs.ReleaseDetails{
		Artist:     artist,
		Title:      title,
		AvgRating:  4.0,
		NumRatings: 20,
		Genres:     []string{"Electronic"},
	}
}

func newTestIngestor(db *store.DB, dc *fakeDiscogs) *Ingestor {
	log := logger.Default()
	return NewIngestor(db, NewScanner(dc, log), NewEnricher(dc, &fakeYouTube{}, log), log)
}

func pendingJob(t *testing.T, db *store.DB, id, seller string) *domain.Job {
	t.Helper()
	job := &domain.Job{
		ID:        id,
		Seller:    seller,
		Status:    domain.JobStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.CreateJob(job); err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	return job
}

func TestIngestor_Run(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	dc := &fakeDiscogs{
		pages: map[int]*discogs.InventoryPage{
			1: inventoryPage(1, 1, 2, listing(1, 10), listing(2, 15)),
		},
		details: map[int]*discogs.ReleaseDetails{
			1: details("Artist One", "Title One"),
			2: details("Artist Two", "Title Two"),
		},
	}
	ingestor := newTestIngestor(db, dc)
	job := pendingJob(t, db, "job-1", "vinyl_dealer")

	ingestor.Run(context.Background(), job)

	fetched, err := db.GetJob("job-1")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if fetched.Status != domain.JobStatusComplete {
		t.Fatalf("Expected status complete, got %s (error: %v)", fetched.Status, fetched.ErrorMessage)
	}
	if fetched.Progress != 2 || fetched.Total != 2 {
		t.Errorf("Expected progress 2/2, got %d/%d", fetched.Progress, fetched.Total)
	}

	snap, err := db.GetSellerSnapshot("vinyl_dealer", 24*time.Hour)
	if err != nil {
		t.Fatalf("GetSellerSnapshot failed: %v", err)
	}
	if snap == nil {
		t.Fatal("Expected seller snapshot")
	}
	if snap.Seller.Status != domain.SellerStatusComplete {
		t.Errorf("Expected seller complete, got %s", snap.Seller.Status)
	}
	if len(snap.Releases) != 2 {
		t.Errorf("Expected 2 releases, got %d", len(snap.Releases))
	}
}

func TestIngestor_ResumeSkipsStoredReleases(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	// Release 1 survived a previous interrupted run.
	stored := &domain.Release{ID: 1, Artist: "Stored Artist", Title: "Stored Title", ArtistTitle: "Stored Artist - Stored Title", Score: 3.9}
	if err := db.UpsertRelease("vinyl_dealer", stored); err != nil {
		t.Fatalf("UpsertRelease failed: %v", err)
	}

	dc := &fakeDiscogs{
		pages: map[int]*discogs.InventoryPage{
			1: inventoryPage(1, 1, 2, listing(1, 10), listing(2, 15)),
		},
		details: map[int]*discogs.ReleaseDetails{
			2: details("Artist Two", "Title Two"),
		},
	}
	ingestor := newTestIngestor(db, dc)
	job := pendingJob(t, db, "job-1", "vinyl_dealer")

	ingestor.Run(context.Background(), job)

	if dc.detailCalls[1] != 0 {
		t.Errorf("Expected no re-enrichment of stored release, got %d calls", dc.detailCalls[1])
	}
	if dc.detailCalls[2] != 1 {
		t.Errorf("Expected one detail fetch for new release, got %d", dc.detailCalls[2])
	}

	fetched, _ := db.GetJob("job-1")
	if fetched.Status != domain.JobStatusComplete {
		t.Fatalf("Expected status complete, got %s", fetched.Status)
	}
	if fetched.Progress != 2 || fetched.Total != 2 {
		t.Errorf("Expected progress 2/2 counting skipped items, got %d/%d", fetched.Progress, fetched.Total)
	}

	snap, _ := db.GetSellerSnapshot("vinyl_dealer", 24*time.Hour)
	if len(snap.Releases) != 2 {
		t.Fatalf("Expected stored release carried into final data, got %d releases", len(snap.Releases))
	}
	found := false
	for _, r := range snap.Releases {
		if r.ID == 1 && r.Artist == "Stored Artist" {
			found = true
		}
	}
	if !found {
		t.Error("Expected previously stored release in final snapshot")
	}
}

func TestIngestor_CancelledJobWritesNothing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	dc := &fakeDiscogs{
		pages: map[int]*discogs.InventoryPage{
			1: inventoryPage(1, 1, 1, listing(1, 10)),
		},
		details: map[int]*discogs.ReleaseDetails{1: details("A", "B")},
	}
	ingestor := newTestIngestor(db, dc)
	job := pendingJob(t, db, "job-1", "vinyl_dealer")

	cancelled := domain.JobStatusCancelled
	if err := db.UpdateJob("job-1", store.JobUpdate{Status: &cancelled}); err != nil {
		t.Fatalf("UpdateJob failed: %v", err)
	}

	ingestor.Run(context.Background(), job)

	fetched, _ := db.GetJob("job-1")
	if fetched.Status != domain.JobStatusCancelled {
		t.Errorf("Expected status to stay cancelled, got %s", fetched.Status)
	}
	count, _ := db.CountReleases()
	if count != 0 {
		t.Errorf("Expected no releases written after cancellation, got %d", count)
	}
}

func TestIngestor_PurgedJobHaltsRun(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	dc := &fakeDiscogs{
		pages: map[int]*discogs.InventoryPage{
			1: inventoryPage(1, 1, 1, listing(1, 10)),
		},
		details: map[int]*discogs.ReleaseDetails{1: details("A", "B")},
	}
	ingestor := newTestIngestor(db, dc)
	job := pendingJob(t, db, "job-1", "vinyl_dealer")

	// Clearing the seller deletes its job history mid-flight.
	if err := db.DeleteSellerData("vinyl_dealer"); err != nil {
		t.Fatalf("DeleteSellerData failed: %v", err)
	}

	ingestor.Run(context.Background(), job)

	count, _ := db.CountReleases()
	if count != 0 {
		t.Errorf("Expected no releases written after purge, got %d", count)
	}
	if fetched, _ := db.GetJob("job-1"); fetched != nil {
		t.Errorf("Expected job to stay deleted, got %+v", fetched)
	}
}

func TestIngestor_NoInventoryFailsJob(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	dc := &fakeDiscogs{pages: map[int]*discogs.InventoryPage{
		1: inventoryPage(1, 1, 0),
	}}
	ingestor := newTestIngestor(db, dc)
	job := pendingJob(t, db, "job-1", "nobody")

	ingestor.Run(context.Background(), job)

	fetched, _ := db.GetJob("job-1")
	if fetched.Status != domain.JobStatusError {
		t.Fatalf("Expected status error, got %s", fetched.Status)
	}
	if fetched.ErrorMessage == nil || *fetched.ErrorMessage == "" {
		t.Error("Expected error message to be recorded")
	}
}

func TestIngestor_EnrichFailureSkipsItem(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	dc := &fakeDiscogs{
		pages: map[int]*discogs.InventoryPage{
			1: inventoryPage(1, 1, 2, listing(1, 10), listing(2, 15)),
		},
		details:    map[int]*discogs.ReleaseDetails{2: details("Artist Two", "Title Two")},
		detailErrs: map[int]error{1: &testErr{}},
	}
	ingestor := newTestIngestor(db, dc)
	job := pendingJob(t, db, "job-1", "vinyl_dealer")

	ingestor.Run(context.Background(), job)

	fetched, _ := db.GetJob("job-1")
	if fetched.Status != domain.JobStatusComplete {
		t.Fatalf("Expected status complete despite skipped item, got %s", fetched.Status)
	}
	if fetched.Progress != 2 {
		t.Errorf("Expected progress to count skipped item, got %d", fetched.Progress)
	}

	snap, _ := db.GetSellerSnapshot("vinyl_dealer", 24*time.Hour)
	if len(snap.Releases) != 1 || snap.Releases[0].ID != 2 {
		t.Errorf("Expected only the enriched release stored, got %+v", snap.Releases)
	}
}

type testErr struct{}

func (*testErr) Error() string { return "detail fetch failed" }
