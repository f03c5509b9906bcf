package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/calvares/digger/internal/domain"
)

// GetSellerSnapshot returns the seller and its releases ordered by score
// descending, or nil when the seller is absent or older than maxAge.
func (db *DB) GetSellerSnapshot(username string, maxAge time.Duration) (*domain.SellerSnapshot, error) {
	seller := domain.Seller{}
	err := db.Get(&seller,
		`SELECT username, last_updated, total_releases, status FROM sellers WHERE username = ? AND last_updated > ?`,
		username, time.Now().Add(-maxAge))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var releases []domain.Release
	err = db.Select(&releases,
		`SELECT id, seller_username, artist_title, artist, title, label, year, genres, styles,
			avg_rating, num_ratings, bayesian_score, price, have_count, want_count,
			youtube_video_id, video_urls, url, created_at
		FROM releases
		WHERE seller_username = ?
		ORDER BY bayesian_score DESC`,
		username)
	if err != nil {
		return nil, err
	}

	return &domain.SellerSnapshot{Seller: seller, Releases: releases}, nil
}

// ExistingReleases returns a seller's stored releases keyed by release id.
// The worker uses the key set to resume an interrupted run and the rows to
// carry already-enriched data into the final replace.
func (db *DB) ExistingReleases(username string) (map[int]domain.Release, error) {
	var releases []domain.Release
	err := db.Select(&releases,
		`SELECT id, seller_username, artist_title, artist, title, label, year, genres, styles,
			avg_rating, num_ratings, bayesian_score, price, have_count, want_count,
			youtube_video_id, video_urls, url, created_at
		FROM releases
		WHERE seller_username = ?`,
		username)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]domain.Release, len(releases))
	for _, r := range releases {
		byID[r.ID] = r
	}
	return byID, nil
}

// UpsertRelease stores one release, creating the seller in processing state
// on first contact and recomputing its stored release count. Replaying the
// same release replaces the row.
func (db *DB) UpsertRelease(username string, release *domain.Release) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO sellers (username, last_updated, total_releases, status) VALUES (?, ?, 0, 'processing')`,
		username, time.Now()); err != nil {
		return fmt.Errorf("failed to ensure seller: %w", err)
	}

	release.Seller = username
	if _, err := tx.NamedExec(
		`INSERT OR REPLACE INTO releases (id, seller_username, artist_title, artist, title, label, year,
			genres, styles, avg_rating, num_ratings, bayesian_score, price, have_count, want_count,
			youtube_video_id, video_urls, url)
		VALUES (:id, :seller_username, :artist_title, :artist, :title, :label, :year,
			:genres, :styles, :avg_rating, :num_ratings, :bayesian_score, :price, :have_count, :want_count,
			:youtube_video_id, :video_urls, :url)`,
		release); err != nil {
		return fmt.Errorf("failed to upsert release: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE sellers
		SET total_releases = (SELECT COUNT(*) FROM releases WHERE seller_username = ?),
			last_updated = ?
		WHERE username = ?`,
		username, time.Now(), username); err != nil {
		return fmt.Errorf("failed to update seller counts: %w", err)
	}

	return tx.Commit()
}

// ReplaceSellerData replaces all of a seller's releases wholesale and sets
// the aggregate status, finalizing or re-baselining the seller.
func (db *DB) ReplaceSellerData(username string, releases []domain.Release, status domain.SellerStatus) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO sellers (username, last_updated, total_releases, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			last_updated = excluded.last_updated,
			total_releases = excluded.total_releases,
			status = excluded.status`,
		username, time.Now(), len(releases), status); err != nil {
		return fmt.Errorf("failed to upsert seller: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM releases WHERE seller_username = ?`, username); err != nil {
		return fmt.Errorf("failed to clear releases: %w", err)
	}

	for i := range releases {
		releases[i].Seller = username
		if _, err := tx.NamedExec(
			`INSERT INTO releases (id, seller_username, artist_title, artist, title, label, year,
				genres, styles, avg_rating, num_ratings, bayesian_score, price, have_count, want_count,
				youtube_video_id, video_urls, url)
			VALUES (:id, :seller_username, :artist_title, :artist, :title, :label, :year,
				:genres, :styles, :avg_rating, :num_ratings, :bayesian_score, :price, :have_count, :want_count,
				:youtube_video_id, :video_urls, :url)`,
			&releases[i]); err != nil {
			return fmt.Errorf("failed to insert release %d: %w", releases[i].ID, err)
		}
	}

	return tx.Commit()
}

// SetSellerStatus updates only the aggregate status, leaving releases as-is.
func (db *DB) SetSellerStatus(username string, status domain.SellerStatus) error {
	_, err := db.Exec(`UPDATE sellers SET status = ?, last_updated = ? WHERE username = ?`,
		status, time.Now(), username)
	return err
}

// DeleteSellerData purges a seller: releases first, then job history, then
// the seller row, respecting referential integrity.
func (db *DB) DeleteSellerData(username string) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM releases WHERE seller_username = ?`, username); err != nil {
		return fmt.Errorf("failed to delete releases: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM jobs WHERE seller_username = ?`, username); err != nil {
		return fmt.Errorf("failed to delete jobs: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM sellers WHERE username = ?`, username); err != nil {
		return fmt.Errorf("failed to delete seller: %w", err)
	}

	return tx.Commit()
}

// ListSellers returns all seller records.
func (db *DB) ListSellers() ([]domain.Seller, error) {
	var sellers []domain.Seller
	err := db.Select(&sellers, `SELECT username, last_updated, total_releases, status FROM sellers ORDER BY username`)
	return sellers, err
}

// CountReleases returns the total number of stored releases.
func (db *DB) CountReleases() (int, error) {
	var count int
	err := db.Get(&count, `SELECT COUNT(*) FROM releases`)
	return count, err
}
