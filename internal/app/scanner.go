package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/calvares/digger/internal/constants"
	"github.com/calvares/digger/internal/discogs"
	"github.com/calvares/digger/internal/logger"
)

// ErrNoInventory means the seller does not exist or has nothing for sale.
var ErrNoInventory = errors.New("seller has no inventory")

// Candidate is one unique release discovered in a seller's inventory,
// carrying the lowest price observed across its listings.
type Candidate struct {
	ID     int
	Artist string
	Title  string
	Year   int
	Price  float64
}

type Scanner struct {
	client discogs.ClientInterface
	logger *logger.Logger
}

func NewScanner(client discogs.ClientInterface, log *logger.Logger) *Scanner {
	return &Scanner{client: client, logger: log.WithComponent("scanner")}
}

// Scan walks every inventory page for the seller and returns the unique
// releases keyed by release id. Duplicate listings of the same release keep
// the lowest positive price. onPage runs after each fetched page; returning
// an error aborts the scan.
func (s *Scanner) Scan(ctx context.Context, seller string, onPage func(page, pages int) error) (map[int]Candidate, error) {
	candidates := make(map[int]Candidate)

	page := 1
	pages := 1
	for page <= pages {
		inv, err := s.client.GetInventoryPage(ctx, seller, page, constants.InventoryPerPage)
		if err != nil {
			if discogs.IsNotFound(err) {
				return nil, ErrNoInventory
			}
			// A mid-scan failure keeps whatever was already collected;
			// only a run with nothing to show fails outright.
			if len(candidates) > 0 {
				s.logger.Warn("Inventory scan stopped early", "seller", seller, "page", page, "unique", len(candidates), "error", err)
				break
			}
			return nil, fmt.Errorf("failed to fetch inventory page %d: %w", page, err)
		}

		// An empty page means the inventory ran out, whatever the
		// reported page count says.
		if len(inv.Listings) == 0 {
			break
		}
		pages = inv.Pagination.Pages

		for _, listing := range inv.Listings {
			id := listing.Release.ID
			if id == 0 {
				continue
			}
			existing, seen := candidates[id]
			if !seen {
				candidates[id] = Candidate{
					ID:     id,
					Artist: listing.Release.Artist,
					Title:  listing.Release.Title,
					Year:   listing.Release.Year,
					Price:  listing.Price.Value,
				}
				continue
			}
			// Multiple copies for sale: remember the cheapest real price.
			if listing.Price.Value > 0 && (existing.Price <= 0 || listing.Price.Value < existing.Price) {
				existing.Price = listing.Price.Value
				candidates[id] = existing
			}
		}

		s.logger.Debug("Scanned inventory page", "seller", seller, "page", page, "pages", pages, "unique", len(candidates))
		if onPage != nil {
			if err := onPage(page, pages); err != nil {
				return nil, err
			}
		}
		page++
	}

	if len(candidates) == 0 {
		return nil, ErrNoInventory
	}
	return candidates, nil
}
