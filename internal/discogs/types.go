package discogs

import "github.com/calvares/digger/internal/domain"

// InventoryPage is one page of a seller's marketplace inventory.
type InventoryPage struct {
	Pagination Pagination `json:"pagination"`
	Listings   []Listing  `json:"listings"`
}

type Pagination struct {
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	PerPage int `json:"per_page"`
	Items   int `json:"items"`
}

// Listing is one item for sale. The same release may appear in several
// listings at different prices and conditions.
type Listing struct {
	ID      int64          `json:"id"`
	Price   Price          `json:"price"`
	Release ListingRelease `json:"release"`
}

type Price struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

// ListingRelease is the compact release stub embedded in a listing.
type ListingRelease struct {
	ID     int    `json:"id"`
	Artist string `json:"artist"`
	Title  string `json:"title"`
	Year   int    `json:"year"`
}

// ReleaseDetails is the enriched detail extracted from a release record.
type ReleaseDetails struct {
	AvgRating  float64
	NumRatings int
	HaveCount  int
	WantCount  int
	Genres     []string
	Styles     []string
	Year       int
	Label      string
	Artist     string
	Title      string
	Videos     []domain.VideoLink
}

// Wire shapes for the release endpoint.
type releaseResponse struct {
	Title     string    `json:"title"`
	Year      int       `json:"year"`
	Genres    []string  `json:"genres"`
	Styles    []string  `json:"styles"`
	Labels    []label   `json:"labels"`
	Artists   []artist  `json:"artists"`
	Videos    []video   `json:"videos"`
	Community community `json:"community"`
}

type community struct {
	Have   int             `json:"have"`
	Want   int             `json:"want"`
	Rating communityRating `json:"rating"`
}

type communityRating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type label struct {
	Name string `json:"name"`
}

type artist struct {
	Name string `json:"name"`
}

type video struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}
