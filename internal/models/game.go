package models

import "strings"

// DefaultCurrency is the only currency itch.io listings are parsed into.
const DefaultCurrency = "USD"

type Platform string

const (
	PlatformWindows Platform = "Windows"
	PlatformMac     Platform = "macOS"
	PlatformLinux   Platform = "Linux"
	PlatformAndroid Platform = "Android"
	PlatformWeb     Platform = "Web"
	PlatformIOS     Platform = "iOS"
)

type Genre string

const (
	GenreAction      Genre = "Action"
	GenreAdventure   Genre = "Adventure"
	GenrePuzzle      Genre = "Puzzle"
	GenreStrategy    Genre = "Strategy"
	GenreSimulation  Genre = "Simulation"
	GenreRPG         Genre = "RPG"
	GenrePlatformer  Genre = "Platformer"
	GenreFighting    Genre = "Fighting"
	GenreRacing      Genre = "Racing"
	GenreSports      Genre = "Sports"
	GenreHorror      Genre = "Horror"
	GenreVisualNovel Genre = "Visual Novel"
	GenreEducational Genre = "Educational"
	GenreMusic       Genre = "Music"
	GenreArcade      Genre = "Arcade"
)

// KnownGenres lists the curated genres in display order.
var KnownGenres = []Genre{
	GenreAction, GenreAdventure, GenrePuzzle, GenreStrategy, GenreSimulation,
	GenreRPG, GenrePlatformer, GenreFighting, GenreRacing, GenreSports,
	GenreHorror, GenreVisualNovel, GenreEducational, GenreMusic, GenreArcade,
}

// LookupGenre matches name against the curated genres ignoring case and
// surrounding space.
func LookupGenre(name string) (Genre, bool) {
	name = strings.TrimSpace(name)
	for _, g := range KnownGenres {
		if strings.EqualFold(string(g), name) {
			return g, true
		}
	}
	return "", false
}

func IsKnownGenre(name string) bool {
	_, ok := LookupGenre(name)
	return ok
}

type Price struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Formatted string  `json:"formatted"`
}

// GameResult is a single entry on a listing or search page.
type GameResult struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	Image     string     `json:"image,omitempty"`
	Price     *Price     `json:"price,omitempty"`
	IsFree    bool       `json:"isFree"`
	Platforms []Platform `json:"platforms,omitempty"`
	Developer string     `json:"developer,omitempty"`
}

// GameInfo holds everything extracted from a game's detail page.
type GameInfo struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	Image         string     `json:"image,omitempty"`
	Cover         string     `json:"cover,omitempty"`
	Description   string     `json:"description,omitempty"`
	Genres        []string   `json:"genres,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	Price         *Price     `json:"price,omitempty"`
	IsFree        bool       `json:"isFree"`
	IsOnSale      bool       `json:"isOnSale"`
	OriginalPrice *Price     `json:"originalPrice,omitempty"`
	Platforms     []Platform `json:"platforms,omitempty"`
	ReleaseDate   string     `json:"releaseDate,omitempty"`
	Rating        *float64   `json:"rating,omitempty"`
	RatingCount   *int       `json:"ratingCount,omitempty"`
	Developer     string     `json:"developer,omitempty"`
	Publisher     string     `json:"publisher,omitempty"`
	Screenshots   []string   `json:"screenshots,omitempty"`
	Videos        []string   `json:"videos,omitempty"`
}

type VideoType string

const (
	VideoTrailer  VideoType = "trailer"
	VideoGameplay VideoType = "gameplay"
	VideoOther    VideoType = "other"
)

type Video struct {
	URL  string    `json:"url"`
	Type VideoType `json:"type"`
}

// SearchPage is one page of results. Pagination fields are nil when the
// page did not expose them.
type SearchPage[T any] struct {
	CurrentPage  *int  `json:"currentPage,omitempty"`
	HasNextPage  *bool `json:"hasNextPage,omitempty"`
	TotalPages   *int  `json:"totalPages,omitempty"`
	TotalResults *int  `json:"totalResults,omitempty"`
	Results      []T   `json:"results"`
}

// Pagination is the page-level metadata found on listing pages.
type Pagination struct {
	HasNextPage *bool
	TotalPages  *int
}

// NewPrice builds a Price in the default currency.
func NewPrice(amount float64, formatted string) *Price {
	return &Price{
		Amount:    amount,
		Currency:  DefaultCurrency,
		Formatted: formatted,
	}
}

func (p *Price) IsValid() bool {
	return p != nil && p.Amount >= 0 && p.Currency != ""
}

// Validate returns the invariant violations of a listing result.
func (g *GameResult) Validate() []string {
	var errors []string

	if g.Title == "" {
		errors = append(errors, "title is required")
	}

	if g.URL == "" {
		errors = append(errors, "url is required")
	}

	if g.IsFree != (g.Price == nil) {
		errors = append(errors, "isFree must match price absence")
	}

	if g.Price != nil && !g.Price.IsValid() {
		errors = append(errors, "price must be non-negative with a currency")
	}

	return errors
}

// Validate returns the invariant violations of a detail record.
func (g *GameInfo) Validate() []string {
	var errors []string

	if g.Title == "" {
		errors = append(errors, "title is required")
	}

	if g.URL == "" {
		errors = append(errors, "url is required")
	}

	if g.IsFree != (g.Price == nil) {
		errors = append(errors, "isFree must match price absence")
	}

	if g.Price != nil && !g.Price.IsValid() {
		errors = append(errors, "price must be non-negative with a currency")
	}

	if g.IsOnSale && g.OriginalPrice == nil {
		errors = append(errors, "sale requires an original price")
	}

	if g.OriginalPrice != nil && !g.OriginalPrice.IsValid() {
		errors = append(errors, "original price must be non-negative with a currency")
	}

	return errors
}

func IntPtr(v int) *int {
	return &v
}

func BoolPtr(v bool) *bool {
	return &v
}

func Float64Ptr(v float64) *float64 {
	return &v
}
