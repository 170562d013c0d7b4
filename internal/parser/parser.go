package parser

import (
	"errors"

	"github.com/maltedev/itch-scraper/internal/models"
)

// ErrMissingTitle is returned when a detail page has no usable title.
var ErrMissingTitle = errors.New("game title not found")

// Parser turns raw marketplace HTML into models. Implementations never fail
// because an optional field or a single listing cell is missing.
type Parser interface {
	ParseListing(html string) (*Listing, error)
	ParseGameInfo(html string, pageURL string) (*Detail, error)
}

// Listing is the parsed content of a category or search page.
type Listing struct {
	Results    []models.GameResult
	Skipped    []Skip
	Pagination models.Pagination
}

// Skip marks a listing cell that was dropped.
type Skip struct {
	Index  int
	Reason string
}

// Detail is a parsed detail page plus the field groups it did not contain.
type Detail struct {
	Info    *models.GameInfo
	Missing []string
}
