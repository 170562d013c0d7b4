package scraper

import (
	"context"
	"errors"

	"github.com/maltedev/itch-scraper/internal/httpclient"
	"github.com/maltedev/itch-scraper/internal/models"
	"github.com/maltedev/itch-scraper/internal/parser"
)

var (
	ErrEmptyQuery   = errors.New("search query must not be empty")
	ErrMissingTitle = parser.ErrMissingTitle
)

// Provider is the minimum every upstream source offers.
type Provider interface {
	Search(ctx context.Context, query string, page int) (*models.SearchPage[models.GameResult], error)
	FetchGameInfo(ctx context.Context, idOrURL string) (*models.GameInfo, error)
}

// GameProvider adds the curated catalog views of a game marketplace.
type GameProvider interface {
	Provider
	FetchNewAndPopular(ctx context.Context, page int) (*models.SearchPage[models.GameResult], error)
	FetchTopSellers(ctx context.Context, page int) (*models.SearchPage[models.GameResult], error)
	FetchTopRated(ctx context.Context, page int) (*models.SearchPage[models.GameResult], error)
	FetchNewest(ctx context.Context, page int) (*models.SearchPage[models.GameResult], error)
}

// Fetcher is the transport the scraper needs. *httpclient.Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, path string, opts ...httpclient.RequestOption) (string, error)
}

type Category string

const (
	CategoryNewAndPopular Category = "new-and-popular"
	CategoryTopSellers    Category = "top-sellers"
	CategoryTopRated      Category = "top-rated"
	CategoryNewest        Category = "newest"
)

// Categories lists the curated listing views.
var Categories = []Category{
	CategoryNewAndPopular,
	CategoryTopSellers,
	CategoryTopRated,
	CategoryNewest,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
