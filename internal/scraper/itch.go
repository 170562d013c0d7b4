package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/maltedev/itch-scraper/internal/models"
	"github.com/maltedev/itch-scraper/internal/parser"
)

const DefaultBaseURL = "https://itch.io"

var ErrEmptyGameID = errors.New("game id must not be empty")

// ItchScraper is the itch.io provider. It holds no state between calls
// beyond its configuration, so one instance may serve concurrent callers.
type ItchScraper struct {
	fetcher Fetcher
	parser  parser.Parser
	baseURL string
	logger  *slog.Logger
}

var _ GameProvider = (*ItchScraper)(nil)

func NewItchScraper(fetcher Fetcher, baseURL string, logger *slog.Logger) *ItchScraper {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if logger == nil {
		logger = slog.Default()
	}

	return &ItchScraper{
		fetcher: fetcher,
		parser:  parser.NewItchParser(baseURL),
		baseURL: baseURL,
		logger:  logger.With("component", "itch_scraper"),
	}
}

func (s *ItchScraper) FetchNewAndPopular(ctx context.Context, page int) (*models.SearchPage[models.GameResult], error) {
	return s.FetchByCategory(ctx, CategoryNewAndPopular, page)
}

func (s *ItchScraper) FetchTopSellers(ctx context.Context, page int) (*models.SearchPage[models.GameResult], error) {
	return s.FetchByCategory(ctx, CategoryTopSellers, page)
}

func (s *ItchScraper) FetchTopRated(ctx context.Context, page int) (*models.SearchPage[models.GameResult], error) {
	return s.FetchByCategory(ctx, CategoryTopRated, page)
}

func (s *ItchScraper) FetchNewest(ctx context.Context, page int) (*models.SearchPage[models.GameResult], error) {
	return s.FetchByCategory(ctx, CategoryNewest, page)
}

// FetchByCategory loads one page of a curated listing view.
func (s *ItchScraper) FetchByCategory(ctx context.Context, category Category, page int) (*models.SearchPage[models.GameResult], error) {
	page = normalizePage(page)

	path := "/games/" + string(category)
	if page > 1 {
		path = fmt.Sprintf("%s?page=%d", path, page)
	}

	return s.listing(ctx, "fetch category "+string(category), path, page)
}

// Search rejects blank queries before touching the network.
func (s *ItchScraper) Search(ctx context.Context, query string, page int) (*models.SearchPage[models.GameResult], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search: %w", ErrEmptyQuery)
	}
	page = normalizePage(page)

	path := fmt.Sprintf("/search?q=%s&page=%d", url.QueryEscape(query), page)

	return s.listing(ctx, "search", path, page)
}

func (s *ItchScraper) listing(ctx context.Context, op, path string, page int) (*models.SearchPage[models.GameResult], error) {
	s.logger.Info("fetching listing", "op", op, "path", path, "page", page)

	html, err := s.fetcher.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	listing, err := s.parser.ParseListing(html)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, skip := range listing.Skipped {
		s.logger.Debug("skipped listing cell", "op", op, "index", skip.Index, "reason", skip.Reason)
	}

	s.logger.Info("extracted listing",
		"op", op,
		"count", len(listing.Results),
		"skipped", len(listing.Skipped),
	)

	return &models.SearchPage[models.GameResult]{
		CurrentPage: models.IntPtr(page),
		HasNextPage: listing.Pagination.HasNextPage,
		TotalPages:  listing.Pagination.TotalPages,
		Results:     listing.Results,
	}, nil
}

// FetchGameInfo accepts a bare game id, a site-relative path or an absolute URL.
func (s *ItchScraper) FetchGameInfo(ctx context.Context, idOrURL string) (*models.GameInfo, error) {
	idOrURL = strings.TrimSpace(idOrURL)
	if idOrURL == "" {
		return nil, fmt.Errorf("fetch game info: %w", ErrEmptyGameID)
	}

	gameURL := s.ResolveGameURL(idOrURL)
	s.logger.Info("fetching game info", "url", gameURL)

	html, err := s.fetcher.Get(ctx, gameURL)
	if err != nil {
		return nil, fmt.Errorf("fetch game info: %w", err)
	}

	detail, err := s.parser.ParseGameInfo(html, gameURL)
	if err != nil {
		return nil, fmt.Errorf("fetch game info: %w", err)
	}

	if len(detail.Missing) > 0 {
		s.logger.Debug("game page missing fields", "url", gameURL, "fields", detail.Missing)
	}

	return detail.Info, nil
}

// ResolveGameURL maps an id or path onto the canonical detail URL.
func (s *ItchScraper) ResolveGameURL(idOrURL string) string {
	switch {
	case strings.HasPrefix(idOrURL, "http://"), strings.HasPrefix(idOrURL, "https://"):
		return idOrURL
	case strings.HasPrefix(idOrURL, "/"):
		return parser.ToAbsoluteURL(idOrURL, s.baseURL)
	default:
		return s.baseURL + "/games/" + idOrURL
	}
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
