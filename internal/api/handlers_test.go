package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/maltedev/itch-scraper/internal/models"
	"github.com/maltedev/itch-scraper/internal/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	lastCall  string
	lastPage  int
	lastQuery string
	lastID    string
	err       error
}

func (f *fakeProvider) page(call string, page int) (*models.SearchPage[models.GameResult], error) {
	f.lastCall = call
	f.lastPage = page
	if f.err != nil {
		return nil, f.err
	}
	return &models.SearchPage[models.GameResult]{
		CurrentPage: models.IntPtr(page),
		Results: []models.GameResult{
			{ID: "a", Title: "A", URL: "https://itch.io/games/a", IsFree: true},
		},
	}, nil
}

func (f *fakeProvider) FetchNewAndPopular(ctx context.Context, page int) (*models.SearchPage[models.GameResult], error) {
	return f.page("new-and-popular", page)
}

func (f *fakeProvider) FetchTopSellers(ctx context.Context, page int) (*models.SearchPage[models.GameResult], error) {
	return f.page("top-sellers", page)
}

func (f *fakeProvider) FetchTopRated(ctx context.Context, page int) (*models.SearchPage[models.GameResult], error) {
	return f.page("top-rated", page)
}

func (f *fakeProvider) FetchNewest(ctx context.Context, page int) (*models.SearchPage[models.GameResult], error) {
	return f.page("newest", page)
}

func (f *fakeProvider) Search(ctx context.Context, query string, page int) (*models.SearchPage[models.GameResult], error) {
	f.lastQuery = query
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search: %w", scraper.ErrEmptyQuery)
	}
	return f.page("search", page)
}

func (f *fakeProvider) FetchGameInfo(ctx context.Context, idOrURL string) (*models.GameInfo, error) {
	f.lastCall = "info"
	f.lastID = idOrURL
	if f.err != nil {
		return nil, f.err
	}
	return &models.GameInfo{ID: "a", Title: "A", URL: "https://itch.io/games/a", IsFree: true}, nil
}

func newTestServer(t *testing.T, provider *fakeProvider) *httptest.Server {
	t.Helper()

	h := NewHandlers(provider, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	r := chi.NewRouter()
	r.Route("/api", h.Routes)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, u string) (int, map[string]any) {
	t.Helper()

	resp, err := http.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestListingEndpoints(t *testing.T) {
	tests := []struct {
		path     string
		call     string
		wantPage int
	}{
		{"/api/games/new-and-popular", "new-and-popular", 1},
		{"/api/games/top-sellers?page=3", "top-sellers", 3},
		{"/api/games/top-rated?page=abc", "top-rated", 1},
		{"/api/games/newest?page=-2", "newest", 1},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			provider := &fakeProvider{}
			srv := newTestServer(t, provider)

			status, body := getJSON(t, srv.URL+tt.path)
			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, tt.call, provider.lastCall)
			assert.Equal(t, tt.wantPage, provider.lastPage)
			assert.Equal(t, float64(tt.wantPage), body["currentPage"])
			assert.Len(t, body["results"], 1)
		})
	}
}

func TestSearchEndpoint(t *testing.T) {
	t.Run("missing q is a bad request", func(t *testing.T) {
		provider := &fakeProvider{}
		srv := newTestServer(t, provider)

		status, body := getJSON(t, srv.URL+"/api/games/search")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, `Query parameter "q" is required`, body["error"])
		assert.Empty(t, provider.lastCall)
	})

	t.Run("blank q is a bad request", func(t *testing.T) {
		srv := newTestServer(t, &fakeProvider{})

		status, _ := getJSON(t, srv.URL+"/api/games/search?q=%20%20")
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("query and page are forwarded", func(t *testing.T) {
		provider := &fakeProvider{}
		srv := newTestServer(t, provider)

		status, _ := getJSON(t, srv.URL+"/api/games/search?q=horror&page=2")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "horror", provider.lastQuery)
		assert.Equal(t, 2, provider.lastPage)
	})
}

func TestGameInfoEndpoint(t *testing.T) {
	t.Run("bare id", func(t *testing.T) {
		provider := &fakeProvider{}
		srv := newTestServer(t, provider)

		status, body := getJSON(t, srv.URL+"/api/games/info/cool-game")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "cool-game", provider.lastID)
		assert.Equal(t, "A", body["title"])
		assert.Equal(t, true, body["isFree"])
	})

	t.Run("escaped absolute url", func(t *testing.T) {
		provider := &fakeProvider{}
		srv := newTestServer(t, provider)

		target := "https://dev.itch.io/cool-game"
		status, _ := getJSON(t, srv.URL+"/api/games/info/"+url.PathEscape(target))
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, target, provider.lastID)
	})
}

func TestProviderErrorsAreServerErrors(t *testing.T) {
	provider := &fakeProvider{err: errors.New("fetch category newest: http request failed")}
	srv := newTestServer(t, provider)

	for _, path := range []string{"/api/games/newest", "/api/games/search?q=x", "/api/games/info/x"} {
		status, body := getJSON(t, srv.URL+path)
		assert.Equal(t, http.StatusInternalServerError, status, path)
		assert.Contains(t, body["error"], "http request failed")
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{})

	status, body := getJSON(t, srv.URL+"/api/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, serviceName, body["service"])
	assert.Equal(t, "2024-01-02T03:04:05Z", body["timestamp"])
}
