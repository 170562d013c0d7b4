package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/maltedev/itch-scraper/internal/models"
	"github.com/maltedev/itch-scraper/internal/scraper"
)

const serviceName = "itch-scraper-api"

type Handlers struct {
	games  scraper.GameProvider
	logger *slog.Logger
	now    func() time.Time
}

func NewHandlers(games scraper.GameProvider, logger *slog.Logger) *Handlers {
	return &Handlers{
		games:  games,
		logger: logger.With("component", "api"),
		now:    time.Now,
	}
}

// Routes mounts the game endpoints under r.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/health", h.Health)

	r.Route("/games", func(r chi.Router) {
		r.Get("/new-and-popular", h.listing(h.games.FetchNewAndPopular))
		r.Get("/top-sellers", h.listing(h.games.FetchTopSellers))
		r.Get("/top-rated", h.listing(h.games.FetchTopRated))
		r.Get("/newest", h.listing(h.games.FetchNewest))
		r.Get("/search", h.Search)
		r.Get("/info/{id}", h.GameInfo)
	})
}

type listFunc func(ctx context.Context, page int) (*models.SearchPage[models.GameResult], error)

func (h *Handlers) listing(fetch listFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := fetch(r.Context(), pageParam(r))
		if err != nil {
			h.logger.Error("failed to fetch listing", "path", r.URL.Path, "error", err)
			h.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		h.respondJSON(w, http.StatusOK, games)
	}
}

// Search handles GET /api/games/search?q=&page=
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		h.respondError(w, http.StatusBadRequest, `Query parameter "q" is required`)
		return
	}

	games, err := h.games.Search(r.Context(), query, pageParam(r))
	if err != nil {
		if errors.Is(err, scraper.ErrEmptyQuery) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to search games", "query", query, "error", err)
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, games)
}

// GameInfo handles GET /api/games/info/{id}. The id may be an escaped absolute URL.
func (h *Handlers) GameInfo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if unescaped, err := url.PathUnescape(id); err == nil {
		id = unescaped
	}

	info, err := h.games.FetchGameInfo(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to fetch game info", "id", id, "error", err)
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, info)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"service":   serviceName,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// pageParam falls back to 1 for missing, malformed or non-positive values.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Helper methods
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
