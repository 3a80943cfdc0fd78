package search

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/renqii/watchnest/internal/httputil"
)

type Handler struct {
	aggregator *Aggregator
}

func NewHandler(aggregator *Aggregator) *Handler {
	return &Handler{aggregator: aggregator}
}

func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.search)
	return r
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		httputil.WriteError(w, http.StatusBadRequest, "MISSING_QUERY", "q parameter required")
		return
	}

	kind, ok := ParseKind(r.URL.Query().Get("kind"))
	if !ok {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_KIND", "kind must be movie, anime, or all")
		return
	}

	results := h.aggregator.Search(r.Context(), query, kind)
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"total":   len(results),
	})
}
