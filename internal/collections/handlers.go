package collections

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/renqii/watchnest/internal/auth"
	"github.com/renqii/watchnest/internal/httputil"
	"github.com/renqii/watchnest/internal/media"
	"github.com/renqii/watchnest/internal/provider"
)

type Handler struct {
	repo      *Repository
	mediaRepo *media.Repository
	resolver  *media.Resolver
}

func NewHandler(repo *Repository, mediaRepo *media.Repository, resolver *media.Resolver) *Handler {
	return &Handler{repo: repo, mediaRepo: mediaRepo, resolver: resolver}
}

func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.collect)
	r.Get("/status", h.checkStatus)
	r.Put("/{id}/status", h.updateStatus)
	r.Delete("/{id}", h.remove)
	return r
}

type collectRequest struct {
	provider.CandidateItem
	Status         string          `json:"status"`
	StaffActors    []string        `json:"staff_actors,omitempty"`
	StaffDirectors []string        `json:"staff_directors,omitempty"`
	Networks       []media.Network `json:"networks,omitempty"`
}

func (h *Handler) collect(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}

	var req collectRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_STATUS", err.Error())
		return
	}
	src, ok := provider.ParseSource(string(req.SourceType))
	if !ok {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_SOURCE", "unknown source_type")
		return
	}
	kind, ok := provider.ParseMediaKind(string(req.MediaKind))
	if !ok {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_MEDIA_TYPE", "unknown media_type")
		return
	}
	if req.SourceID == "" || req.TitleZh == "" {
		httputil.WriteError(w, http.StatusBadRequest, "MISSING_FIELD", "source_id and title_zh are required")
		return
	}

	item := toItem(&req, src, kind)
	mediaID, err := h.resolver.Resolve(r.Context(), item)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to resolve media")
		return
	}

	col, err := h.repo.Upsert(r.Context(), u, mediaID, status)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to save collection")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, col)
}

func toItem(req *collectRequest, src provider.Source, kind provider.MediaKind) *media.Item {
	item := &media.Item{
		SourceType:    src,
		SourceID:      req.SourceID,
		SourceURL:     req.SourceURL,
		MediaKind:     kind,
		TitleZh:       req.TitleZh,
		TitleOriginal: req.TitleOriginal,
		ReleaseDate:   req.ReleaseDate,
		Duration:      req.Duration,
		Year:          req.Year,
		PosterURL:     req.PosterURL,
		Summary:       req.Summary,
		Directors:     req.Directors,
		Actors:        req.Actors,
		Networks:      req.Networks,
		RatingDouban:  req.RatingDouban,
		RatingIMDB:    req.RatingIMDB,
		RatingBangumi: req.RatingBangumi,
		RatingMaoyan:  req.RatingMaoyan,
	}
	if req.Staff != "" || len(req.StaffActors) > 0 || len(req.StaffDirectors) > 0 {
		item.Staff = &media.Staff{
			Info:      req.Staff,
			Actors:    req.StaffActors,
			Directors: req.StaffDirectors,
		}
	}
	return item
}

func (h *Handler) checkStatus(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	src, ok := provider.ParseSource(r.URL.Query().Get("source_type"))
	if !ok {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_SOURCE", "unknown source_type")
		return
	}
	sourceID := r.URL.Query().Get("source_id")
	if sourceID == "" {
		httputil.WriteError(w, http.StatusBadRequest, "MISSING_FIELD", "source_id is required")
		return
	}

	col, err := h.repo.StatusBySource(r.Context(), u, src, sourceID)
	if errors.Is(err, ErrNotFound) {
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"collected": false})
		return
	}
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to check status")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"collected":     true,
		"collection_id": col.ID,
		"status":        col.Status,
	})
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid collection id")
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_STATUS", err.Error())
		return
	}

	err = h.repo.UpdateStatus(r.Context(), id, u, status)
	if errors.Is(err, ErrNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "NOT_FOUND", "collection not found")
		return
	}
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to update status")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"id": id.String(), "status": string(status)})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid collection id")
		return
	}

	err = h.repo.Delete(r.Context(), id, u)
	if errors.Is(err, ErrNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "NOT_FOUND", "collection not found")
		return
	}
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to delete collection")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"deleted": id.String()})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}

	var filter *Status
	if s := r.URL.Query().Get("status"); s != "" {
		status, err := ParseStatus(s)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "INVALID_STATUS", err.Error())
			return
		}
		filter = &status
	}

	cols, err := h.repo.ListByUser(r.Context(), u, filter)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to list collections")
		return
	}

	entries, err := h.enrich(r, cols)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to load media")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   len(entries),
	})
}

// enrich joins collection rows with their canonical media and picks the
// display source: bangumi for anime, tmdb otherwise, else whichever the
// row was first catalogued under.
func (h *Handler) enrich(r *http.Request, cols []Collection) ([]Entry, error) {
	entries := make([]Entry, 0, len(cols))
	if len(cols) == 0 {
		return entries, nil
	}

	ids := make([]uuid.UUID, 0, len(cols))
	for _, c := range cols {
		ids = append(ids, c.MediaID)
	}
	sources, err := h.mediaRepo.SourcesForMedia(r.Context(), ids)
	if err != nil {
		return nil, err
	}

	for _, c := range cols {
		m, err := h.mediaRepo.MediaByID(r.Context(), c.MediaID)
		if errors.Is(err, media.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		e := Entry{
			Media:        *m,
			CollectionID: c.ID,
			Status:       c.Status,
			CollectedAt:  c.CreatedAt,
		}
		if src := preferredSource(m.MediaKind, sources[c.MediaID]); src != nil {
			e.SourceType = src.SourceType
			e.SourceID = src.SourceID
			e.SourceURL = src.SourceURL
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func preferredSource(kind provider.MediaKind, sources []media.MediaSource) *media.MediaSource {
	if len(sources) == 0 {
		return nil
	}
	want := provider.SourceTMDB
	if kind == provider.KindAnime {
		want = provider.SourceBangumi
	}
	for i := range sources {
		if sources[i].SourceType == want {
			return &sources[i]
		}
	}
	return &sources[0]
}
