package api

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/renqii/watchnest/internal/auth"
	"github.com/renqii/watchnest/internal/collections"
	"github.com/renqii/watchnest/internal/config"
	"github.com/renqii/watchnest/internal/httputil"
	"github.com/renqii/watchnest/internal/media"
	"github.com/renqii/watchnest/internal/provider"
	"github.com/renqii/watchnest/internal/provider/bangumi"
	"github.com/renqii/watchnest/internal/provider/douban"
	"github.com/renqii/watchnest/internal/provider/maoyan"
	"github.com/renqii/watchnest/internal/provider/tmdb"
	"github.com/renqii/watchnest/internal/search"
	"github.com/renqii/watchnest/internal/users"
	"github.com/renqii/watchnest/internal/version"
)

// NewServer wires repositories, provider adapters, and handlers into the
// API router. redisClient may be nil; search then runs uncached.
func NewServer(cfg *config.Config, database *sql.DB, redisClient *redis.Client) http.Handler {
	manager := auth.NewManager(cfg.JWTSecret, cfg.TokenExpiry)
	authMW := auth.NewMiddleware(manager)

	userRepo := users.NewRepository(database)
	mediaRepo := media.NewRepository(database)
	collectionRepo := collections.NewRepository(database)
	resolver := media.NewResolver(mediaRepo)

	var cache *search.Cache
	if redisClient != nil {
		cache = search.NewCache(redisClient, cfg.SearchCacheTTL)
	}

	movie, anime := buildAdapters(cfg)
	aggregator := search.NewAggregator(movie, anime, cache)

	userHandler := users.NewHandler(userRepo, manager)
	searchHandler := search.NewHandler(aggregator)
	collectionHandler := collections.NewHandler(collectionRepo, mediaRepo, resolver)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"version": version.Version})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", userHandler.AuthRouter())

		r.Group(func(r chi.Router) {
			r.Use(authMW.RequireAuth)
			r.Mount("/users", userHandler.Router())
			r.Mount("/search", searchHandler.Router())
			r.Mount("/collections", collectionHandler.Router())
		})
	})

	return r
}

// buildAdapters assembles the per-kind provider subsets. Anime queries go
// to the anime specialist only; tmdb serves the movie subset, where its
// animated-series hits still surface under the all filter.
func buildAdapters(cfg *config.Config) (movie, anime []provider.Adapter) {
	movie = []provider.Adapter{
		maoyan.New(cfg.ProviderTimeout),
		douban.New(cfg.ProviderTimeout),
	}
	anime = []provider.Adapter{
		bangumi.New(cfg.ProviderTimeout),
	}
	if cfg.TMDBAccessToken != "" {
		movie = append(movie, tmdb.New(cfg.TMDBAccessToken, cfg.ProviderTimeout))
	} else {
		log.Printf("api: TMDB_ACCESS_TOKEN not set, tmdb adapter disabled")
	}
	return movie, anime
}
