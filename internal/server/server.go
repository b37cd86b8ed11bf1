// Package server exposes the core to the mobile shell over HTTP.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/pivotfit/internal/catalog"
	"github.com/meltforce/pivotfit/internal/pivot"
	"github.com/meltforce/pivotfit/internal/program"
	"github.com/meltforce/pivotfit/internal/quota"
	"github.com/meltforce/pivotfit/internal/setlog"
	"github.com/meltforce/pivotfit/internal/swap"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	cat    catalog.Provider
	engine *pivot.Engine
	store  *program.Store
	sets   *setlog.Logger
	saver  *setlog.Autosaver
	swaps  *swap.Controller
	quota  *quota.Tracker
	ent    swap.Entitlements
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// Deps bundles the collaborators a Server needs.
type Deps struct {
	Catalog      catalog.Provider
	Engine       *pivot.Engine
	Store        *program.Store
	SetLogger    *setlog.Logger
	Autosaver    *setlog.Autosaver
	Swaps        *swap.Controller
	Quota        *quota.Tracker
	Entitlements swap.Entitlements
	APIKey       string
	Log          *slog.Logger
}

// New creates a Server with all routes configured.
func New(d Deps) *Server {
	s := &Server{
		cat:    d.Catalog,
		engine: d.Engine,
		store:  d.Store,
		sets:   d.SetLogger,
		saver:  d.Autosaver,
		swaps:  d.Swaps,
		quota:  d.Quota,
		ent:    d.Entitlements,
		log:    d.Log,
		apiKey: d.APIKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Read endpoints
	s.router.Get("/api/v1/exercises", s.handleListExercises)
	s.router.Get("/api/v1/exercises/{id}", s.handleGetExercise)
	s.router.Get("/api/v1/exercises/{id}/alternatives", s.handleAlternatives)
	s.router.Get("/api/v1/quota", s.handleQuota)
	s.router.Get("/api/v1/favorites", s.handleFavorites)
	s.router.Get("/api/v1/days/{day}", s.handleDayLog)
	s.router.Get("/api/v1/days/{day}/slots/{slot}", s.handleGetSlot)

	// Mutating endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Put("/api/v1/days/{day}/slots/{slot}/sets/{set}", s.handleSaveSet)
		r.Post("/api/v1/days/{day}/slots/{slot}/sets/{set}/toggle", s.handleToggleSet)
		r.Post("/api/v1/days/{day}/slots/{slot}/sets/{set}/edit", s.handleEditSet)
		r.Put("/api/v1/days/{day}/slots/{slot}/set-count", s.handleSaveSetCount)
		r.Delete("/api/v1/days/{day}/slots/{slot}/set-count", s.handleClearSetCount)
		r.Post("/api/v1/favorites/{id}/toggle", s.handleToggleFavorite)
		r.Post("/api/v1/swaps", s.handleSwapCheck)
		r.Post("/api/v1/swaps/{token}", s.handleSwapConfirm)
	})
}
