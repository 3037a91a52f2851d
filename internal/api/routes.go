// Package api exposes the show catalog, the cue-list editor operations,
// the console export endpoints and the script import over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/LightBlast-creator/cuex/internal/config"
	"github.com/LightBlast-creator/cuex/internal/export"
	"github.com/LightBlast-creator/cuex/internal/extraction"
	"github.com/LightBlast-creator/cuex/internal/show"
	"github.com/LightBlast-creator/cuex/internal/storage/sqlite"
	"github.com/LightBlast-creator/cuex/pkg/logger"
)

// Router is the API router
type Router struct {
	handler    *Handler
	middleware *Middleware
	config     *config.Config
	logger     *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(repo *show.Repository, contacts *sqlite.ContactStorage, pipeline *extraction.Pipeline, encoder *export.Encoder, config *config.Config, log *logger.Logger) *Router {
	return &Router{
		handler:    NewHandler(repo, contacts, pipeline, encoder, log),
		middleware: NewMiddleware(log),
		config:     config,
		logger:     log.Named("api-router"),
	}
}

// Routes returns the API routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(r.middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Recoverer)
	router.Use(r.middleware.CORS(r.config.Server.CORSAllowedOrigins))

	// API routes
	router.Route("/api/v1", func(router chi.Router) {
		// Show routes
		router.Post("/shows", r.handler.CreateShow)
		router.Get("/shows", r.handler.ListShows)
		router.Get("/shows/{id}", r.handler.GetShow)
		router.Delete("/shows/{id}", r.handler.DeleteShow)
		router.Post("/shows/{id}/duplicate", r.handler.DuplicateShow)
		router.Put("/shows/{id}/meta", r.handler.UpdateShowMeta)
		router.Put("/shows/{id}/rig", r.handler.UpdateShowRig)
		router.Get("/shows/{id}/power", r.handler.GetShowPower)

		// Song routes
		router.Post("/shows/{id}/songs", r.handler.CreateSong)
		router.Delete("/shows/{id}/songs", r.handler.ClearSongs)
		router.Put("/shows/{id}/songs/{songID}", r.handler.UpdateSong)
		router.Delete("/shows/{id}/songs/{songID}", r.handler.DeleteSong)
		router.Post("/shows/{id}/songs/{songID}/move", r.handler.MoveSong)

		// Checklist routes
		router.Post("/shows/{id}/checklists/{category}", r.handler.AddCheckItem)
		router.Post("/shows/{id}/checklists/{category}/{itemID}/toggle", r.handler.ToggleCheckItem)
		router.Put("/shows/{id}/checklists/{category}/{itemID}", r.handler.UpdateCheckItem)
		router.Delete("/shows/{id}/checklists/{category}/{itemID}", r.handler.DeleteCheckItem)

		// Contact routes
		router.Get("/shows/{id}/contacts", r.handler.GetContacts)
		router.Post("/shows/{id}/contacts", r.handler.CreateContact)
		router.Put("/shows/{id}/contacts/{contactID}", r.handler.UpdateContact)
		router.Delete("/shows/{id}/contacts/{contactID}", r.handler.DeleteContact)

		// Console export routes
		router.Get("/shows/{id}/export/{format}", r.handler.ExportShow)

		// Script import routes
		router.Post("/shows/{id}/import/script", r.handler.ImportScript)
		router.Post("/shows/{id}/import/script/commit", r.handler.CommitScriptImport)

		// Health check
		router.Get("/health", r.handler.GetHealth)
	})

	return router
}
