package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

func router(logger zerolog.Logger, api *API) *chi.Mux {
	c := chi.NewMux()

	c.Use(
		middleware.RequestID,
		requestLogger(logger),
		middleware.RequestSize(64*1024),
		middleware.Recoverer,
	)

	c.Route("/internal", func(r chi.Router) {
		r.Get("/health", api.handleGetHealth())
	})

	c.Get("/events", api.handleEvents())

	c.Route("/sets", func(r chi.Router) {
		r.Get("/", api.handleGetSets())
		r.Get("/{key}", api.handleGetSet())
	})

	c.Get("/emotes/search", api.handleSearchEmotes())

	c.Route("/settings", func(r chi.Router) {
		r.Get("/", api.handleGetSettings())
		r.Put("/{key}", api.handlePutSetting())
	})

	c.Route("/rooms/{channelID}", func(r chi.Router) {
		r.Put("/", api.handlePutRoom())
		r.Delete("/", api.handleDeleteRoom())
		r.Post("/refresh", api.handleRefreshRoom())
		r.Post("/emotes", api.handleAddEmote())
		r.Get("/emotes/{emoteID}", api.handleGetEmote())
		r.Delete("/emotes/{emoteID}", api.handleDeleteEmote())
	})

	return c
}
