package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/julez-dev/stvsync/seventv"
	"github.com/julez-dev/stvsync/settings"
)

const defaultSearchLimit = 25

type setSummary struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Source string `json:"source"`
	Icon   string `json:"icon"`
	Emotes int    `json:"emotes"`
}

type settingBody struct {
	Value *bool `json:"value"`
}

type refreshResponse struct {
	Outcome string `json:"outcome"`
}

type mutationResponse struct {
	Changed bool `json:"changed"`
}

type emoteLookupResponse struct {
	Emote  seventv.Emote `json:"emote"`
	AppURL string        `json:"app_url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *API) handleGetHealth() http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "UP")
	})
}

func (a *API) handleGetSets() http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sets := a.registry.Sets()

		summaries := make([]setSummary, 0, len(sets))
		for _, set := range sets {
			summaries = append(summaries, setSummary{
				Key:    set.Key,
				Title:  set.Title,
				Source: set.Source,
				Icon:   set.Icon,
				Emotes: len(set.Emotes),
			})
		}

		a.writeJSON(w, r, http.StatusOK, summaries)
	})
}

func (a *API) handleGetSet() http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		set, ok := a.registry.Set(chi.URLParam(r, "key"))
		if !ok {
			a.writeError(w, r, http.StatusNotFound, "set not loaded")
			return
		}

		a.writeJSON(w, r, http.StatusOK, set)
	})
}

func (a *API) handleSearchEmotes() http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			a.writeError(w, r, http.StatusBadRequest, "query parameter q is required")
			return
		}

		limit := defaultSearchLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				a.writeError(w, r, http.StatusBadRequest, "limit must be a positive number")
				return
			}
			limit = parsed
		}

		a.writeJSON(w, r, http.StatusOK, a.registry.Search(query, limit))
	})
}

func (a *API) handleGetSettings() http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.writeJSON(w, r, http.StatusOK, a.settings.All())
	})
}

func (a *API) handlePutSetting() http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := a.getLoggerFrom(r.Context())

		var body settingBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Value == nil {
			a.writeError(w, r, http.StatusBadRequest, `body must be {"value": bool}`)
			return
		}

		key := chi.URLParam(r, "key")
		if err := a.settings.Set(key, *body.Value); err != nil {
			if errors.Is(err, settings.ErrUnknownKey) {
				a.writeError(w, r, http.StatusNotFound, err.Error())
				return
			}

			logger.Err(err).Str("key", key).Msg("could not store setting")
			a.writeError(w, r, http.StatusInternalServerError, "could not store setting")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func (a *API) handlePutRoom() http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, added := a.rooms.Add(chi.URLParam(r, "channelID")); added {
			w.WriteHeader(http.StatusCreated)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func (a *API) handleDeleteRoom() http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.rooms.Remove(chi.URLParam(r, "channelID")) {
			a.writeError(w, r, http.StatusNotFound, "room not observed")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func (a *API) handleRefreshRoom() http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := a.getLoggerFrom(r.Context())

		channelID := chi.URLParam(r, "channelID")
		room, ok := a.rooms.Get(channelID)
		if !ok {
			a.writeError(w, r, http.StatusNotFound, "room not observed")
			return
		}

		if a.cache != nil {
			if err := a.cache.Invalidate(r.Context(), channelID); err != nil {
				logger.Warn().Err(err).Str("channel_id", channelID).Msg("could not invalidate emote cache")
			}
		}

		outcome, err := a.channels.Refresh(r.Context(), room)
		if err != nil {
			logger.Err(err).Str("channel_id", channelID).Msg("could not refresh channel")

			if errors.Is(err, seventv.ErrUnknownChannel) {
				a.writeError(w, r, http.StatusNotFound, err.Error())
				return
			}

			a.writeError(w, r, http.StatusBadGateway, err.Error())
			return
		}

		a.writeJSON(w, r, http.StatusOK, refreshResponse{Outcome: outcome.String()})
	})
}

func (a *API) handleAddEmote() http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		room, ok := a.rooms.Get(chi.URLParam(r, "channelID"))
		if !ok {
			a.writeError(w, r, http.StatusNotFound, "room not observed")
			return
		}

		var e seventv.Emote
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			a.writeError(w, r, http.StatusBadRequest, "body must be a 7TV emote")
			return
		}

		if e.ID == "" || len(e.URLs) < 4 || len(e.Width) == 0 || len(e.Height) == 0 {
			a.writeError(w, r, http.StatusBadRequest, "emote needs an id, four urls and a width and height")
			return
		}

		force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

		a.writeJSON(w, r, http.StatusOK, mutationResponse{Changed: a.channels.AddEmote(room, e, force)})
	})
}

func (a *API) handleDeleteEmote() http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		room, ok := a.rooms.Get(chi.URLParam(r, "channelID"))
		if !ok {
			a.writeError(w, r, http.StatusNotFound, "room not observed")
			return
		}

		a.writeJSON(w, r, http.StatusOK, mutationResponse{Changed: a.channels.RemoveEmote(room, chi.URLParam(r, "emoteID"))})
	})
}

func (a *API) handleGetEmote() http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		room, ok := a.rooms.Get(chi.URLParam(r, "channelID"))
		if !ok {
			a.writeError(w, r, http.StatusNotFound, "room not observed")
			return
		}

		e, ok := a.channels.LookupEmote(room, chi.URLParam(r, "emoteID"))
		if !ok {
			a.writeError(w, r, http.StatusNotFound, "emote not in channel set")
			return
		}

		a.writeJSON(w, r, http.StatusOK, emoteLookupResponse{Emote: e, AppURL: a.urls.EmoteAppURL(e)})
	})
}

func (a *API) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := a.getLoggerFrom(r.Context())
		logger.Err(err).Msg("could not write json response")
	}
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	a.writeJSON(w, r, status, errorResponse{Error: msg})
}
