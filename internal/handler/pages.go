package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/text/unicode/norm"

	mw "github.com/mark-c-hall/movie-search/internal/middleware"
	"github.com/mark-c-hall/movie-search/internal/search"
)

// controller returns the caller's session controller, starting a session
// when the cookie is missing or stale.
func (h *Handler) controller(w http.ResponseWriter, r *http.Request) (*search.Controller, string) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if ctrl, err := h.store.Get(c.Value); err == nil {
			return ctrl, c.Value
		}
	}

	id, ctrl := h.store.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	h.logger.DebugContext(r.Context(), "session started", "session_id", id, "request_id", mw.RequestID(r.Context()))
	return ctrl, id
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctrl, id := h.controller(w, r)

	state := ctrl.Snapshot()
	notices := ctrl.TakeNotices()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.renderer.Render(w, state, notices); err != nil {
		h.logger.ErrorContext(r.Context(), "render failed",
			"error", err,
			"session_id", id,
			"request_id", mw.RequestID(r.Context()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// handleSearch is the search bar's submit. Blank input never reaches the
// controller.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctrl, id := h.controller(w, r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if query := normalizeQuery(r.PostFormValue("query")); query != "" {
		h.logger.InfoContext(r.Context(), "search submitted",
			"query", query,
			"session_id", id,
			"request_id", mw.RequestID(r.Context()),
		)
		ctrl.HandleSearch(r.Context(), query)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleSelectMovie(w http.ResponseWriter, r *http.Request) {
	ctrl, _ := h.controller(w, r)

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		http.Error(w, "invalid movie id", http.StatusBadRequest)
		return
	}

	if err := ctrl.SelectMovieByID(id); err != nil {
		if errors.Is(err, search.ErrMovieNotFound) {
			http.Error(w, "movie not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleCloseModal(w http.ResponseWriter, r *http.Request) {
	ctrl, _ := h.controller(w, r)
	ctrl.CloseModal()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleState returns the snapshot without consuming pending notices.
func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	ctrl, _ := h.controller(w, r)
	w.Header().Set("Cache-Control", "no-store")
	h.writeJSON(w, r, http.StatusOK, ctrl.Snapshot())
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	js, err := json.Marshal(data)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "encode response failed", "error", err, "request_id", mw.RequestID(r.Context()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
}

func normalizeQuery(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
