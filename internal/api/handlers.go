package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/devarchitect/internal/apperr"
	"github.com/starford/devarchitect/internal/architectservice"
	"github.com/starford/devarchitect/internal/prefs"
	"github.com/starford/devarchitect/internal/treeview"
)

// Handler holds API route handlers.
type Handler struct {
	svc *architectservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *architectservice.Service) *Handler {
	return &Handler{svc: svc}
}

// writeServiceError maps domain sentinels to status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrInputRejected), errors.Is(err, apperr.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrBusy):
		writeJSON(w, http.StatusConflict, errorBody(apperr.ErrBusy.Error()))
	case errors.Is(err, apperr.ErrServiceUnavailable), errors.Is(err, apperr.ErrMalformedResponse):
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// Generate handles POST /api/generate.
//
//	@Summary		Generate an architecture document from a prompt
//	@Tags			generation
//	@Accept			json
//	@Produce		json
//	@Param			body	body		GenerateRequest	true	"Application idea"
//	@Success		200		{object}	GenerateResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/generate [post]
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	doc, err := h.svc.Generate(r.Context(), req.Prompt)
	if err != nil {
		writeServiceError(w, "generate", err)
		return
	}
	writeJSON(w, http.StatusOK, GenerateResponse{Document: doc, State: h.svc.State()})
}

// State handles GET /api/state.
//
//	@Summary		Current generation state
//	@Tags			generation
//	@Produce		json
//	@Success		200	{object}	generation.State
//	@Security		BearerAuth
//	@Router			/state [get]
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.State())
}

// Acknowledge handles POST /api/state/ack.
//
//	@Summary		Return a presented success or failure to idle
//	@Tags			generation
//	@Produce		json
//	@Success		200	{object}	generation.State
//	@Security		BearerAuth
//	@Router			/state/ack [post]
func (h *Handler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Acknowledge())
}

// Tree handles GET /api/tree.
//
//	@Summary		Render the displayed folder structure
//	@Tags			generation
//	@Produce		json
//	@Param			collapsed	query		string	false	"Comma-separated row paths to collapse"
//	@Param			maxDepth	query		int		false	"Depth limit"
//	@Param			maxNodes	query		int		false	"Row limit"
//	@Success		200			{object}	treeview.View
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tree [get]
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	maxDepth, _ := strconv.Atoi(q.Get("maxDepth"))
	maxNodes, _ := strconv.Atoi(q.Get("maxNodes"))
	view, err := h.svc.Tree(treeview.Options{
		MaxDepth: min(maxDepth, treeview.DefaultMaxDepth),
		MaxNodes: min(maxNodes, treeview.DefaultMaxNodes),
		Expand:   treeview.ParseCollapsed(q.Get("collapsed")),
	})
	if err != nil {
		writeServiceError(w, "tree", err)
		return
	}
	if q.Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, view.String())
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ListHistory handles GET /api/history.
//
//	@Summary		List history entries, newest first
//	@Tags			history
//	@Produce		json
//	@Success		200	{object}	HistoryListResponse
//	@Security		BearerAuth
//	@Router			/history [get]
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	entries := h.svc.Summaries(r.Context())
	writeJSON(w, http.StatusOK, HistoryListResponse{Entries: entries, Total: len(entries)})
}

// ClearHistory handles DELETE /api/history.
//
//	@Summary		Delete every history entry
//	@Tags			history
//	@Success		204
//	@Security		BearerAuth
//	@Router			/history [delete]
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearHistory(r.Context()); err != nil {
		writeServiceError(w, "clear history", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetEntry handles GET /api/history/{id}.
//
//	@Summary		Get one history entry
//	@Tags			history
//	@Produce		json
//	@Param			id	path		string	true	"Entry id"
//	@Success		200	{object}	models.HistoryEntry
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/history/{id} [get]
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.Entry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "get entry", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// LoadEntry handles POST /api/history/{id}/load.
//
//	@Summary		Display a history entry without regenerating
//	@Tags			history
//	@Produce		json
//	@Param			id	path		string	true	"Entry id"
//	@Success		200	{object}	generation.State
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/history/{id}/load [post]
func (h *Handler) LoadEntry(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.LoadEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, "load entry", err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.State())
}

// Export handles GET /api/export.
//
//	@Summary		Download the displayed document, or a history entry, as Markdown
//	@Tags			export
//	@Produce		text/markdown
//	@Param			id				query	string	false	"History entry id"
//	@Param			If-None-Match	header	string	false	"ETag from a previous download"
//	@Success		200
//	@Success		304
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var (
		art architectservice.Artifact
		err error
	)
	if id := r.URL.Query().Get("id"); id != "" {
		art, err = h.svc.ExportEntry(r.Context(), id)
	} else {
		art, err = h.svc.Export()
	}
	if err != nil {
		writeServiceError(w, "export", err)
		return
	}

	etag := `"` + art.Checksum + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && strings.Trim(match, `"`) == art.Checksum {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.FileName))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, art.Content)
}

// Clipboard handles GET /api/clipboard/{section}.
//
//	@Summary		One section of the displayed document as indented JSON
//	@Tags			export
//	@Produce		json
//	@Param			section	path	string	true	"Section"	Enums(tech, folder, road)
//	@Success		200
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/clipboard/{section} [get]
func (h *Handler) Clipboard(w http.ResponseWriter, r *http.Request) {
	text, err := h.svc.Clipboard(chi.URLParam(r, "section"))
	if err != nil {
		writeServiceError(w, "clipboard", err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = io.WriteString(w, text)
}

// GetTheme handles GET /api/preferences/theme.
//
//	@Summary		Current theme and the accepted values
//	@Tags			preferences
//	@Produce		json
//	@Success		200	{object}	ThemeBody
//	@Security		BearerAuth
//	@Router			/preferences/theme [get]
func (h *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ThemeBody{Theme: h.svc.Theme(r.Context()), Themes: prefs.Themes})
}

// PutTheme handles PUT /api/preferences/theme.
//
//	@Summary		Store the theme preference
//	@Tags			preferences
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ThemeBody	true	"Theme"
//	@Success		200		{object}	ThemeBody
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/preferences/theme [put]
func (h *Handler) PutTheme(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<10)
	var req ThemeBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.svc.SetTheme(r.Context(), req.Theme); err != nil {
		writeServiceError(w, "set theme", err)
		return
	}
	writeJSON(w, http.StatusOK, ThemeBody{Theme: req.Theme})
}
