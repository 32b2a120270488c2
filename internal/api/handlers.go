package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"notepad/internal/accounts"
	"notepad/internal/auth"
	"notepad/internal/notes"
	"notepad/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Pinger reports whether the durable store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	notes    *notes.Service
	accounts *accounts.Service
	db       Pinger
	log      logrus.FieldLogger

	tokenTTL     time.Duration
	secureCookie bool
}

func NewHandlers(notesSvc *notes.Service, accountsSvc *accounts.Service, db Pinger, log logrus.FieldLogger, tokenTTL time.Duration, secureCookie bool) *Handlers {
	return &Handlers{
		notes:        notesSvc,
		accounts:     accountsSvc,
		db:           db,
		log:          log,
		tokenTTL:     tokenTTL,
		secureCookie: secureCookie,
	}
}

type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func decodeNote(r *http.Request) (noteRequest, error) {
	var req noteRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if errors.Is(err, io.EOF) {
		return req, nil
	}
	return req, err
}

func (h *Handlers) backend(w http.ResponseWriter, r *http.Request) (notes.Backend, bool) {
	b, err := h.notes.For(auth.IdentityFromContext(r.Context()), session.FromContext(r.Context()))
	if err != nil {
		h.log.WithError(err).Error("No note backend for request")
		writeError(w, http.StatusInternalServerError, "Session unavailable")
		return nil, false
	}
	return b, true
}

func (h *Handlers) ListNotes(w http.ResponseWriter, r *http.Request) {
	b, ok := h.backend(w, r)
	if !ok {
		return
	}
	list, err := b.List(r.Context())
	if err != nil {
		h.log.WithError(err).Error("Failed to fetch notes")
		writeError(w, http.StatusInternalServerError, "Failed to fetch notes")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) CreateNote(w http.ResponseWriter, r *http.Request) {
	req, err := decodeNote(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	b, ok := h.backend(w, r)
	if !ok {
		return
	}
	note, err := b.Create(r.Context(), req.Title, req.Content)
	if err != nil {
		h.log.WithError(err).Error("Failed to create note")
		writeError(w, http.StatusInternalServerError, "Failed to create note")
		return
	}
	h.log.WithField("note_id", note.Key()).Debug("Note created")
	writeJSON(w, http.StatusCreated, note)
}

func (h *Handlers) UpdateNote(w http.ResponseWriter, r *http.Request) {
	req, err := decodeNote(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	b, ok := h.backend(w, r)
	if !ok {
		return
	}
	note, err := b.Update(r.Context(), chi.URLParam(r, "id"), req.Title, req.Content)
	if errors.Is(err, notes.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}
	if err != nil {
		h.log.WithError(err).Error("Failed to update note")
		writeError(w, http.StatusInternalServerError, "Failed to update note")
		return
	}
	h.log.WithField("note_id", note.Key()).Debug("Note updated")
	writeJSON(w, http.StatusOK, note)
}

func (h *Handlers) DeleteNote(w http.ResponseWriter, r *http.Request) {
	b, ok := h.backend(w, r)
	if !ok {
		return
	}
	err := b.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, notes.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}
	if err != nil {
		h.log.WithError(err).Error("Failed to delete note")
		writeError(w, http.StatusInternalServerError, "Failed to delete note")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handlers) UserStatus(w http.ResponseWriter, r *http.Request) {
	status := h.notes.Status(auth.IdentityFromContext(r.Context()), session.FromContext(r.Context()))
	writeJSON(w, http.StatusOK, status)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		h.log.WithError(err).Warn("Health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
