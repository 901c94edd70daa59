package guestbook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"guestbook/internal/observability"
)

const (
	maxFormBytes = 1 << 20

	statusMessageAdded = "Message added successfully"
)

type MessageStore interface {
	List(ctx context.Context) ([]Message, error)
	Append(ctx context.Context, name, message string) (Message, error)
}

type Handler struct {
	store MessageStore
}

func NewHandler(store MessageStore) *Handler {
	return &Handler{store: store}
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.store.List(r.Context())
	if err != nil {
		observability.CaptureError(r.Context(), err)
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Messages: messages})
}

// AddMessage accepts name and message as urlencoded or multipart form fields.
// Both fields must be present; empty values are stored as given.
func (h *Handler) AddMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	if err := r.ParseMultipartForm(maxFormBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "form body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	name, ok := formField(r, "name")
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	message, ok := formField(r, "message")
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "message is required")
		return
	}

	if _, err := h.store.Append(r.Context(), name, message); err != nil {
		observability.CaptureError(r.Context(), err)
		writeError(w, http.StatusInternalServerError, "failed to add message")
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: statusMessageAdded})
}

func formField(r *http.Request, key string) (string, bool) {
	values, ok := r.PostForm[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
