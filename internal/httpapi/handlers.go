package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/quizcast/quizcast/internal/fallback"
)

// Healthz reports process liveness and the current server time.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetFallbackRoom serves the stored room JSON for polling clients.
func GetFallbackRoom(fb *fallback.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := fb.Get(chi.URLParam(r, "roomID"))
		switch {
		case errors.Is(err, fallback.ErrBadRoomID):
			writeError(w, http.StatusBadRequest, "invalid room id")
			return
		case errors.Is(err, fallback.ErrNotFound):
			writeError(w, http.StatusNotFound, "room not found")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "read failed")
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// UpdateFallbackRoom replaces the stored room JSON wholesale.
func UpdateFallbackRoom(fb *fallback.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}

		roomID := chi.URLParam(r, "roomID")
		switch err := fb.Update(roomID, body); {
		case errors.Is(err, fallback.ErrBadRoomID):
			writeError(w, http.StatusBadRequest, "invalid room id")
			return
		case err != nil:
			writeError(w, http.StatusBadRequest, "invalid room payload")
			return
		}

		logger.Debug("fallback room updated", zap.String("room", roomID))
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// ListFallbackRooms lists non-stale room snapshots.
func ListFallbackRooms(fb *fallback.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms, err := fb.List()
		if err != nil {
			logger.Error("list fallback rooms", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list failed")
			return
		}
		if rooms == nil {
			rooms = []fallback.Summary{}
		}
		writeJSON(w, http.StatusOK, rooms)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
