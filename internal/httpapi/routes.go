package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/quizcast/quizcast/internal/fallback"
	"github.com/quizcast/quizcast/internal/hub"
	"github.com/quizcast/quizcast/internal/ws"
)

func SetupRoutes(h *hub.Hub, fb *fallback.Store, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, logger.Named("ws")))

	// Stateless polling fallback for hosts without persistent connections.
	r.Route("/api/fallback/rooms", func(r chi.Router) {
		r.Get("/", ListFallbackRooms(fb, logger))
		r.Get("/{roomID}", GetFallbackRoom(fb))
		r.Put("/{roomID}", UpdateFallbackRoom(fb, logger))
	})

	return r
}
