package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/tourneyops/match-engine/internal/hub"
	"github.com/tourneyops/match-engine/internal/match"
	"github.com/tourneyops/match-engine/internal/service"
	"github.com/tourneyops/match-engine/internal/wire"
	"github.com/tourneyops/match-engine/internal/ws"
)

func SetupRoutes(svc *service.Service, h *hub.Hub, adminToken string, corsOrigins []string, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Admin-Token"},
	}))

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, svc, log))

	r.Post("/matches", CreateMatch(svc))
	r.Route("/matches/{id}", func(r chi.Router) {
		r.Get("/", GetMatch(svc))
		r.Post("/ban", Ban(svc))
		r.Post("/select-map", SelectMap(svc))
		r.Post("/select-side", SelectSide(svc))
		r.Post("/submit-score", SubmitScore(svc))
		r.Post("/agree", AgreeToScore(svc))
		r.Post("/dispute", RaiseDispute(svc))

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin(adminToken))
			r.Post("/admin/reset", AdminReset(svc))
			r.Post("/admin/force-submit", AdminForceSubmit(svc))
		})
	})

	return r
}

// requireAdmin gates the arbiter endpoints on a shared token. An empty
// configured token disables the endpoints entirely.
func requireAdmin(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" || r.Header.Get("X-Admin-Token") != token {
				msg, status := wire.NewError(match.ErrNotAuthorized)
				writeJSON(w, status, msg)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
