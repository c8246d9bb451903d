package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/opencourt/rotation-system/handlers"
)

type Handlers struct {
	Player    *handlers.PlayerHandler
	Session   *handlers.SessionHandler
	Round     *handlers.RoundHandler
	Stats     *handlers.StatsHandler
	Export    *handlers.ExportHandler
	WebSocket *handlers.WebSocketHandler
}

func SetupRoutes(h Handlers) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Get("/swagger/*", httpSwagger.Handler())

	router.Route("/players", func(r chi.Router) {
		r.Post("/", h.Player.CreatePlayer)
		r.Get("/", h.Player.ListPlayers)
		r.Get("/{playerID}", h.Player.GetPlayerByID)
		r.Put("/{playerID}", h.Player.UpdatePlayer)
		r.Delete("/{playerID}", h.Player.DeletePlayer)
	})

	router.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.Session.CreateSession)
		r.Get("/", h.Session.ListSessions)
		r.Get("/{sessionID}", h.Session.GetSession)
		r.Delete("/{sessionID}", h.Session.DeleteSession)

		r.Post("/{sessionID}/start", h.Session.StartLiveSession)
		r.Post("/{sessionID}/end", h.Session.EndSession)
		r.Post("/{sessionID}/archive", h.Session.ArchiveSession)
		r.Post("/{sessionID}/restore", h.Session.RestoreSession)

		r.Post("/{sessionID}/players/{playerID}", h.Session.AddPlayer)
		r.Delete("/{sessionID}/players/{playerID}", h.Session.RemovePlayer)
		r.Post("/{sessionID}/players/{playerID}/pause", h.Session.PausePlayer)
		r.Post("/{sessionID}/players/{playerID}/resume", h.Session.ResumePlayer)
		r.Put("/{sessionID}/partnerships", h.Session.SetPartnerships)

		r.Post("/{sessionID}/courts", h.Session.AddCourt)
		r.Put("/{sessionID}/courts/{courtID}", h.Session.UpdateCourt)
		r.Delete("/{sessionID}/courts/{courtID}", h.Session.RemoveCourt)

		r.Post("/{sessionID}/rounds", h.Round.GenerateRound)
		r.Get("/{sessionID}/rounds/current", h.Round.GetCurrentRound)
		r.Post("/{sessionID}/rounds/start", h.Round.StartRound)
		r.Post("/{sessionID}/rounds/complete", h.Round.CompleteRound)
		r.Post("/{sessionID}/rounds/swap", h.Round.SwapPlayers)

		r.Get("/{sessionID}/leaderboard", h.Stats.SessionLeaderboard)
		r.Get("/{sessionID}/players/{playerID}/stats", h.Stats.PlayerStats)

		r.Post("/{sessionID}/export", h.Export.ExportSession)
	})

	router.Get("/ws/sessions/{sessionID}", h.WebSocket.ServeWs)

	return router
}
