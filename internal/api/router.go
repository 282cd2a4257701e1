package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mintlabs/mint-backend/internal/api/handlers"
	"github.com/mintlabs/mint-backend/internal/auth"
	"github.com/mintlabs/mint-backend/internal/commands"
	"github.com/mintlabs/mint-backend/internal/websocket"
)

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	Issuer         *auth.Issuer // nil disables ingest auth
}

// NewRouter creates and configures a new Chi router.
func NewRouter(opts Options, hub *websocket.Hub, cmds *commands.Commands, listener handlers.ReadingSubmitter) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	dbHandler := handlers.NewDatabaseHandler(cmds)
	userHandler := handlers.NewUserHandler(cmds)
	sampleHandler := handlers.NewSampleHandler(cmds)
	wsHandler := handlers.NewWebSocketHandler(hub, listener, opts.AllowedOrigins)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		// Background listener transport
		r.Group(func(r chi.Router) {
			if opts.Issuer != nil {
				r.Use(opts.Issuer.Middleware())
			}
			r.Get("/ingest", wsHandler.Serve)
		})

		r.Post("/db/init", dbHandler.Initialize)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.GetAll)
			r.Post("/", userHandler.Create)
		})

		r.Route("/samples", func(r chi.Router) {
			r.Get("/", sampleHandler.GetAll)
			r.Post("/", sampleHandler.Create)
		})
	})

	return r
}
