package router

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/leca/dt-petfriends/internal/api"
	"github.com/leca/dt-petfriends/internal/config"
	"github.com/leca/dt-petfriends/internal/database"
	"github.com/leca/dt-petfriends/internal/handler"
	"github.com/leca/dt-petfriends/internal/storage"
)

// Server holds the application dependencies and HTTP router.
type Server struct {
	DB      database.Database
	Store   storage.Storage
	Config  *config.Config
	Handler *handler.Handler
	Router  chi.Router
}

// New creates a new Server with a fully configured chi router.
func New(db database.Database, store storage.Storage, cfg *config.Config) *Server {
	h := &handler.Handler{
		DB:     db,
		Store:  store,
		Config: cfg,
	}
	s := &Server{DB: db, Store: store, Config: cfg, Handler: h}

	r := chi.NewRouter()

	// CORS first so preflight OPTIONS never reach auth.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.NotFound(w, "The requested URL was not found on the server.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.WriteErrorPage(w, http.StatusMethodNotAllowed, "The method is not allowed for the requested URL.")
	})

	// Health check (no auth required).
	r.Get("/health", s.Health)

	r.Route("/api", func(r chi.Router) {
		// Credentials travel in headers; no auth key yet.
		r.Get("/key", h.GetAPIKey)

		r.Group(func(r chi.Router) {
			r.Use(api.AuthKeyMiddleware(db))

			r.Get("/pets", h.ListPets)
			r.Post("/pets", h.CreatePet)
			r.Post("/create_pet_simple", h.CreatePetSimple)

			// Registered before {pet_id} so "set_photo" is not taken as an id.
			r.Post("/pets/set_photo/{pet_id}", h.SetPhoto)

			r.Put("/pets/{pet_id}", h.UpdatePet)
			r.Delete("/pets/{pet_id}", h.DeletePet)
			r.Get("/pets/{pet_id}/photo", h.GetPhoto)
		})
	})

	s.Router = r
	return s
}

// Health returns a simple health-check response.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		slog.Error("Health: failed to encode response", "error", err)
	}
}
