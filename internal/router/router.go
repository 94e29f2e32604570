// Package router sets up the HTTP routes and the middleware chain for the
// voting API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"votebox/internal/handlers"
	"votebox/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and routes wired up.
func New(api *handlers.API) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request including preflights.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS)

	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(methodNotAllowedHandler)

	// Status.
	r.Get("/", api.Health)
	r.Get("/test", api.Diagnostic)

	r.Route("/api", func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Get("/", api.ListItems)
			r.Post("/", api.CreateItem)
			r.Get("/{id}", api.GetItem)
			r.Post("/{id}/vote", api.Vote)
		})
		r.Get("/stats", api.Stats)
	})

	return r
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"not_found","message":"route not found"}` + "\n"))
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusMethodNotAllowed)
	w.Write([]byte(`{"error":"method_not_allowed","message":"method not allowed"}` + "\n"))
}
