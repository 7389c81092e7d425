package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/voicebox/voicebox-api/internal/api"
	apiMiddleware "github.com/voicebox/voicebox-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	tokenLifetime := time.Duration(app.config.Auth.TokenLifetimeMinutes) * time.Minute
	authHandler := api.NewAuthHandler(app.userService, app.jwtService, tokenLifetime)
	ttsHandler := api.NewTTSHandler(app.taskQueue, app.userService)
	userHandler := api.NewUserHandler(app.userService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/tts/generate", ttsHandler.Generate)
			r.Get("/tts/tasks", ttsHandler.ListTasks)
			r.Get("/tts/tasks/{id}", ttsHandler.GetTask)
			r.Get("/tts/tasks/{id}/download", ttsHandler.DownloadAudio)
			r.Post("/tts/tasks/{id}/cancel", ttsHandler.CancelTask)
			r.Delete("/tts/tasks/{id}", ttsHandler.DeleteTask)

			r.Get("/users/me", userHandler.GetCurrentUser)

			// User management (admin only)
			r.Group(func(r chi.Router) {
				r.Use(apiMiddleware.RequireAdmin)

				r.Get("/users/{id}", userHandler.GetUser)
				r.Delete("/users/{id}", userHandler.DeleteUser)
			})
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
