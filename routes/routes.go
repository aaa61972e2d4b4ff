package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/studyhub/studyhub-backend/app"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", deps.AuthHandler.HandleRegister)
			r.Post("/login", deps.AuthHandler.HandleLogin)
			r.Post("/logout", deps.AuthHandler.HandleLogout)
		})

		// Current user profile
		r.Route("/users", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Get("/me", deps.AuthHandler.HandleMe)
		})

		// Study notes
		r.Route("/notes", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Post("/", deps.NotesHandler.HandleCreate)
			r.Get("/", deps.NotesHandler.HandleList)
			r.Get("/{id}", deps.NotesHandler.HandleGet)
			r.Delete("/{id}", deps.NotesHandler.HandleDelete)
		})

		// Placement questions
		r.Route("/questions", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Post("/", deps.QuestionsHandler.HandleCreate)
			r.Get("/", deps.QuestionsHandler.HandleList)
			r.Get("/{id}", deps.QuestionsHandler.HandleGet)
			r.Patch("/{id}/solved", deps.QuestionsHandler.HandleSetSolved)
			r.Delete("/{id}", deps.QuestionsHandler.HandleDelete)
		})

		// GitHub integration
		r.Route("/github", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Post("/connect", deps.GithubHandler.HandleConnect)
			r.Delete("/connect", deps.GithubHandler.HandleDisconnect)
			r.Post("/sync", deps.GithubHandler.HandleSync)
			r.Get("/repos", deps.GithubHandler.HandleListRepos)
			r.Post("/repos/{id}/analyze", deps.GithubHandler.HandleAnalyze)
		})

		// Chat sessions
		r.Route("/chat/sessions", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Post("/", deps.ChatHandler.HandleCreateSession)
			r.Get("/", deps.ChatHandler.HandleListSessions)
			r.Get("/{id}", deps.ChatHandler.HandleGetSession)
			r.Post("/{id}/messages", deps.ChatHandler.HandleSendMessage)
			r.Delete("/{id}", deps.ChatHandler.HandleDeleteSession)
		})

		// Dashboard
		r.Route("/dashboard", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Get("/stats", deps.DashboardHandler.HandleStats)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
