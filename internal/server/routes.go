package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sendico/apiserver/config"
	"github.com/sendico/apiserver/internal/handlers"
	"github.com/sendico/apiserver/internal/services"
)

// Dependencies are the constructed services the router serves.
type Dependencies struct {
	Users    *services.UserService
	Postings *services.PostingService
	Blogs    *services.BlogService
	Tokens   handlers.TokenVerifier

	// UploadsDir is served at /uploads when images are stored locally.
	UploadsDir string
}

// NewRouter builds the HTTP routes with the standard middleware stack.
func NewRouter(cfg config.Config, deps Dependencies) *chi.Mux {
	authMiddleware := handlers.RequireAuth(deps.Tokens)
	loginLimit := handlers.LimitByIP(cfg.Auth.LoginAttempts, cfg.Auth.LoginWindow)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
		cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", handlers.APITokenHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)

	router.Get("/health", handlers.Health)
	router.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			handlers.UserRouter(r, deps.Users, authMiddleware, loginLimit)
		})
		r.Route("/posting", func(r chi.Router) {
			handlers.PostingRouter(r, deps.Postings, authMiddleware, cfg.Upload.MaxFileBytes)
		})
		r.Route("/blogs", func(r chi.Router) {
			handlers.BlogRouter(r, deps.Blogs, authMiddleware, cfg.Upload.MaxFileBytes)
		})
	})

	if deps.UploadsDir != "" {
		router.Handle("/uploads/*", uploadsHandler(deps.UploadsDir))
	}
	return router
}

// uploadsHandler serves stored images without directory listings.
func uploadsHandler(dir string) http.Handler {
	files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}
