package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sendico/apiserver/config"
	"github.com/sendico/apiserver/internal/auth"
	"github.com/sendico/apiserver/internal/db"
	"github.com/sendico/apiserver/internal/logger"
	"github.com/sendico/apiserver/internal/mq"
	"github.com/sendico/apiserver/internal/services"
	"github.com/sendico/apiserver/internal/storage"
	"github.com/sendico/apiserver/internal/store"
)

// Server wraps the HTTP server and the resources it owns.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	queue      *mq.MQ
}

// New connects to the database, storage and message queue, wires the
// services and builds the router.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	media, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	if err := media.EnsureBucket(ctx); err != nil {
		if !errors.Is(err, storage.ErrUnsupportedBackend) {
			_ = dbConn.Close()
			return nil, fmt.Errorf("prepare storage: %w", err)
		}
		logger.Warningf("storage driver %s is not supported; uploads will fail", media.BackendName())
	}

	queue, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	var events *services.Events
	if queue.Enabled() {
		events = services.NewEvents(queue, cfg.MQ.Channel)
	}

	userRepo := store.NewUserRepository(dbConn)
	postingRepo := store.NewPostingRepository(dbConn)
	blogRepo := store.NewBlogRepository(dbConn)

	deps := Dependencies{
		Users:    services.NewUserService(userRepo, tokens, cfg.Auth.BcryptCost, media, events, postingRepo, blogRepo),
		Postings: services.NewPostingService(postingRepo, media, events),
		Blogs:    services.NewBlogService(blogRepo, media, events),
		Tokens:   tokens,
	}
	if local, ok := media.Local(); ok {
		deps.UploadsDir = local.UploadsDir()
	}
	router := NewRouter(cfg, deps)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Infof("storage=%s mq=%s port=%d", media.BackendName(), queue.Name(), port)
	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		queue:      queue,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	logger.Infof("listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then releases the database and
// message queue.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.queue != nil {
		_ = s.queue.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}
