package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tsunagu/backend/internal/directory"
	"tsunagu/backend/internal/friends"
	"tsunagu/backend/internal/httpapi"
	"tsunagu/backend/internal/messaging"
	"tsunagu/backend/internal/ratelimit"
	"tsunagu/backend/internal/store"
	"tsunagu/backend/pkg/config"
	"tsunagu/backend/pkg/logger"
)

func main() {
	// Load configuration first; the logger's verbosity depends on it
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...", zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to Neo4j
	st, err := store.Open(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	defer st.Close(context.Background())

	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema", zap.Error(err))
	}

	// Initialize dependencies
	dir := directory.New(st)
	engine := friends.NewEngine(st)
	gate := messaging.NewGate(st)

	srv := httpapi.NewServer(dir, engine, gate)
	identity := httpapi.NewJWTIdentity(cfg.JWTSecret)
	limiter := ratelimit.New(cfg.RateLimitMax, cfg.RateLimitWindow)

	router := httpapi.NewRouter(cfg, srv, identity, limiter)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Server started", zap.String("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.RateLimitWindow)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				limiter.Prune()
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server exited with error", zap.Error(err))
		return
	}

	log.Info("Server exited")
}
