package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"tsunagu/backend/internal/directory"
	"tsunagu/backend/internal/friends"
	"tsunagu/backend/internal/messaging"
	"tsunagu/backend/internal/store"
	"tsunagu/backend/pkg/config"
	"tsunagu/backend/pkg/logger"
)

// Seeds the graph with a small demo network: a handful of users, a few
// accepted friendships, one pending request and a couple of messages.
func main() {
	force := flag.Bool("force", false, "Seed even if demo users already exist")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...")

	// Demo data belongs in development databases only
	if !cfg.IsDevelopment() && !*force {
		log.Fatal("Refusing to seed a non-development database without -force",
			zap.String("env", cfg.Env))
	}

	ctx := context.Background()

	st, err := store.Open(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	defer st.Close(ctx)

	log.Info("Creating constraints and indexes...")
	if err := st.EnsureSchema(ctx); err != nil {
		log.Warn("Schema initialization reported errors", zap.Error(err))
	}

	dir := directory.New(st)

	existing, err := dir.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		log.Fatal("Failed to check for existing demo data", zap.Error(err))
	}
	if existing != nil && !*force {
		log.Info("Demo users already exist, skipping seeding (use -force to reseed)")
		os.Exit(0)
	}

	engine := friends.NewEngine(st)
	gate := messaging.NewGate(st)

	demo := []struct {
		email    string
		username string
		nickname string
	}{
		{"alice@example.com", "alice", "Alice"},
		{"bob@example.com", "bob", "Bob"},
		{"carol@example.com", "carol", "Carol"},
		{"dave@example.com", "dave", "Dave"},
	}

	users := map[string]*directory.User{}
	for _, d := range demo {
		user, err := dir.GetOrCreate(ctx, d.email, "")
		if err != nil {
			log.Fatal("Failed to create demo user", zap.String("email", d.email), zap.Error(err))
		}
		users[d.username] = user
		log.Info("Demo user ready", zap.String("username", user.Username), zap.String("id", user.ID))
	}

	befriend := func(from, to string) {
		request, err := engine.CreateFriendRequest(ctx, users[from].ID, users[to].ID, "hi!")
		if err != nil {
			log.Warn("Failed to create demo request",
				zap.String("from", from), zap.String("to", to), zap.Error(err))
			return
		}
		if _, err := engine.AcceptFriendRequest(ctx, request.ID); err != nil {
			log.Warn("Failed to accept demo request", zap.String("request_id", request.ID), zap.Error(err))
		}
	}

	befriend("alice", "bob")
	befriend("alice", "carol")
	befriend("bob", "carol")

	// One pending request left unanswered
	if _, err := engine.CreateFriendRequest(ctx, users["dave"].ID, users["alice"].ID, "we met at the event"); err != nil {
		log.Warn("Failed to create pending demo request", zap.Error(err))
	}

	if _, err := gate.SendMessage(ctx, users["alice"].ID, users["bob"].ID, "hey bob, welcome!"); err != nil {
		log.Warn("Failed to send demo message", zap.Error(err))
	}
	if _, err := gate.SendMessage(ctx, users["bob"].ID, users["alice"].ID, "thanks alice"); err != nil {
		log.Warn("Failed to send demo message", zap.Error(err))
	}

	log.Info("Seeding completed")
}
