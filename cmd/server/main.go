package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"huddle/auth"
	"huddle/httpapi"
	"huddle/moderation"
	"huddle/realtime"
	"huddle/repositories"
	"huddle/search"
	"huddle/services"
	"huddle/workers"
	"huddle/ws"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run owns the whole lifecycle so that every defer fires before the process
// exits, whatever the failure path.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage (BadgerDB + Bluge)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	index, err := search.Open(config.BlugeFilepath, log)
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = index.Close()
	}()

	filter, err := moderation.New(config.BannedWords(), config.MaskRune())
	if err != nil {
		return fmt.Errorf("moderation filter failed: %w", err)
	}

	// 3. Realtime plumbing under supervision
	registry := realtime.NewRegistry()
	dispatcher := realtime.NewDispatcher(log, registry, config.DispatchBufferSize)
	supervisor := workers.NewSupervisor(log, config.RestartInterval).Add(dispatcher)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supervisorDone := make(chan struct{})
	go func() {
		defer close(supervisorDone)
		supervisor.Run(ctx)
	}()

	// 4. Repositories & Services
	messages := repositories.NewMessageRepository(db, log)
	posts := repositories.NewPostRepository(db, log)
	reactions := repositories.NewReactionRepository(db, log)
	notifications := repositories.NewNotificationRepository(db, log)

	chatService := services.NewChatService(log, messages, dispatcher, registry, filter, index)
	postService := services.NewPostService(log, posts, reactions, notifications, dispatcher, filter)
	reactionService := services.NewReactionService(log, reactions, posts, notifications, dispatcher)
	notificationService := services.NewNotificationService(log, notifications)

	// 5. Transport edge
	verifier := auth.NewVerifier(config.JWTSecret)
	wsHandler := ws.NewHandler(log, registry, verifier, config.ConnectionBufferSize)
	api := httpapi.NewServer(log, verifier, chatService, reactionService, postService, notificationService)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:    address,
		Handler: api.Routes(wsHandler),
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("Forced server shutdown", "error", err)
	}
	<-supervisorDone
	log.Info("Program stopped cleanly")

	return nil
}
