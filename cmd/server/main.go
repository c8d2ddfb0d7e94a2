package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"trimchat/ai"
	"trimchat/auth"
	"trimchat/contract"
	"trimchat/internal"
	"trimchat/moderation"
	"trimchat/observability"
	"trimchat/repositories"
	"trimchat/runtime"
	"trimchat/runtime/workers"
	"trimchat/services"
	"trimchat/transport/httpapi"
	"trimchat/transport/ws"
)

const tokenIssuerName = "trimchat"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the transports and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	messageRepository, err := repositories.NewMessageRepository(db, log, config.LimitMessages)
	if err != nil {
		return fmt.Errorf("message repository failed: %w", err)
	}
	defer messageRepository.Close()
	userRepository := repositories.NewUserRepository(db)

	// 3. Room engine: registry, moderation, router, reconciler
	stats := observability.NewStats()
	registry := runtime.NewRegistry()

	var moderator *moderation.Moderator
	if len(config.CensoredWords) > 0 {
		char, err := internal.CharacterRune(config.CharReplacement)
		if err != nil {
			return err
		}
		moderator, err = moderation.NewModerator(config.CensoredWords, char)
		if err != nil {
			return fmt.Errorf("moderator failed: %w", err)
		}
	}

	var prompts chan contract.BotPrompt
	if config.OpenAIKey != "" {
		prompts = make(chan contract.BotPrompt, config.BufferSize)
	}

	reconciler := runtime.NewReconciler(log, messageRepository, stats, config.BufferSize)
	router := runtime.NewRouter(log, registry, reconciler, moderator, stats,
		config.BotName, config.BotPrefix, prompts)
	reconciler.AttachBroadcaster(router)

	// 4. Supervised workers
	sup := workers.NewSupervisor(log)
	sup.Add(reconciler, workers.NewHealthWorker(log, stats, config.HealthInterval))
	if prompts != nil {
		responder := ai.NewOpenAIResponder(ai.Config{
			CompletionsURL: config.OpenAIBaseURL,
			APIKey:         config.OpenAIKey,
			Model:          config.OpenAIModel,
		})
		sup.Add(workers.NewResponderWorker(log, responder, prompts, router, stats,
			config.BotName, config.BotReplyTimeout))
		log.Info("Bot responder enabled", "name", config.BotName, "model", config.OpenAIModel)
	}

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supDone := make(chan struct{})
	go func() {
		defer close(supDone)
		sup.Run(ctx)
	}()

	// 6. HTTP & WebSocket surface
	issuer := auth.NewTokenIssuer(config.JWTSecret, tokenIssuerName, config.AuthTokenDuration)
	authService := services.NewAuthService(userRepository, issuer)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(fiberlogger.New())

	wsHandler := ws.NewHandler(log, router, registry, stats, config.ConnectionBufferSize)
	app.Use("/ws", wsHandler.Upgrade)
	app.Get("/ws", wsHandler.Serve())

	httpapi.NewAPI(log, authService, messageRepository).RegisterRoutes(app)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting server", "address", address, "at", time.Now().UTC())
		if err := app.Listen(address); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	if err := app.Shutdown(); err != nil {
		log.Error("Server shutdown failed", "error", err)
	}
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}
