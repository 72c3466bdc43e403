package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"group-chat/internal"
	"group-chat/moderation"
	"group-chat/repositories"
	"group-chat/runtime"
	"group-chat/runtime/workers"
	"group-chat/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so every defer executes before the process
// exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}

	// 2. Message journal (BadgerDB, in-memory: nothing survives a restart)
	db, err := badger.Open(badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("journal opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing journal...")
		_ = db.Close()
	}()
	journal := repositories.NewJournalRepository(db, log)

	// 3. Moderation
	words, err := runtime.LoadCensoredWords(log)
	if err != nil {
		return err
	}
	moderator, err := moderation.NewModerator(words, charReplacement, log)
	if err != nil {
		return err
	}

	// 4. Registry & supervised workers
	registry := runtime.NewRegistry(log, &moderator, journal)
	sup := workers.NewSupervisor(log)
	sup.Add(workers.NewHeartbeatWorker(log, config.HeartbeatInterval))

	// 5. Context & signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sup.Run(ctx)

	// 6. Debug inspector
	internal.StartDebugServer(log, config.DebugPort, config.JournalLimit,
		registry.Stats, journal.Recent)

	// 7. Listener
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	listener := server.NewListener(ln, registry, log, config.ConnectionBufferSize)

	// A listening-socket failure is fatal; the error channel carries it out.
	errChan := make(chan error, 1)
	go func() {
		if err := listener.Run(ctx); err != nil {
			errChan <- fmt.Errorf("listener error: %w", err)
		}
	}()

	// 8. Wait for stop or error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	sup.Stop()
	log.Info("Program stopped cleanly")
	return nil
}
