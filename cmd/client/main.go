package main

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress string `env:"CHAT_SERVER_ADDR,default=localhost:1234"`
	LogLevel      string `env:"LOG_LEVEL,default=WARN"`
	Colours       bool   `env:"CHAT_COLOURS,default=true"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run connects to the chat server, forwards stdin lines verbatim, and
// renders the inbound feed. All protocol knowledge stays server-side; the
// client only colorizes what it recognizes.
func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := net.Dial("tcp", config.ServerAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to server at %s: %w", config.ServerAddress, err)
	}
	defer conn.Close()
	log.Info("Connected", "addr", config.ServerAddress)

	// Server feed: one goroutine reading until EOF.
	serverClosed := make(chan struct{})
	go func() {
		defer close(serverClosed)
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			render(scanner.Text(), config.Colours)
		}
	}()

	// Stdin feed: forwarded verbatim, "exit" ends the session server-side.
	inputClosed := make(chan struct{})
	go func() {
		defer close(inputClosed)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if _, err := fmt.Fprintln(conn, scanner.Text()); err != nil {
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
	case <-serverClosed:
	case <-inputClosed:
	}
	return exitOK, nil
}

// render prints one server line, colorized by its protocol shape.
func render(line string, colours bool) {
	if !colours {
		fmt.Println(line)
		return
	}

	switch {
	case strings.HasPrefix(line, "/users "):
		users := strings.TrimPrefix(line, "/users ")
		color.Cyan.Printf("Connected: %s\n", users)
	case strings.HasPrefix(line, "/groupadded "):
		color.Green.Printf("Joined group %s\n", strings.TrimPrefix(line, "/groupadded "))
	case strings.HasPrefix(line, "/groupremoved "):
		color.Yellow.Printf("Left group %s\n", strings.TrimPrefix(line, "/groupremoved "))
	case strings.HasPrefix(line, "["):
		color.Magenta.Println(line)
	default:
		fmt.Println(line)
	}
}
