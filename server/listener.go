package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"group-chat/contract"
)

// Listener accepts connections forever and hands each one to a fresh
// Session running in its own goroutine. A per-connection failure never
// stops the accept loop; a failure of the listening socket itself is fatal
// and surfaces as the returned error.
type Listener struct {
	ln         net.Listener
	registry   contract.IRegistry
	log        *slog.Logger
	bufferSize int
}

// NewListener wraps an already-bound net.Listener; binding stays in main so
// a bind failure is reported before any worker starts.
func NewListener(ln net.Listener, registry contract.IRegistry, log *slog.Logger, bufferSize int) *Listener {
	return &Listener{ln: ln, registry: registry, log: log, bufferSize: bufferSize}
}

func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

func (l *Listener) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = l.ln.Close()
	}()

	l.log.Info("Listening for clients", "addr", l.ln.Addr().String())
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				l.log.Info("Listener stopped")
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		session := NewSession(conn, l.registry, l.log, l.bufferSize)
		go session.Run()
	}
}
