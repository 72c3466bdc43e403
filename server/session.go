package server

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"group-chat/contract"
	"group-chat/domain"
)

const handshakePrompt = "Please enter your name: "

// drainTimeout bounds how long teardown waits for the writer to flush the
// lines already queued (a goodbye notice, typically).
const drainTimeout = time.Second

// Session is the server-side state of one connected client. It moves through
// three states: connecting (no name yet), active (registered), closed.
//
// The read loop is the only goroutine that mutates the session's identity;
// the membership cache is written by Registry callbacks under the registry
// lock, so it carries its own mutex. Outbound traffic goes through a bounded
// queue drained by a dedicated writer goroutine: a slow or dead client can
// never block the registry's fan-out.
type Session struct {
	id       uuid.UUID
	conn     net.Conn
	registry contract.IRegistry
	log      *slog.Logger

	outbound   chan string
	done       chan struct{}
	writerDone chan struct{}
	closeOnce  sync.Once

	name string // assigned once during handshake

	mu          sync.Mutex
	memberships domain.Set
}

func NewSession(conn net.Conn, registry contract.IRegistry, log *slog.Logger, bufferSize int) *Session {
	id := uuid.New()
	return &Session{
		id:          id,
		conn:        conn,
		registry:    registry,
		log:         log.With("session", id.String(), "remote", conn.RemoteAddr().String()),
		outbound:    make(chan string, bufferSize),
		done:        make(chan struct{}),
		writerDone:  make(chan struct{}),
		memberships: make(domain.Set),
	}
}

// Run drives the session from handshake to teardown. It blocks until the
// client disconnects, sends "exit", or the transport fails, and always
// leaves the registry clean.
func (s *Session) Run() {
	defer s.close()
	go s.writeLoop()

	s.Deliver(handshakePrompt)

	scanner := bufio.NewScanner(s.conn)
	if !scanner.Scan() {
		// Gone before naming itself: nothing was registered, nothing to undo.
		return
	}

	name := strings.TrimSpace(scanner.Text())
	if name == "" {
		return
	}
	if err := domain.ValidateName(name); err != nil {
		s.Deliver(fmt.Sprintf("'%s' is not a valid name.", name))
		return
	}

	s.name = name
	if err := s.registry.Register(s); err != nil {
		s.Deliver(fmt.Sprintf("Name '%s' is already in use.", name))
		s.name = ""
		return
	}
	defer s.registry.Unregister(name)
	s.log.Info("Client joined", "name", name)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		cmd, err := ParseLine(line)
		if err != nil {
			s.Deliver(err.Error())
			continue
		}
		if s.dispatch(cmd) {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		s.log.Debug("Read loop ended", "err", err)
	}
	s.log.Info("Client left", "name", name)
}

// dispatch executes one command and reports whether the session should close.
func (s *Session) dispatch(cmd domain.Command) bool {
	switch c := cmd.(type) {
	case domain.ExitCommand:
		return true

	case domain.CreateGroupCommand:
		if err := domain.ValidateName(c.Group); err != nil {
			s.Deliver(fmt.Sprintf("'%s' is not a valid group name.", c.Group))
			return false
		}
		_ = s.registry.CreateGroup(c.Group, s)

	case domain.AddMemberCommand:
		_ = s.registry.AddMember(c.Group, c.User, s)

	case domain.RemoveMemberCommand:
		_ = s.registry.RemoveMember(c.Group, c.User, s)

	case domain.GroupMessageCommand:
		// Authorized against the local cache; the registry keeps it in sync
		// through the GroupAdded/GroupRemoved callbacks.
		if !s.InGroup(c.Group) {
			s.Deliver("You are not part of this group.")
			return false
		}
		_ = s.registry.BroadcastToGroup(c.Group, s.name, c.Text)

	case domain.BroadcastCommand:
		s.registry.BroadcastAll(s.name, c.Text)
	}
	return false
}

// Name implements contract.Peer. The name is written exactly once, before
// Register makes the session visible to other goroutines.
func (s *Session) Name() string { return s.name }

// Deliver implements contract.Peer. It never blocks: a full queue or a
// closing session just loses the line, which the spec allows for a client
// whose transport already failed.
func (s *Session) Deliver(line string) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.outbound <- line:
		return true
	default:
		s.log.Warn("Outbound queue full, dropping line")
		return false
	}
}

// GroupAdded implements contract.Peer: updates the membership cache and
// signals the client.
func (s *Session) GroupAdded(group string) {
	s.mu.Lock()
	s.memberships[group] = struct{}{}
	s.mu.Unlock()
	s.Deliver("/groupadded " + group)
}

// GroupRemoved implements contract.Peer.
func (s *Session) GroupRemoved(group string) {
	s.mu.Lock()
	delete(s.memberships, group)
	s.mu.Unlock()
	s.Deliver("/groupremoved " + group)
}

func (s *Session) InGroup(group string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.memberships[group]
	return ok
}

// writeLoop drains the outbound queue onto the transport. Write errors end
// the loop silently; the read loop observes the dead transport on its own.
func (s *Session) writeLoop() {
	defer close(s.writerDone)
	w := bufio.NewWriter(s.conn)

	flushIfIdle := func() bool {
		if len(s.outbound) > 0 {
			return true
		}
		return w.Flush() == nil
	}

	for {
		select {
		case line := <-s.outbound:
			if _, err := w.WriteString(line + "\n"); err != nil {
				return
			}
			if !flushIfIdle() {
				return
			}
		case <-s.done:
			// Drain what is already queued, then stop.
			for {
				select {
				case line := <-s.outbound:
					if _, err := w.WriteString(line + "\n"); err != nil {
						return
					}
				default:
					_ = w.Flush()
					return
				}
			}
		}
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		select {
		case <-s.writerDone:
		case <-time.After(drainTimeout):
		}
		_ = s.conn.Close()
	})
}
