package server

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"group-chat/contract"
	"group-chat/errors"
)

// fakeRegistry records every operation a session dispatches to it.
type fakeRegistry struct {
	mu          sync.Mutex
	calls       []string
	registerErr error
	// when set, CreateGroup behaves like the real registry and signals the
	// creator's membership
	signalMembership bool
}

func (r *fakeRegistry) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *fakeRegistry) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *fakeRegistry) Register(peer contract.Peer) error {
	r.record("register " + peer.Name())
	return r.registerErr
}

func (r *fakeRegistry) Unregister(name string) {
	r.record("unregister " + name)
}

func (r *fakeRegistry) CreateGroup(group string, creator contract.Peer) error {
	r.record("create " + group)
	if r.signalMembership {
		creator.GroupAdded(group)
	}
	return nil
}

func (r *fakeRegistry) AddMember(group, target string, requester contract.Peer) error {
	r.record(fmt.Sprintf("add %s %s", group, target))
	return nil
}

func (r *fakeRegistry) RemoveMember(group, target string, requester contract.Peer) error {
	r.record(fmt.Sprintf("remove %s %s", group, target))
	return nil
}

func (r *fakeRegistry) BroadcastAll(sender, text string) {
	r.record(fmt.Sprintf("broadcast %s %q", sender, text))
}

func (r *fakeRegistry) BroadcastToGroup(group, sender, text string) error {
	r.record(fmt.Sprintf("groupcast %s %s %q", group, sender, text))
	return nil
}

// startSession wires a session to one end of an in-memory pipe and returns
// the client end plus a channel of the lines the client receives.
func startSession(t *testing.T, registry contract.IRegistry) (net.Conn, <-chan string, <-chan struct{}) {
	t.Helper()
	serverConn, clientConn := net.Pipe()

	session := NewSession(serverConn, registry, slog.New(slog.DiscardHandler), 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		session.Run()
	}()

	lines := make(chan string, 32)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(clientConn)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	t.Cleanup(func() { _ = clientConn.Close() })
	return clientConn, lines, done
}

func expectLine(t *testing.T, lines <-chan string, want string) {
	t.Helper()
	select {
	case line, ok := <-lines:
		require.True(t, ok, "connection closed while waiting for %q", want)
		require.Equal(t, want, line)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for line %q", want)
	}
}

func send(t *testing.T, conn net.Conn, line string) {
	t.Helper()
	_, err := fmt.Fprintf(conn, "%s\n", line)
	require.NoError(t, err)
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not close")
	}
}

func TestSession_Empty_Name_Closes_Without_Registering(t *testing.T) {
	req := require.New(t)
	registry := &fakeRegistry{}
	conn, lines, done := startSession(t, registry)

	expectLine(t, lines, handshakePrompt)
	send(t, conn, "   ")

	waitDone(t, done)
	req.Empty(registry.recorded())
}

func TestSession_Invalid_Name_Is_Refused(t *testing.T) {
	req := require.New(t)
	registry := &fakeRegistry{}
	conn, lines, done := startSession(t, registry)

	expectLine(t, lines, handshakePrompt)
	send(t, conn, "two words")

	expectLine(t, lines, "'two words' is not a valid name.")
	waitDone(t, done)
	req.Empty(registry.recorded())
}

func TestSession_Duplicate_Name_Is_Refused(t *testing.T) {
	req := require.New(t)
	registry := &fakeRegistry{registerErr: errors.ErrNameTaken}
	conn, lines, done := startSession(t, registry)

	expectLine(t, lines, handshakePrompt)
	send(t, conn, "alice")

	expectLine(t, lines, "Name 'alice' is already in use.")
	waitDone(t, done)
	// Registration was attempted but never completed, so no unregister
	req.Equal([]string{"register alice"}, registry.recorded())
}

func TestSession_Dispatches_Commands_Then_Exits(t *testing.T) {
	req := require.New(t)
	registry := &fakeRegistry{}
	conn, lines, done := startSession(t, registry)

	expectLine(t, lines, handshakePrompt)
	send(t, conn, "alice")
	send(t, conn, "hello everyone")
	send(t, conn, "/create team")
	send(t, conn, "/add team bob")
	send(t, conn, "/remove team bob")
	send(t, conn, "Exit")

	waitDone(t, done)
	req.Equal([]string{
		"register alice",
		`broadcast alice "hello everyone"`,
		"create team",
		"add team bob",
		"remove team bob",
		"unregister alice",
	}, registry.recorded())
}

func TestSession_Disconnect_Unregisters(t *testing.T) {
	req := require.New(t)
	registry := &fakeRegistry{}
	conn, lines, done := startSession(t, registry)

	expectLine(t, lines, handshakePrompt)
	send(t, conn, "alice")
	req.NoError(conn.Close())

	waitDone(t, done)
	req.Equal([]string{"register alice", "unregister alice"}, registry.recorded())
}

func TestSession_Malformed_Command_Keeps_Session_Open(t *testing.T) {
	req := require.New(t)
	registry := &fakeRegistry{}
	conn, lines, done := startSession(t, registry)

	expectLine(t, lines, handshakePrompt)
	send(t, conn, "alice")
	send(t, conn, "/add team")

	expectLine(t, lines, "malformed command, usage: /add <group> <user>")

	// The session is still alive and dispatching
	send(t, conn, "still here")
	send(t, conn, "exit")
	waitDone(t, done)
	req.Contains(registry.recorded(), `broadcast alice "still here"`)
}

func TestSession_Group_Message_Requires_Cached_Membership(t *testing.T) {
	req := require.New(t)
	registry := &fakeRegistry{signalMembership: true}
	conn, lines, done := startSession(t, registry)

	expectLine(t, lines, handshakePrompt)
	send(t, conn, "alice")

	// Not a member yet: refused locally, the registry never hears about it
	send(t, conn, "/group team hi")
	expectLine(t, lines, "You are not part of this group.")

	// Joining updates the cache through the registry callback
	send(t, conn, "/create team")
	expectLine(t, lines, "/groupadded team")

	send(t, conn, "/group team hi again")
	send(t, conn, "exit")
	waitDone(t, done)

	calls := registry.recorded()
	req.NotContains(calls, `groupcast team alice "hi"`)
	req.Contains(calls, `groupcast team alice "hi again"`)
}

func TestSession_Invalid_Group_Name_On_Create(t *testing.T) {
	req := require.New(t)
	registry := &fakeRegistry{}
	conn, lines, done := startSession(t, registry)

	expectLine(t, lines, handshakePrompt)
	send(t, conn, "alice")
	send(t, conn, "/create thisgroupnameiswaytoolongtobeaccepted")

	expectLine(t, lines, "'thisgroupnameiswaytoolongtobeaccepted' is not a valid group name.")
	send(t, conn, "exit")
	waitDone(t, done)
	req.NotContains(registry.recorded(), "create thisgroupnameiswaytoolongtobeaccepted")
}
