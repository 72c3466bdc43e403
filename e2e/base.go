package e2e

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"

	"group-chat/moderation"
	"group-chat/repositories"
	"group-chat/runtime"
	"group-chat/server"
)

// BaseSuite boots a full in-process server (registry, moderation with the
// embedded dictionaries, in-memory journal, TCP listener on an ephemeral
// port) and tears it down after the scenarios ran.
type BaseSuite struct {
	suite.Suite
	Config Config

	addr   string
	cancel context.CancelFunc
	db     *badger.DB
}

func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	log := logs.GetLoggerFromString(s.Config.LogLevel)

	s.db, err = badger.Open(badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)
	journal := repositories.NewJournalRepository(s.db, log)

	words, err := runtime.LoadCensoredWords(log)
	s.Require().NoError(err)
	moderator, err := moderation.NewModerator(words, '*', log)
	s.Require().NoError(err)

	registry := runtime.NewRegistry(log, &moderator, journal)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	s.addr = ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() { _ = server.NewListener(ln, registry, log, 64).Run(ctx) }()
}

func (s *BaseSuite) TearDownSuite() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}

// Banner prints a colorized step header so a failing scenario is easy to
// locate in the test output.
func (s *BaseSuite) Banner(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// chatClient is one live TCP connection speaking the wire protocol.
type chatClient struct {
	t       *testing.T
	conn    net.Conn
	scanner *bufio.Scanner
	timeout time.Duration
}

// Connect dials the server and completes the handshake for the given name.
func (s *BaseSuite) Connect(t *testing.T, name string) *chatClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", s.addr, s.Config.DialTimeout)
	s.Require().NoError(err)

	c := &chatClient{
		t:       t,
		conn:    conn,
		scanner: bufio.NewScanner(conn),
		timeout: s.Config.ReadTimeout,
	}
	c.Expect("Please enter your name: ")
	c.Send(name)
	return c
}

func (c *chatClient) Send(line string) {
	c.t.Helper()
	_, err := fmt.Fprintf(c.conn, "%s\n", line)
	if err != nil {
		c.t.Fatalf("send %q failed: %v", line, err)
	}
}

// Expect reads exactly one line and compares it to want. Per-session
// ordering is guaranteed by the server's outbound queue, so scenarios can
// assert full streams line by line.
func (c *chatClient) Expect(want string) {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	if !c.scanner.Scan() {
		c.t.Fatalf("connection closed or timed out while waiting for %q (err: %v)", want, c.scanner.Err())
	}
	if got := c.scanner.Text(); got != want {
		c.t.Fatalf("expected line %q, got %q", want, got)
	}
}

// ExpectClosed asserts that the server closed this connection.
func (c *chatClient) ExpectClosed() {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	if c.scanner.Scan() {
		c.t.Fatalf("expected closed connection, got line %q", c.scanner.Text())
	}
}

func (c *chatClient) Close() {
	_ = c.conn.Close()
}
