package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreircd/ircd/config"
	"github.com/coreircd/ircd/entity"
)

// fakeConn is a minimal in-memory transport.Conn for façade-level tests that
// don't need a real socket.
type fakeConn struct {
	remote string
	sent   [][]byte
	closed bool
}

func (c *fakeConn) Remote() string { return c.remote }
func (c *fakeConn) Send(b []byte) error {
	c.sent = append(c.sent, append([]byte(nil), b...))
	return nil
}
func (c *fakeConn) Close() error               { c.closed = true; return nil }
func (c *fakeConn) OnRead(cb func(string))     {}
func (c *fakeConn) OnClose(cb func())          {}
func (c *fakeConn) Poll(timeout time.Duration) {}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		ClientPort:  0,
		ServerPort:  0,
		ServerName:  "irc.local",
		NetworkName: "TestNet",
		ServerToken: 'A',
		MOTD:        func() []string { return nil },
	}
	s, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		s.ClientListener.Close()
		s.PeerListener.Close()
	})
	return s
}

func TestNewRegisteredClient_UpdatesCounters(t *testing.T) {
	s := newTestServer(t)
	c := s.Clients.Create(&fakeConn{remote: "1.2.3.4:5555"})

	s.NewRegisteredClient(c, "alice", true)

	assert.Equal(t, 1, s.Stats.TotalUsers)
	assert.Equal(t, 1, s.Stats.LocalUsers)
	assert.Equal(t, 1, s.Stats.MaxUsers)
	assert.Equal(t, entity.ClientID(0), s.Clients.Find("alice"))
}

func TestFreeClient_OnlyDecrementsIfRegistered(t *testing.T) {
	s := newTestServer(t)
	c := s.Clients.Create(&fakeConn{remote: "1.2.3.4:5555"})

	s.FreeClient(c, true)
	assert.Equal(t, 0, s.Stats.TotalUsers)

	c2 := s.Clients.Create(&fakeConn{remote: "1.2.3.4:5556"})
	s.NewRegisteredClient(c2, "bob", true)
	s.FreeClient(c2, true)
	assert.Equal(t, 0, s.Stats.TotalUsers)
	assert.Equal(t, entity.NoSuchIndex, s.Clients.Find("bob"))
}

func TestKillClient_BroadcastsQuitAndClosesSocket(t *testing.T) {
	s := newTestServer(t)
	conn := &fakeConn{remote: "1.2.3.4:5555"}
	c := s.Clients.Create(conn)
	s.NewRegisteredClient(c, "alice", true)
	entity.JoinChannel(s.Channels, c, "#general", 1000)

	witness := s.Clients.Create(&fakeConn{remote: "1.2.3.4:6000"})
	s.NewRegisteredClient(witness, "bob", true)
	entity.JoinChannel(s.Channels, witness, "#general", 1000)
	witnessConn := witness.Sock.(*fakeConn)

	s.killClient(c, "bye", false)

	assert.True(t, conn.closed)
	assert.Equal(t, 1, s.Stats.TotalUsers, "killed client must be removed from the user count; bob remains")
	require.NotEmpty(t, witnessConn.sent)
	assert.Contains(t, string(witnessConn.sent[len(witnessConn.sent)-1]), "QUIT :bye")
}
