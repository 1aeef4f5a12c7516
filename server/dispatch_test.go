package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreircd/ircd/config"
	"github.com/coreircd/ircd/entity"
)

func TestDispatchClientLine_NickThenUserRegisters(t *testing.T) {
	s := newTestServer(t)
	conn := &fakeConn{remote: "1.2.3.4:5555"}
	c := s.Clients.Create(conn)

	s.dispatchClientLine(c, "NICK", []string{"alice"}, "")
	assert.False(t, c.IsReg, "registration needs both NICK and USER")

	s.dispatchClientLine(c, "USER", []string{"alice", "0", "*"}, "Alice Example")

	assert.True(t, c.IsReg)
	assert.Equal(t, entity.ClientID(0), s.Clients.Find("alice"))
	assert.Equal(t, "Alice Example", c.RealName)
}

func TestDispatchClientLine_JoinThenPrivmsgExcludesSender(t *testing.T) {
	s := newTestServer(t)
	aConn := &fakeConn{remote: "a"}
	a := s.Clients.Create(aConn)
	s.dispatchClientLine(a, "NICK", []string{"alice"}, "")
	s.dispatchClientLine(a, "USER", []string{"a", "0", "*"}, "Alice")

	bConn := &fakeConn{remote: "b"}
	b := s.Clients.Create(bConn)
	s.dispatchClientLine(b, "NICK", []string{"bob"}, "")
	s.dispatchClientLine(b, "USER", []string{"b", "0", "*"}, "Bob")

	s.dispatchClientLine(a, "JOIN", []string{"#general"}, "")
	s.dispatchClientLine(b, "JOIN", []string{"#general"}, "")

	s.dispatchClientLine(a, "PRIVMSG", []string{"#general"}, "hi")

	require.NotEmpty(t, bConn.sent)
	assert.Contains(t, string(bConn.sent[len(bConn.sent)-1]), "PRIVMSG #general :hi")
	for _, line := range aConn.sent {
		assert.NotContains(t, string(line), "PRIVMSG #general :hi")
	}
}

func TestDispatchClientLine_QuitFreesClient(t *testing.T) {
	s := newTestServer(t)
	conn := &fakeConn{remote: "1.2.3.4:5555"}
	c := s.Clients.Create(conn)
	s.dispatchClientLine(c, "NICK", []string{"alice"}, "")
	s.dispatchClientLine(c, "USER", []string{"a", "0", "*"}, "Alice")

	s.dispatchClientLine(c, "QUIT", nil, "done")

	assert.True(t, conn.closed)
	assert.Equal(t, entity.NoSuchIndex, s.Clients.Find("alice"))
}

func TestDispatchPeerLine_PassThenServerRegisters(t *testing.T) {
	s := newTestServer(t)
	s.Config.RemoteServers = []config.RemoteServer{{Name: "leaf1", Secret: "hunter2"}}
	s.Peer.Remotes = s.Config.RemoteServers

	conn := &fakeConn{remote: "10.0.0.1:4400"}
	link := s.Peer.AcceptInbound(conn)

	s.dispatchPeerLine(link, "PASS", nil, "hunter2")
	s.dispatchPeerLine(link, "SERVER", []string{"leaf1", "1", "1000", "1010", "J10", "B"}, "leaf one")

	assert.Equal(t, entity.Registered, link.State)
	assert.Equal(t, entity.ServerID(0), s.Servers.Find("leaf1"))
}
