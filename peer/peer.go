// Package peer drives the server-to-server link state machine of spec.md
// §4.3: accepting or initiating peer TCP sessions, authenticating them
// against a configured shared secret, driving PASS/SERVER registration,
// handing a freshly-registered link off to netburst, and relaying traffic
// between linked servers once steady state is reached. Grounded on
// teacher's network/p2p/server.go Server.run single-select loop, generalized
// away from goroutines and channels to fit the single-threaded cooperative
// core of spec.md §5 — per-link state is inert data on entity.Server, and
// Manager's methods are driven at the three suspension points the façade owns.
package peer

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/coreircd/ircd/config"
	"github.com/coreircd/ircd/entity"
	"github.com/coreircd/ircd/event"
	"github.com/coreircd/ircd/ircderr"
	"github.com/coreircd/ircd/mclock"
	"github.com/coreircd/ircd/netburst"
	"github.com/coreircd/ircd/transport"
)

// LinkEvent is published on Manager.Events whenever a peer link registers
// or drops, mirroring teacher's *p2p.PeerEvent shape (network/p2p/peer.go)
// for anything outside the core (a stats exporter, an admin surface) that
// wants to observe link churn without the core depending on it.
type LinkEvent struct {
	Type   string // "connect" or "drop"
	Server *entity.Server
}

// KillFunc is supplied by the façade (package server) to actually tear a
// client down: broadcast its QUIT to co-channel members, optionally relay
// the QUIT onward to other peer links, then release its table slot. Package
// peer only knows which clients belong to a dead link, not how to announce
// their departure — that's the façade's broadcast wiring.
type KillFunc func(c *entity.Client, reason string, propagate bool)

// Manager owns every peer link this server knows about and the state shared
// across them: the entity tables, this server's own identity, and the set
// of configured remote servers it's allowed to accept or dial.
type Manager struct {
	Servers  *entity.Servers
	Clients  *entity.Clients
	Channels *entity.Channels
	Self     *entity.Server
	Remotes  []config.RemoteServer

	Log    *logrus.Entry
	Events *event.Feed
	Kill   KillFunc
}

// NewManager builds a Manager. self is this server's own entity.Server
// record (IsLocal=false, used only as the netburst self-token/description
// source); it is never itself present in Servers.
func NewManager(servers *entity.Servers, clients *entity.Clients, channels *entity.Channels, self *entity.Server, remotes []config.RemoteServer, log *logrus.Entry) *Manager {
	return &Manager{
		Servers:  servers,
		Clients:  clients,
		Channels: channels,
		Self:     self,
		Remotes:  remotes,
		Log:      log,
		Events:   new(event.Feed),
	}
}

// acceptRemoteServer reports whether (name, pass) matches some configured
// remote-server record, spec.md §4.3's accept_remote_server check.
func (m *Manager) acceptRemoteServer(name, pass string) (config.RemoteServer, bool) {
	for _, r := range m.Remotes {
		if r.Name == name && r.Secret == pass {
			return r, true
		}
	}
	return config.RemoteServer{}, false
}

// AcceptInbound creates a CONNECTING server entity for a just-accepted TCP
// connection and immediately moves it to UNREGISTERED: the socket is
// already up, only the PASS/SERVER handshake remains (spec.md §4.3).
func (m *Manager) AcceptInbound(conn transport.Conn) *entity.Server {
	s := m.Servers.Create()
	s.Sock = conn
	s.IsLocal = true
	s.State = entity.Unregistered
	s.LastActive = mclock.Now()
	m.Log.WithField("remote", conn.Remote()).Info("accepted inbound peer connection")
	return s
}

// ConnectOutbound dials remote, creates its server entity, and writes the
// PASS/SERVER handshake lines directly to the socket (handshake bytes
// precede registration, so they bypass the post-registration send queue).
func (m *Manager) ConnectOutbound(dialer transport.Dialer, remote config.RemoteServer, myName string, bootTS, now int64) (*entity.Server, error) {
	conn, err := dialer.Dial(fmt.Sprintf("%s:%d", remote.Addr, remote.Port))
	if err != nil {
		return nil, ircderr.New(ircderr.Transport, "peer.connect", err)
	}
	s := m.Servers.Create()
	s.Sock = conn
	s.IsLocal = true
	s.Outbound = true
	s.State = entity.Unregistered
	s.Secret = remote.Secret
	s.LastActive = mclock.Now()

	pass := fmt.Sprintf("PASS :%s\r\n", remote.Secret)
	srv := fmt.Sprintf("SERVER %s 1 %d %d J10 %c :%s\r\n", myName, bootTS, now, m.Self.Token, m.Self.Desc)
	if err := conn.Send([]byte(pass)); err != nil {
		m.Disconnect(s, "write error during handshake")
		return nil, ircderr.New(ircderr.Transport, "peer.connect", err)
	}
	if err := conn.Send([]byte(srv)); err != nil {
		m.Disconnect(s, "write error during handshake")
		return nil, ircderr.New(ircderr.Transport, "peer.connect", err)
	}
	m.Log.WithField("name", remote.Name).WithField("addr", remote.Addr).Info("dialed configured remote server")
	return s, nil
}

// HandlePASS records the secret a not-yet-registered peer offered, to be
// checked once its SERVER line arrives (spec.md §4.3: PASS precedes SERVER,
// together they authenticate the link).
func (m *Manager) HandlePASS(s *entity.Server, pass string) error {
	if s.State != entity.Unregistered {
		return ircderr.New(ircderr.Protocol, "peer.pass", fmt.Errorf("PASS received in state %s", s.State))
	}
	s.Secret = pass
	return nil
}

// HandleSERVER completes the handshake: validates (name, s.Secret) against
// a configured remote-server record, rejects token or name collisions,
// registers the entity, and bursts the network state to it (spec.md §4.3
// UNREGISTERED -> REGISTERED, §4.4).
func (m *Manager) HandleSERVER(s *entity.Server, name string, token byte, desc string, bootTS, now int64) error {
	if s.State != entity.Unregistered {
		return ircderr.New(ircderr.Protocol, "peer.server", fmt.Errorf("SERVER received in state %s", s.State))
	}
	if _, ok := m.acceptRemoteServer(name, s.Secret); !ok {
		s.Sock.Send([]byte("ERROR :Bad link — unknown server or wrong password\r\n"))
		m.Disconnect(s, "authentication failed")
		return ircderr.New(ircderr.Auth, "peer.server", fmt.Errorf("no remote-server record matches %s", name))
	}
	if existing := m.Servers.FindToken(token); existing != entity.NoSuchIndex {
		s.Sock.Send([]byte("ERROR :Token collision\r\n"))
		m.Disconnect(s, "token collision")
		return ircderr.New(ircderr.Protocol, "peer.server", fmt.Errorf("token %c already in use", token))
	}
	if existing := m.Servers.Find(name); existing != entity.NoSuchIndex {
		s.Sock.Send([]byte("ERROR :Server already linked\r\n"))
		m.Disconnect(s, "already linked")
		return ircderr.New(ircderr.Protocol, "peer.server", fmt.Errorf("server %s already linked", name))
	}

	s.Desc = desc
	s.Hops = 1
	s.Via = m.Self.Token
	s.BootTS = bootTS
	s.LinkTS = now
	m.Servers.Register(s, name, token)
	s.State = entity.Registered
	s.LastActive = mclock.Now()

	m.Log.WithField("name", name).WithField("token", string(token)).Info("peer server registered")
	m.Events.Send(LinkEvent{Type: "connect", Server: s})

	return netburst.Send(m.Servers, m.Clients, m.Channels, m.Self, s)
}

// Disconnect tears a link down: if it had reached REGISTERED, every client
// it introduced is killed first (so their QUITs can still resolve the
// owning server's name/hop metadata) before the server entity's own slot
// is freed (spec.md §4.3 CLOSED, §8 netsplit scenario).
func (m *Manager) Disconnect(s *entity.Server, reason string) {
	if s == nil || s.State == entity.Closed {
		return
	}
	s.State = entity.Closed
	wasReg := s.IsReg
	if wasReg {
		killed := m.KillRemoteClientsOn(s.ID(), reason)
		m.Log.WithField("name", s.Name).WithField("killed", len(killed)).Info("peer link closed")
	} else {
		m.Log.WithField("remote", s.Sock.Remote()).WithField("reason", reason).Info("peer link closed before registration")
	}
	s.Sock.Close()
	m.Events.Send(LinkEvent{Type: "drop", Server: s})
	m.Servers.Free(s)
}

// KillRemoteClientsOn kills every client owned by sindex with reason,
// propagate=false since the peer that introduced them is already gone
// (spec.md §8 netsplit scenario: exactly the clients on the dead link are
// killed, local counters adjust, other links are undisturbed).
func (m *Manager) KillRemoteClientsOn(sindex entity.ServerID, reason string) []*entity.Client {
	var killed []*entity.Client
	for i := 0; i < m.Clients.Size(); i++ {
		c := m.Clients.Get(entity.ClientID(i))
		if c == nil || c.ServerID != sindex {
			continue
		}
		if m.Kill != nil {
			m.Kill(c, reason, false)
		}
		killed = append(killed, c)
	}
	return killed
}
