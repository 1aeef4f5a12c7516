// Package server implements the façade of spec.md §4.6: the one type that
// owns every entity table, the peer link manager, the reaper, and the
// observable counters, and wires them to a transport. Grounded on teacher's
// "service" struct shape (pkgs/trace/service.go's TraceService): a
// constructor taking a handful of named options, a Name() method, and a
// Config field populated from CLI flags, generalized from tracing one
// blockchain client process to serving one IRC network.
package server

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coreircd/ircd/broadcast"
	"github.com/coreircd/ircd/config"
	"github.com/coreircd/ircd/entity"
	"github.com/coreircd/ircd/mclock"
	"github.com/coreircd/ircd/peer"
	"github.com/coreircd/ircd/reaper"
	"github.com/coreircd/ircd/stats"
	"github.com/coreircd/ircd/transport"
)

// Server is the façade of spec.md §4.6. It owns the entity tables, peer
// manager, reaper, counters, and the two listeners, and is the single point
// every suspension point (§5) is driven through.
type Server struct {
	Config *config.Config
	Log    *logrus.Entry

	Clients  *entity.Clients
	Channels *entity.Channels
	Servers  *entity.Servers
	Self     *entity.Server

	Stats *stats.Counters
	Peer  *peer.Manager
	Reap  *reaper.Reaper

	ClientListener transport.Listener
	PeerListener   transport.Listener
	Dialer         transport.Dialer

	Created mclock.AbsTime
}

// New constructs the façade per spec.md §4.6: it opens both listeners,
// records the creation timestamp, and installs the periodic reaper. cfg
// must already be fully populated (config.FromCLIContext plus any
// programmatically added RemoteServers).
func New(cfg *config.Config, dialer transport.Dialer) (*Server, error) {
	clientLn, err := transport.Listen(fmt.Sprintf(":%d", cfg.ClientPort))
	if err != nil {
		return nil, fmt.Errorf("opening client listener: %w", err)
	}
	peerLn, err := transport.Listen(fmt.Sprintf(":%d", cfg.ServerPort))
	if err != nil {
		clientLn.Close()
		return nil, fmt.Errorf("opening peer listener: %w", err)
	}

	log := logrus.WithField("component", "ircd")
	now := mclock.Now()

	clients := entity.NewClients()
	channels := entity.NewChannels()
	servers := entity.NewServers()
	self := &entity.Server{Token: cfg.ServerToken, Name: cfg.ServerName, Desc: cfg.NetworkName}

	s := &Server{
		Config:         cfg,
		Log:            log,
		Clients:        clients,
		Channels:       channels,
		Servers:        servers,
		Self:           self,
		Stats:          &stats.Counters{},
		Peer:           peer.NewManager(servers, clients, channels, self, cfg.RemoteServers, log.WithField("subsystem", "peer")),
		Reap:           reaper.New(clients, servers, log.WithField("subsystem", "reaper"), now),
		ClientListener: clientLn,
		PeerListener:   peerLn,
		Dialer:         dialer,
		Created:        now,
	}
	s.Peer.Kill = s.killClient
	s.Reap.PingClient = s.pingClient
	s.Reap.KillClient = func(c *entity.Client, reason string) { s.killClient(c, reason, true) }
	s.Reap.PingPeer = s.pingPeer
	s.Reap.ClosePeer = func(link *entity.Server, reason string) { s.Peer.Disconnect(link, reason) }

	log.WithField("clientport", cfg.ClientPort).WithField("serverport", cfg.ServerPort).Info("ircd façade constructed")
	return s, nil
}

// Name identifies this service the way teacher's TraceService.Name does.
func (s *Server) Name() string { return "ircd" }

// AcceptClient accepts one pending client connection, if any, and creates
// its (unregistered) entity. Returns nil, nil if nothing was pending (a
// DeadlineListener poll timeout), which callers distinguish from a fatal
// listener error.
func (s *Server) AcceptClient() (*entity.Client, error) {
	conn, err := s.ClientListener.Accept()
	if err != nil {
		if transport.IsTimeout(err) {
			return nil, nil
		}
		return nil, err
	}
	c := s.Clients.Create(conn)
	c.IP = conn.Remote()
	c.ServerID = entity.NoSuchIndex
	c.LastActive = mclock.Now()
	s.Stats.IncConn()
	s.Log.WithField("remote", conn.Remote()).Debug("accepted client connection")
	return c, nil
}

// AcceptPeer accepts one pending peer connection and hands it to the peer
// manager for handshake. Returns nil, nil on a poll timeout, same as
// AcceptClient.
func (s *Server) AcceptPeer() (*entity.Server, error) {
	conn, err := s.PeerListener.Accept()
	if err != nil {
		if transport.IsTimeout(err) {
			return nil, nil
		}
		return nil, err
	}
	s.Stats.IncConn()
	return s.Peer.AcceptInbound(conn), nil
}

// NewRegisteredClient is spec.md §4.6's new_registered_client: called once a
// client's NICK and USER have both been accepted. local distinguishes a
// directly-connected client from one introduced by netburst.
func (s *Server) NewRegisteredClient(c *entity.Client, nick string, local bool) {
	s.Clients.Register(c, nick)
	s.Stats.AddUser(local)
	s.Log.WithField("nick", nick).WithField("local", local).Info("client registered")
}

// FreeClient is spec.md §4.6's free_client: removes c from every channel it
// was in, decrements counters only if it had registered, and releases the
// table slot.
func (s *Server) FreeClient(c *entity.Client, local bool) {
	wasReg := c.IsReg
	freed := entity.FreeClient(s.Clients, s.Channels, c)
	if wasReg {
		s.Stats.RemoveUser(local)
	}
	if len(freed) > 0 {
		s.Stats.SetChannels(s.Channels.LiveCount())
	}
}

// killClient tears one client down: broadcasts its QUIT to co-channel
// members (and, if propagate, relays the QUIT onward to other peer links),
// then frees it. This is the peer.KillFunc and reaper.KillClientFunc the
// façade wires into its subsystems, kept in one place so both a reaper
// timeout and a netsplit produce the same teardown sequence.
func (s *Server) killClient(c *entity.Client, reason string, propagate bool) {
	local := c.ServerID == entity.NoSuchIndex
	quitLine := fmt.Sprintf(":%s QUIT :%s\r\n", c.Nick, reason)
	broadcast.UserBcastButoneLine(s.Clients, s.Channels, c, []byte(quitLine))
	if propagate {
		// Relay the QUIT to every registered peer link except the one a
		// remote client came in on; a local client's ServerID is
		// NoSuchIndex, so its QUIT goes to all of them.
		s.Peer.SbcastButone(c.ServerID, []byte(quitLine))
	}
	if c.Sock != nil {
		c.Sock.Close()
	}
	s.FreeClient(c, local)
}

func (s *Server) pingClient(c *entity.Client) {
	if c.Sock != nil {
		c.Sock.Send([]byte(fmt.Sprintf("PING :%s\r\n", s.Config.ServerName)))
	}
}

func (s *Server) pingPeer(link *entity.Server) {
	if link.Sock != nil {
		link.Sock.Send([]byte(fmt.Sprintf("PING %s\r\n", s.Config.ServerName)))
	}
}

// PollAccept sets a bounded deadline on both listeners (if they support it)
// and attempts one accept on each, so the caller's loop never blocks longer
// than timeout waiting on a socket that has nothing pending — the
// read-readiness suspension point of spec.md §5, approximated with
// deadline-bounded polling rather than a real epoll reactor.
func (s *Server) PollAccept(timeout time.Duration) {
	if dl, ok := s.ClientListener.(transport.DeadlineListener); ok {
		dl.SetDeadline(time.Now().Add(timeout))
	}
	if c, err := s.AcceptClient(); err != nil {
		s.Log.WithError(err).Warn("client listener accept error")
	} else if c != nil {
		s.Log.WithField("remote", c.IP).Debug("client connection pending registration")
	}

	if dl, ok := s.PeerListener.(transport.DeadlineListener); ok {
		dl.SetDeadline(time.Now().Add(timeout))
	}
	if link, err := s.AcceptPeer(); err != nil {
		s.Log.WithError(err).Warn("peer listener accept error")
	} else if link != nil {
		s.Log.WithField("remote", link.Sock.Remote()).Debug("peer connection pending handshake")
	}
}

// Tick drives the reaper and peer connector from the façade's single event
// loop — the third suspension point of spec.md §5. Callers invoke it once
// per wakeup of their timer; Tick itself decides whether the reaper is
// actually due.
func (s *Server) Tick(now mclock.AbsTime, bootTS, nowUnix int64) {
	s.Peer.CallRemoteServers(s.Dialer, s.Config.ServerName, bootTS, nowUnix)
	if s.Reap.Due(now) {
		s.Reap.Sweep(now)
	}
}
