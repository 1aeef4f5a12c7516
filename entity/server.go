package entity

import (
	"github.com/coreircd/ircd/mclock"
	"github.com/coreircd/ircd/payload"
	"github.com/coreircd/ircd/transport"
)

// LinkState is one of the four states of spec.md §4.3 "Peer link state
// machine". It lives on the entity itself (the spec speaks of "states of a
// peer server entity"), with the transition logic living in package peer.
type LinkState int

const (
	Connecting LinkState = iota
	Unregistered
	Registered
	Closed
)

func (s LinkState) String() string {
	switch s {
	case Connecting:
		return "CONNECTING"
	case Unregistered:
		return "UNREGISTERED"
	case Registered:
		return "REGISTERED"
	case Closed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Server is a peer IRC daemon linked into the network, spec.md §3 "Peer
// server". If IsLocal, Sock is the live TCP connection to it and State
// tracks the handshake; a remote (non-local) server is a routing
// destination known only by Token, never written to directly (spec.md
// §4.3).
type Server struct {
	id    ServerID
	alive bool

	Sock  transport.Conn // nil unless IsLocal
	State LinkState

	Name  string // unique across all known servers
	Token byte   // unique across all known servers
	Desc  string
	Hops  int // 1 for a directly-connected peer, else hops+1 of the upstream

	BootTS int64 // server boot timestamp
	LinkTS int64 // timestamp this link was established

	IsLocal bool
	IsReg   bool

	// Via is the token this server entity should be re-advertised behind
	// in a netburst S-line: self's token for a directly-connected local
	// peer, or the prefix token the burst introducing it used for one
	// learned through the network (spec.md §4.4).
	Via byte

	// Secret is the shared-secret record used for authentication of a
	// local, not-yet-registered peer (spec.md §3 "Peer server" invariant:
	// if IsLocal, socket is present).
	Secret string

	// Pinged/LastActive/BurstComplete are per-link state the reaper and
	// netburst encoder touch. BurstComplete is explicitly per-peer, not a
	// global flag (spec.md §9 Open Questions).
	LastActive    mclock.AbsTime
	Pinged        bool
	BurstComplete bool

	// SendQueue buffers outbound lines to this peer. During burst, relay
	// traffic must queue behind burst output in FIFO order rather than
	// being dropped (spec.md §4.4); after burst, normal relay traffic
	// uses the same queue so ordering is automatic.
	SendQueue []*payload.Payload

	// Outbound is true if this link resulted from our own connect, as
	// opposed to accepting an inbound connection (spec.md §4.3).
	Outbound bool

	// Wired records whether the façade has already registered this
	// link's Sock.OnRead/OnClose callbacks (see Client.Wired).
	Wired bool
}

func (s *Server) ID() ServerID { return s.id }

// Enqueue appends a reference to this peer's send queue.
func (s *Server) Enqueue(p *payload.Payload) {
	s.SendQueue = append(s.SendQueue, p)
}

// Flush drains the send queue in FIFO order onto the socket.
func (s *Server) Flush() error {
	for len(s.SendQueue) > 0 {
		p := s.SendQueue[0]
		err := s.Sock.Send(p.Bytes())
		s.SendQueue = s.SendQueue[1:]
		p.Release()
		if err != nil {
			return err
		}
	}
	return nil
}
