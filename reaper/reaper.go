// Package reaper implements the idle/timeout sweep of spec.md §4.5: the
// only component permitted to observe time-based liveness violations and
// initiate cleanup. It is driven from the façade's reaper tick, the third
// suspension point of spec.md §5 — never its own goroutine or timer
// callback, so it never races the cooperative core.
package reaper

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coreircd/ircd/entity"
	"github.com/coreircd/ircd/mclock"
)

// Period and FirstFire are the reaper's fixed schedule, spec.md §4.5:
// "fires every 5s (first fire after 10s)".
const (
	Period    = 5 * time.Second
	FirstFire = 10 * time.Second
)

// IdleThreshold is the fixed age past which a REGISTERED client or peer is
// pinged, and past which a pinged, still-silent entity is killed. The spec
// leaves the exact figure unstated beyond "a fixed idle threshold"; 90s
// (18 reaper periods) is the stand-in, large enough that a
// single missed tick cannot false-positive a quiet connection.
const IdleThreshold = 90 * time.Second

// KillClientFunc tears a client down with the given reason, used by the
// reaper for both ping timeouts and raw idle kills of unregistered clients.
type KillClientFunc func(c *entity.Client, reason string)

// ClosePeerFunc tears a peer link down with the given reason.
type ClosePeerFunc func(s *entity.Server, reason string)

// PingClientFunc sends a PING to a client awaiting a PONG reply.
type PingClientFunc func(c *entity.Client)

// PingPeerFunc sends a PING to a peer link awaiting a PONG reply.
type PingPeerFunc func(s *entity.Server)

// Reaper owns the callbacks the façade wires in to actually act on a
// liveness violation — the reaper itself only decides which entities are
// overdue, it never touches a socket directly.
type Reaper struct {
	Clients  *entity.Clients
	Servers  *entity.Servers
	Log      *logrus.Entry

	PingClient PingClientFunc
	KillClient KillClientFunc
	PingPeer   PingPeerFunc
	ClosePeer  ClosePeerFunc

	// NextFire is the mclock.AbsTime the reaper should next run at; the
	// façade's Tick compares this against mclock.Now() before calling Sweep.
	NextFire mclock.AbsTime
}

// New builds a Reaper whose first sweep is scheduled FirstFire after now.
func New(clients *entity.Clients, servers *entity.Servers, log *logrus.Entry, now mclock.AbsTime) *Reaper {
	return &Reaper{
		Clients:  clients,
		Servers:  servers,
		Log:      log,
		NextFire: now.Add(FirstFire),
	}
}

// Due reports whether now has reached the scheduled next fire.
func (r *Reaper) Due(now mclock.AbsTime) bool {
	return now.Sub(r.NextFire) >= 0
}

// Sweep runs one reaper pass over every client and peer server, then
// reschedules NextFire exactly Period past now (spec.md §4.5). Callers
// should only invoke Sweep when Due(now) holds.
func (r *Reaper) Sweep(now mclock.AbsTime) {
	r.sweepClients(now)
	r.sweepPeers(now)
	r.NextFire = now.Add(Period)
}

func (r *Reaper) sweepClients(now mclock.AbsTime) {
	for i := 0; i < r.Clients.Size(); i++ {
		c := r.Clients.Get(entity.ClientID(i))
		if c == nil {
			continue
		}
		idle := now.Sub(c.LastActive)
		if idle < IdleThreshold {
			continue
		}
		if !c.IsReg {
			r.Log.WithField("remote", c.IP).Info("reaping unregistered client")
			if r.KillClient != nil {
				r.KillClient(c, "Registration timeout")
			}
			continue
		}
		if c.Pinged {
			r.Log.WithField("nick", c.Nick).Info("reaping unresponsive client")
			if r.KillClient != nil {
				r.KillClient(c, "Ping timeout")
			}
			continue
		}
		c.Pinged = true
		if r.PingClient != nil {
			r.PingClient(c)
		}
	}
}

func (r *Reaper) sweepPeers(now mclock.AbsTime) {
	for i := 0; i < r.Servers.Size(); i++ {
		s := r.Servers.Get(entity.ServerID(i))
		if s == nil || !s.IsLocal || s.State == entity.Closed {
			continue
		}
		idle := now.Sub(s.LastActive)
		if idle < IdleThreshold {
			continue
		}
		if s.State != entity.Registered {
			// A link stuck mid-handshake past the threshold is a dead
			// connection, not a ping candidate — it never reached the
			// state where PING/PONG applies.
			r.Log.WithField("remote", s.Sock.Remote()).Info("reaping stalled unregistered peer link")
			if r.ClosePeer != nil {
				r.ClosePeer(s, "Registration timeout")
			}
			continue
		}
		if s.Pinged {
			r.Log.WithField("name", s.Name).Info("reaping unresponsive peer link")
			if r.ClosePeer != nil {
				r.ClosePeer(s, "Ping timeout")
			}
			continue
		}
		s.Pinged = true
		if r.PingPeer != nil {
			r.PingPeer(s)
		}
	}
}
