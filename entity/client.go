package entity

import (
	"github.com/coreircd/ircd/mclock"
	"github.com/coreircd/ircd/payload"
	"github.com/coreircd/ircd/transport"
)

// Client is a user connection, spec.md §3 "Client". Fields are exported so
// the broadcast, peer, and netburst packages can read and update them
// directly — the core is single-threaded (spec.md §5), so there is nothing
// to guard with accessor methods.
type Client struct {
	id    ClientID
	alive bool

	Sock transport.Conn

	IsReg bool

	Nick     string
	User     string
	Host     string
	RealName string
	IP       string
	Modes    string

	// ServerToken is the one-character token of the server this client
	// resides on (spec.md §3); ServerID is that server's handle, or
	// NoSuchIndex if the client resides on this server itself and no
	// entity.Server record exists for "self".
	ServerToken byte
	ServerID    ServerID

	// Channels is the set of channel handles this client has joined.
	// Membership is reciprocal with Channel.Members (spec.md §8).
	Channels map[ChannelID]struct{}

	// SendQueue holds references to pending output buffers, not copies
	// (spec.md §4.2 zero-copy policy).
	SendQueue []*payload.Payload

	LastActive mclock.AbsTime

	// Pinged is true once the reaper has sent this client a PING while
	// waiting for it to clear IdleThreshold; a PONG (or any traffic that
	// refreshes LastActive) clears it, a second idle period past it is a
	// timeout (spec.md §4.5 ping-then-kill).
	Pinged bool

	// Wired records whether the façade has already registered this
	// client's Sock.OnRead/OnClose callbacks, so its read-poll loop wires
	// each socket exactly once regardless of how many tables it scans.
	Wired bool

	// regSeq orders registrations for the TS-collision rule of spec.md
	// §8 scenario 5 (older wins): a monotonically increasing sequence
	// number stands in for a persistent registration timestamp, since
	// this core keeps no persistent store.
	regSeq uint64
}

func (c *Client) ID() ClientID { return c.id }

// RegSeq returns the client's registration sequence number, used to break
// nick collisions discovered during netburst (older — lower seq — wins).
func (c *Client) RegSeq() uint64 { return c.regSeq }

// Enqueue appends a reference to the client's send queue. The caller must
// already hold a reference (via payload.Payload.Retain) on p.
func (c *Client) Enqueue(p *payload.Payload) {
	c.SendQueue = append(c.SendQueue, p)
}

// Flush drains the send queue in FIFO order, writing each buffer to the
// socket and releasing the client's reference once written. It stops and
// returns the first transport error encountered, leaving any remaining
// queued buffers in place for a later Flush.
func (c *Client) Flush() error {
	for len(c.SendQueue) > 0 {
		p := c.SendQueue[0]
		err := c.Sock.Send(p.Bytes())
		c.SendQueue = c.SendQueue[1:]
		p.Release()
		if err != nil {
			return err
		}
	}
	return nil
}
