package entity

import (
	"strings"

	"github.com/coreircd/ircd/transport"
)

// Clients is the slot-allocating client table of spec.md §4.1.
type Clients struct {
	slots   []*Client
	free    []ClientID
	byNick  map[string]ClientID
	nextSeq uint64
}

func NewClients() *Clients {
	return &Clients{byNick: make(map[string]ClientID)}
}

func foldNick(nick string) string {
	return strings.ToLower(nick)
}

// Create allocates the lowest free slot, constructs a Client bound to sock
// (unregistered), and returns it.
func (t *Clients) Create(sock transport.Conn) *Client {
	c := &Client{
		alive:    true,
		Sock:     sock,
		Channels: make(map[ChannelID]struct{}),
		ServerID: NoSuchIndex,
	}
	if n := len(t.free); n > 0 {
		low := 0
		for i := 1; i < n; i++ {
			if t.free[i] < t.free[low] {
				low = i
			}
		}
		id := t.free[low]
		t.free[low] = t.free[n-1]
		t.free = t.free[:n-1]
		c.id = id
		t.slots[id] = c
	} else {
		c.id = ClientID(len(t.slots))
		t.slots = append(t.slots, c)
	}
	return c
}

// Get returns the client at id, or nil if the slot is free.
func (t *Clients) Get(id ClientID) *Client {
	if id < 0 || int(id) >= len(t.slots) {
		return nil
	}
	return t.slots[id]
}

// Size returns one past the highest ever-allocated slot.
func (t *Clients) Size() int {
	return len(t.slots)
}

// Find returns the handle of the registered client with the given nickname
// (case-insensitive), or NoSuchIndex on a miss.
func (t *Clients) Find(nick string) ClientID {
	if id, ok := t.byNick[foldNick(nick)]; ok {
		return id
	}
	return NoSuchIndex
}

// Register marks c as registered under nick and indexes it by nickname.
// Precondition: the caller has already checked Find(nick) == NoSuchIndex
// (spec.md §3 invariant: registered nicknames are unique).
func (t *Clients) Register(c *Client, nick string) {
	c.Nick = nick
	c.IsReg = true
	c.regSeq = t.nextSeq
	t.nextSeq++
	t.byNick[foldNick(nick)] = c.id
}

// RegisterBurst is Register for a client introduced by netburst: seq is a
// caller-supplied registration-order value (this core's stand-in for a
// persistent registration timestamp, spec.md §8 scenario 5's TS rule) used
// instead of this table's own monotonic counter. The N-line netburst.Send
// writes does not carry this value; its timestamp field is always 0.
func (t *Clients) RegisterBurst(c *Client, nick string, seq uint64) {
	c.Nick = nick
	c.IsReg = true
	c.regSeq = seq
	t.byNick[foldNick(nick)] = c.id
}

// Rename reindexes a registered client under a new nickname.
func (t *Clients) Rename(c *Client, newNick string) {
	delete(t.byNick, foldNick(c.Nick))
	c.Nick = newNick
	t.byNick[foldNick(newNick)] = c.id
}

// Free marks c's slot free, making the handle available for reuse, and
// drops it from the nickname index if registered. Callers are responsible
// for first removing c from every channel it was in (see FreeClient) —
// Free itself only releases the table slot.
func (t *Clients) Free(c *Client) {
	if c == nil || !c.alive {
		return
	}
	c.alive = false
	if c.IsReg {
		delete(t.byNick, foldNick(c.Nick))
	}
	t.slots[c.id] = nil
	t.free = append(t.free, c.id)
}
