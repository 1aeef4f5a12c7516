// Package stats implements the observable counters of spec.md §6/§8:
// STAT_TOTAL_CONNS, STAT_TOTAL_USERS, STAT_LOCAL_USERS, STAT_MAX_USERS,
// STAT_CHANNELS. The core is single-threaded (spec.md §5), so these need no
// locking; they're exported as plain ints with an event.Feed broadcast on
// every change so an observer (counters/statistics storage is itself an
// external collaborator per spec.md §1) can watch without the core knowing
// about it.
package stats

import "github.com/coreircd/ircd/event"

// Change describes one counter transition, delivered on Feed.
type Change struct {
	Name     string
	OldValue int
	NewValue int
}

// Counters holds the five named counters of spec.md §6.
type Counters struct {
	TotalConns int
	TotalUsers int
	LocalUsers int
	MaxUsers   int
	Channels   int

	Feed event.Feed
}

func (c *Counters) notify(name string, old, new int) {
	if old == new {
		return
	}
	c.Feed.Send(Change{Name: name, OldValue: old, NewValue: new})
}

// IncConn records a new TCP connection (client or peer) accepted.
func (c *Counters) IncConn() {
	old := c.TotalConns
	c.TotalConns++
	c.notify("STAT_TOTAL_CONNS", old, c.TotalConns)
}

// AddUser records a client completing registration (NICK+USER accepted).
// local indicates the client is directly connected to this server rather
// than introduced via netburst.
func (c *Counters) AddUser(local bool) {
	oldTotal, oldLocal, oldMax := c.TotalUsers, c.LocalUsers, c.MaxUsers
	c.TotalUsers++
	if local {
		c.LocalUsers++
	}
	if c.TotalUsers > c.MaxUsers {
		c.MaxUsers = c.TotalUsers
	}
	c.notify("STAT_TOTAL_USERS", oldTotal, c.TotalUsers)
	if local {
		c.notify("STAT_LOCAL_USERS", oldLocal, c.LocalUsers)
	}
	c.notify("STAT_MAX_USERS", oldMax, c.MaxUsers)
}

// RemoveUser is the inverse of AddUser, called on free_client per spec.md
// §4.6 — only decrements counters for a client that had registered.
func (c *Counters) RemoveUser(local bool) {
	oldTotal, oldLocal := c.TotalUsers, c.LocalUsers
	if c.TotalUsers > 0 {
		c.TotalUsers--
	}
	if local && c.LocalUsers > 0 {
		c.LocalUsers--
	}
	c.notify("STAT_TOTAL_USERS", oldTotal, c.TotalUsers)
	if local {
		c.notify("STAT_LOCAL_USERS", oldLocal, c.LocalUsers)
	}
}

// SetChannels records the current live channel count.
func (c *Counters) SetChannels(n int) {
	old := c.Channels
	c.Channels = n
	c.notify("STAT_CHANNELS", old, c.Channels)
}
