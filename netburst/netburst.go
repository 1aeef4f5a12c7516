// Package netburst implements the synchronization stream a newly-REGISTERED
// peer link receives, spec.md §4.4: every known server, then every
// registered client, then every live channel, terminated by "EB". The
// ordering is load-bearing — a peer must be able to resolve every
// referenced token before the reference is used — which is why this package
// writes servers, then clients, then channels, never interleaved.
//
// spec.md §9 flags a latent bug in the source this spec was distilled from:
// the client-burst loop iterates channels.Size() while indexing
// clients.Get(id). That bound mismatch is not reproduced here — the client
// loop below iterates clients.Size() and the channel loop iterates
// channels.Size().
package netburst

import (
	"fmt"

	"github.com/coreircd/ircd/entity"
	"github.com/coreircd/ircd/payload"
)

// Send emits the full burst to target, in the order spec.md §4.4 requires,
// then marks target.BurstComplete. self is this server's own entity.Server
// record, used as the prefix token for channel B-lines.
func Send(servers *entity.Servers, clients *entity.Clients, channels *entity.Channels, self *entity.Server, target *entity.Server) error {
	for i := 0; i < servers.Size(); i++ {
		s := servers.Get(entity.ServerID(i))
		if s == nil || !s.IsReg {
			continue
		}
		line := fmt.Sprintf("%c S %s %d %d %d J10 %c :%s\r\n",
			s.Via, s.Name, s.Hops, s.BootTS, s.LinkTS, s.Token, s.Desc)
		target.Enqueue(payload.New([]byte(line)))
	}

	for i := 0; i < clients.Size(); i++ {
		c := clients.Get(entity.ClientID(i))
		if c == nil || !c.IsReg {
			continue
		}
		line := fmt.Sprintf("%c N %s %d 0 %s %s %s %s %d :%s\r\n",
			c.ServerToken, c.Nick, clientHops(servers, c), c.User, c.Host, c.Modes, c.IP, c.ID(), c.RealName)
		target.Enqueue(payload.New([]byte(line)))
	}

	for i := 0; i < channels.Size(); i++ {
		ch := channels.Get(entity.ChannelID(i))
		if ch == nil {
			continue
		}
		var line string
		if ch.HasTopic {
			line = fmt.Sprintf("%c B %s %d %s\r\n", self.Token, ch.Name, ch.Created, ch.Modes)
		} else {
			line = fmt.Sprintf("C %s %s %d\r\n", ch.Name, ch.Modes, ch.Created)
		}
		target.Enqueue(payload.New([]byte(line)))
	}

	target.Enqueue(payload.New([]byte("EB\r\n")))
	target.BurstComplete = true
	return target.Flush()
}

// clientHops returns the hop count of c's owning server, or 0 if c resides
// on this server (ServerID unset).
func clientHops(servers *entity.Servers, c *entity.Client) int {
	if c.ServerID == entity.NoSuchIndex {
		return 0
	}
	owner := servers.Get(c.ServerID)
	if owner == nil {
		return 0
	}
	return owner.Hops
}
