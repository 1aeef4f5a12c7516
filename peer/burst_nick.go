package peer

import (
	"fmt"

	"github.com/coreircd/ircd/entity"
	"github.com/coreircd/ircd/ircderr"
)

// ApplyBurstNick introduces a remote client carried on a peer's N-line, or
// resolves a collision against an existing registration by the TS rule of
// spec.md §8 scenario 5: the older registration (lower seq) wins. A younger
// existing client is killed with a collision reason and replaced; a younger
// (or equally old) incoming copy is rejected with a Protocol error and is
// neither created nor killed. seq is the caller-supplied registration-order
// value for the incoming client (see entity.Clients.RegisterBurst).
func (m *Manager) ApplyBurstNick(origin *entity.Server, nick, user, host, modes, ip, realName string, seq uint64) (*entity.Client, error) {
	if existingID := m.Clients.Find(nick); existingID != entity.NoSuchIndex {
		existing := m.Clients.Get(existingID)
		if existing.RegSeq() <= seq {
			return nil, ircderr.New(ircderr.Protocol, "peer.burstnick",
				fmt.Errorf("nick %s collides with an older registration, burst copy rejected", nick))
		}
		if m.Kill != nil {
			m.Kill(existing, fmt.Sprintf("Nick collision (%s)", origin.Name), false)
		}
	}

	c := m.Clients.Create(nil)
	c.ServerID = origin.ID()
	c.ServerToken = origin.Token
	c.User, c.Host, c.Modes, c.IP, c.RealName = user, host, modes, ip, realName
	m.Clients.RegisterBurst(c, nick, seq)
	return c, nil
}
