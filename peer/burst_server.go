package peer

import (
	"fmt"
	"strings"

	"github.com/coreircd/ircd/entity"
	"github.com/coreircd/ircd/ircderr"
)

// ApplyBurstServer introduces a server carried on a peer's S-line during
// netburst (spec.md §4.4, §1's "reconstructing remote state on a new
// link"). origin is the directly-connected peer the burst arrived on, not
// the server being introduced. An S-line naming origin itself is the
// peer re-announcing its own registration and is a no-op here — it was
// already registered by HandleSERVER.
//
// Hops is computed relative to this node, not re-transmitted verbatim: a
// server learned through origin is always one hop further than origin
// itself (spec.md §3's "else hops+1 of the upstream"), so Hops = 1 for a
// direct peer compounds correctly across multiple burst relays without
// this node having to trust a peer's self-reported distance.
func (m *Manager) ApplyBurstServer(origin *entity.Server, name string, token byte, bootTS, linkTS int64, desc string) (*entity.Server, error) {
	if strings.EqualFold(name, origin.Name) {
		return origin, nil
	}
	if existing := m.Servers.Find(name); existing != entity.NoSuchIndex {
		return m.Servers.Get(existing), nil
	}
	if m.Servers.FindToken(token) != entity.NoSuchIndex {
		return nil, ircderr.New(ircderr.Protocol, "peer.burstserver",
			fmt.Errorf("token %c already in use, rejecting burst S-line for %s", token, name))
	}

	s := m.Servers.Create()
	s.Hops = origin.Hops + 1
	s.Via = origin.Token
	s.Desc = desc
	s.BootTS = bootTS
	s.LinkTS = linkTS
	s.IsLocal = false
	m.Servers.Register(s, name, token)
	return s, nil
}
