package peer

import (
	"github.com/coreircd/ircd/entity"
	"github.com/coreircd/ircd/transport"
)

// CallRemoteServers dials every configured remote that has no live link yet,
// one attempt per call (spec.md §4.3: "periodically attempts to connect to
// any configured remote server it does not currently have a link to"). It is
// driven from the façade's Tick, the third suspension point of spec.md §5 —
// never its own goroutine.
func (m *Manager) CallRemoteServers(dialer transport.Dialer, myName string, bootTS, now int64) {
	for _, r := range m.Remotes {
		if m.Servers.Find(r.Name) != entity.NoSuchIndex {
			continue
		}
		if _, err := m.ConnectOutbound(dialer, r, myName, bootTS, now); err != nil {
			m.Log.WithField("name", r.Name).WithField("err", err).Debug("outbound peer connect failed, will retry next tick")
		}
	}
}
