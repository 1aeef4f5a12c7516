package peer

import (
	"github.com/coreircd/ircd/entity"
	"github.com/coreircd/ircd/payload"
)

// Sbcast writes msg to every locally-linked, REGISTERED peer (spec.md §4.3
// steady-state relaying: once REGISTERED, a link receives every server
// broadcast until it closes).
func (m *Manager) Sbcast(msg []byte) {
	m.sbcast(entity.NoSuchIndex, msg)
}

// SbcastButone is Sbcast excluding the link origin came in on, so a message
// relayed from one peer is never echoed straight back to it.
func (m *Manager) SbcastButone(origin entity.ServerID, msg []byte) {
	m.sbcast(origin, msg)
}

// sbcast enqueues msg on every qualifying link's own send queue rather than
// writing the socket directly, so a relay that lands mid-burst still queues
// behind whatever burst output hasn't flushed yet (spec.md §4.4 FIFO note).
func (m *Manager) sbcast(exclude entity.ServerID, msg []byte) {
	var buf *payload.Payload
	for i := 0; i < m.Servers.Size(); i++ {
		s := m.Servers.Get(entity.ServerID(i))
		if s == nil || !s.IsLocal || !s.IsReg || s.State != entity.Registered {
			continue
		}
		if entity.ServerID(i) == exclude {
			continue
		}
		if buf == nil {
			buf = payload.New(msg)
		}
		s.Enqueue(buf.Retain())
		s.Flush()
	}
	if buf != nil {
		buf.Release()
	}
}
