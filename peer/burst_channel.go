package peer

import "github.com/coreircd/ircd/entity"

// ApplyBurstChannel introduces or refreshes a channel carried on a peer's
// B-line/C-line during netburst (spec.md §4.4, §1's "reconstructing remote
// state on a new link"). hasTopic distinguishes a B-line (topic set) from
// a C-line (no topic), matching the distinction netburst.Send encodes.
// No burst line carries channel membership, so ApplyBurstChannel only
// establishes the channel and its modes; a newly created channel has no
// members.
func (m *Manager) ApplyBurstChannel(name, modes string, created int64, hasTopic bool) *entity.Channel {
	id := m.Channels.Find(name)
	var ch *entity.Channel
	if id == entity.NoSuchIndex {
		ch = m.Channels.Create(name, created)
	} else {
		ch = m.Channels.Get(id)
	}
	ch.Modes = modes
	if hasTopic {
		ch.HasTopic = true
	}
	return ch
}
