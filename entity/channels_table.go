package entity

import "strings"

// Channels is the slot-allocating channel table of spec.md §4.1.
type Channels struct {
	slots  []*Channel
	free   []ChannelID
	byName map[string]ChannelID
}

func NewChannels() *Channels {
	return &Channels{byName: make(map[string]ChannelID)}
}

func foldChannel(name string) string {
	return strings.ToLower(name)
}

// Create allocates the lowest free slot for a new channel, registers it
// immediately in the name index (channels don't have a separate
// registration phase the way clients do — they exist from first join,
// spec.md §3), and returns it.
func (t *Channels) Create(name string, createdAt int64) *Channel {
	ch := &Channel{
		alive:   true,
		Name:    name,
		Created: createdAt,
		Members: make(map[ClientID]MemberFlags),
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
		ch.id = id
		t.slots[id] = ch
	} else {
		ch.id = ChannelID(len(t.slots))
		t.slots = append(t.slots, ch)
	}
	t.byName[foldChannel(name)] = ch.id
	return ch
}

func (t *Channels) Get(id ChannelID) *Channel {
	if id < 0 || int(id) >= len(t.slots) {
		return nil
	}
	return t.slots[id]
}

func (t *Channels) Size() int {
	return len(t.slots)
}

// LiveCount returns the number of currently-allocated (non-free) channel
// slots, used to drive STAT_CHANNELS.
func (t *Channels) LiveCount() int {
	return len(t.slots) - len(t.free)
}

// Find returns the handle of the channel with the given name
// (case-insensitive), or NoSuchIndex on a miss.
func (t *Channels) Find(name string) ChannelID {
	if id, ok := t.byName[foldChannel(name)]; ok {
		return id
	}
	return NoSuchIndex
}

// Free releases ch's slot and removes it from the name index. Callers must
// ensure Members is empty first (spec.md §3 lifecycle: freed when
// membership becomes empty) — see LeaveChannel, which calls this.
func (t *Channels) Free(ch *Channel) {
	if ch == nil || !ch.alive {
		return
	}
	ch.alive = false
	delete(t.byName, foldChannel(ch.Name))
	t.slots[ch.id] = nil
	t.free = append(t.free, ch.id)
}
