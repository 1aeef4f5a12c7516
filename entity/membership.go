package entity

// JoinChannel adds c to the channel named name, creating the channel first
// if this is its first member (spec.md §3 Channel lifecycle: "created on
// first join"). It maintains the reciprocal-membership invariant tested in
// spec.md §8: for every member c, c.Channels contains the channel, and the
// channel's Members contains c.
func JoinChannel(channels *Channels, c *Client, name string, now int64) *Channel {
	id := channels.Find(name)
	var ch *Channel
	if id == NoSuchIndex {
		ch = channels.Create(name, now)
	} else {
		ch = channels.Get(id)
	}
	if _, already := ch.Members[c.ID()]; already {
		return ch
	}
	ch.Members[c.ID()] = MemberFlags{}
	c.Channels[ch.ID()] = struct{}{}
	return ch
}

// LeaveChannel removes c from ch, freeing the channel if that empties it
// (spec.md §3 Channel lifecycle: "freed when membership becomes empty").
// Returns true if the channel was freed.
func LeaveChannel(channels *Channels, c *Client, ch *Channel) bool {
	if ch == nil {
		return false
	}
	delete(ch.Members, c.ID())
	delete(c.Channels, ch.ID())
	if len(ch.Members) == 0 {
		channels.Free(ch)
		return true
	}
	return false
}

// FreeClient tears a client down per spec.md §3 Client lifecycle: it is
// removed from every channel it was in (freeing any that thereby become
// empty), then its table slot is released. Returns the list of channels
// that were freed as a side effect, so callers (the broadcast-driven QUIT
// handling) can update the STAT_CHANNELS counter.
func FreeClient(clients *Clients, channels *Channels, c *Client) []*Channel {
	var freed []*Channel
	for chID := range c.Channels {
		ch := channels.Get(chID)
		if ch == nil {
			continue
		}
		if LeaveChannel(channels, c, ch) {
			freed = append(freed, ch)
		}
	}
	clients.Free(c)
	return freed
}
