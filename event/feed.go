// Package event implements a small pub/sub primitive used to notify
// observers outside the cooperative core (stat exporters, a future admin
// surface) about peer connect/drop and counter changes, without the core
// itself depending on who is listening. Adapted from the call sites of
// teacher's common/event package (srv.peerFeed.Send(&PeerEvent{...}),
// srv.SubscribeEvents in network/p2p/server.go); the real go-ethereum event
// package is reflect-based and considerably more general than this core
// needs, so this is a simplified channel-based re-derivation of the same
// Feed/Subscription shape.
package event

import "sync"

// Subscription is returned by Feed.Subscribe. Values sent on the feed after
// subscription arrive on Chan until Unsubscribe is called.
type Subscription struct {
	feed *Feed
	ch   chan interface{}
	once sync.Once
}

// Chan returns the channel values are delivered on.
func (s *Subscription) Chan() <-chan interface{} {
	return s.ch
}

// Unsubscribe detaches the subscription from its feed and closes Chan.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.feed.remove(s)
		close(s.ch)
	})
}

// Feed implements one-to-many notification. The zero value is ready to use.
type Feed struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// Subscribe registers a new listener with the given channel buffer size.
func (f *Feed) Subscribe(buffer int) *Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs == nil {
		f.subs = make(map[*Subscription]struct{})
	}
	sub := &Subscription{feed: f, ch: make(chan interface{}, buffer)}
	f.subs[sub] = struct{}{}
	return sub
}

// Send delivers v to every current subscriber, dropping it for any
// subscriber whose buffer is full rather than blocking the sender — the
// core must never stall on a slow observer. Returns the number of
// subscribers the value was delivered to.
func (f *Feed) Send(v interface{}) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	delivered := 0
	for sub := range f.subs {
		select {
		case sub.ch <- v:
			delivered++
		default:
		}
	}
	return delivered
}

func (f *Feed) remove(s *Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, s)
}
