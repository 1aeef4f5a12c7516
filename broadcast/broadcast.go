// Package broadcast implements the destination fan-out engine of spec.md
// §4.2: computing, for a source client, the exact set of co-channel
// members to deliver a line to, and doing so through a single
// reference-counted payload so a message to a large channel allocates its
// bytes exactly once (spec.md §4.2 zero-copy policy, §9 design note).
package broadcast

import (
	"fmt"

	"github.com/coreircd/ircd/entity"
	"github.com/coreircd/ircd/payload"
)

// destinations computes the union of every member of every channel src has
// joined, optionally including src itself, with duplicates eliminated so a
// client in several shared channels appears exactly once. This is the set
// computation spec.md §4.2 and §8 ("Broadcast uniqueness") describe.
func destinations(clients *entity.Clients, channels *entity.Channels, src *entity.Client, includeSrc bool) []*entity.Client {
	seen := make(map[entity.ClientID]struct{}, 8)
	var out []*entity.Client
	if includeSrc {
		seen[src.ID()] = struct{}{}
		out = append(out, src)
	} else {
		seen[src.ID()] = struct{}{}
	}
	for chID := range src.Channels {
		ch := channels.Get(chID)
		if ch == nil {
			continue
		}
		for memberID := range ch.Members {
			if _, ok := seen[memberID]; ok {
				continue
			}
			m := clients.Get(memberID)
			if m == nil {
				continue
			}
			seen[memberID] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

// Emit is the raw-buffer form shared by both string forms: it wraps raw in
// a single Payload and enqueues a reference on every destination's send
// queue, flushing each in turn so per-socket FIFO ordering (spec.md §5(a))
// falls out of the iteration order.
func Emit(clients *entity.Clients, channels *entity.Channels, src *entity.Client, includeSrc bool, raw []byte) []*entity.Client {
	dests := destinations(clients, channels, src, includeSrc)
	if len(dests) == 0 {
		return nil
	}
	buf := payload.New(raw)
	for _, c := range dests {
		c.Enqueue(buf.Retain())
		c.Flush()
	}
	buf.Release()
	return dests
}

// formatNumeric renders ":<from> NNN <tail>\r\n" with NNN zero-padded to
// three digits, per spec.md §6 wire format.
func formatNumeric(from string, numeric int, tail string) []byte {
	return []byte(fmt.Sprintf(":%s %03d %s\r\n", from, numeric, tail))
}

// UserBcast sends the line to src and every client sharing at least one
// channel with src (spec.md §4.2).
func UserBcast(clients *entity.Clients, channels *entity.Channels, src *entity.Client, from string, numeric int, tail string) []*entity.Client {
	return Emit(clients, channels, src, true, formatNumeric(from, numeric, tail))
}

// UserBcastButone is UserBcast with src excluded from the destination set
// (spec.md §4.2, §8 "Origin exclusion").
func UserBcastButone(clients *entity.Clients, channels *entity.Channels, src *entity.Client, from string, numeric int, tail string) []*entity.Client {
	return Emit(clients, channels, src, false, formatNumeric(from, numeric, tail))
}

// UserBcastLine and UserBcastButoneLine are the raw-buffer forms for
// callers that already have a fully formatted line (e.g. a PRIVMSG relay,
// which is not numeric-shaped).
func UserBcastLine(clients *entity.Clients, channels *entity.Channels, src *entity.Client, line []byte) []*entity.Client {
	return Emit(clients, channels, src, true, line)
}

func UserBcastButoneLine(clients *entity.Clients, channels *entity.Channels, src *entity.Client, line []byte) []*entity.Client {
	return Emit(clients, channels, src, false, line)
}
