// Package entity implements the slot-allocating entity tables of spec.md
// §4.1: clients, channels, and peer servers, each yielding stable small
// integer handles with O(1) lookup and free-slot reuse. Cross-references
// between entities are these handles, not pointers — spec.md §9's
// "Stable handles instead of pointer graphs" note — which is what lets a
// client, its channels, and its owning server reference each other without
// a cyclic ownership graph.
package entity

// ClientID, ChannelID, and ServerID are stable handles into their
// respective tables. A handle remains valid for the entity's lifetime and
// may be reused after Free.
type ClientID int
type ChannelID int
type ServerID int

// NoSuchIndex is the sentinel returned by Find on a miss, and is never a
// valid handle (tables never allocate a negative index).
const NoSuchIndex = -1
