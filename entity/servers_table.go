package entity

import "strings"

// Servers is the slot-allocating peer-server table of spec.md §4.1. It
// maintains two name indexes, by server name and by routing token, both
// required unique by spec.md §3.
type Servers struct {
	slots   []*Server
	free    []ServerID
	byName  map[string]ServerID
	byToken map[byte]ServerID
}

func NewServers() *Servers {
	return &Servers{
		byName:  make(map[string]ServerID),
		byToken: make(map[byte]ServerID),
	}
}

func foldServerName(name string) string {
	return strings.ToLower(name)
}

// Create allocates the lowest free slot for a new, as-yet-unregistered peer
// server entity.
func (t *Servers) Create() *Server {
	s := &Server{alive: true, State: Connecting}
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
		s.id = id
		t.slots[id] = s
	} else {
		s.id = ServerID(len(t.slots))
		t.slots = append(t.slots, s)
	}
	return s
}

func (t *Servers) Get(id ServerID) *Server {
	if id < 0 || int(id) >= len(t.slots) {
		return nil
	}
	return t.slots[id]
}

func (t *Servers) Size() int {
	return len(t.slots)
}

// Find returns the handle of the server with the given name, or
// NoSuchIndex on a miss.
func (t *Servers) Find(name string) ServerID {
	if id, ok := t.byName[foldServerName(name)]; ok {
		return id
	}
	return NoSuchIndex
}

// FindToken returns the handle of the server owning the given routing
// token, or NoSuchIndex on a miss.
func (t *Servers) FindToken(token byte) ServerID {
	if id, ok := t.byToken[token]; ok {
		return id
	}
	return NoSuchIndex
}

// Register indexes s under name and token once PASS/SERVER succeeds
// (spec.md §4.3 UNREGISTERED -> REGISTERED).
func (t *Servers) Register(s *Server, name string, token byte) {
	s.Name = name
	s.Token = token
	s.IsReg = true
	t.byName[foldServerName(name)] = s.id
	t.byToken[token] = s.id
}

// Free releases s's slot and both name indexes.
func (t *Servers) Free(s *Server) {
	if s == nil || !s.alive {
		return
	}
	s.alive = false
	if s.IsReg {
		delete(t.byName, foldServerName(s.Name))
		delete(t.byToken, s.Token)
	}
	t.slots[s.id] = nil
	t.free = append(t.free, s.id)
}
