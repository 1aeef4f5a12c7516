// dispatch.go wires each socket's raw bytes to entity mutations — the
// transport boundary of spec.md §6. Accepted connections get their Conn's
// OnRead/OnClose callbacks registered once (wireClient/wirePeer); PollIO
// drains whatever is pending on every live socket each pass of the
// façade's loop, the read-ready suspension point of spec.md §5(a).
//
// Command handling itself stays deliberately small: tokenization proper is
// the external collaborator's job per spec.md §1 Non-goals. Just enough of
// NICK/USER/JOIN/PART/PRIVMSG/QUIT/PING and the peer PASS/SERVER handshake
// lives here to prove every table mutation in entity and peer is reachable
// from bytes on a socket, not only from tests calling the methods directly.
package server

import (
	"fmt"
	"strconv"
	"time"

	"github.com/coreircd/ircd/broadcast"
	"github.com/coreircd/ircd/entity"
	"github.com/coreircd/ircd/mclock"
	"github.com/coreircd/ircd/transport"
)

// PollIO wires any not-yet-wired client or peer socket, then makes one
// bounded-deadline read attempt on every live socket.
func (s *Server) PollIO(timeout time.Duration) {
	for i := 0; i < s.Clients.Size(); i++ {
		c := s.Clients.Get(entity.ClientID(i))
		if c == nil || c.Sock == nil {
			continue
		}
		if !c.Wired {
			s.wireClient(c)
		}
		c.Sock.Poll(timeout)
	}
	for i := 0; i < s.Servers.Size(); i++ {
		link := s.Servers.Get(entity.ServerID(i))
		if link == nil || !link.IsLocal || link.Sock == nil {
			continue
		}
		if !link.Wired {
			s.wirePeer(link)
		}
		link.Sock.Poll(timeout)
	}
}

func (s *Server) wireClient(c *entity.Client) {
	c.Wired = true
	c.Sock.OnRead(func(line string) {
		verb, params, trailing := transport.ParseLine(line)
		s.dispatchClientLine(c, verb, params, trailing)
	})
	c.Sock.OnClose(func() {
		if s.Clients.Get(c.ID()) == c {
			s.killClient(c, "Connection reset by peer", true)
		}
	})
}

func (s *Server) wirePeer(link *entity.Server) {
	link.Wired = true
	link.Sock.OnRead(func(line string) {
		verb, params, trailing := transport.ParseLine(line)
		s.dispatchPeerLine(link, verb, params, trailing)
	})
	link.Sock.OnClose(func() {
		if s.Servers.Get(link.ID()) == link {
			s.Peer.Disconnect(link, "Connection reset by peer")
		}
	})
}

// dispatchClientLine implements the handful of client commands whose
// effects are named in spec.md §3/§8: NICK/USER complete registration,
// JOIN/PART maintain channel membership, PRIVMSG fans out via _butone,
// QUIT tears the client down, PING/PONG refresh liveness.
func (s *Server) dispatchClientLine(c *entity.Client, verb string, params []string, trailing string) {
	c.LastActive = mclock.Now()
	c.Pinged = false
	switch verb {
	case "NICK":
		s.handleNick(c, params)
	case "USER":
		s.handleUser(c, params, trailing)
	case "JOIN":
		s.handleJoin(c, params)
	case "PART":
		s.handlePart(c, params, trailing)
	case "PRIVMSG":
		s.handlePrivmsg(c, params, trailing)
	case "QUIT":
		reason := trailing
		if reason == "" {
			reason = "Client quit"
		}
		s.killClient(c, reason, true)
	case "PING":
		if c.Sock != nil {
			c.Sock.Send([]byte(fmt.Sprintf(":%s PONG %s :%s\r\n", s.Config.ServerName, s.Config.ServerName, trailing)))
		}
	case "PONG":
		c.Pinged = false
	}
}

func (s *Server) handleNick(c *entity.Client, params []string) {
	if len(params) < 1 || params[0] == "" {
		return
	}
	nick := params[0]
	if existing := s.Clients.Find(nick); existing != entity.NoSuchIndex && existing != c.ID() {
		if c.Sock != nil {
			c.Sock.Send([]byte(fmt.Sprintf(":%s 433 * %s :Nickname is already in use\r\n", s.Config.ServerName, nick)))
		}
		return
	}
	if !c.IsReg {
		c.Nick = nick
		if c.User != "" {
			s.NewRegisteredClient(c, nick, true)
		}
		return
	}
	old := c.Nick
	s.Clients.Rename(c, nick)
	broadcast.UserBcastLine(s.Clients, s.Channels, c, []byte(fmt.Sprintf(":%s NICK :%s\r\n", old, nick)))
}

func (s *Server) handleUser(c *entity.Client, params []string, trailing string) {
	if c.IsReg {
		return
	}
	if len(params) >= 3 {
		c.User = params[0]
		c.Modes = params[1]
	}
	c.RealName = trailing
	if c.Nick != "" && s.Clients.Find(c.Nick) == entity.NoSuchIndex {
		s.NewRegisteredClient(c, c.Nick, true)
	}
}

func (s *Server) handleJoin(c *entity.Client, params []string) {
	if len(params) < 1 || !c.IsReg {
		return
	}
	now := time.Now().Unix()
	for _, name := range splitComma(params[0]) {
		entity.JoinChannel(s.Channels, c, name, now)
		s.Stats.SetChannels(s.Channels.LiveCount())
		broadcast.UserBcastLine(s.Clients, s.Channels, c, []byte(fmt.Sprintf(":%s JOIN :%s\r\n", c.Nick, name)))
	}
}

func (s *Server) handlePart(c *entity.Client, params []string, trailing string) {
	if len(params) < 1 || !c.IsReg {
		return
	}
	for _, name := range splitComma(params[0]) {
		id := s.Channels.Find(name)
		if id == entity.NoSuchIndex {
			continue
		}
		ch := s.Channels.Get(id)
		line := fmt.Sprintf(":%s PART %s", c.Nick, name)
		if trailing != "" {
			line += " :" + trailing
		}
		line += "\r\n"
		broadcast.UserBcastLine(s.Clients, s.Channels, c, []byte(line))
		if entity.LeaveChannel(s.Channels, c, ch) {
			s.Stats.SetChannels(s.Channels.LiveCount())
		}
	}
}

func (s *Server) handlePrivmsg(c *entity.Client, params []string, trailing string) {
	if len(params) < 1 || !c.IsReg {
		return
	}
	line := fmt.Sprintf(":%s PRIVMSG %s :%s\r\n", c.Nick, params[0], trailing)
	broadcast.UserBcastButoneLine(s.Clients, s.Channels, c, []byte(line))
}

// splitComma splits an IRC-style comma-joined target list ("#a,#b,#c").
func splitComma(list string) []string {
	var out []string
	start := 0
	for i := 0; i < len(list); i++ {
		if list[i] == ',' {
			out = append(out, list[start:i])
			start = i + 1
		}
	}
	return append(out, list[start:])
}

// dispatchPeerLine implements the peer-link handshake: PASS then SERVER
// drive the UNREGISTERED -> REGISTERED transition of spec.md §4.3 from
// actual wire bytes, matching the field layout ConnectOutbound writes
// ("SERVER name hops bootTS linkTS J10 token :desc").
func (s *Server) dispatchPeerLine(link *entity.Server, verb string, params []string, trailing string) {
	link.LastActive = mclock.Now()
	switch verb {
	case "PASS":
		if err := s.Peer.HandlePASS(link, trailing); err != nil {
			s.Log.WithError(err).Warn("peer PASS rejected")
		}
	case "SERVER":
		if len(params) < 6 {
			s.Peer.Disconnect(link, "malformed SERVER line")
			return
		}
		name := params[0]
		bootTS, _ := strconv.ParseInt(params[2], 10, 64)
		linkTS, _ := strconv.ParseInt(params[3], 10, 64)
		token := params[5][0]
		if err := s.Peer.HandleSERVER(link, name, token, trailing, bootTS, linkTS); err != nil {
			s.Log.WithError(err).Warn("peer SERVER rejected")
		}
	case "PING":
		if link.Sock != nil {
			link.Sock.Send([]byte(fmt.Sprintf(":%s PONG %s\r\n", s.Config.ServerName, s.Config.ServerName)))
		}
	case "PONG":
		link.Pinged = false
	case "SQUIT":
		s.Peer.Disconnect(link, trailing)
	}
}
