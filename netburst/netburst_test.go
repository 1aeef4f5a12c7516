package netburst

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreircd/ircd/entity"
)

type recordingConn struct {
	sent [][]byte
}

func (c *recordingConn) Remote() string { return "test" }
func (c *recordingConn) Send(b []byte) error {
	c.sent = append(c.sent, append([]byte(nil), b...))
	return nil
}
func (c *recordingConn) Close() error               { return nil }
func (c *recordingConn) OnRead(cb func(string))     {}
func (c *recordingConn) OnClose(cb func())          {}
func (c *recordingConn) Poll(timeout time.Duration) {}

func TestSend_OrdersServersThenClientsThenChannelsThenEB(t *testing.T) {
	servers := entity.NewServers()
	clients := entity.NewClients()
	channels := entity.NewChannels()

	self := &entity.Server{Token: 'A', Name: "hub.local"}

	peer1 := servers.Create()
	servers.Register(peer1, "leaf1", 'B')
	peer1.Via = 'A'
	peer1.Hops = 1

	c := clients.Create(nil)
	clients.Register(c, "alice")
	c.ServerID = entity.NoSuchIndex
	c.ServerToken = 'A'
	c.User, c.Host, c.RealName = "alice", "host", "Alice Real"

	chTopic := channels.Create("#x", 1000)
	chTopic.SetTopic("hello")
	channels.Create("#y", 1000)

	conn := &recordingConn{}
	target := servers.Create()
	target.Sock = conn
	servers.Register(target, "remote-target", 'C')

	err := Send(servers, clients, channels, self, target)
	require.NoError(t, err)

	var kinds []string
	for _, raw := range conn.sent {
		line := string(raw)
		switch {
		case strings.Contains(line, " S "):
			kinds = append(kinds, "S")
		case strings.Contains(line, " N "):
			kinds = append(kinds, "N")
		case strings.HasPrefix(line, "EB"):
			kinds = append(kinds, "EB")
		case strings.Contains(line, " B "), strings.HasPrefix(line, "C "):
			kinds = append(kinds, "C")
		}
	}

	// servers (S) must all precede clients (N), which precede channels
	// (B/C), which precede the EB terminator — spec.md §4.4 ordering.
	lastS, firstN, lastN, firstChan, ebIdx := -1, -1, -1, -1, -1
	for i, k := range kinds {
		switch k {
		case "S":
			lastS = i
		case "N":
			if firstN == -1 {
				firstN = i
			}
			lastN = i
		case "C":
			if firstChan == -1 {
				firstChan = i
			}
		case "EB":
			ebIdx = i
		}
	}
	assert.True(t, lastS < firstN, "all S lines must precede all N lines")
	assert.True(t, lastN < firstChan, "all N lines must precede channel lines")
	assert.Equal(t, len(kinds)-1, ebIdx, "EB must be the final line")
	assert.True(t, target.BurstComplete)
}

func TestClientHops_LocalClientIsZero(t *testing.T) {
	servers := entity.NewServers()
	c := &entity.Client{}
	c.ServerID = entity.NoSuchIndex
	assert.Equal(t, 0, clientHops(servers, c))
}
