package peer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreircd/ircd/entity"
)

func TestApplyBurstServer_ComputesHopsRelativeToOrigin(t *testing.T) {
	m, _ := newManager()
	origin := m.Servers.Create()
	origin.IsReg = true
	origin.Name = "leaf1"
	origin.Token = 'B'
	origin.Hops = 1

	s, err := m.ApplyBurstServer(origin, "leaf1-sub", 'C', 1000, 1010, "a sub-leaf")

	require.NoError(t, err)
	assert.Equal(t, 2, s.Hops)
	assert.Equal(t, byte('B'), s.Via)
	assert.Equal(t, entity.ServerID(1), m.Servers.Find("leaf1-sub"))
}

func TestApplyBurstServer_SelfAnnounceIsNoop(t *testing.T) {
	m, _ := newManager()
	origin := m.Servers.Create()
	origin.IsReg = true
	origin.Name = "leaf1"
	origin.Token = 'B'

	s, err := m.ApplyBurstServer(origin, "leaf1", 'B', 1000, 1010, "leaf one")

	require.NoError(t, err)
	assert.Same(t, origin, s)
}

func TestApplyBurstServer_RejectsTokenCollision(t *testing.T) {
	m, _ := newManager()
	origin := m.Servers.Create()
	origin.IsReg = true
	origin.Name = "leaf1"
	origin.Token = 'B'
	origin.Hops = 1

	other := m.Servers.Create()
	m.Servers.Register(other, "already-known", 'C')

	_, err := m.ApplyBurstServer(origin, "leaf1-sub", 'C', 1000, 1010, "collides")
	require.Error(t, err)
}
