package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddUser_TracksTotalsLocalAndHighWaterMark(t *testing.T) {
	var c Counters
	c.AddUser(true)
	c.AddUser(false)
	c.AddUser(true)

	assert.Equal(t, 3, c.TotalUsers)
	assert.Equal(t, 2, c.LocalUsers)
	assert.Equal(t, 3, c.MaxUsers)

	c.RemoveUser(true)
	assert.Equal(t, 2, c.TotalUsers)
	assert.Equal(t, 1, c.LocalUsers)
	assert.Equal(t, 3, c.MaxUsers, "high-water mark must not drop on removal")
}

func TestCounters_NotifiesOnChangeOnly(t *testing.T) {
	var c Counters
	sub := c.Feed.Subscribe(8)

	c.IncConn()
	c.SetChannels(0) // no-op: old == new, must not notify

	change := (<-sub.Chan()).(Change)
	assert.Equal(t, "STAT_TOTAL_CONNS", change.Name)
	assert.Equal(t, 1, change.NewValue)

	select {
	case v := <-sub.Chan():
		t.Fatalf("unexpected second notification: %+v", v)
	default:
	}
}
