package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeed_SendDeliversToAllSubscribers(t *testing.T) {
	var f Feed
	s1 := f.Subscribe(1)
	s2 := f.Subscribe(1)

	n := f.Send("hello")
	assert.Equal(t, 2, n)
	assert.Equal(t, "hello", <-s1.Chan())
	assert.Equal(t, "hello", <-s2.Chan())
}

func TestFeed_SendDropsOnFullBuffer(t *testing.T) {
	var f Feed
	s := f.Subscribe(1)
	f.Send("first")
	n := f.Send("second")
	assert.Equal(t, 0, n, "a full subscriber buffer must be skipped, not block the sender")
	assert.Equal(t, "first", <-s.Chan())
}

func TestSubscription_UnsubscribeClosesChan(t *testing.T) {
	var f Feed
	s := f.Subscribe(1)
	s.Unsubscribe()

	_, ok := <-s.Chan()
	assert.False(t, ok)

	n := f.Send("after unsubscribe")
	assert.Equal(t, 0, n)
}
