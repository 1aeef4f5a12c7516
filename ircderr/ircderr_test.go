package ircderr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesKind(t *testing.T) {
	err := New(Auth, "peer.server", errors.New("bad secret"))
	assert.True(t, Is(err, Auth))
	assert.False(t, Is(err, Protocol))
}

func TestError_UnwrapExposesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := New(Transport, "client.read", cause)
	assert.Same(t, cause, errors.Unwrap(err))
}
