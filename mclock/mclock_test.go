package mclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAbsTime_AddSub(t *testing.T) {
	base := Now()
	later := base.Add(5 * time.Second)
	assert.Equal(t, 5*time.Second, later.Sub(base))
}

func TestPrettyDuration_String(t *testing.T) {
	assert.Equal(t, "1.500s", PrettyDuration(1500*time.Millisecond).String())
	assert.Equal(t, "0.001s", PrettyDuration(time.Millisecond).String())
}
