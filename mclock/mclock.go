// Package mclock provides a monotonic clock abstraction used wherever the
// core only needs freshness, not wall-clock precision — the "cheap
// timestamp" of spec.md §3. Adapted from the call sites of teacher's
// common/mclock package in network/p2p/server.go (AbsTime arithmetic,
// PrettyDuration for log fields); the package itself was not present in the
// retrieved source, so the behavior is re-derived from how teacher calls it.
package mclock

import (
	"fmt"
	"time"
)

var processStart = time.Now()

// AbsTime is a monotonic timestamp relative to process start.
type AbsTime time.Duration

// Now returns the current monotonic time.
func Now() AbsTime {
	return AbsTime(time.Since(processStart))
}

// Add returns t shifted by d.
func (t AbsTime) Add(d time.Duration) AbsTime {
	return t + AbsTime(d)
}

// Sub returns the duration between t and t2.
func (t AbsTime) Sub(t2 AbsTime) time.Duration {
	return time.Duration(t - t2)
}

// PrettyDuration is a time.Duration that renders with millisecond
// precision, used purely for log output (peer link age, idle age).
type PrettyDuration time.Duration

func (d PrettyDuration) String() string {
	ms := time.Duration(d).Milliseconds()
	return fmt.Sprintf("%d.%03ds", ms/1000, ms%1000)
}
