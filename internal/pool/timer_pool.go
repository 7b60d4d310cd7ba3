// Package pool provides pooled time.Timer instances for request deadlines.
package pool

import (
	"sync"
	"time"
)

var timerPool sync.Pool

// GetTimer returns a timer for the given duration d from the pool.
//
// Return the timer to the pool with PutTimer once it is no longer needed.
func GetTimer(d time.Duration) *time.Timer {
	if v := timerPool.Get(); v != nil {
		t, _ := v.(*time.Timer) // only *time.Timer values are ever put into the pool
		if t.Reset(d) {
			// The timer was still active, drain the channel to avoid a stale fire.
			select {
			case <-t.C:
			default:
			}
		}
		return t
	}
	return time.NewTimer(d)
}

// PutTimer returns a timer to the pool.
//
// The timer must not be accessed after it has been returned.
func PutTimer(t *time.Timer) {
	if !t.Stop() {
		// Drain t.C if the caller has not consumed the fire yet.
		select {
		case <-t.C:
		default:
		}
	}
	timerPool.Put(t)
}
