package repository

import (
	"sync"
	"time"
)

// stepClock returns a clock that advances one second per call.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

var epoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
