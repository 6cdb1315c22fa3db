package lib

import (
	"sync"
	"time"
)

// Throttle 在 wait 间隔内最多调用一次 fn，多余的调用直接丢弃；可并发调用
func Throttle[T any](fn func(T), wait time.Duration) func(T) {
	var (
		mu   sync.Mutex
		last time.Time
	)
	return func(v T) {
		mu.Lock()
		now := time.Now()
		if !last.IsZero() && now.Sub(last) < wait {
			mu.Unlock()
			return
		}
		last = now
		mu.Unlock()
		fn(v)
	}
}
