package broll

import (
	"maps"
	"sync"
)

// UsageTable counts how often each asset was placed during one run. It is
// the only state shared between clips processed in parallel.
type UsageTable struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewUsageTable() *UsageTable {
	return &UsageTable{counts: make(map[string]int)}
}

// Acquire runs pick under the table lock and increments the count of the
// path it returns. pick must not block.
func (u *UsageTable) Acquire(pick func(count func(path string) int) (string, bool)) (string, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	path, ok := pick(func(p string) int { return u.counts[p] })
	if ok {
		u.counts[path]++
	}
	return path, ok
}

func (u *UsageTable) Count(path string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.counts[path]
}

// Snapshot returns a copy of the counters.
func (u *UsageTable) Snapshot() map[string]int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return maps.Clone(u.counts)
}
