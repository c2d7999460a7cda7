package counter

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

var (
	_ Counter = (*Mutex)(nil)
	_ Counter = (*Atomic)(nil)
	_ Counter = (*Padded)(nil)
	_ Counter = (*Unsafe)(nil)
)

// Counter is a monotonically increasing integer.
type Counter interface {
	Increment()
	Get() int64
}

// Mutex is a [Counter] guarded by a [sync.Mutex]. The zero value is ready to
// use.
type Mutex struct {
	mu    sync.Mutex
	count int64
}

// Increment adds one to the counter.
func (c *Mutex) Increment() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.count++
}

// Get returns the current value.
func (c *Mutex) Get() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.count
}

// Atomic is a lock-free [Counter]. The zero value is ready to use.
type Atomic struct {
	count atomic.Int64
}

// Increment adds one to the counter with a compare-and-swap loop. It never
// blocks; a goroutine that loses the race reloads and retries.
func (c *Atomic) Increment() {
	for {
		old := c.count.Load()
		if c.count.CompareAndSwap(old, old+1) {
			return
		}
	}
}

// Add adds delta in a single atomic instruction and returns the new value.
func (c *Atomic) Add(delta int64) int64 {
	return c.count.Add(delta)
}

// Get returns the current value.
func (c *Atomic) Get() int64 {
	return c.count.Load()
}

// Padded is an [Atomic] counter that occupies its own cache line, so hot
// counters laid out next to each other do not contend on the same line.
type Padded struct {
	_ cpu.CacheLinePad
	Atomic
	_ cpu.CacheLinePad
}

// Unsafe is a counter without mutual exclusion.
//
// The load and the store are individually atomic but the increment as a whole
// is not: a goroutine that is descheduled between them overwrites every
// increment made in the meantime.
type Unsafe struct {
	count atomic.Int64
}

// Increment reads, yields, then writes back the read value plus one.
func (c *Unsafe) Increment() {
	v := c.count.Load()
	runtime.Gosched()
	c.count.Store(v + 1)
}

// Get returns the current value.
func (c *Unsafe) Get() int64 {
	return c.count.Load()
}
