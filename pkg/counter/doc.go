// Package counter provides counters that are safe to increment from many
// goroutines.
//
// [Mutex] serializes the read-modify-write with a lock, [Atomic] and [Padded]
// use a lock-free compare-and-swap loop. All three satisfy the same contract:
// after N goroutines each call Increment M times, Get returns exactly N*M.
//
// [Unsafe] is a deliberately broken baseline that loses updates under
// contention. It exists to prove that the property above is not satisfied
// by accident, and must never be used to count anything.
package counter
