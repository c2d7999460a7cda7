// Package buffer provides a fixed-capacity FIFO buffer with blocking Put and
// Take, built directly on a mutex and two wait conditions.
//
// Producers wait on "space available" while the buffer is full; consumers
// wait on "item available" while it is empty. A woken goroutine always
// re-checks its predicate before proceeding, since another goroutine may have
// taken the slot or item it was woken for.
//
// Waits honour context cancellation. A cancelled Put or Take returns the
// context's error and leaves the buffer exactly as it found it.
package buffer
