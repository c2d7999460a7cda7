// Package barrier provides start and completion barriers for groups of
// goroutines.
//
// A [Gate] parks goroutines until it is opened, exactly once. A [Latch] counts
// down from a fixed number and releases its waiters at zero. A [Barrier]
// combines the two into the usual two-phase pattern: workers wait on the gate,
// the coordinator opens it, then waits for every worker to signal completion.
package barrier
