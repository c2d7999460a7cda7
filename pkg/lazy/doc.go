// Package lazy provides lazily constructed shared values with an at-most-once
// construction guarantee.
//
// [Value] uses check-lock-check: a lock-free load on the fast path, and a
// second check under a mutex before constructing. [Holder] delegates to the
// runtime's one-time initialization via [sync.OnceValues]. Both construct
// the value exactly once no matter how many goroutines race on the first
// call, and every caller receives the same instance.
//
// [Unsafe] is the broken check-then-act baseline, kept to demonstrate that
// the guard is necessary.
package lazy
