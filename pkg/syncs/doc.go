// Package syncs provides synchronization utilities built on top of the
// primitives in this module.
//
// [KeyLock] serialises work per key while letting different keys proceed
// independently. Waits for a busy key honour context cancellation.
package syncs
