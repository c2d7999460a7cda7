// Package syncerrors provides error definitions shared by the synchronization
// primitives.
//
// Components wrap these sentinels with call-site detail so callers can match
// them with [errors.Is].
package syncerrors
