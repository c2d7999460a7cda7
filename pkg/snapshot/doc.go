// Package snapshot holds immutable values that are replaced as a whole.
//
// Writers never modify a published value. They build a complete new value
// and swap a single reference, so a reader sees either the old value or the
// new one and never a mix of both. If building the new value fails, nothing
// is published and readers keep seeing the old value.
//
// [Store] swaps an atomic pointer and never blocks. [Cell] guards the
// reference with a mutex held only for the swap itself.
package snapshot
