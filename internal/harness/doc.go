// Package harness runs groups of goroutines that start together.
//
// [Run] parks every worker on a [barrier.Barrier] gate, opens the gate once
// all of them exist and waits for all of them to finish. Worker errors and
// panics are collected rather than aborting the run. [Trials] repeats a
// trial a fixed number of times so that rare interleavings get a chance to
// show up.
package harness
