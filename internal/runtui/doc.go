// Package runtui renders the progress of a scenario run in the terminal.
//
// The model is driven by events sent from the goroutine running the
// scenarios: [EventTotal] once, then [EventStarted] and [EventFinished] per
// scenario, and finally [EventDone].
package runtui
