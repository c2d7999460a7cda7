// Package scenario contains runnable checks that drive the synchronisation
// primitives with many goroutines and verify their invariants.
//
// Some scenarios run a deliberately broken baseline next to the correct
// primitive. The baseline's outcome is reported in [Report.Detail]; only the
// correct primitive decides whether the scenario passes.
package scenario
