// Package poller drives the gauge acquisition loop.
//
// A Poller moves from Idle to Running when its transport opens, and to
// Stopped when the stop policy is exhausted or its context is cancelled.
// Each tick reads the ion, CG1 and CG2 channels in that order, builds one
// gauge.Reading and hands it to every configured sink. Channel failures and
// sink failures are logged and counted; neither ends the run. Only a
// failure to open the transport is returned to the caller.
//
// The loop runs on a single goroutine. Status may be called from any
// goroutine while the loop runs.
package poller
