// Package sim implements a deterministic, single-threaded discrete-event
// simulation core: a monotone simulated clock and event priority queue, a
// component registry addressed by dense numeric ids, a per-component
// context facade, a dispatcher that drives the event loop, and a
// cooperative async executor that lets component logic suspend on events,
// timers, and channels instead of being written as a single synchronous
// handler.
//
// Everything in this package runs on one goroutine's worth of logical
// control at a time: the dispatcher, synchronous handlers, and suspended
// tasks hand a single "baton" back and forth so that, despite tasks living
// on their own goroutines, at most one of them is ever actually executing
// simulation logic. See Engine and Task for the mechanics.
package sim
