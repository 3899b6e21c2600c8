// Package parallel provides the CPU execution machinery of the blur engine.
//
// # WorkerPool
//
// A fixed set of goroutines with per-worker queues and work stealing.
// InvokeAll schedules a batch and blocks until every item finished; it is
// the barrier between the horizontal and vertical blur passes.
//
// # Stripes
//
// Split divides a dimension into N contiguous stripes; the last stripe
// absorbs the remainder. RunPasses runs one wave of row stripes and one
// wave of column stripes with a barrier in between.
//
// # TaskManager
//
// Asynchronous, cancellable units of work on a separate pool. A unit that
// is cancelled before it completes never reaches its completion function.
//
// The stripe pool and the task pool are distinct, so an async unit that
// blurs in parallel never waits on workers it is itself occupying.
package parallel
