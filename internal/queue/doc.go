// Package queue implements the generation task queue: the component that
// accepts long-running synthesis jobs, admits a bounded number of them
// concurrently, tracks per-task lifecycle state, enforces per-owner
// visibility, and reclaims storage and memory after a retention window.
//
// The package is organized around four cooperating pieces:
//
//   - Gate: a counting semaphore bounding concurrently executing jobs.
//   - Registry: the in-memory source of truth for task state while the
//     process runs; snapshots flow to a persistent TaskStore.
//   - the dispatch loop: pulls pending tasks in FIFO order, acquires a
//     permit, and hands each task to a worker goroutine.
//   - the sweeper: periodically evicts old terminal tasks and reclaims
//     permits from workers stuck past the execution timeout.
//
// Submission never blocks on admission; admission happens asynchronously in
// the dispatch loop. Queue state is not persisted across restarts beyond
// task snapshots: the registry is rebuilt from the TaskStore at boot.
package queue
