// Package parallel runs independent jobs with bounded concurrency.
//
// WorkerPool keeps one result per submitted job in submission order, so
// callers can fan work out and still report it in a stable order.
package parallel
