// Package tasks runs background housekeeping for the server with progress reporting.
//
// # Session Sweeps
//
// [Housekeeper] removes expired sessions through a [Sweeper] (the auth service):
//
//  1. [Housekeeper.Sweep] : One pass, returns a [SweepResult]
//  2. [Housekeeper.Run] : A pass at start, then one per interval until the context ends
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct carries the phase, pass number and a message.
// Updates use select with default so a slow reader never stalls a sweep.
package tasks
