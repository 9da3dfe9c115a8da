// Package session implements the run state machine of the endless runner.
//
// A Session owns the status lifecycle, the score economy, letter-sequence
// progression, the timed immortality window and one-time finalization of a
// run. Collaborators read it through Snapshot and change it only through the
// exported commands. Commands never fail: malformed numbers are clamped and
// commands issued in the wrong status are ignored or report false.
//
// Every command and the immortality timer callback run under one mutex, so a
// Session may be driven from a render loop while the timer fires on its own
// goroutine. Finished runs are handed to a Reporter after the lock is
// released.
package session
