// Package progress defines primitives for reporting and aggregating the
// progress of batches submitted to a remote generation queue.  It abstracts
// away the underlying communication mechanism so that callers can consume
// progress updates in a uniform way regardless of whether they are delivered
// via callbacks, polled snapshots or external observers.
package progress
