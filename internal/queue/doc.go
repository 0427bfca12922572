// Package queue persists per-video work items in SQLite and exposes the
// status transitions the workflow manager drives. One item is one video; a
// failed item never blocks the rest of the batch.
package queue
