// Package store persists requests, plans, artifacts, and their audit
// trail in a local SQLite database.
//
// Schema changes ship as embedded migrations that run automatically on
// Open. Getters return a nil record, not an error, when a row is
// missing; callers decide whether absence is exceptional. Plan task
// nodes only ever move forward (pending to running, running to a
// terminal status), which the store enforces on every transition.
package store
